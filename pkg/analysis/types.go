package analysis

import "neuronook-server/pkg/transcript"

// Annotation carries the per-segment analysis results. Each annotation
// is owned by exactly one segment.
type Annotation struct {
	// SentimentScore is the polarity in [-1.0, 1.0], negative for
	// negative polarity
	SentimentScore float64 `json:"sentiment_score"`

	// SentimentDegraded marks a score that defaulted to neutral because
	// the engine failed for this segment, as opposed to a genuinely
	// neutral score
	SentimentDegraded bool `json:"sentiment_degraded,omitempty"`

	// SymptomTags are the symptom labels matched in the segment text,
	// sorted for determinism
	SymptomTags []string `json:"symptom_tags"`

	// ThemeTags are the theme labels matched in the segment text,
	// sorted for determinism
	ThemeTags []string `json:"theme_tags"`

	// MatchCounts holds the raw trigger-phrase hit count per label.
	// Frequencies downstream count segments, not these hits.
	MatchCounts map[string]int `json:"match_counts,omitempty"`

	// FillerCount is the number of filler-word hits in the segment
	FillerCount int `json:"filler_count"`
}

// AnnotatedSegment pairs a canonical segment with its annotation
type AnnotatedSegment struct {
	Segment    transcript.Segment `json:"segment"`
	Annotation Annotation         `json:"annotation"`
}

// SilenceGap is a pause between two adjacent segments that met the
// silence threshold. Read-only downstream.
type SilenceGap struct {
	GapStart float64 `json:"gap_start"`
	GapEnd   float64 `json:"gap_end"`
	Duration float64 `json:"duration"`
}

// SentimentPoint is one point of the sentiment trend series, timestamped
// at the segment start
type SentimentPoint struct {
	Timestamp float64 `json:"timestamp"`
	Score     float64 `json:"score"`
}

// RecordWarning is a non-fatal issue absorbed during analysis and
// attached to the record
type RecordWarning struct {
	Category     string `json:"category"`
	SegmentIndex int    `json:"segment_index"`
	Message      string `json:"message"`
}

// AnalysisRecord is the root aggregate for one interview. Built once per
// input, immutable afterward, consumed by the report and visualization
// collaborators. The record carries no wall-clock state so identical
// input with deterministic collaborators reproduces it exactly.
type AnalysisRecord struct {
	// Source identifies the analyzed input (file base name)
	Source string `json:"source"`

	// Segments in chronological order, one annotation each
	Segments []AnnotatedSegment `json:"segments"`

	// Gaps in chronological order
	Gaps []SilenceGap `json:"gaps"`

	// SymptomFrequency counts segments carrying each symptom tag
	SymptomFrequency map[string]int `json:"symptom_frequency"`

	// ThemeFrequency counts segments carrying each theme tag
	ThemeFrequency map[string]int `json:"theme_frequency"`

	// SentimentTrend has exactly one point per segment
	SentimentTrend []SentimentPoint `json:"sentiment_trend"`

	// Silence aggregates derived from Gaps
	TotalSilence float64 `json:"total_silence"`
	MeanSilence  float64 `json:"mean_silence"`

	// Session-level metrics
	MeanSentiment  float64 `json:"mean_sentiment"`
	TotalWords     int     `json:"total_words"`
	QuestionCount  int     `json:"question_count"`
	WordsPerMinute float64 `json:"words_per_minute"`
	FillerCount    int     `json:"filler_count"`

	// Warnings absorbed during analysis (degraded sentiment scoring)
	Warnings []RecordWarning `json:"warnings,omitempty"`
}

// SegmentCount returns the number of analyzed segments
func (r *AnalysisRecord) SegmentCount() int {
	return len(r.Segments)
}

// SessionDuration returns the span from first segment start to last
// segment end in seconds
func (r *AnalysisRecord) SessionDuration() float64 {
	if len(r.Segments) == 0 {
		return 0
	}
	first := r.Segments[0].Segment.StartTime
	last := r.Segments[len(r.Segments)-1].Segment.EndTime
	return last - first
}
