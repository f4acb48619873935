package analysis

import "strings"

// Aggregates are the document-level statistics folded from the annotated
// segment and gap sequences. Pure function of its inputs.
type Aggregates struct {
	SymptomFrequency map[string]int
	ThemeFrequency   map[string]int
	SentimentTrend   []SentimentPoint

	TotalSilence float64
	MeanSilence  float64

	MeanSentiment  float64
	TotalWords     int
	QuestionCount  int
	WordsPerMinute float64
	FillerCount    int
}

// Aggregate folds the annotated segments and gaps into document-level
// statistics. Frequencies count segments carrying a tag, not raw phrase
// hits: a segment matching "Family" triggers three times still adds one.
func Aggregate(segments []AnnotatedSegment, gaps []SilenceGap) Aggregates {
	agg := Aggregates{
		SymptomFrequency: make(map[string]int),
		ThemeFrequency:   make(map[string]int),
		SentimentTrend:   make([]SentimentPoint, 0, len(segments)),
	}

	sentimentSum := 0.0
	for _, as := range segments {
		for _, tag := range as.Annotation.SymptomTags {
			agg.SymptomFrequency[tag]++
		}
		for _, tag := range as.Annotation.ThemeTags {
			agg.ThemeFrequency[tag]++
		}

		agg.SentimentTrend = append(agg.SentimentTrend, SentimentPoint{
			Timestamp: as.Segment.StartTime,
			Score:     as.Annotation.SentimentScore,
		})
		sentimentSum += as.Annotation.SentimentScore

		agg.TotalWords += as.Segment.WordCount()
		agg.QuestionCount += strings.Count(as.Segment.Text, "?")
		agg.FillerCount += as.Annotation.FillerCount
	}

	if len(segments) > 0 {
		agg.MeanSentiment = sentimentSum / float64(len(segments))

		duration := segments[len(segments)-1].Segment.EndTime - segments[0].Segment.StartTime
		if duration > 0 {
			agg.WordsPerMinute = float64(agg.TotalWords) / duration * 60.0
		}
	}

	for _, gap := range gaps {
		agg.TotalSilence += gap.Duration
	}
	if len(gaps) > 0 {
		agg.MeanSilence = agg.TotalSilence / float64(len(gaps))
	}

	return agg
}

// LongestGap returns the longest silence gap, false when there are none
func LongestGap(gaps []SilenceGap) (SilenceGap, bool) {
	if len(gaps) == 0 {
		return SilenceGap{}, false
	}
	longest := gaps[0]
	for _, gap := range gaps[1:] {
		if gap.Duration > longest.Duration {
			longest = gap
		}
	}
	return longest, true
}

// ShortestGap returns the shortest silence gap, false when there are none
func ShortestGap(gaps []SilenceGap) (SilenceGap, bool) {
	if len(gaps) == 0 {
		return SilenceGap{}, false
	}
	shortest := gaps[0]
	for _, gap := range gaps[1:] {
		if gap.Duration < shortest.Duration {
			shortest = gap
		}
	}
	return shortest, true
}
