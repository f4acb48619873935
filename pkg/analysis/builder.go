package analysis

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/errors"
	"neuronook-server/pkg/metrics"
	"neuronook-server/pkg/sentiment"
	"neuronook-server/pkg/transcript"
	"neuronook-server/pkg/warnings"
)

// Pipeline runs the full segment analysis for one interview: normalize,
// silence detection, keyword tagging, sentiment annotation, aggregation
// and record assembly. One Pipeline may be shared across interviews; the
// vocabularies and engine are read-only after construction.
type Pipeline struct {
	logger    *logrus.Entry
	tagger    *Tagger
	annotator *Annotator
	gaps      *GapScanner
}

// NewPipeline wires the analysis stages together
func NewPipeline(logger *logrus.Logger, engine sentiment.Engine, collector *warnings.Collector, silenceThreshold float64) *Pipeline {
	return &Pipeline{
		logger:    logger.WithField("component", "analysis_pipeline"),
		tagger:    NewTagger(logger),
		annotator: NewAnnotator(logger, engine, collector),
		gaps:      NewGapScanner(silenceThreshold),
	}
}

// Analyze builds the AnalysisRecord for one interview. Fatal errors
// (malformed, out-of-order or empty input) abort this interview only and
// yield no record. Per-segment sentiment failures are absorbed as
// warnings on the record.
func (p *Pipeline) Analyze(source string, raw []transcript.RawSegment) (*AnalysisRecord, error) {
	startTime := time.Now()

	segments, err := transcript.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.NewEmptyTranscript(source)
	}

	annotated := make([]AnnotatedSegment, 0, len(segments))
	var recordWarnings []RecordWarning

	for i, seg := range segments {
		tags := p.tagger.Tag(seg.Text)
		for label, hits := range tags.MatchCounts {
			metrics.AddKeywordMatches(label, hits)
		}

		score, warning := p.annotator.Annotate(i, seg)
		if warning != nil {
			recordWarnings = append(recordWarnings, *warning)
		}

		annotated = append(annotated, AnnotatedSegment{
			Segment: seg,
			Annotation: Annotation{
				SentimentScore:    score,
				SentimentDegraded: warning != nil,
				SymptomTags:       tags.SymptomTags,
				ThemeTags:         tags.ThemeTags,
				MatchCounts:       tags.MatchCounts,
				FillerCount:       tags.FillerCount,
			},
		})
	}

	gaps := p.gaps.Detect(segments)
	agg := Aggregate(annotated, gaps)

	record := &AnalysisRecord{
		Source:           source,
		Segments:         annotated,
		Gaps:             gaps,
		SymptomFrequency: agg.SymptomFrequency,
		ThemeFrequency:   agg.ThemeFrequency,
		SentimentTrend:   agg.SentimentTrend,
		TotalSilence:     agg.TotalSilence,
		MeanSilence:      agg.MeanSilence,
		MeanSentiment:    agg.MeanSentiment,
		TotalWords:       agg.TotalWords,
		QuestionCount:    agg.QuestionCount,
		WordsPerMinute:   agg.WordsPerMinute,
		FillerCount:      agg.FillerCount,
		Warnings:         recordWarnings,
	}

	if err := p.validate(record); err != nil {
		return nil, err
	}

	elapsed := time.Since(startTime)
	metrics.ObserveAnalysisDuration(elapsed)
	metrics.AddSegmentsProcessed(len(segments))
	metrics.AddSilenceGapsDetected(len(gaps))

	p.logger.WithFields(logrus.Fields{
		"source":      source,
		"segments":    len(segments),
		"gaps":        len(gaps),
		"warnings":    len(recordWarnings),
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Analysis completed")

	return record, nil
}

// SilenceThreshold returns the configured silence threshold in seconds
func (p *Pipeline) SilenceThreshold() float64 {
	return p.gaps.Threshold()
}

// validate performs the final invariant checks. A violation here means an
// upstream stage broke its contract; it is surfaced as an internal error.
func (p *Pipeline) validate(record *AnalysisRecord) error {
	// Strict time ordering and non-overlap
	for i := 1; i < len(record.Segments); i++ {
		prev := record.Segments[i-1].Segment
		curr := record.Segments[i].Segment
		if prev.EndTime > curr.StartTime {
			return errors.NewInvalidRecord(
				fmt.Sprintf("segments %d and %d overlap", i-1, i),
				map[string]interface{}{"source": record.Source})
		}
	}

	// Vocabulary closure
	for label := range record.SymptomFrequency {
		if !IsSymptomLabel(label) {
			return errors.NewInvalidRecord(
				fmt.Sprintf("symptom frequency carries unknown label %q", label),
				map[string]interface{}{"source": record.Source})
		}
	}
	for label := range record.ThemeFrequency {
		if !IsThemeLabel(label) {
			return errors.NewInvalidRecord(
				fmt.Sprintf("theme frequency carries unknown label %q", label),
				map[string]interface{}{"source": record.Source})
		}
	}

	// One trend point per segment
	if len(record.SentimentTrend) != len(record.Segments) {
		return errors.NewInvalidRecord(
			fmt.Sprintf("sentiment trend has %d points for %d segments",
				len(record.SentimentTrend), len(record.Segments)),
			map[string]interface{}{"source": record.Source})
	}

	// Gap count must match a recount over adjacent pairs
	expected := 0
	for i := 1; i < len(record.Segments); i++ {
		gap := record.Segments[i].Segment.StartTime - record.Segments[i-1].Segment.EndTime
		if gap >= p.gaps.Threshold() {
			expected++
		}
	}
	if len(record.Gaps) != expected {
		return errors.NewInvalidRecord(
			fmt.Sprintf("gap count %d does not match expected %d", len(record.Gaps), expected),
			map[string]interface{}{"source": record.Source})
	}

	return nil
}
