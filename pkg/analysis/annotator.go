package analysis

import (
	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/metrics"
	"neuronook-server/pkg/sentiment"
	"neuronook-server/pkg/transcript"
	"neuronook-server/pkg/warnings"
)

// Annotator attaches sentiment scores to segments. Scoring failures on a
// single segment never abort the pipeline: the segment gets a neutral
// default and the annotation is marked degraded.
type Annotator struct {
	logger    *logrus.Entry
	engine    sentiment.Engine
	collector *warnings.Collector
}

// NewAnnotator creates a sentiment annotator over the given engine.
// The collector may be nil.
func NewAnnotator(logger *logrus.Logger, engine sentiment.Engine, collector *warnings.Collector) *Annotator {
	return &Annotator{
		logger:    logger.WithField("component", "sentiment_annotator"),
		engine:    engine,
		collector: collector,
	}
}

// Annotate scores one segment. The returned warning is non-nil only when
// the engine failed and the neutral default was applied.
func (a *Annotator) Annotate(index int, seg transcript.Segment) (float64, *RecordWarning) {
	score, err := a.engine.Score(seg.Text)
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"segment_index": index,
			"engine":        a.engine.Name(),
			"error":         err,
		}).Warn("Sentiment scoring failed, using neutral default")

		metrics.RecordSentimentDegraded(a.engine.Name())

		if a.collector != nil {
			a.collector.Add(warnings.CategorySentimentScoring, warnings.SeverityLow,
				"Sentiment engine failed for segment, neutral default applied",
				map[string]interface{}{
					"segment_index": index,
					"engine":        a.engine.Name(),
				})
		}

		return 0.0, &RecordWarning{
			Category:     warnings.CategorySentimentScoring,
			SegmentIndex: index,
			Message:      "sentiment scoring degraded: " + err.Error(),
		}
	}

	return clampScore(score), nil
}

// clampScore forces engine output into [-1.0, 1.0] before storage
func clampScore(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}
