package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuronook-server/pkg/transcript"
)

func annotatedSeg(start, end float64, text string, score float64, symptoms, themes []string) AnnotatedSegment {
	return AnnotatedSegment{
		Segment: transcript.Segment{StartTime: start, EndTime: end, Text: text},
		Annotation: Annotation{
			SentimentScore: score,
			SymptomTags:    symptoms,
			ThemeTags:      themes,
		},
	}
}

func TestAggregate_PerSegmentFrequencies(t *testing.T) {
	segments := []AnnotatedSegment{
		annotatedSeg(0, 2, "a", 0, []string{SymptomAnxiety}, []string{ThemeFamily}),
		annotatedSeg(2, 4, "b", 0, []string{SymptomAnxiety}, nil),
		annotatedSeg(4, 6, "c", 0, nil, []string{ThemeFamily, ThemeSchool}),
	}

	agg := Aggregate(segments, nil)

	assert.Equal(t, map[string]int{SymptomAnxiety: 2}, agg.SymptomFrequency)
	assert.Equal(t, map[string]int{ThemeFamily: 2, ThemeSchool: 1}, agg.ThemeFrequency)
}

func TestAggregate_SentimentTrendAndMean(t *testing.T) {
	segments := []AnnotatedSegment{
		annotatedSeg(0, 2, "a", -0.6, nil, nil),
		annotatedSeg(3, 5, "b", 0.2, nil, nil),
		annotatedSeg(6, 8, "c", 0.1, nil, nil),
	}

	agg := Aggregate(segments, nil)

	require.Len(t, agg.SentimentTrend, 3)
	assert.Equal(t, SentimentPoint{Timestamp: 0, Score: -0.6}, agg.SentimentTrend[0])
	assert.Equal(t, SentimentPoint{Timestamp: 3, Score: 0.2}, agg.SentimentTrend[1])
	assert.InDelta(t, -0.1, agg.MeanSentiment, 1e-9)
}

func TestAggregate_SilenceTotals(t *testing.T) {
	gaps := []SilenceGap{
		{GapStart: 2, GapEnd: 6, Duration: 4},
		{GapStart: 8, GapEnd: 11, Duration: 3},
	}

	agg := Aggregate(nil, gaps)

	assert.Equal(t, 7.0, agg.TotalSilence)
	assert.Equal(t, 3.5, agg.MeanSilence)
}

func TestAggregate_NoGapsMeansZeroSilence(t *testing.T) {
	agg := Aggregate([]AnnotatedSegment{annotatedSeg(0, 2, "a", 0, nil, nil)}, nil)

	assert.Zero(t, agg.TotalSilence)
	assert.Zero(t, agg.MeanSilence)
}

func TestAggregate_SessionMetrics(t *testing.T) {
	segments := []AnnotatedSegment{
		annotatedSeg(0, 30, "how are you feeling today?", 0, nil, nil),
		annotatedSeg(30, 60, "honestly not great I suppose", 0, nil, nil),
	}
	segments[1].Annotation.FillerCount = 2

	agg := Aggregate(segments, nil)

	assert.Equal(t, 10, agg.TotalWords)
	assert.Equal(t, 1, agg.QuestionCount)
	assert.Equal(t, 2, agg.FillerCount)
	// 10 words over a 60s session
	assert.InDelta(t, 10.0, agg.WordsPerMinute, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil, nil)

	assert.Empty(t, agg.SymptomFrequency)
	assert.Empty(t, agg.ThemeFrequency)
	assert.Empty(t, agg.SentimentTrend)
	assert.Zero(t, agg.MeanSentiment)
	assert.Zero(t, agg.WordsPerMinute)
}

func TestLongestAndShortestGap(t *testing.T) {
	gaps := []SilenceGap{
		{GapStart: 2, GapEnd: 6, Duration: 4},
		{GapStart: 10, GapEnd: 19, Duration: 9},
		{GapStart: 25, GapEnd: 28, Duration: 3},
	}

	longest, ok := LongestGap(gaps)
	require.True(t, ok)
	assert.Equal(t, 9.0, longest.Duration)

	shortest, ok := ShortestGap(gaps)
	require.True(t, ok)
	assert.Equal(t, 3.0, shortest.Duration)

	_, ok = LongestGap(nil)
	assert.False(t, ok)
	_, ok = ShortestGap(nil)
	assert.False(t, ok)
}
