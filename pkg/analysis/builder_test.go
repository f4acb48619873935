package analysis

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuronook-server/pkg/errors"
	"neuronook-server/pkg/sentiment"
	"neuronook-server/pkg/transcript"
)

// flakyEngine fails on a chosen call index and succeeds otherwise
type flakyEngine struct {
	failOn int
	calls  int
}

func (e *flakyEngine) Name() string { return "flaky" }

func (e *flakyEngine) Score(text string) (float64, error) {
	call := e.calls
	e.calls++
	if call == e.failOn {
		return 0, stderrors.New("engine unavailable")
	}
	return -0.4, nil
}

func newTestPipeline(engine sentiment.Engine) *Pipeline {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewPipeline(logger, engine, nil, DefaultSilenceThreshold)
}

func raw(start, end float64, text string) transcript.RawSegment {
	return transcript.RawSegment{StartTime: start, EndTime: end, Text: text}
}

func TestPipeline_InterviewScenario(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{Value: -0.3})

	record, err := pipeline.Analyze("session01", []transcript.RawSegment{
		raw(0, 2, "I feel hopeless about school"),
		raw(6, 8, "My family doesn't understand me"),
	})
	require.NoError(t, err)

	require.Len(t, record.Gaps, 1)
	assert.Equal(t, 4.0, record.Gaps[0].Duration)

	assert.Equal(t, map[string]int{ThemeSchool: 1, ThemeFamily: 1}, record.ThemeFrequency)
	assert.Equal(t, map[string]int{SymptomHopelessness: 1}, record.SymptomFrequency)

	require.Len(t, record.SentimentTrend, 2)
	assert.Equal(t, 0.0, record.SentimentTrend[0].Timestamp)
	assert.Equal(t, 6.0, record.SentimentTrend[1].Timestamp)
	assert.InDelta(t, -0.3, record.MeanSentiment, 1e-9)
	assert.Empty(t, record.Warnings)
}

func TestPipeline_DegradedSentimentSegment(t *testing.T) {
	// engine fails on the second of three segments
	pipeline := newTestPipeline(&flakyEngine{failOn: 1})

	record, err := pipeline.Analyze("session02", []transcript.RawSegment{
		raw(0, 2, "first answer"),
		raw(2, 4, "second answer"),
		raw(4, 6, "third answer"),
	})
	require.NoError(t, err)

	require.Len(t, record.Segments, 3)
	require.Len(t, record.SentimentTrend, 3)

	assert.InDelta(t, -0.4, record.Segments[0].Annotation.SentimentScore, 1e-9)
	assert.Equal(t, 0.0, record.Segments[1].Annotation.SentimentScore)
	assert.True(t, record.Segments[1].Annotation.SentimentDegraded)
	assert.InDelta(t, -0.4, record.Segments[2].Annotation.SentimentScore, 1e-9)

	require.Len(t, record.Warnings, 1)
	assert.Equal(t, 1, record.Warnings[0].SegmentIndex)
}

func TestPipeline_ScoreClamping(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{Value: 3.7})

	record, err := pipeline.Analyze("session03", []transcript.RawSegment{
		raw(0, 2, "great day"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, record.Segments[0].Annotation.SentimentScore)
}

func TestPipeline_RejectsOutOfOrderSegments(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{})

	_, err := pipeline.Analyze("session04", []transcript.RawSegment{
		raw(0, 5, "first"),
		raw(3, 8, "overlaps the first"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrOutOfOrderSegment))
}

func TestPipeline_RejectsMalformedSegment(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{})

	_, err := pipeline.Analyze("session05", []transcript.RawSegment{
		raw(2, 2, "zero duration"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrMalformedSegment))
}

func TestPipeline_RejectsEmptyTranscript(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{})

	_, err := pipeline.Analyze("session06", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrEmptyTranscript))
}

func TestPipeline_Idempotent(t *testing.T) {
	input := []transcript.RawSegment{
		raw(0, 3.2, "I have been feeling really down lately"),
		raw(3.5, 7.8, "I feel hopeless about school"),
		raw(12.0, 16.4, "My family doesn't understand me at all"),
	}

	pipeline := newTestPipeline(&sentiment.StaticEngine{Value: -0.5})

	first, err := pipeline.Analyze("session07", input)
	require.NoError(t, err)
	second, err := pipeline.Analyze("session07", input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_TrendLengthMatchesSegments(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{Value: 0.1})

	for _, n := range []int{1, 2, 5, 17} {
		input := make([]transcript.RawSegment, 0, n)
		for i := 0; i < n; i++ {
			start := float64(i) * 2
			input = append(input, raw(start, start+1.5, "segment text"))
		}

		record, err := pipeline.Analyze("session08", input)
		require.NoError(t, err)
		assert.Len(t, record.SentimentTrend, n)
		assert.Equal(t, n, record.SegmentCount())
	}
}

func TestPipeline_SessionDuration(t *testing.T) {
	pipeline := newTestPipeline(&sentiment.StaticEngine{})

	record, err := pipeline.Analyze("session09", []transcript.RawSegment{
		raw(1.5, 4, "opening"),
		raw(10, 20.5, "closing"),
	})
	require.NoError(t, err)

	assert.InDelta(t, 19.0, record.SessionDuration(), 1e-9)
}
