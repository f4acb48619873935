package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuronook-server/pkg/analysis"
	"neuronook-server/pkg/config"
	"neuronook-server/pkg/transcript"
)

func testRecord() *analysis.AnalysisRecord {
	return &analysis.AnalysisRecord{
		Source: "session01.wav",
		Segments: []analysis.AnnotatedSegment{
			{
				Segment: transcript.Segment{StartTime: 0, EndTime: 2, Text: "I feel hopeless about school"},
				Annotation: analysis.Annotation{
					SentimentScore: -0.6,
					SymptomTags:    []string{analysis.SymptomHopelessness},
					ThemeTags:      []string{analysis.ThemeSchool},
				},
			},
			{
				Segment: transcript.Segment{StartTime: 6, EndTime: 8, Text: "My family doesn't understand me"},
				Annotation: analysis.Annotation{
					SentimentScore:    0.0,
					SentimentDegraded: true,
					SymptomTags:       []string{},
					ThemeTags:         []string{analysis.ThemeFamily},
				},
			},
		},
		Gaps: []analysis.SilenceGap{{GapStart: 2, GapEnd: 6, Duration: 4}},
		SymptomFrequency: map[string]int{
			analysis.SymptomHopelessness: 1,
		},
		ThemeFrequency: map[string]int{
			analysis.ThemeSchool: 1,
			analysis.ThemeFamily: 1,
		},
		SentimentTrend: []analysis.SentimentPoint{
			{Timestamp: 0, Score: -0.6},
			{Timestamp: 6, Score: 0.0},
		},
		TotalSilence:   4,
		MeanSilence:    4,
		MeanSentiment:  -0.3,
		TotalWords:     10,
		QuestionCount:  0,
		WordsPerMinute: 75,
		Warnings: []analysis.RecordWarning{
			{Category: "sentiment_scoring", SegmentIndex: 1, Message: "degraded"},
		},
	}
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := config.OutputConfig{
		Directory:       dir,
		WriteSummary:    true,
		WriteTrend:      true,
		WriteTranscript: true,
		PrettyJSON:      true,
	}
	return NewWriter(logger, cfg), dir
}

func TestWriter_WriteAll(t *testing.T) {
	writer, dir := newTestWriter(t)

	paths, err := writer.WriteAll(testRecord())
	require.NoError(t, err)
	require.Len(t, paths, 4)

	assert.FileExists(t, filepath.Join(dir, "session01.json"))
	assert.FileExists(t, filepath.Join(dir, "session01_summary.txt"))
	assert.FileExists(t, filepath.Join(dir, "session01_trend.json"))
	assert.FileExists(t, filepath.Join(dir, "session01_transcript.txt"))
}

func TestWriter_RecordRoundTrips(t *testing.T) {
	writer, dir := newTestWriter(t)
	record := testRecord()

	_, err := writer.WriteRecord(record)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "session01.json"))
	require.NoError(t, err)

	var decoded analysis.AnalysisRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record.Source, decoded.Source)
	assert.Equal(t, record.ThemeFrequency, decoded.ThemeFrequency)
	assert.Len(t, decoded.SentimentTrend, 2)
}

func TestWriter_Deterministic(t *testing.T) {
	writer, dir := newTestWriter(t)
	record := testRecord()

	_, err := writer.WriteAll(record)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, "session01.json"))
	require.NoError(t, err)
	firstSummary, err := os.ReadFile(filepath.Join(dir, "session01_summary.txt"))
	require.NoError(t, err)

	_, err = writer.WriteAll(record)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "session01.json"))
	require.NoError(t, err)
	secondSummary, err := os.ReadFile(filepath.Join(dir, "session01_summary.txt"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}

func TestRenderSummary(t *testing.T) {
	summary := RenderSummary(testRecord())

	assert.Contains(t, summary, "session01.wav")
	assert.Contains(t, summary, "negative (-0.30)")
	assert.Contains(t, summary, "Hopelessness (1)")
	assert.Contains(t, summary, "longest 4.0s")
	assert.Contains(t, summary, "75.0 words/min")
	assert.Contains(t, summary, "degraded scoring")
}

func TestRenderSummary_NoFindings(t *testing.T) {
	record := testRecord()
	record.SymptomFrequency = map[string]int{}
	record.ThemeFrequency = map[string]int{}
	record.Gaps = nil
	record.TotalSilence = 0

	summary := RenderSummary(record)

	assert.Contains(t, summary, "Prominent symptom indicators: none detected")
	assert.Contains(t, summary, "Prominent discussion topics: none detected")
}

func TestRenderTranscript(t *testing.T) {
	text := RenderTranscript(testRecord())

	assert.Contains(t, text, "I feel hopeless about school")
	assert.Contains(t, text, "tags: Hopelessness, School")
	assert.Contains(t, text, "sentiment: 0.00 (degraded)")
	assert.Contains(t, text, "silence (4.0s)")
}

func TestSentimentLabel(t *testing.T) {
	assert.Equal(t, "positive", SentimentLabel(0.2))
	assert.Equal(t, "negative", SentimentLabel(-0.2))
	assert.Equal(t, "neutral", SentimentLabel(0.0))
	assert.Equal(t, "neutral", SentimentLabel(0.05))
	assert.Equal(t, "neutral", SentimentLabel(-0.05))
}

func TestWriteTrendSeriesShape(t *testing.T) {
	writer, dir := newTestWriter(t)

	_, err := writer.WriteTrend(testRecord())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "session01_trend.json"))
	require.NoError(t, err)

	var series struct {
		Source     string    `json:"source"`
		Timestamps []float64 `json:"timestamps"`
		Scores     []float64 `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(data, &series))
	assert.Equal(t, "session01.wav", series.Source)
	assert.Equal(t, []float64{0, 6}, series.Timestamps)
	assert.Equal(t, []float64{-0.6, 0}, series.Scores)
}

func TestOutputPathStripsExtension(t *testing.T) {
	writer, dir := newTestWriter(t)

	path := writer.outputPath("interviews/session02.mp3", "_summary.txt")
	assert.Equal(t, filepath.Join(dir, "session02_summary.txt"), path)
	assert.False(t, strings.Contains(path, ".mp3"))
}
