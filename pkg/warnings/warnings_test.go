package warnings

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollector() *Collector {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewCollector(logger)
}

func TestCollector_DeduplicatesRepeats(t *testing.T) {
	c := testCollector()

	id1 := c.Add(CategorySentimentScoring, SeverityLow, "engine failed", nil)
	id2 := c.Add(CategorySentimentScoring, SeverityLow, "engine failed", nil)

	require.Equal(t, id1, id2)

	warning, ok := c.Get(id1)
	require.True(t, ok)
	assert.Equal(t, 2, warning.Count)
}

func TestCollector_GetByCategory(t *testing.T) {
	c := testCollector()

	c.Add(CategorySentimentScoring, SeverityLow, "engine failed", nil)
	c.Add(CategoryTranscription, SeverityHigh, "provider unavailable", nil)

	scoring := c.GetByCategory(CategorySentimentScoring)
	require.Len(t, scoring, 1)
	assert.Equal(t, "engine failed", scoring[0].Message)

	assert.Empty(t, c.GetByCategory(CategoryOutput))
}

func TestCollector_GetBySeverity(t *testing.T) {
	c := testCollector()

	c.Add(CategorySentimentScoring, SeverityLow, "minor", nil)
	c.Add(CategoryConfiguration, SeverityCritical, "major", nil)

	high := c.GetBySeverity(SeverityHigh)
	require.Len(t, high, 1)
	assert.Equal(t, "major", high[0].Message)
}

func TestCollector_Statistics(t *testing.T) {
	c := testCollector()

	c.Add(CategorySentimentScoring, SeverityLow, "a", nil)
	c.Add(CategorySentimentScoring, SeverityLow, "b", nil)
	c.Add(CategoryMessaging, SeverityMedium, "c", nil)

	stats := c.Statistics()
	assert.Equal(t, 3, stats["total"])

	byCategory := stats["by_category"].(map[string]int)
	assert.Equal(t, 2, byCategory[CategorySentimentScoring])
}

func TestGlobalCollector(t *testing.T) {
	GlobalCollector = nil
	assert.Empty(t, AddGlobal(CategoryOutput, SeverityInfo, "noop without init", nil))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	InitGlobalCollector(logger)

	id := AddGlobal(CategoryOutput, SeverityInfo, "write skipped", nil)
	assert.NotEmpty(t, id)

	_, ok := GlobalCollector.Get(id)
	assert.True(t, ok)
}
