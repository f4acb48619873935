package sentiment

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuronook-server/pkg/errors"
)

func newTestEngine() *LexiconEngine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLexiconEngine(logger)
}

func TestLexiconEngine_NegativePolarity(t *testing.T) {
	engine := newTestEngine()

	score, err := engine.Score("I feel hopeless and worthless")
	require.NoError(t, err)
	assert.Less(t, score, 0.0)
	assert.GreaterOrEqual(t, score, -1.0)
}

func TestLexiconEngine_PositivePolarity(t *testing.T) {
	engine := newTestEngine()

	score, err := engine.Score("I'm really happy and grateful, things are improving")
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestLexiconEngine_NegationFlips(t *testing.T) {
	engine := newTestEngine()

	plain, err := engine.Score("I am happy")
	require.NoError(t, err)

	negated, err := engine.Score("I am not happy")
	require.NoError(t, err)

	assert.Greater(t, plain, 0.0)
	assert.Less(t, negated, plain)
}

func TestLexiconEngine_IntensifierAmplifies(t *testing.T) {
	engine := newTestEngine()

	plain, err := engine.Score("I feel sad today")
	require.NoError(t, err)

	intense, err := engine.Score("I feel extremely sad today")
	require.NoError(t, err)

	assert.Less(t, intense, plain)
}

func TestLexiconEngine_DegenerateInput(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Score("   ")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSentimentEngineFailed))
}

func TestLexiconEngine_Deterministic(t *testing.T) {
	engine := newTestEngine()

	first, err := engine.Score("My family doesn't understand me")
	require.NoError(t, err)

	// Second call hits the cache and must match exactly
	second, err := engine.Score("My family doesn't understand me")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLexiconEngine_ScoreInRange(t *testing.T) {
	engine := newTestEngine()

	inputs := []string{
		"absolutely completely extremely hopeless worthless broken trapped",
		"really very happy grateful excited proud hopeful",
		"the meeting is at noon",
	}

	for _, text := range inputs {
		score, err := engine.Score(text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, -1.0, text)
		assert.LessOrEqual(t, score, 1.0, text)
	}
}

func TestStaticEngine(t *testing.T) {
	engine := &StaticEngine{Value: 0.4}

	score, err := engine.Score("anything")
	require.NoError(t, err)
	assert.Equal(t, 0.4, score)
}
