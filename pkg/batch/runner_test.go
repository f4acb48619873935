package batch

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuronook-server/pkg/analysis"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunner_ProcessesAllFiles(t *testing.T) {
	var calls int64
	runner := NewRunner(testLogger(), 3, func(ctx context.Context, path string) (*analysis.AnalysisRecord, error) {
		atomic.AddInt64(&calls, 1)
		return &analysis.AnalysisRecord{Source: path}, nil
	})

	paths := []string{"a.json", "b.json", "c.json", "d.json"}
	results := runner.Run(context.Background(), paths)

	require.Len(t, results, 4)
	assert.Equal(t, int64(4), atomic.LoadInt64(&calls))

	// Results keep input order regardless of worker scheduling
	for i, result := range results {
		require.NoError(t, result.Err)
		require.NotNil(t, result.Record)
		assert.Equal(t, paths[i], result.Record.Source)
	}

	stats := runner.GetStats()
	assert.Equal(t, int64(4), stats.Submitted)
	assert.Equal(t, int64(4), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestRunner_OneFailureDoesNotStopBatch(t *testing.T) {
	runner := NewRunner(testLogger(), 2, func(ctx context.Context, path string) (*analysis.AnalysisRecord, error) {
		if path == "bad.json" {
			return nil, errors.New("malformed input")
		}
		return &analysis.AnalysisRecord{Source: path}, nil
	})

	results := runner.Run(context.Background(), []string{"good.json", "bad.json", "other.json"})

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Record)
	assert.NoError(t, results[2].Err)

	stats := runner.GetStats()
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestRunner_RecoversFromPanic(t *testing.T) {
	runner := NewRunner(testLogger(), 1, func(ctx context.Context, path string) (*analysis.AnalysisRecord, error) {
		panic("boom")
	})

	results := runner.Run(context.Background(), []string{"a.json"})

	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Equal(t, int64(1), runner.GetStats().Failed)
}

func TestRunner_CancellationSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	runner := NewRunner(testLogger(), 1, func(ctx context.Context, path string) (*analysis.AnalysisRecord, error) {
		close(started)
		<-release
		return &analysis.AnalysisRecord{Source: path}, nil
	})

	done := make(chan []Result, 1)
	go func() {
		done <- runner.Run(ctx, []string{"a.json", "b.json", "c.json"})
	}()

	<-started
	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case results := <-done:
		require.Len(t, results, 3)
		assert.NoError(t, results[0].Err)
		// the undispatched files carry the context error
		assert.ErrorIs(t, results[2].Err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not finish after cancellation")
	}
}

func TestRunner_MinimumOneWorker(t *testing.T) {
	runner := NewRunner(testLogger(), 0, func(ctx context.Context, path string) (*analysis.AnalysisRecord, error) {
		return nil, nil
	})
	assert.Equal(t, 1, runner.workers)
}
