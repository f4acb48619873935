package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/analysis"
)

// ProcessFunc analyzes one input file and returns its record
type ProcessFunc func(ctx context.Context, path string) (*analysis.AnalysisRecord, error)

// Result is the outcome of processing one input file
type Result struct {
	Path    string
	Record  *analysis.AnalysisRecord
	Err     error
	Elapsed time.Duration
}

// Stats tracks runner progress
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
}

// Runner fans a set of input files out over a bounded worker pool. One
// file failing never stops the batch; its Result carries the error.
type Runner struct {
	logger  *logrus.Entry
	workers int
	process ProcessFunc
	stats   Stats
}

// NewRunner creates a batch runner with the given concurrency
func NewRunner(logger *logrus.Logger, workers int, process ProcessFunc) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		logger:  logger.WithField("component", "batch_runner"),
		workers: workers,
		process: process,
	}
}

// Run processes every path and returns results in input order. Workers
// stop picking up new files once the context is canceled; files never
// started get a ctx error result.
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.runOne(ctx, paths[idx])
			}
		}()
	}

	atomic.AddInt64(&r.stats.Submitted, int64(len(paths)))

dispatch:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Mark everything not yet dispatched as canceled
			for j := i; j < len(paths); j++ {
				results[j] = Result{Path: paths[j], Err: ctx.Err()}
				atomic.AddInt64(&r.stats.Failed, 1)
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	r.logger.WithFields(logrus.Fields{
		"files":     len(paths),
		"completed": atomic.LoadInt64(&r.stats.Completed),
		"failed":    atomic.LoadInt64(&r.stats.Failed),
	}).Info("Batch run finished")

	return results
}

// runOne processes a single file with panic recovery so a crashing
// analysis cannot take down the worker
func (r *Runner) runOne(ctx context.Context, path string) (result Result) {
	start := time.Now()
	result.Path = path

	defer func() {
		result.Elapsed = time.Since(start)
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{
				"path":    path,
				"recover": rec,
			}).Error("Recovered from panic while analyzing file")
			result.Err = &panicError{value: rec}
		}

		if result.Err != nil {
			atomic.AddInt64(&r.stats.Failed, 1)
		} else {
			atomic.AddInt64(&r.stats.Completed, 1)
		}
	}()

	record, err := r.process(ctx, path)
	result.Record = record
	result.Err = err
	return result
}

// GetStats returns a snapshot of the runner counters
func (r *Runner) GetStats() Stats {
	return Stats{
		Submitted: atomic.LoadInt64(&r.stats.Submitted),
		Completed: atomic.LoadInt64(&r.stats.Completed),
		Failed:    atomic.LoadInt64(&r.stats.Failed),
	}
}

type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return "analysis panicked"
}
