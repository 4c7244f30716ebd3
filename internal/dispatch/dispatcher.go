// Package dispatch runs per-file analysis under a concurrency bound,
// isolating failures per file and returning results in input order.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mfeller/metagen-api/internal/domain"
)

// DefaultConcurrency bounds simultaneously in-flight upstream calls when
// no explicit limit is configured.
const DefaultConcurrency = 5

// ProcessFunc handles one file end to end (validation, analysis) and
// must always return a FileResult, converting its own failures into
// error results. The dispatcher guards against panics on top of that.
type ProcessFunc func(ctx context.Context, req domain.AnalysisRequest) domain.FileResult

// Dispatcher fans out analysis requests under a counting limiter. The
// limiter exists to avoid tripping the upstream's own rate limiting;
// queued requests wait without blocking admitted ones.
type Dispatcher struct {
	process     ProcessFunc
	concurrency int
	logger      *slog.Logger
}

// New creates a Dispatcher running process with at most concurrency
// simultaneous calls.
func New(process ProcessFunc, concurrency int, logger *slog.Logger) *Dispatcher {
	if concurrency <= 0 {
		logger.Warn("invalid concurrency limit, using default",
			"specified", concurrency,
			"default", DefaultConcurrency)
		concurrency = DefaultConcurrency
	}
	return &Dispatcher{
		process:     process,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Dispatch runs all requests and aggregates their results. Batch size is
// validated before any upstream work starts; afterwards per-file failures
// never abort the batch. Results are re-sorted by the request index so
// completion order never leaks into the response.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []domain.AnalysisRequest) (*domain.BatchResponse, error) {
	if len(requests) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(requests) > domain.MaxBatchFiles {
		return nil, fmt.Errorf("%w: %d files (maximum %d)",
			domain.ErrBatchTooLarge, len(requests), domain.MaxBatchFiles)
	}

	start := time.Now()

	results := make([]domain.FileResult, len(requests))
	sem := make(chan struct{}, d.concurrency)
	var wg sync.WaitGroup

	for i, req := range requests {
		wg.Add(1)
		go func(slot int, req domain.AnalysisRequest) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[slot] = domain.ErrorResult(req, domain.ErrCodeInternal,
					fmt.Sprintf("cancelled before dispatch: %v", ctx.Err()))
				return
			}

			results[slot] = d.runOne(ctx, req)
		}(i, req)
	}

	wg.Wait()

	// Each goroutine wrote only its own slot; sorting by the stored
	// index reconstructs input order regardless of completion order.
	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })

	elapsed := time.Since(start).Milliseconds()
	resp := domain.NewBatchResponse(results, elapsed)

	d.logger.InfoContext(ctx, "batch dispatch complete",
		"total", resp.TotalFiles,
		"successful", resp.Successful,
		"failed", resp.Failed,
		"elapsed_ms", elapsed)

	return resp, nil
}

// runOne executes the processing pipeline for a single request,
// converting panics into an error result so one broken file can never
// take down its siblings.
func (d *Dispatcher) runOne(ctx context.Context, req domain.AnalysisRequest) (result domain.FileResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "panic while processing file",
				"file_index", req.Index,
				"file_name", req.FileName,
				"panic", r)
			result = domain.ErrorResult(req, domain.ErrCodeInternal,
				fmt.Sprintf("internal error: %v", r))
		}
	}()

	return d.process(ctx, req)
}
