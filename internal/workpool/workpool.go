// Package workpool provides bounded concurrent fan-out over index ranges.
package workpool

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// ChunkError records the range that failed.
type ChunkError struct {
	Start, End int
	Err        error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("rows [%d, %d): %v", e.Start, e.End, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// ProgressFunc is called with the number of items completed by a chunk.
type ProgressFunc func(n int)

// ChunkFunc processes the half-open item range [start, end).
type ChunkFunc func(ctx context.Context, start, end int) error

// Options configures a fan-out.
type Options struct {
	// MaxWorkers bounds concurrency. <= 0 means 2x NumCPU.
	MaxWorkers int
	// ChunkSize is the number of items per task. <= 0 spreads items evenly
	// over the workers.
	ChunkSize int
	// OnProgress, if set, is called after each chunk succeeds.
	OnProgress ProgressFunc
}

// ForEachChunk splits [0, total) into chunks and runs fn on each with a
// bounded pool. The first error cancels the remaining chunks and is
// returned wrapped in a *ChunkError. A single chunk runs on the calling
// goroutine.
func ForEachChunk(ctx context.Context, total int, opts Options, fn ChunkFunc) error {
	if total <= 0 {
		return nil
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = (total + workers - 1) / workers
	}

	run := func(ctx context.Context, start, end int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, start, end); err != nil {
			return &ChunkError{Start: start, End: end, Err: err}
		}
		if opts.OnProgress != nil {
			opts.OnProgress(end - start)
		}
		return nil
	}

	if chunk >= total || workers == 1 {
		for start := 0; start < total; start += chunk {
			if err := run(ctx, start, min(start+chunk, total)); err != nil {
				return err
			}
		}
		return nil
	}

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(workers).
		WithCancelOnError().
		WithFirstError()
	for start := 0; start < total; start += chunk {
		end := min(start+chunk, total)
		p.Go(func(ctx context.Context) error {
			return run(ctx, start, end)
		})
	}
	return p.Wait()
}
