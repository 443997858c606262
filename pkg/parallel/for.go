package parallel

import (
	"context"
	"log/slog"

	"github.com/aryankumar/forkjoin/internal/executor"
)

// RangeFunc processes the half-open index range [begin, end). ctx carries
// the unit's thread id, see [ThreadNum].
type RangeFunc func(ctx context.Context, begin, end int64) error

// For runs f over [begin, end) on the Runtime attached to ctx, or Default.
// See [Runtime.For].
func For(ctx context.Context, begin, end, grainSize int64, f RangeFunc) error {
	return RuntimeFrom(ctx).For(ctx, begin, end, grainSize, f)
}

// For partitions [begin, end) into contiguous chunks and runs f on each,
// blocking until all of them finish.
//
// The range runs as a single call to f on the calling goroutine when it holds
// no more than grainSize indices, when only one thread is configured, or when
// ctx already belongs to a parallel region. Otherwise each chunk runs on its
// own goroutine with the chunk index as its thread id.
//
// If any chunk fails, For returns the first captured error unchanged once
// every chunk has finished; other failures are discarded. A panic in f is
// re-raised on the caller as a [*PanicError] unless the Runtime was created
// with [WithPanicAsError]. Chunks are never cancelled.
func (rt *Runtime) For(ctx context.Context, begin, end, grainSize int64, f RangeFunc) error {
	if err := checkGrainSize(grainSize); err != nil {
		return err
	}
	if begin >= end {
		return nil
	}

	logger := rt.log()
	plan := PlanFor(begin, end, grainSize, rt.MaxThreads(), InParallelRegion(ctx))
	rt.countCall(plan.Parallel)

	var latch failureLatch

	if !plan.Parallel {
		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("running range inline", "begin", begin, "end", end, "grain_size", grainSize)
		}
		unitCtx := WithThreadNum(ctx, 0)
		rt.runUnit(&latch, UnitReport{Begin: begin, End: end}, func() error {
			return f(unitCtx, begin, end)
		})
		return rt.finish(&latch)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("dispatching range",
			"begin", begin,
			"end", end,
			"grain_size", grainSize,
			"threads", plan.Threads,
			"chunk_size", plan.ChunkSize)
	}

	tasks := make([]executor.Task, len(plan.Chunks))
	for i, c := range plan.Chunks {
		tasks[i] = executor.Task{
			Index: c.Index,
			Begin: c.Begin,
			End:   c.End,
			Execute: func(ctx context.Context, _ int) error {
				unitCtx := enterRegion(ctx, c.Index)
				report := UnitReport{Chunk: c.Index, Thread: c.Index, Begin: c.Begin, End: c.End, Parallel: true}
				return rt.runUnit(&latch, report, func() error {
					return f(unitCtx, c.Begin, c.End)
				})
			},
		}
	}

	executor.NewPool(plan.Threads, logger).Execute(ctx, tasks)
	return rt.finish(&latch)
}
