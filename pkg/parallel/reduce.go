package parallel

import (
	"context"
	"log/slog"

	"github.com/aryankumar/forkjoin/internal/executor"
)

// ReduceFunc folds [begin, end) into a partial result starting from ident.
type ReduceFunc[T any] func(ctx context.Context, begin, end int64, ident T) (T, error)

// CombineFunc merges two partial results. It must be associative, and
// combine(ident, x) must equal x; it need not be commutative.
type CombineFunc[T any] func(a, b T) T

// Reduce folds [begin, end) on the Runtime attached to ctx, or Default.
// See [ReduceOn].
func Reduce[T any](ctx context.Context, begin, end, grainSize int64, ident T, f ReduceFunc[T], combine CombineFunc[T]) (T, error) {
	return ReduceOn(RuntimeFrom(ctx), ctx, begin, end, grainSize, ident, f, combine)
}

// ReduceOn splits [begin, end) into chunks of grainSize indices, folds each
// chunk independently with f starting from ident, and merges the partials in
// chunk order:
//
//	combine(...combine(combine(ident, p0), p1)..., pk)
//
// The result is the same for every thread count given an associative
// combine. The range is folded by a single call to f on the calling goroutine
// when it holds no more than grainSize indices, when only one thread is
// configured, or when ctx already belongs to a parallel region. A grain size
// of zero yields one chunk per index.
//
// If any chunk fails, ReduceOn skips the combine step and returns the zero
// value of T with the first captured error. Panics are handled as in
// [Runtime.For].
//
// Inside a chunk, [ThreadNum] reports the id of the pool worker running it,
// in [0, Plan.Threads). Workers pull chunks from a shared queue, so one
// worker may run several chunks and another none: the ids seen by a single
// call can be any subset of that range. Only [Runtime.For] guarantees every
// id in [0, Plan.Threads) is used exactly once.
func ReduceOn[T any](rt *Runtime, ctx context.Context, begin, end, grainSize int64, ident T, f ReduceFunc[T], combine CombineFunc[T]) (T, error) {
	var zero T
	if err := checkGrainSize(grainSize); err != nil {
		return zero, err
	}
	if begin >= end {
		return ident, nil
	}

	logger := rt.log()
	plan := PlanReduce(begin, end, grainSize, rt.MaxThreads(), InParallelRegion(ctx))
	rt.countCall(plan.Parallel)

	var latch failureLatch

	if !plan.Parallel {
		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("reducing range inline", "begin", begin, "end", end, "grain_size", grainSize)
		}
		unitCtx := WithThreadNum(ctx, 0)
		var result T
		rt.runUnit(&latch, UnitReport{Begin: begin, End: end}, func() error {
			var err error
			result, err = f(unitCtx, begin, end, ident)
			return err
		})
		if err := rt.finish(&latch); err != nil {
			return zero, err
		}
		return result, nil
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("dispatching reduction",
			"begin", begin,
			"end", end,
			"grain_size", plan.ChunkSize,
			"chunks", len(plan.Chunks),
			"threads", plan.Threads)
	}

	partials := make([]T, len(plan.Chunks))
	tasks := make([]executor.Task, len(plan.Chunks))
	for i, c := range plan.Chunks {
		tasks[i] = executor.Task{
			Index: c.Index,
			Begin: c.Begin,
			End:   c.End,
			Execute: func(ctx context.Context, workerID int) error {
				unitCtx := enterRegion(ctx, workerID)
				report := UnitReport{Chunk: c.Index, Thread: workerID, Begin: c.Begin, End: c.End, Parallel: true}
				return rt.runUnit(&latch, report, func() error {
					p, err := f(unitCtx, c.Begin, c.End, ident)
					if err != nil {
						return err
					}
					partials[c.Index] = p
					return nil
				})
			},
		}
	}

	executor.NewPool(plan.Threads, logger).Execute(ctx, tasks)
	if err := rt.finish(&latch); err != nil {
		return zero, err
	}

	result := ident
	for _, p := range partials {
		result = combine(result, p)
	}
	return result, nil
}
