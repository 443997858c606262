// Package parallel provides fork-join parallelism over contiguous index ranges.
//
// [For] runs a side-effecting function over sub-ranges of [begin, end);
// [Reduce] computes a partial value per sub-range and folds the partials,
// left to right in sub-range order, with an associative combiner seeded by
// an identity element. Both decide per call whether splitting is worth it:
// a range no larger than the grain size, a single configured thread, or a
// call made from inside another parallel unit runs sequentially on the
// calling goroutine.
//
// # Basic Usage
//
//	err := parallel.For(ctx, 0, int64(len(xs)), 4096, func(ctx context.Context, b, e int64) error {
//	    for i := b; i < e; i++ {
//	        xs[i] *= 2
//	    }
//	    return nil
//	})
//
//	sum, err := parallel.Reduce(ctx, 0, int64(len(xs)), 4096, 0.0,
//	    func(ctx context.Context, b, e int64, acc float64) (float64, error) {
//	        for i := b; i < e; i++ {
//	            acc += xs[i]
//	        }
//	        return acc, nil
//	    },
//	    func(a, b float64) float64 { return a + b },
//	)
//
// # Thread Identity
//
// Every unit of work receives a context carrying its logical thread id,
// readable with [ThreadNum]. Ids of units running concurrently within one
// call are distinct and lie in [0, threads). Outside any unit [ThreadNum]
// reports 0. [InParallelRegion] reports whether a context descends from a
// dispatched unit; nested calls observe it and run sequentially instead of
// fanning out again.
//
// # Sizing
//
// A [Runtime] owns the thread-count setting. It is resolved lazily, once,
// from its thread source (by default FORKJOIN_NUM_THREADS, then
// OMP_NUM_THREADS, then GOMAXPROCS) and cached until [Runtime.SetNumThreads]
// changes it. Package-level functions use the Runtime attached to ctx with
// [WithRuntime], or [Default].
//
// # Failures
//
// A unit that returns an error or panics reports it to a per-call latch;
// only the first report is kept. Sibling units are never cancelled. Once
// every unit has returned, the kept error is returned to the caller
// unchanged. A kept panic is re-raised as a [*PanicError] on the calling
// goroutine, or returned as an error when the Runtime was built with
// [WithPanicAsError]. Reduce skips the combine step after a failure.
package parallel
