// Package executor provides the worker-scheduling runtime underneath forkjoin.
//
// A Pool runs a batch of range tasks on a bounded team of goroutines and
// blocks until every task has finished. Workers pull tasks from a queue, so
// a batch may hold more tasks than the pool has workers.
//
// # Basic Usage
//
//	pool := executor.NewPool(4, logger)
//
//	tasks := []executor.Task{
//	    {Index: 0, Begin: 0, End: 50, Execute: func(ctx context.Context, worker int) error {
//	        return process(0, 50)
//	    }},
//	    {Index: 1, Begin: 50, End: 100, Execute: func(ctx context.Context, worker int) error {
//	        return process(50, 100)
//	    }},
//	}
//
//	results := pool.Execute(context.Background(), tasks)
//
// # Progress Reporting
//
//	results := pool.ExecuteWithProgress(ctx, tasks, func(completed, total int) {
//	    fmt.Printf("Progress: %d/%d\n", completed, total)
//	})
//
// # Result Aggregation
//
//	failed := executor.FilterFailed(results)
//	summary := executor.Summarize(results)
//
// # Concurrency Guarantees
//
//   - At most min(workers, len(tasks)) goroutines per batch
//   - Worker ids within one batch are distinct and lie in [0, workers)
//   - Execute does not return before every task has returned
//   - Tasks are never cancelled or skipped once queued
//   - Results are indexed like the submitted tasks, regardless of completion order
//
// Panics are not recovered here; callers wrap Execute functions when a
// panic must not take down the process.
package executor
