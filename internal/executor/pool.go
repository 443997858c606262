package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task represents a unit of work to be executed by the worker pool
// Each task covers one contiguous sub-range of an index space
type Task struct {
	// Index is the task's position in the submitted slice (the chunk number)
	Index int

	// Begin and End delimit the half-open sub-range this task covers
	Begin int64
	End   int64

	// Execute is the function to run for this task
	// workerID is the id of the worker goroutine running it, in [0, workers)
	Execute func(ctx context.Context, workerID int) error
}

// Result represents the outcome of executing a task
type Result struct {
	// Index is the index of the task this result belongs to
	Index int

	// Worker is the id of the worker that ran the task
	Worker int

	// Begin and End are copied from the task
	Begin int64
	End   int64

	// Error contains any error returned by the task (nil if successful)
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration
}

// Pool runs batches of tasks on a bounded team of worker goroutines
// A Pool holds no per-batch state, so one Pool may run several batches
// concurrently; each Execute call starts and joins its own team.
type Pool struct {
	// workers is the maximum number of concurrent workers per batch
	workers int

	// logger for structured logging
	logger *slog.Logger

	// running counts batches currently executing
	running atomic.Int32
}

// NewPool creates a new worker pool with the specified number of workers
// workers must be > 0, otherwise it defaults to 1
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		workers: workers,
		logger:  logger,
	}
}

// Execute runs all tasks using the worker pool pattern and blocks until every
// task has finished. Returns one result per task, indexed like tasks.
func (p *Pool) Execute(ctx context.Context, tasks []Task) []Result {
	return p.ExecuteWithProgress(ctx, tasks, nil)
}

// ExecuteWithProgress runs all tasks with progress reporting
// The progressFn callback is called after each task completes with (completed, total) counts
//
// Tasks are never cancelled: ctx is handed to every task for its values, but
// once queued each task runs to completion even if ctx is done.
func (p *Pool) ExecuteWithProgress(ctx context.Context, tasks []Task, progressFn func(completed, total int)) []Result {
	taskCount := len(tasks)
	if taskCount == 0 {
		p.logger.Debug("no tasks to execute")
		return []Result{}
	}

	for i, task := range tasks {
		if task.Execute == nil {
			panic(fmt.Sprintf("executor: task %d has no execute function", i))
		}
	}

	p.running.Add(1)
	defer p.running.Add(-1)

	// Don't create more workers than tasks
	workerCount := min(p.workers, taskCount)

	p.logger.Debug("starting task execution",
		"workers", workerCount,
		"tasks", taskCount)

	startTime := time.Now()

	// Buffer size = task count so queuing never blocks
	taskChan := make(chan taskWithIndex, taskCount)
	for i, task := range tasks {
		taskChan <- taskWithIndex{task: task, index: i}
	}
	close(taskChan)

	// Each task writes only its own slot
	results := make([]Result, taskCount)

	var completed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.worker(ctx, i, taskChan, results, &wg, &completed, taskCount, progressFn)
	}
	wg.Wait()

	p.logger.Debug("task execution completed",
		"total", taskCount,
		"failed", CountFailed(results),
		"duration", time.Since(startTime))

	return results
}

// worker is the worker goroutine that processes tasks from the task channel
func (p *Pool) worker(
	ctx context.Context,
	workerID int,
	taskChan <-chan taskWithIndex,
	results []Result,
	wg *sync.WaitGroup,
	completed *atomic.Int32,
	total int,
	progressFn func(completed, total int),
) {
	defer wg.Done()

	for item := range taskChan {
		results[item.index] = p.executeTask(ctx, workerID, item.task)

		completedCount := completed.Add(1)
		if progressFn != nil {
			progressFn(int(completedCount), total)
		}
	}
}

// executeTask executes a single task and returns the result
func (p *Pool) executeTask(ctx context.Context, workerID int, task Task) Result {
	startTime := time.Now()

	err := task.Execute(ctx, workerID)
	duration := time.Since(startTime)

	if err != nil {
		p.logger.Warn("task failed",
			"index", task.Index,
			"worker_id", workerID,
			"error", err,
			"duration", duration)
	}

	return Result{
		Index:    task.Index,
		Worker:   workerID,
		Begin:    task.Begin,
		End:      task.End,
		Error:    err,
		Duration: duration,
	}
}

// IsRunning returns true if the pool is currently executing at least one batch
func (p *Pool) IsRunning() bool {
	return p.running.Load() > 0
}

// WorkerCount returns the number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workers
}

// taskWithIndex pairs a task with its original index for result ordering
type taskWithIndex struct {
	task  Task
	index int
}
