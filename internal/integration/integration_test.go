package integration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aryankumar/forkjoin/internal/config"
	"github.com/aryankumar/forkjoin/internal/executor"
	"github.com/aryankumar/forkjoin/internal/output"
	"github.com/aryankumar/forkjoin/pkg/parallel"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestFullWorkflow runs a configured workload from config file to report
func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	configPath := filepath.Join(t.TempDir(), "forkjoin.yaml")
	content := []byte("threads:\n  num: 4\ndefaults:\n  grainSize: 500\n  elements: 10000\n")
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	manager := config.NewManager(configPath)
	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	var mu sync.Mutex
	var results []executor.Result
	rt := parallel.NewRuntime(
		parallel.WithThreadSource(manager.NumThreads),
		parallel.WithLogger(quietLogger()),
		parallel.WithOnUnitDone(func(r parallel.UnitReport) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, executor.Result{
				Index: r.Chunk, Worker: r.Thread, Begin: r.Begin, End: r.End, Error: r.Err, Duration: r.Duration,
			})
		}),
	)
	ctx := parallel.WithRuntime(context.Background(), rt)

	if rt.MaxThreads() != 4 {
		t.Fatalf("expected 4 threads from config, got %d", rt.MaxThreads())
	}

	n := cfg.Defaults.Elements
	data := make([]int64, n)
	err = parallel.For(ctx, 0, n, cfg.Defaults.GrainSize, func(ctx context.Context, b, e int64) error {
		for i := b; i < e; i++ {
			data[i] = i
		}
		return nil
	})
	if err != nil {
		t.Fatalf("For failed: %v", err)
	}

	sum, err := parallel.Reduce(ctx, 0, n, cfg.Defaults.GrainSize, int64(0),
		func(ctx context.Context, b, e int64, acc int64) (int64, error) {
			for i := b; i < e; i++ {
				acc += data[i]
			}
			return acc, nil
		},
		func(a, b int64) int64 { return a + b },
	)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if want := n * (n - 1) / 2; sum != want {
		t.Errorf("sum = %d, want %d", sum, want)
	}

	// 4 For chunks plus 20 Reduce chunks
	summary := executor.Summarize(results)
	if summary.Total != 24 {
		t.Errorf("expected 24 units, got %d", summary.Total)
	}
	if summary.Elements != 2*n {
		t.Errorf("expected %d elements processed, got %d", 2*n, summary.Elements)
	}
	if summary.Workers > 4 {
		t.Errorf("expected at most 4 distinct threads, got %d", summary.Workers)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Begin < results[j].Begin })
	var buf bytes.Buffer
	if err := output.NewFormatter(output.FormatTable, output.WithNoColor(true)).FormatChunks(&buf, results); err != nil {
		t.Fatalf("failed to format results: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("24 successful")) {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}

// TestConcurrentCallers shares one Runtime between independent callers
func TestConcurrentCallers(t *testing.T) {
	rt := parallel.NewRuntime(parallel.WithNumThreads(4), parallel.WithLogger(quietLogger()))

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			got, err := parallel.ReduceOn(rt, context.Background(), 0, 1000, 10, int64(c),
				func(ctx context.Context, b, e int64, acc int64) (int64, error) {
					for i := b; i < e; i++ {
						acc++
					}
					return acc, nil
				},
				func(a, b int64) int64 { return a + b - int64(c) },
			)
			if err != nil {
				errs <- err
				return
			}
			if got != 1000+int64(c) {
				errs <- errors.New("caller observed another caller's partials")
			}
		}(c)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	stats := rt.Stats()
	if stats.ParallelCalls != callers {
		t.Errorf("expected %d parallel calls, got %d", callers, stats.ParallelCalls)
	}
	if stats.Units != callers*100 {
		t.Errorf("expected %d units, got %d", callers*100, stats.Units)
	}
}

// TestCancelledContextStillJoins checks that a done context does not stop
// dispatched units
func TestCancelledContextStillJoins(t *testing.T) {
	rt := parallel.NewRuntime(parallel.WithNumThreads(4), parallel.WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	covered := int64(0)
	err := rt.For(ctx, 0, 400, 10, func(ctx context.Context, b, e int64) error {
		mu.Lock()
		defer mu.Unlock()
		covered += e - b
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if covered != 400 {
		t.Errorf("expected all 400 indices to run, got %d", covered)
	}
}

// TestExecutorProgressReporting drives the executor pool directly
func TestExecutorProgressReporting(t *testing.T) {
	pool := executor.NewPool(3, quietLogger())

	plan := parallel.PlanReduce(0, 100, 10, 3, false)
	tasks := make([]executor.Task, len(plan.Chunks))
	for i, c := range plan.Chunks {
		tasks[i] = executor.Task{
			Index: c.Index,
			Begin: c.Begin,
			End:   c.End,
			Execute: func(ctx context.Context, workerID int) error {
				return nil
			},
		}
	}

	var mu sync.Mutex
	var progress []int
	results := pool.ExecuteWithProgress(context.Background(), tasks, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 10 {
			t.Errorf("total = %d, want 10", total)
		}
		progress = append(progress, completed)
	})

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	sort.Ints(progress)
	for i, p := range progress {
		if p != i+1 {
			t.Errorf("progress[%d] = %d, want %d", i, p, i+1)
		}
	}
	if executor.Elements(results) != 100 {
		t.Errorf("expected 100 elements, got %d", executor.Elements(results))
	}
}
