package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/aryankumar/forkjoin/internal/executor"
	"github.com/aryankumar/forkjoin/internal/output"
	"github.com/aryankumar/forkjoin/internal/util"
	"github.com/aryankumar/forkjoin/pkg/parallel"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	benchKindFor    = "for"
	benchKindReduce = "reduce"
)

var errInjected = errors.New("injected failure")

type benchOptions struct {
	kind     string
	elements int64
	grain    int64
	repeat   int
	failAt   int64
}

// benchReport is the machine-readable result of one bench run
type benchReport struct {
	RunID     string               `json:"runId" yaml:"runId"`
	Kind      string               `json:"kind" yaml:"kind"`
	Elements  int64                `json:"elements" yaml:"elements"`
	GrainSize int64                `json:"grainSize" yaml:"grainSize"`
	Threads   int                  `json:"threads" yaml:"threads"`
	Repeats   int                  `json:"repeats" yaml:"repeats"`
	Best      time.Duration        `json:"best" yaml:"best"`
	Mean      time.Duration        `json:"mean" yaml:"mean"`
	Result    *float64             `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string               `json:"error,omitempty" yaml:"error,omitempty"`
	Chunks    []output.ChunkRecord `json:"chunks" yaml:"chunks"`
	Stats     parallel.Stats       `json:"stats" yaml:"stats"`

	results []executor.Result
}

// unitCollector gathers the unit reports of one run; the hook it feeds runs
// concurrently on worker goroutines
type unitCollector struct {
	mu      sync.Mutex
	reports []parallel.UnitReport
}

func (c *unitCollector) add(r parallel.UnitReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

func (c *unitCollector) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = c.reports[:0]
}

// results converts the collected reports to executor results in chunk order
func (c *unitCollector) results() []executor.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]executor.Result, len(c.reports))
	for i, r := range c.reports {
		results[i] = executor.Result{
			Index:    r.Chunk,
			Worker:   r.Thread,
			Begin:    r.Begin,
			End:      r.End,
			Error:    r.Err,
			Duration: r.Duration,
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// newBenchCmd creates the bench command
func newBenchCmd(a *app) *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic workload through For or Reduce",
		Long: `Run a synthetic numeric workload over [0, elements) with the parallel
runtime and report how the range was split, which thread ran each chunk and
how long each chunk took.

--fail-at makes the chunk covering that index fail, to show how a failure in
one chunk surfaces once every chunk has finished.`,
		Example: `  # Square roots of 4M elements with the configured grain size
  forkjoin bench

  # Sum reduction, 5 repetitions, 8 threads, JSON report
  forkjoin bench --kind reduce --repeat 5 -t 8 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("elements") {
				opts.elements = a.cfg.Defaults.Elements
			}
			if !cmd.Flags().Changed("grain") {
				opts.grain = a.cfg.Defaults.GrainSize
			}
			return runBench(cmd.Context(), cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", benchKindFor, "workload kind (for, reduce)")
	cmd.Flags().Int64Var(&opts.elements, "elements", 0, "number of elements (default from config)")
	cmd.Flags().Int64Var(&opts.grain, "grain", 0, "grain size (default from config)")
	cmd.Flags().IntVar(&opts.repeat, "repeat", 1, "number of timed repetitions")
	cmd.Flags().Int64Var(&opts.failAt, "fail-at", -1, "make the chunk covering this index fail")
	_ = cmd.RegisterFlagCompletionFunc("kind", cobra.FixedCompletions(
		[]string{benchKindFor, benchKindReduce}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func validateBenchOptions(opts *benchOptions) error {
	var errs util.MultiError
	if opts.kind != benchKindFor && opts.kind != benchKindReduce {
		errs.Add(util.NewValidationError("kind", opts.kind, "must be one of for, reduce"))
	}
	if opts.elements < 0 {
		errs.Add(util.NewValidationError("elements", opts.elements, "must be non-negative"))
	}
	if opts.grain < 0 {
		errs.Add(util.NewValidationError("grain", opts.grain, "must be non-negative"))
	}
	if opts.repeat < 1 {
		errs.Add(util.NewValidationError("repeat", opts.repeat, "must be at least 1"))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidArgument, err)
	}
	return nil
}

func runBench(ctx context.Context, cmd *cobra.Command, a *app, opts *benchOptions) error {
	if err := validateBenchOptions(opts); err != nil {
		return err
	}

	formatter, err := a.formatter(output.WithWide(opts.failAt >= 0))
	if err != nil {
		return err
	}

	collector := &unitCollector{}
	rt := a.runtime(parallel.WithOnUnitDone(collector.add))
	ctx = parallel.WithRuntime(ctx, rt)

	report := &benchReport{
		RunID:     uuid.NewString(),
		Kind:      opts.kind,
		Elements:  opts.elements,
		GrainSize: opts.grain,
		Threads:   rt.MaxThreads(),
		Best:      time.Duration(math.MaxInt64),
	}

	logger := slog.Default().With("run_id", report.RunID)
	logger.Debug("benchmark started",
		"kind", opts.kind,
		"elements", opts.elements,
		"grain_size", opts.grain,
		"threads", report.Threads,
		"repeat", opts.repeat)

	data := make([]float64, opts.elements)
	var total time.Duration
	var runErr error

	for i := 0; i < opts.repeat; i++ {
		if ctx.Err() != nil {
			return util.WrapErrorf(context.Cause(ctx), "bench interrupted after %d of %d runs", i, opts.repeat)
		}

		collector.reset()
		start := time.Now()
		result, err := runWorkload(ctx, opts, data)
		elapsed := time.Since(start)

		total += elapsed
		report.Repeats++
		report.Best = min(report.Best, elapsed)
		if opts.kind == benchKindReduce && err == nil {
			report.Result = &result
		}

		logger.Debug("benchmark run finished", "run", i, "elapsed", elapsed, "error", err)

		if err != nil {
			runErr = err
			break
		}
	}

	report.Mean = total / time.Duration(report.Repeats)
	report.results = collector.results()
	report.Chunks = output.NewChunkRecords(report.results)
	report.Stats = rt.Stats()
	if runErr != nil {
		report.Error = runErr.Error()
	}

	logger.Debug("benchmark finished", "summary", executor.Summarize(report.results).String())
	if executor.HasErrors(report.results) {
		for _, r := range executor.FilterFailed(report.results) {
			logger.Debug("chunk failed", "chunk", r.Index, "thread", r.Worker, "range", fmt.Sprintf("[%d,%d)", r.Begin, r.End), "error", r.Error)
		}
	}

	if err := writeBenchReport(cmd, a, formatter, report); err != nil {
		return fmt.Errorf("failed to write bench report: %w", err)
	}

	if runErr != nil {
		return util.AddContext(fmt.Errorf("%w: %w", util.ErrWorkload, runErr), "run_id", report.RunID)
	}
	return nil
}

// runWorkload runs one repetition of the selected workload
func runWorkload(ctx context.Context, opts *benchOptions, data []float64) (float64, error) {
	failing := func(begin, end int64) error {
		if opts.failAt >= begin && opts.failAt < end {
			return fmt.Errorf("%w at index %d", errInjected, opts.failAt)
		}
		return nil
	}

	switch opts.kind {
	case benchKindReduce:
		return parallel.Reduce(ctx, 0, opts.elements, opts.grain, 0.0,
			func(ctx context.Context, begin, end int64, acc float64) (float64, error) {
				if err := failing(begin, end); err != nil {
					return acc, err
				}
				for i := begin; i < end; i++ {
					acc += math.Sqrt(float64(i))
				}
				return acc, nil
			},
			func(x, y float64) float64 { return x + y },
		)
	default:
		err := parallel.For(ctx, 0, opts.elements, opts.grain, func(ctx context.Context, begin, end int64) error {
			if err := failing(begin, end); err != nil {
				return err
			}
			for i := begin; i < end; i++ {
				data[i] = math.Sqrt(float64(i))
			}
			return nil
		})
		return 0, err
	}
}

func writeBenchReport(cmd *cobra.Command, a *app, formatter output.Formatter, report *benchReport) error {
	out := cmd.OutOrStdout()
	if !a.isTable() {
		return formatter.Format(out, report)
	}

	fmt.Fprintf(out, "Run %s: %s over %d elements, grain=%d, threads=%d\n",
		report.RunID, report.Kind, report.Elements, report.GrainSize, report.Threads)
	fmt.Fprintf(out, "Best %s, mean %s over %d runs\n",
		report.Best.Round(time.Microsecond), report.Mean.Round(time.Microsecond), report.Repeats)
	if report.Result != nil {
		fmt.Fprintf(out, "Result %g\n", *report.Result)
	}
	fmt.Fprintln(out)

	if err := formatter.FormatChunks(out, report.results); err != nil {
		return err
	}

	byThread := executor.GroupByWorker(report.results)
	if len(byThread) > 0 {
		fmt.Fprint(out, "Chunks per thread:")
		for _, id := range executor.Workers(report.results) {
			fmt.Fprintf(out, " %d=%d", id, len(byThread[id]))
		}
		fmt.Fprintln(out)
	}

	s := report.Stats
	fmt.Fprintf(out, "Runtime: %d calls (%d parallel, %d sequential), %d units, %d failures, %d dropped\n",
		s.Calls, s.ParallelCalls, s.SequentialCalls, s.Units, s.Failures, s.DroppedFailures)
	return nil
}
