package parallel

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aryankumar/forkjoin/internal/config"
)

// UnitReport describes one finished unit of work. It is passed to the hook
// registered with [WithOnUnitDone].
type UnitReport struct {
	// Chunk is the unit's index within its call's partition.
	Chunk int

	// Thread is the logical thread id the unit ran under.
	Thread int

	Begin int64
	End   int64

	// Parallel is false for units run on the calling goroutine.
	Parallel bool

	Duration time.Duration

	// Err is the unit's error or recovered *PanicError, nil on success.
	Err error
}

// Stats is a point-in-time snapshot of a Runtime's counters.
type Stats struct {
	Calls           int64 `json:"calls" yaml:"calls"`
	ParallelCalls   int64 `json:"parallelCalls" yaml:"parallelCalls"`
	SequentialCalls int64 `json:"sequentialCalls" yaml:"sequentialCalls"`
	Units           int64 `json:"units" yaml:"units"`
	Failures        int64 `json:"failures" yaml:"failures"`
	DroppedFailures int64 `json:"droppedFailures" yaml:"droppedFailures"`
}

// Option configures a [Runtime].
type Option func(*Runtime)

// WithNumThreads fixes the thread count instead of resolving it lazily.
// It panics if n <= 0.
func WithNumThreads(n int) Option {
	if n <= 0 {
		panic("parallel: WithNumThreads requires n > 0")
	}
	return func(rt *Runtime) {
		rt.source = func() int { return n }
	}
}

// WithThreadSource sets the function consulted, once, on first use to
// resolve the thread count. Results below 1 are treated as 1.
func WithThreadSource(fn func() int) Option {
	if fn == nil {
		panic("parallel: WithThreadSource requires non-nil function")
	}
	return func(rt *Runtime) {
		rt.source = fn
	}
}

// WithLogger sets the logger for dispatch decisions. By default the
// Runtime logs to slog.Default() as it is at the time of each call.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithPanicAsError makes calls return a captured [*PanicError] as an error
// instead of re-raising it on the calling goroutine.
func WithPanicAsError() Option {
	return func(rt *Runtime) {
		rt.panicAsErr = true
	}
}

// WithOnUnitDone registers a hook called after every unit of work. For
// parallel calls it runs on the worker goroutine, concurrently with other
// units, and must be safe for concurrent use.
func WithOnUnitDone(fn func(UnitReport)) Option {
	return func(rt *Runtime) {
		rt.onUnitDone = fn
	}
}

// Runtime holds the thread-count setting and per-process counters shared by
// For and Reduce calls. A Runtime is safe for concurrent use; calls keep no
// state in it beyond counters.
type Runtime struct {
	initOnce sync.Once
	threads  atomic.Int64
	source   func() int

	logger     *slog.Logger
	panicAsErr bool
	onUnitDone func(UnitReport)

	calls           atomic.Int64
	parallelCalls   atomic.Int64
	sequentialCalls atomic.Int64
	units           atomic.Int64
	failures        atomic.Int64
	droppedFailures atomic.Int64
}

// NewRuntime creates a Runtime. Without options the thread count is
// resolved on first use from FORKJOIN_NUM_THREADS, OMP_NUM_THREADS and
// GOMAXPROCS, in that order.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		source: func() int { return config.ResolveNumThreads(0) },
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide Runtime.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = NewRuntime()
	})
	return defaultRuntime
}

// MaxThreads returns the number of threads calls may use. The value is
// resolved on first use and cached.
func (rt *Runtime) MaxThreads() int {
	rt.initOnce.Do(func() {
		rt.threads.Store(int64(max(rt.source(), 1)))
	})
	return int(rt.threads.Load())
}

// SetNumThreads reconfigures the thread count. Calls already running keep
// the count they started with. It panics if n <= 0.
func (rt *Runtime) SetNumThreads(n int) {
	if n <= 0 {
		panic("parallel: SetNumThreads requires n > 0")
	}
	// Settle lazy init first so it cannot overwrite n later.
	rt.initOnce.Do(func() {})
	rt.threads.Store(int64(n))
	rt.log().Debug("thread count configured", "threads", n)
}

// Stats returns a snapshot of the Runtime's counters.
func (rt *Runtime) Stats() Stats {
	return Stats{
		Calls:           rt.calls.Load(),
		ParallelCalls:   rt.parallelCalls.Load(),
		SequentialCalls: rt.sequentialCalls.Load(),
		Units:           rt.units.Load(),
		Failures:        rt.failures.Load(),
		DroppedFailures: rt.droppedFailures.Load(),
	}
}

// Info describes the configuration a Runtime resolved.
type Info struct {
	MaxThreads         int    `json:"maxThreads" yaml:"maxThreads"`
	GOMAXPROCS         int    `json:"gomaxprocs" yaml:"gomaxprocs"`
	NumCPU             int    `json:"numCPU" yaml:"numCPU"`
	EnvNumThreads      string `json:"envNumThreads" yaml:"envNumThreads"`
	EnvOMPNumThreads   string `json:"envOMPNumThreads" yaml:"envOMPNumThreads"`
	GoVersion          string `json:"goVersion" yaml:"goVersion"`
	DebugPreconditions bool   `json:"debugPreconditions" yaml:"debugPreconditions"`
}

// Info reports the Runtime's thread count alongside the process settings
// it may have been resolved from.
func (rt *Runtime) Info() Info {
	forkjoinEnv, ompEnv := config.LookupEnvThreads()
	return Info{
		MaxThreads:         rt.MaxThreads(),
		GOMAXPROCS:         runtime.GOMAXPROCS(0),
		NumCPU:             runtime.NumCPU(),
		EnvNumThreads:      forkjoinEnv,
		EnvOMPNumThreads:   ompEnv,
		GoVersion:          runtime.Version(),
		DebugPreconditions: debugPreconditions,
	}
}

// String renders the info as an indented report.
func (i Info) String() string {
	env := func(v string) string {
		if v == "" {
			return "[not set]"
		}
		return v
	}

	var sb strings.Builder
	sb.WriteString("forkjoin runtime\n")
	sb.WriteString(fmt.Sprintf("  max threads:          %d\n", i.MaxThreads))
	sb.WriteString(fmt.Sprintf("  GOMAXPROCS:           %d\n", i.GOMAXPROCS))
	sb.WriteString(fmt.Sprintf("  NumCPU:               %d\n", i.NumCPU))
	sb.WriteString(fmt.Sprintf("  %s: %s\n", config.EnvNumThreads, env(i.EnvNumThreads)))
	sb.WriteString(fmt.Sprintf("  %s:      %s\n", config.EnvOMPNumThreads, env(i.EnvOMPNumThreads)))
	sb.WriteString(fmt.Sprintf("  Go version:           %s\n", i.GoVersion))
	sb.WriteString(fmt.Sprintf("  debug preconditions:  %t", i.DebugPreconditions))
	return sb.String()
}

// MaxThreads returns Default().MaxThreads().
func MaxThreads() int {
	return Default().MaxThreads()
}

// SetNumThreads calls Default().SetNumThreads(n).
func SetNumThreads(n int) {
	Default().SetNumThreads(n)
}

func (rt *Runtime) log() *slog.Logger {
	if rt.logger != nil {
		return rt.logger
	}
	return slog.Default()
}

// runUnit runs fn as one unit of work and reports a returned error or a
// recovered panic to latch.
func (rt *Runtime) runUnit(latch *failureLatch, report UnitReport, fn func() error) error {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = newPanicError(r)
			}
		}()
		return fn()
	}()

	rt.units.Add(1)
	if err != nil {
		rt.failures.Add(1)
		latch.tryCapture(err)
	}

	if rt.onUnitDone != nil {
		report.Duration = time.Since(start)
		report.Err = err
		rt.onUnitDone(report)
	}
	return err
}

// finish translates a call's captured failure into the caller's idiom: a
// returned error, or a re-raised panic.
func (rt *Runtime) finish(latch *failureLatch) error {
	rt.droppedFailures.Add(latch.droppedCount())

	err := latch.drain()
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PanicError); ok && !rt.panicAsErr {
		panic(pe)
	}
	return err
}

func (rt *Runtime) countCall(parallel bool) {
	rt.calls.Add(1)
	if parallel {
		rt.parallelCalls.Add(1)
	} else {
		rt.sequentialCalls.Add(1)
	}
}
