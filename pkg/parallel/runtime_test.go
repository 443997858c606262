package parallel

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aryankumar/forkjoin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_MaxThreadsResolvesOnce(t *testing.T) {
	var calls int
	rt := NewRuntime(WithThreadSource(func() int {
		calls++
		return 3
	}))
	assert.Zero(t, calls, "thread source is consulted lazily")

	assert.Equal(t, 3, rt.MaxThreads())
	assert.Equal(t, 3, rt.MaxThreads())
	assert.Equal(t, 1, calls)
}

func TestRuntime_MaxThreadsConcurrentFirstUse(t *testing.T) {
	var mu sync.Mutex
	var calls int
	rt := NewRuntime(WithThreadSource(func() int {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return 6
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, 6, rt.MaxThreads())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestRuntime_ThreadSourceClamped(t *testing.T) {
	rt := NewRuntime(WithThreadSource(func() int { return 0 }))
	assert.Equal(t, 1, rt.MaxThreads())
}

func TestRuntime_DefaultSourceHonoursEnv(t *testing.T) {
	t.Setenv(config.EnvNumThreads, "5")
	assert.Equal(t, 5, NewRuntime().MaxThreads())
}

func TestRuntime_SetNumThreads(t *testing.T) {
	var consulted bool
	rt := NewRuntime(WithThreadSource(func() int {
		consulted = true
		return 2
	}))

	rt.SetNumThreads(7)
	assert.Equal(t, 7, rt.MaxThreads())
	assert.False(t, consulted, "explicit setting wins over lazy resolution")

	rt.SetNumThreads(1)
	assert.Equal(t, 1, rt.MaxThreads())

	assert.Panics(t, func() { rt.SetNumThreads(0) })
	assert.Panics(t, func() { rt.SetNumThreads(-3) })
}

func TestRuntime_SetNumThreadsChangesPartition(t *testing.T) {
	rt := NewRuntime(WithNumThreads(4))
	count := func() int64 {
		before := rt.Stats().Units
		require.NoError(t, rt.For(context.Background(), 0, 100, 0, func(ctx context.Context, b, e int64) error {
			return nil
		}))
		return rt.Stats().Units - before
	}

	assert.Equal(t, int64(4), count())
	rt.SetNumThreads(2)
	assert.Equal(t, int64(2), count())
	rt.SetNumThreads(1)
	assert.Equal(t, int64(1), count())
}

func TestOptions_Panic(t *testing.T) {
	assert.Panics(t, func() { WithNumThreads(0) })
	assert.Panics(t, func() { WithThreadSource(nil) })
}

func TestRuntime_Stats(t *testing.T) {
	rt := NewRuntime(WithNumThreads(2))
	ctx := context.Background()
	nop := func(ctx context.Context, b, e int64) error { return nil }

	require.NoError(t, rt.For(ctx, 0, 10, 0, nop))
	require.NoError(t, rt.For(ctx, 0, 10, 100, nop))
	require.NoError(t, rt.For(ctx, 0, 0, 0, nop))

	assert.Equal(t, Stats{
		Calls:           2,
		ParallelCalls:   1,
		SequentialCalls: 1,
		Units:           3,
	}, rt.Stats())
}

func TestRuntime_Info(t *testing.T) {
	t.Setenv(config.EnvNumThreads, "")
	t.Setenv(config.EnvOMPNumThreads, "3")

	rt := NewRuntime(WithNumThreads(2))
	info := rt.Info()
	assert.Equal(t, 2, info.MaxThreads)
	assert.Equal(t, "", info.EnvNumThreads)
	assert.Equal(t, "3", info.EnvOMPNumThreads)
	assert.Positive(t, info.NumCPU)
	assert.Positive(t, info.GOMAXPROCS)

	s := info.String()
	assert.Contains(t, s, "max threads:          2")
	assert.Contains(t, s, config.EnvNumThreads+": [not set]")
	assert.Contains(t, s, config.EnvOMPNumThreads+":      3")
}

func TestRuntime_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt := NewRuntime(WithNumThreads(2), WithLogger(logger))

	require.NoError(t, rt.For(context.Background(), 0, 10, 0, func(ctx context.Context, b, e int64) error {
		return nil
	}))
	assert.Contains(t, buf.String(), "dispatching range")
	assert.Contains(t, buf.String(), "chunk_size=5")
}
