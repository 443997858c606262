//go:build !forkjoin_debug

package parallel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegativeGrainSize(t *testing.T) {
	rt := NewRuntime(WithNumThreads(4))
	called := false

	err := rt.For(context.Background(), 0, 10, -1, func(ctx context.Context, b, e int64) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNegativeGrainSize)

	got, err := ReduceOn(rt, context.Background(), 0, 10, -5, 7,
		func(ctx context.Context, b, e int64, acc int) (int, error) {
			called = true
			return acc, nil
		},
		func(a, b int) int { return a + b })
	assert.ErrorIs(t, err, ErrNegativeGrainSize)
	assert.Zero(t, got)

	assert.False(t, called)
	assert.Zero(t, rt.Stats().Calls)
}
