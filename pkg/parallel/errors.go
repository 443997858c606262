package parallel

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrNegativeGrainSize is returned when For or Reduce receive a grain size
// below zero. Builds tagged forkjoin_debug panic instead.
var ErrNegativeGrainSize = errors.New("parallel: grain size must be non-negative")

// PanicError wraps a value recovered from a panicking unit of work together
// with the goroutine stack trace captured at the point of the panic.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the stack trace of the panicking goroutine.
	Stack string
}

// Error returns the panic value followed by the captured stack trace.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is an error, so errors.Is and
// errors.As see through a panic(err).
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *PanicError {
	// A panic re-raised by a nested call keeps its original stack.
	if pe, ok := v.(*PanicError); ok {
		return pe
	}
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}

func checkGrainSize(grainSize int64) error {
	if grainSize >= 0 {
		return nil
	}
	if debugPreconditions {
		panic(fmt.Sprintf("parallel: precondition violated: grain size %d < 0", grainSize))
	}
	return fmt.Errorf("%w: got %d", ErrNegativeGrainSize, grainSize)
}
