package util

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error types for the forkjoin CLI
var (
	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRange indicates a range with begin > end or an unusable grain size
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidArgument indicates a malformed command-line argument
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCancelled indicates an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")

	// ErrWorkload indicates a benchmark workload reported a failure
	ErrWorkload = errors.New("workload failed")
)

// MultiError aggregates multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 { // Limit to first 10 errors in the message
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else if i == 10 {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewMultiError creates a new MultiError from a slice of errors
// It filters out nil errors
func NewMultiError(errors []error) *MultiError {
	m := &MultiError{
		Errors: make([]error, 0, len(errors)),
	}
	for _, err := range errors {
		if err != nil {
			m.Errors = append(m.Errors, err)
		}
	}
	return m
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Value != nil {
		return fmt.Sprintf("validation failed for field %q (value: %v): %s", v.Field, v.Value, v.Message)
	}
	return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsCancelled checks if an error is a cancellation error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case IsCancelled(err):
		return "Operation was cancelled."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid configuration. Please check your config file, FORKJOIN_* environment variables and command-line flags."
	case errors.Is(err, ErrInvalidRange):
		return "Invalid range. Begin must not exceed end and the grain size must be non-negative."
	case errors.Is(err, ErrInvalidArgument):
		return "Invalid argument. Run with --help to see the expected usage."
	default:
		return err.Error()
	}
}

// CombineErrors combines multiple errors into a single error
// Returns nil if all errors are nil
func CombineErrors(errors ...error) error {
	m := NewMultiError(errors)
	return m.ErrorOrNil()
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// ErrorWithContext adds context to an error message
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
// Context keys are printed in sorted order so messages are stable.
func (e *ErrorWithContext) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s: %v", k, e.Context[k]))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the wrapped error
func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// AddContext adds context information to an error
func AddContext(err error, key string, value interface{}) error {
	if err == nil {
		return nil
	}

	// If already an ErrorWithContext, add to existing context
	var ctxErr *ErrorWithContext
	if errors.As(err, &ctxErr) {
		ctxErr.Context[key] = value
		return ctxErr
	}

	return &ErrorWithContext{
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}
