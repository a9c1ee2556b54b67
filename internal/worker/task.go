package worker

import (
	"context"
	"errors"
)

// Task defines the interface that all periodic tasks must implement.
type Task interface {
	// Type returns the identifier used in logs and metrics.
	Type() string

	// Run executes one pass of the task. Use NewPermanentError to stop
	// the task from being scheduled again.
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc struct {
	Name string
	Fn   func(ctx context.Context) error
}

func (t TaskFunc) Type() string { return t.Name }

func (t TaskFunc) Run(ctx context.Context) error { return t.Fn(ctx) }

// PermanentError wraps an error to indicate the task should not run again.
type PermanentError struct {
	Err error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work with PermanentError.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError creates a new PermanentError that wraps the given error.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent checks if an error is a PermanentError.
// Returns true if the error (or any error it wraps) is a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
