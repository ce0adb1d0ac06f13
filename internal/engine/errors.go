package engine

import (
	"errors"
	"fmt"
)

// ErrRunCancelled indicates the run was cancelled by the caller. It is a
// distinct outcome from failure; partial results are not guaranteed
// consistent.
var ErrRunCancelled = errors.New("run cancelled")

// RunError is the run-level failure returned when the terminal task (or any
// of its ancestors) fails. It names the originating task — the first failure
// on the terminal task's ancestry — rather than every downstream casualty.
type RunError struct {
	// RunID identifies the failed run.
	RunID string
	// TaskID is the root-cause task.
	TaskID string
	// Worker is the role that owned the root-cause task.
	Worker string
	// Err is the underlying worker failure.
	Err error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("run %s failed: task %q (%s): %v", e.RunID, e.TaskID, e.Worker, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}
