// Package worker executes a single review task against the inference
// collaborator, with per-call timeouts and bounded retry for transient
// failures.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ShayCichocki/reviewcrew/internal/inference"
	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// FailureKind classifies why a worker invocation failed.
type FailureKind string

const (
	// FailureCollaborator covers errors returned by the inference collaborator.
	FailureCollaborator FailureKind = "collaborator_error"
	// FailureTimeout covers per-call deadline expiry.
	FailureTimeout FailureKind = "timeout"
	// FailureEmptyResult covers a successful call that produced no text.
	FailureEmptyResult FailureKind = "empty_result"
)

// Failure is a worker-level execution failure. The worker never substitutes
// a default result; the failure carries the worker identity and cause.
type Failure struct {
	// TaskID is the task whose execution failed.
	TaskID string
	// Worker is the role of the worker that failed.
	Worker string
	// Kind classifies the failure.
	Kind FailureKind
	// Attempts is how many invocations were made before giving up.
	Attempts int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("worker %q failed task %q after %d attempt(s) (%s): %v",
		f.Worker, f.TaskID, f.Attempts, f.Kind, f.Err)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Executor invokes workers against the inference collaborator. It is
// stateless apart from its configuration and safe for concurrent use.
type Executor struct {
	client inference.Client
	// callTimeout bounds each individual inference call. Zero means the
	// parent context's deadline (if any) is the only bound.
	callTimeout time.Duration
	// maxAttempts is the total number of invocations per task, including
	// the first. Minimum 1.
	maxAttempts int
	// backoffBase is the first retry delay; it doubles per attempt.
	backoffBase time.Duration
	debug       bool
}

// Config holds executor settings.
type Config struct {
	CallTimeout time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// NewExecutor creates an Executor over the given inference client.
func NewExecutor(client inference.Client, cfg Config) *Executor {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := cfg.BackoffBase
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &Executor{
		client:      client,
		callTimeout: cfg.CallTimeout,
		maxAttempts: maxAttempts,
		backoffBase: backoff,
		debug:       os.Getenv("REVIEWCREW_DEBUG") != "",
	}
}

// Execute runs one task with a fully-resolved prompt and returns the
// generated text. Transient collaborator errors are retried with exponential
// backoff up to the configured attempt budget; permanent errors, empty
// results, and context cancellation fail immediately.
func (e *Executor) Execute(ctx context.Context, w models.Worker, task *models.Task, prompt string) (string, error) {
	persona := w.Persona()
	backoff := e.backoffBase

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		result, err := e.invoke(ctx, persona, prompt)
		if err == nil {
			if result == "" {
				return "", &Failure{
					TaskID:   task.ID,
					Worker:   w.Role,
					Kind:     FailureEmptyResult,
					Attempts: attempt,
					Err:      errors.New("collaborator returned empty response"),
				}
			}
			return result, nil
		}
		lastErr = err

		// The run was cancelled; report cancellation, not a worker failure.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		kind := FailureCollaborator
		if errors.Is(err, context.DeadlineExceeded) {
			kind = FailureTimeout
		}

		retryable := kind == FailureTimeout || inference.IsTransient(err)
		if !retryable || attempt == e.maxAttempts {
			return "", &Failure{
				TaskID:   task.ID,
				Worker:   w.Role,
				Kind:     kind,
				Attempts: attempt,
				Err:      err,
			}
		}

		e.logf("[worker] %s: attempt %d/%d failed (%v), retrying in %s",
			task.ID, attempt, e.maxAttempts, err, backoff)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	// Unreachable: the loop always returns. Kept for the compiler.
	return "", lastErr
}

// invoke makes a single collaborator call under the per-call timeout.
func (e *Executor) invoke(ctx context.Context, persona, prompt string) (string, error) {
	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	return e.client.Generate(callCtx, persona, prompt)
}

func (e *Executor) logf(format string, args ...interface{}) {
	if e.debug {
		log.Printf(format, args...)
	}
}
