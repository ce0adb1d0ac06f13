package worker

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// stubClient is a scripted inference collaborator for tests.
type stubClient struct {
	calls   atomic.Int64
	respond func(call int64) (string, error)
}

func (s *stubClient) Generate(ctx context.Context, persona, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.respond(s.calls.Add(1))
}

func testWorker() models.Worker {
	return models.Worker{Role: "Security Analyst", Goal: "find vulnerabilities"}
}

func testTask() *models.Task {
	return &models.Task{ID: "security", Worker: "Security Analyst", Description: "review"}
}

func TestExecuteSuccess(t *testing.T) {
	client := &stubClient{respond: func(int64) (string, error) { return "findings", nil }}
	e := NewExecutor(client, Config{MaxAttempts: 3})

	result, err := e.Execute(context.Background(), testWorker(), testTask(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "findings" {
		t.Errorf("expected findings, got %q", result)
	}
	if client.calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", client.calls.Load())
	}
}

func TestExecuteEmptyResultFails(t *testing.T) {
	client := &stubClient{respond: func(int64) (string, error) { return "", nil }}
	e := NewExecutor(client, Config{MaxAttempts: 3})

	_, err := e.Execute(context.Background(), testWorker(), testTask(), "prompt")
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Kind != FailureEmptyResult {
		t.Errorf("expected empty_result failure, got %s", failure.Kind)
	}
	if failure.Worker != "Security Analyst" {
		t.Errorf("expected worker identity on failure, got %q", failure.Worker)
	}
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	client := &stubClient{respond: func(call int64) (string, error) {
		if call < 3 {
			return "", &anthropic.Error{StatusCode: 429}
		}
		return "recovered", nil
	}}
	e := NewExecutor(client, Config{MaxAttempts: 3, BackoffBase: time.Millisecond})

	result, err := e.Execute(context.Background(), testWorker(), testTask(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "recovered" {
		t.Errorf("expected recovered, got %q", result)
	}
	if client.calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", client.calls.Load())
	}
}

func TestExecutePermanentErrorNotRetried(t *testing.T) {
	client := &stubClient{respond: func(int64) (string, error) {
		return "", &anthropic.Error{StatusCode: 400}
	}}
	e := NewExecutor(client, Config{MaxAttempts: 5, BackoffBase: time.Millisecond})

	_, err := e.Execute(context.Background(), testWorker(), testTask(), "prompt")
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Attempts != 1 {
		t.Errorf("expected 1 attempt for permanent error, got %d", failure.Attempts)
	}
	if client.calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", client.calls.Load())
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	client := &stubClient{respond: func(int64) (string, error) {
		return "", errors.New("connection reset")
	}}
	e := NewExecutor(client, Config{MaxAttempts: 3, BackoffBase: time.Millisecond})

	_, err := e.Execute(context.Background(), testWorker(), testTask(), "prompt")
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Kind != FailureCollaborator {
		t.Errorf("expected collaborator_error, got %s", failure.Kind)
	}
	if failure.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", failure.Attempts)
	}
}

func TestExecuteTimeoutIsWorkerFailure(t *testing.T) {
	client := &stubClient{respond: func(int64) (string, error) {
		return "", context.DeadlineExceeded
	}}
	e := NewExecutor(client, Config{MaxAttempts: 2, BackoffBase: time.Millisecond, CallTimeout: time.Second})

	_, err := e.Execute(context.Background(), testWorker(), testTask(), "prompt")
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Kind != FailureTimeout {
		t.Errorf("expected timeout failure, got %s", failure.Kind)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	client := &stubClient{respond: func(int64) (string, error) { return "x", nil }}
	e := NewExecutor(client, Config{MaxAttempts: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, testWorker(), testTask(), "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if client.calls.Load() != 0 {
		t.Errorf("expected no calls after cancellation, got %d", client.calls.Load())
	}
}

func TestBuildPromptSubstitutesArtifact(t *testing.T) {
	prompt := BuildPrompt("Review this:\n"+ArtifactPlaceholder, "a report", "func main() {}", nil)
	if !strings.Contains(prompt, "func main() {}") {
		t.Error("expected artifact in prompt")
	}
	if strings.Contains(prompt, ArtifactPlaceholder) {
		t.Error("expected placeholder to be replaced")
	}
	if !strings.Contains(prompt, "Expected output:\na report") {
		t.Error("expected output contract in prompt")
	}
}

func TestBuildPromptAppendsArtifactWithoutPlaceholder(t *testing.T) {
	prompt := BuildPrompt("Review the code.", "", "some code", nil)
	if !strings.Contains(prompt, "```\nsome code\n```") {
		t.Errorf("expected fenced artifact, got %q", prompt)
	}
}

func TestBuildPromptInjectsDependencies(t *testing.T) {
	deps := []Dependency{
		{TaskID: "quality", Worker: "Code Review Engineer", Result: "quality findings"},
		{TaskID: "security", Worker: "Security Analyst", Result: "security findings"},
	}
	prompt := BuildPrompt("Make a decision.", "", "", deps)

	for _, dep := range deps {
		if !strings.Contains(prompt, dep.Result) {
			t.Errorf("expected result from %s in prompt", dep.TaskID)
		}
		if !strings.Contains(prompt, dep.Worker) {
			t.Errorf("expected worker delimiter for %s in prompt", dep.Worker)
		}
	}
	// Each result appears exactly once.
	if strings.Count(prompt, "quality findings") != 1 {
		t.Error("expected quality findings exactly once")
	}
}
