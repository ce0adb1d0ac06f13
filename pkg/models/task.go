package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is waiting on dependencies.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusReady indicates all dependencies are satisfied.
	TaskStatusReady TaskStatus = "ready"
	// TaskStatusRunning indicates the task's worker is executing.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task finished and has a result.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed or a dependency failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusReady, TaskStatusRunning,
		TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is an end state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task is a unit of review work owned by exactly one worker.
type Task struct {
	// ID is the unique identifier for this task, stable for one run.
	ID string `json:"id" yaml:"id"`
	// Worker is the role of the worker that executes this task.
	Worker string `json:"worker" yaml:"worker"`
	// Description is the prompt template for this task. It may embed the
	// artifact placeholder and receives dependency results at dispatch time.
	Description string `json:"description" yaml:"description"`
	// ExpectedOutput describes the required output shape. It steers
	// generation and is never mechanically validated.
	ExpectedOutput string `json:"expected_output,omitempty" yaml:"expected_output,omitempty"`
	// DependsOn lists task IDs that must complete before this task starts.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status" yaml:"-"`
	// Result is the generated text, present only when completed.
	Result string `json:"result,omitempty" yaml:"-"`
	// Error contains the failure message if the task failed.
	Error string `json:"error,omitempty" yaml:"-"`
	// StartedAt is when the worker began executing, if it did.
	StartedAt time.Time `json:"started_at,omitempty" yaml:"-"`
	// CompletedAt is when the task reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"-"`
}
