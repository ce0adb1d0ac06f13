package engine

import "time"

// EventType identifies the kind of engine event.
type EventType string

const (
	// EventTaskQueued fires when a task becomes ready and is dispatched.
	EventTaskQueued EventType = "task_queued"
	// EventTaskStarted fires when a task's worker begins executing.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted fires when a task finishes successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed fires when a task fails, directly or by propagation.
	EventTaskFailed EventType = "task_failed"
	// EventRunFinished fires once when the run reaches a terminal outcome.
	EventRunFinished EventType = "run_finished"
)

// Event describes a state change during a run. Events are emitted in
// completion order; independent tasks may complete in any relative order.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the affected task, empty for run-level events.
	TaskID string
	// Worker is the role executing the task, when relevant.
	Worker string
	// Message is a human-readable summary.
	Message string
	// Err carries the failure cause for task_failed events.
	Err error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// emitEvent delivers an event to the configured sink, if any. The sink is
// called synchronously from the run loop, so it must not block.
func (e *Engine) emitEvent(ev Event) {
	if e.onEvent == nil {
		return
	}
	ev.Timestamp = time.Now()
	e.onEvent(ev)
}
