// Package engine drives one review run to completion: it validates the task
// graph, dispatches ready tasks concurrently, propagates dependency results
// into dependent prompts, and reports the terminal task's output or the
// first failure on its ancestry.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ShayCichocki/reviewcrew/internal/graph"
	"github.com/ShayCichocki/reviewcrew/internal/worker"
	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// TaskExecutor runs one task with a fully-resolved prompt. The production
// implementation is worker.Executor; tests substitute stubs.
type TaskExecutor interface {
	Execute(ctx context.Context, w models.Worker, task *models.Task, prompt string) (string, error)
}

// Options configures a run.
type Options struct {
	// MaxInFlight bounds concurrent task executions. Zero means unbounded:
	// the collaborator's own rate limits are the real bottleneck.
	MaxInFlight int64
	// OnEvent receives engine events synchronously from the run loop.
	// It must not block.
	OnEvent func(Event)
}

// Engine schedules and executes task graphs. An Engine is reusable across
// runs; all per-run state lives in Run.
type Engine struct {
	exec        TaskExecutor
	workers     map[string]models.Worker
	maxInFlight int64
	onEvent     func(Event)
	debug       bool
}

// New creates an Engine over the given executor and worker set.
func New(exec TaskExecutor, workers []models.Worker, opts Options) *Engine {
	byRole := make(map[string]models.Worker, len(workers))
	for _, w := range workers {
		byRole[w.Role] = w
	}
	return &Engine{
		exec:        exec,
		workers:     byRole,
		maxInFlight: opts.MaxInFlight,
		onEvent:     opts.OnEvent,
		debug:       os.Getenv("REVIEWCREW_DEBUG") != "",
	}
}

// RunStatus is the terminal outcome of a run.
type RunStatus string

const (
	// RunCompleted means the terminal task produced a result.
	RunCompleted RunStatus = "completed"
	// RunFailed means the terminal task or one of its ancestors failed.
	RunFailed RunStatus = "failed"
	// RunCancelled means the caller cancelled the run.
	RunCancelled RunStatus = "cancelled"
)

// RunResult is the outcome of one orchestration run.
type RunResult struct {
	// RunID uniquely identifies this run.
	RunID string
	// Status is the terminal outcome.
	Status RunStatus
	// Output is the terminal task's result, set only on completion.
	Output string
	// Results maps completed task IDs to their results.
	Results map[string]string
}

// completion is the fan-in message from a finished task execution.
type completion struct {
	taskID string
	result string
	err    error
}

// Run executes the task set to completion, failure, or cancellation.
// The artifact is the text under review, substituted into every task's
// prompt. Graph validation happens before anything is dispatched; a
// malformed set returns a *graph.GraphError with zero worker invocations.
func (e *Engine) Run(ctx context.Context, tasks []*models.Task, terminalID, artifact string) (*RunResult, error) {
	runID := uuid.New().String()[:8]

	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}

	terminal := g.Task(terminalID)
	if terminal == nil {
		return nil, fmt.Errorf("terminal task %q not in task set", terminalID)
	}
	for _, task := range tasks {
		if _, ok := e.workers[task.Worker]; !ok {
			return nil, fmt.Errorf("task %q references unknown worker %q", task.ID, task.Worker)
		}
	}

	e.logf("[engine] run %s: %d tasks, terminal %q", runID, g.Size(), terminalID)

	ecx := NewExecutionContext()
	completionCh := make(chan completion, len(tasks))
	inflight := make(map[string]bool)
	var wg sync.WaitGroup

	var sem *semaphore.Weighted
	if e.maxInFlight > 0 {
		sem = semaphore.NewWeighted(e.maxInFlight)
	}

	var runErr *RunError
	cancelled := false

	for {
		// Dispatch every ready task, bounded by the in-flight budget.
		if !cancelled && ctx.Err() == nil {
			for _, id := range g.Ready() {
				if inflight[id] {
					continue
				}
				if sem != nil && !sem.TryAcquire(1) {
					break
				}

				task := g.Task(id)
				w := e.workers[task.Worker]

				prompt, perr := e.resolvePrompt(g, ecx, task, artifact)
				if perr != nil {
					// A dependency result missing at substitution time means
					// the scheduler's bookkeeping is broken. Fatal.
					wg.Wait()
					return nil, fmt.Errorf("run %s: %w", runID, perr)
				}

				inflight[id] = true
				task.Status = models.TaskStatusRunning
				task.StartedAt = time.Now()

				e.emitEvent(Event{Type: EventTaskQueued, TaskID: id, Worker: w.Role,
					Message: fmt.Sprintf("task %s ready, dispatching to %s", id, w.Role)})
				e.emitEvent(Event{Type: EventTaskStarted, TaskID: id, Worker: w.Role,
					Message: fmt.Sprintf("%s started", w.Role)})
				e.logf("[engine] run %s: dispatching %s to %s", runID, id, w.Role)

				wg.Add(1)
				go func(t *models.Task, w models.Worker, prompt string) {
					defer wg.Done()
					result, execErr := e.exec.Execute(ctx, w, t, prompt)
					// The channel is buffered to the task count, so this
					// send never blocks even after the loop has exited.
					completionCh <- completion{taskID: t.ID, result: result, err: execErr}
				}(task, w, prompt)
			}
		}

		if len(inflight) == 0 {
			break
		}

		select {
		case <-ctx.Done():
			cancelled = true
			e.logf("[engine] run %s: cancellation observed, %d in flight", runID, len(inflight))
			// In-flight calls share ctx and unwind on their own; collect
			// them without dispatching anything further.
			wg.Wait()
			for len(inflight) > 0 {
				c := <-completionCh
				delete(inflight, c.taskID)
			}

		case c := <-completionCh:
			delete(inflight, c.taskID)
			if sem != nil {
				sem.Release(1)
			}
			e.handleCompletion(g, ecx, c, terminalID, runID, &runErr)
		}
	}

	wg.Wait()

	result := &RunResult{RunID: runID, Results: ecx.Snapshot()}

	switch {
	case cancelled || (ctx.Err() != nil && terminal.Status != models.TaskStatusCompleted):
		result.Status = RunCancelled
		e.emitEvent(Event{Type: EventRunFinished, Message: "run cancelled"})
		return result, fmt.Errorf("%w: %v", ErrRunCancelled, context.Cause(ctx))

	case terminal.Status == models.TaskStatusCompleted:
		result.Status = RunCompleted
		result.Output = terminal.Result
		e.emitEvent(Event{Type: EventRunFinished, Message: "run completed"})
		return result, nil

	default:
		result.Status = RunFailed
		if runErr == nil {
			// Terminal did not complete and no recorded root cause: the
			// graph stalled, which Build should have made impossible.
			return result, fmt.Errorf("run %s: terminal task %q never completed", runID, terminalID)
		}
		e.emitEvent(Event{Type: EventRunFinished, Message: "run failed: " + runErr.Error()})
		return result, runErr
	}
}

// handleCompletion applies one task outcome: record the result and unblock
// dependents, or mark the blast radius failed.
func (e *Engine) handleCompletion(g *graph.DependencyGraph, ecx *ExecutionContext, c completion, terminalID, runID string, runErr **RunError) {
	task := g.Task(c.taskID)

	if c.err == nil {
		task.Status = models.TaskStatusCompleted
		task.Result = c.result
		task.CompletedAt = time.Now()
		if err := ecx.Set(c.taskID, c.result); err != nil {
			// Write-once violated; surface loudly rather than corrupt state.
			log.Printf("[engine] run %s: %v", runID, err)
		}
		g.MarkComplete(c.taskID)
		e.emitEvent(Event{Type: EventTaskCompleted, TaskID: c.taskID, Worker: task.Worker,
			Message: fmt.Sprintf("%s completed", c.taskID)})
		e.logf("[engine] run %s: %s completed", runID, c.taskID)
		return
	}

	// Record the root cause before poisoning downstream statuses: only the
	// first failure on the terminal task's ancestry names the run error.
	downstream := g.TransitiveDependents(c.taskID)
	if *runErr == nil && (c.taskID == terminalID || contains(downstream, terminalID)) {
		*runErr = &RunError{RunID: runID, TaskID: c.taskID, Worker: task.Worker, Err: c.err}
	}

	task.Status = models.TaskStatusFailed
	task.Error = c.err.Error()
	task.CompletedAt = time.Now()
	e.emitEvent(Event{Type: EventTaskFailed, TaskID: c.taskID, Worker: task.Worker, Err: c.err,
		Message: fmt.Sprintf("%s failed: %v", c.taskID, c.err)})
	e.logf("[engine] run %s: %s FAILED: %v", runID, c.taskID, c.err)

	// Fail-fast blast radius: every transitive successor is failed without
	// execution, since its prompt can never be constructed.
	for _, depID := range downstream {
		dt := g.Task(depID)
		if dt.Status.Terminal() {
			continue
		}
		dt.Status = models.TaskStatusFailed
		dt.Error = fmt.Sprintf("dependency %s failed", c.taskID)
		dt.CompletedAt = time.Now()
		e.emitEvent(Event{Type: EventTaskFailed, TaskID: depID, Worker: dt.Worker,
			Message: fmt.Sprintf("%s failed: dependency %s failed", depID, c.taskID)})
	}
}

// resolvePrompt builds the final prompt for a task from its template, the
// artifact, and its dependencies' recorded results.
func (e *Engine) resolvePrompt(g *graph.DependencyGraph, ecx *ExecutionContext, task *models.Task, artifact string) (string, error) {
	depIDs := g.Dependencies(task.ID)
	deps := make([]worker.Dependency, 0, len(depIDs))
	for _, depID := range depIDs {
		result, ok := ecx.Get(depID)
		if !ok {
			return "", fmt.Errorf("task %q dispatched with missing result for dependency %q", task.ID, depID)
		}
		dep := g.Task(depID)
		deps = append(deps, worker.Dependency{TaskID: depID, Worker: dep.Worker, Result: result})
	}
	return worker.BuildPrompt(task.Description, task.ExpectedOutput, artifact, deps), nil
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.debug {
		log.Printf(format, args...)
	}
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
