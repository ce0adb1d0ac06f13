// Package graph provides the dependency graph used to schedule review tasks.
package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// GraphError indicates a malformed task set: a dependency referencing an
// unknown task, a duplicate task ID, or a cycle. It is always detected
// before any task is dispatched.
type GraphError struct {
	// Reason is a short machine-friendly tag ("cycle", "unknown_dependency",
	// "duplicate_id", "empty").
	Reason string
	// TaskIDs lists the tasks involved, in cycle order for cycles.
	TaskIDs []string
	msg     string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	return e.msg
}

// DependencyGraph is a directed acyclic graph of task dependencies.
// Tasks are nodes; edges point from a task to the tasks it depends on.
// Once built, the node and edge sets are immutable; only completion
// bookkeeping changes during a run.
type DependencyGraph struct {
	mu sync.RWMutex
	// nodes maps task ID to the task itself.
	nodes map[string]*models.Task
	// edges maps task ID to the IDs of tasks it depends on.
	edges map[string][]string
	// dependents maps task ID to the IDs of tasks that depend on it.
	dependents map[string][]string
	// completed tracks which tasks have been marked complete.
	completed map[string]bool
}

// Build validates an unordered task list and materializes its DAG.
// Every dependency must reference a task in the set and the edge set must be
// acyclic; violations are reported as a *GraphError before anything runs.
func Build(tasks []*models.Task) (*DependencyGraph, error) {
	if len(tasks) == 0 {
		return nil, &GraphError{Reason: "empty", msg: "task set is empty"}
	}

	g := &DependencyGraph{
		nodes:      make(map[string]*models.Task, len(tasks)),
		edges:      make(map[string][]string, len(tasks)),
		dependents: make(map[string][]string),
		completed:  make(map[string]bool),
	}

	// First pass: register all tasks as nodes.
	for _, task := range tasks {
		if _, dup := g.nodes[task.ID]; dup {
			return nil, &GraphError{
				Reason:  "duplicate_id",
				TaskIDs: []string{task.ID},
				msg:     fmt.Sprintf("duplicate task id %q", task.ID),
			}
		}
		g.nodes[task.ID] = task
		g.edges[task.ID] = nil
	}

	// Second pass: build edges from DependsOn sets.
	for _, task := range tasks {
		for _, depID := range task.DependsOn {
			if _, exists := g.nodes[depID]; !exists {
				return nil, &GraphError{
					Reason:  "unknown_dependency",
					TaskIDs: []string{task.ID, depID},
					msg:     fmt.Sprintf("task %q depends on unknown task %q", task.ID, depID),
				}
			}
			g.edges[task.ID] = append(g.edges[task.ID], depID)
			g.dependents[depID] = append(g.dependents[depID], task.ID)
		}
	}

	if cycle := g.findCycle(); len(cycle) > 0 {
		return nil, &GraphError{
			Reason:  "cycle",
			TaskIDs: cycle,
			msg:     fmt.Sprintf("circular dependency: %s", strings.Join(cycle, " -> ")),
		}
	}

	return g, nil
}

// findCycle runs a depth-first search with white/gray/black coloring and
// returns the first cycle found, in dependency order, or nil.
func (g *DependencyGraph) findCycle() []string {
	// Color states: 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.nodes))

	// Deterministic traversal order so the same cycle is reported every time.
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		stack = append(stack, id)

		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				// Back edge: the cycle is the stack segment from depID onward.
				for i, sid := range stack {
					if sid == depID {
						cycle = append([]string(nil), stack[i:]...)
						return true
					}
				}
				cycle = append([]string(nil), stack...)
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}

		colors[id] = 2
		stack = stack[:len(stack)-1]
		return false
	}

	for _, id := range ids {
		if colors[id] == 0 {
			if visit(id) {
				return cycle
			}
		}
	}
	return nil
}

// Ready returns the IDs of tasks whose dependencies are all complete and
// which have not themselves been completed. These can run concurrently.
func (g *DependencyGraph) Ready() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []string
	for id, task := range g.nodes {
		if g.completed[id] || task.Status.Terminal() {
			continue
		}
		satisfied := true
		for _, depID := range g.edges[id] {
			if !g.completed[depID] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}

// MarkComplete records that a task finished successfully, which affects
// subsequent calls to Ready.
func (g *DependencyGraph) MarkComplete(taskID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed[taskID] = true
}

// Task returns the task for a given ID, or nil if not found.
func (g *DependencyGraph) Task(taskID string) *models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[taskID]
}

// Size returns the number of tasks in the graph.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Dependencies returns the IDs of tasks the given task depends on.
func (g *DependencyGraph) Dependencies(taskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.edges[taskID]...)
}

// Dependents returns the IDs of tasks that directly depend on the given task.
func (g *DependencyGraph) Dependents(taskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.dependents[taskID]...)
}

// TransitiveDependents returns every task downstream of the given task,
// in breadth-first order. Used to propagate a failure's blast radius.
func (g *DependencyGraph) TransitiveDependents(taskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := map[string]bool{taskID: true}
	queue := append([]string(nil), g.dependents[taskID]...)
	var result []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
		queue = append(queue, g.dependents[id]...)
	}
	return result
}

// InDegree returns the number of dependencies the given task has that are
// not yet complete.
func (g *DependencyGraph) InDegree(taskID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := 0
	for _, depID := range g.edges[taskID] {
		if !g.completed[depID] {
			n++
		}
	}
	return n
}

// TaskIDs returns all task IDs in the graph, sorted.
func (g *DependencyGraph) TaskIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
