package engine

import (
	"fmt"
	"sync"
)

// ExecutionContext is the append-only store of completed task results for
// one run. Keys are task IDs; each key is written exactly once, from the
// completion handler of the corresponding task.
type ExecutionContext struct {
	mu      sync.RWMutex
	results map[string]string
}

// NewExecutionContext creates an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{results: make(map[string]string)}
}

// Set records a task's result. Writing the same key twice is an internal
// invariant violation and returns an error.
func (c *ExecutionContext) Set(taskID, result string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.results[taskID]; exists {
		return fmt.Errorf("result for task %q already recorded", taskID)
	}
	c.results[taskID] = result
	return nil
}

// Get returns a task's result and whether it is present.
func (c *ExecutionContext) Get(taskID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.results[taskID]
	return result, ok
}

// Len returns the number of recorded results.
func (c *ExecutionContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Snapshot returns a copy of all recorded results.
func (c *ExecutionContext) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.results))
	for id, result := range c.results {
		out[id] = result
	}
	return out
}
