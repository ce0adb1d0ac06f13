package crew

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ShayCichocki/reviewcrew/internal/engine"
	"github.com/ShayCichocki/reviewcrew/internal/graph"
	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// echoExecutor returns a canned result per task, or echoes the prompt.
type echoExecutor struct {
	mu      sync.Mutex
	prompts map[string]string
	results map[string]string
}

func newEchoExecutor() *echoExecutor {
	return &echoExecutor{prompts: make(map[string]string), results: make(map[string]string)}
}

func (e *echoExecutor) Execute(ctx context.Context, w models.Worker, task *models.Task, prompt string) (string, error) {
	e.mu.Lock()
	e.prompts[task.ID] = prompt
	e.mu.Unlock()
	if r, ok := e.results[task.ID]; ok {
		return r, nil
	}
	return task.ID + "-findings", nil
}

func (e *echoExecutor) prompt(taskID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompts[taskID]
}

func TestDefaultCrewValidates(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default crew failed validation: %v", err)
	}
	if c.TerminalID != TaskDecision {
		t.Errorf("expected terminal %q, got %q", TaskDecision, c.TerminalID)
	}
	if len(c.Workers) != 5 || len(c.Tasks) != 5 {
		t.Errorf("expected 5 workers and 5 tasks, got %d/%d", len(c.Workers), len(c.Tasks))
	}
}

func TestDefaultCrewFanIn(t *testing.T) {
	c := Default()
	var decision *models.Task
	for _, task := range c.Tasks {
		if task.ID == TaskDecision {
			decision = task
			continue
		}
		if len(task.DependsOn) != 0 {
			t.Errorf("specialist task %s should have no dependencies, has %v", task.ID, task.DependsOn)
		}
	}
	if decision == nil {
		t.Fatal("no decision task")
	}
	if len(decision.DependsOn) != 4 {
		t.Errorf("decision should depend on 4 tasks, got %v", decision.DependsOn)
	}
}

func TestReviewRunsDefaultCrew(t *testing.T) {
	exec := newEchoExecutor()
	exec.results[TaskDecision] = "## DECISION: APPROVE"

	r, err := NewReviewer(Default(), exec, ReviewerOptions{})
	if err != nil {
		t.Fatalf("NewReviewer: %v", err)
	}

	result, err := r.Review(context.Background(), "func main() {}")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if result.Decision != "## DECISION: APPROVE" {
		t.Errorf("unexpected decision: %q", result.Decision)
	}
	if len(result.Results) != 5 {
		t.Errorf("expected 5 task results, got %d", len(result.Results))
	}

	// Specialist prompts carry the artifact; the decision prompt carries
	// every specialist's findings.
	if !strings.Contains(exec.prompt(TaskQuality), "func main() {}") {
		t.Error("quality prompt missing artifact")
	}
	decisionPrompt := exec.prompt(TaskDecision)
	for _, id := range []string{TaskQuality, TaskSecurity, TaskFrontend, TaskInfrastructure} {
		if !strings.Contains(decisionPrompt, id+"-findings") {
			t.Errorf("decision prompt missing findings from %s", id)
		}
	}
}

func TestReviewEmptyArtifact(t *testing.T) {
	r, err := NewReviewer(Default(), newEchoExecutor(), ReviewerOptions{})
	if err != nil {
		t.Fatalf("NewReviewer: %v", err)
	}
	if _, err := r.Review(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty artifact")
	}
}

func TestCrewIsReusable(t *testing.T) {
	exec := newEchoExecutor()
	r, err := NewReviewer(Default(), exec, ReviewerOptions{})
	if err != nil {
		t.Fatalf("NewReviewer: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := r.Review(context.Background(), "code"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestValidateRejectsBadCrews(t *testing.T) {
	base := func() *Crew {
		return &Crew{
			Name:    "t",
			Workers: []models.Worker{{Role: "w", Goal: "g"}},
			Tasks: []*models.Task{
				{ID: "a", Worker: "w", Description: "d"},
				{ID: "b", Worker: "w", Description: "d", DependsOn: []string{"a"}},
			},
			TerminalID: "b",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Crew)
	}{
		{"no tasks", func(c *Crew) { c.Tasks = nil }},
		{"unknown worker", func(c *Crew) { c.Tasks[0].Worker = "ghost" }},
		{"missing terminal", func(c *Crew) { c.TerminalID = "nope" }},
		{"duplicate role", func(c *Crew) {
			c.Workers = append(c.Workers, models.Worker{Role: "w"})
		}},
		{"cycle", func(c *Crew) { c.Tasks[0].DependsOn = []string{"b"} }},
		{"unknown dependency", func(c *Crew) { c.Tasks[1].DependsOn = []string{"zzz"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseCrewFile(t *testing.T) {
	data := []byte(`
name: minimal
terminal: verdict
workers:
  - role: Reviewer
    goal: review things
    backstory: you review code
  - role: Lead
    goal: decide
tasks:
  - id: look
    worker: Reviewer
    description: "look at {{artifact}}"
    expected_output: notes
  - id: verdict
    worker: Lead
    description: decide based on findings
    depends_on: [look]
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Name != "minimal" || c.TerminalID != "verdict" {
		t.Errorf("unexpected crew: name=%q terminal=%q", c.Name, c.TerminalID)
	}
	if len(c.Workers) != 2 || len(c.Tasks) != 2 {
		t.Errorf("expected 2 workers and 2 tasks, got %d/%d", len(c.Workers), len(c.Tasks))
	}
	if got := c.Tasks[1].DependsOn; len(got) != 1 || got[0] != "look" {
		t.Errorf("unexpected depends_on: %v", got)
	}
}

func TestParseCrewFileDefaultsTerminalToLastTask(t *testing.T) {
	data := []byte(`
workers:
  - role: Reviewer
    goal: review
tasks:
  - id: first
    worker: Reviewer
    description: d
  - id: last
    worker: Reviewer
    description: d
    depends_on: [first]
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.TerminalID != "last" {
		t.Errorf("expected terminal last, got %q", c.TerminalID)
	}
}

func TestParseCrewFileRejectsCycle(t *testing.T) {
	data := []byte(`
workers:
  - role: Reviewer
    goal: review
tasks:
  - id: a
    worker: Reviewer
    description: d
    depends_on: [b]
  - id: b
    worker: Reviewer
    description: d
    depends_on: [a]
`)
	_, err := Parse(data)
	var ge *graph.GraphError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GraphError, got %v", err)
	}
}

func TestParseCrewFileBadYAML(t *testing.T) {
	if _, err := Parse([]byte("{not yaml:")); err == nil {
		t.Fatal("expected parse error")
	}
}

// Interface check: Reviewer accepts any engine.TaskExecutor.
var _ engine.TaskExecutor = (*echoExecutor)(nil)
