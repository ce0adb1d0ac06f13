// Package crew defines review crews: the workers, their tasks, and the
// dependency wiring between them. A crew is pure configuration; the engine
// does the running.
package crew

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/reviewcrew/internal/engine"
	"github.com/ShayCichocki/reviewcrew/internal/graph"
	"github.com/ShayCichocki/reviewcrew/internal/inference"
	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// Task IDs for the built-in crew.
const (
	TaskQuality        = "quality"
	TaskSecurity       = "security"
	TaskFrontend       = "frontend"
	TaskInfrastructure = "infrastructure"
	TaskDecision       = "decision"
)

// Crew is a set of workers and task templates with a designated terminal
// task. Tasks are templates: each Review run instantiates fresh copies so a
// Crew is reusable and safe to share.
type Crew struct {
	// Name labels the crew in output and logs.
	Name string
	// Workers are the available roles, keyed by Task.Worker.
	Workers []models.Worker
	// Tasks are the task templates, in declaration order.
	Tasks []*models.Task
	// TerminalID is the task whose result is the run's output.
	TerminalID string
}

// Validate checks the crew's graph and worker references without running
// anything. It reuses the engine's validation path so a crew that validates
// here will dispatch cleanly.
func (c *Crew) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("crew %q has no tasks", c.Name)
	}
	if _, err := graph.Build(c.instantiate()); err != nil {
		return err
	}
	roles := make(map[string]bool, len(c.Workers))
	for _, w := range c.Workers {
		if w.Role == "" {
			return fmt.Errorf("crew %q has a worker with no role", c.Name)
		}
		if roles[w.Role] {
			return fmt.Errorf("crew %q declares worker role %q twice", c.Name, w.Role)
		}
		roles[w.Role] = true
	}
	terminalFound := false
	for _, t := range c.Tasks {
		if !roles[t.Worker] {
			return fmt.Errorf("task %q references unknown worker %q", t.ID, t.Worker)
		}
		if t.ID == c.TerminalID {
			terminalFound = true
		}
	}
	if !terminalFound {
		return fmt.Errorf("crew %q: terminal task %q not in task list", c.Name, c.TerminalID)
	}
	return nil
}

// instantiate returns fresh pending copies of the crew's tasks for one run.
func (c *Crew) instantiate() []*models.Task {
	tasks := make([]*models.Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		cp := *t
		cp.Status = models.TaskStatusPending
		cp.DependsOn = append([]string(nil), t.DependsOn...)
		tasks = append(tasks, &cp)
	}
	return tasks
}

// Default returns the built-in five-worker review crew: four independent
// specialist reviews fanning in to a technical lead's decision.
func Default() *Crew {
	return &Crew{
		Name: "code-review",
		Workers: []models.Worker{
			codeReviewEngineer(),
			securityAnalyst(),
			frontendEngineer(),
			infrastructureAnalyst(),
			techLeadReviewer(),
		},
		Tasks: []*models.Task{
			{
				ID:          TaskQuality,
				Worker:      "Code Review Engineer",
				Description: qualityDescription,
				ExpectedOutput: `A structured report with:
- Summary of overall code quality (1-2 sentences)
- List of issues found, each with exact location (function name, line
  number, or snippet), severity (MUST FIX / SHOULD FIX / CONSIDER), what's
  wrong and why it matters, and a specific fix recommendation
- Drupal-specific issues (if applicable)
- What the code does well
- Overall quality score (1-10)

Format issues so developers can CTRL+F to find them in code.`,
			},
			{
				ID:          TaskSecurity,
				Worker:      "Security Analyst",
				Description: securityDescription,
				ExpectedOutput: `A security assessment with:
- Executive summary (1-2 sentences on overall security posture)
- List of vulnerabilities, each with exact location, severity
  (CRITICAL / HIGH / MEDIUM / LOW), the vulnerability explained simply, a
  specific exploit scenario, and exact remediation steps
- Items marked "VERIFY" if context is missing
- Security score (1-10)
- BLOCKING issues list (must fix before merge)

Be precise. No false positives. Every finding must be actionable.`,
			},
			{
				ID:          TaskFrontend,
				Worker:      "Frontend Review Engineer",
				Description: frontendDescription,
				ExpectedOutput: `A frontend assessment with:
- Summary: is there frontend code? If not, state "N/A - Backend only" and stop.
- Accessibility issues (most important), each with exact element or line,
  the WCAG criterion violated, the impact on users, and a specific fix
- CSS/JS issues (only significant ones)
- Twig/template issues (if applicable)
- Performance concerns (only if significant)
- Frontend score (1-10) or "N/A"
- BLOCKING issues (accessibility blockers)

Focus on user impact. Skip pedantic style preferences.`,
			},
			{
				ID:          TaskInfrastructure,
				Worker:      "Infrastructure Analyst",
				Description: infrastructureDescription,
				ExpectedOutput: `An infrastructure assessment with:
- Summary: will this deploy cleanly and perform at scale? (1-2 sentences)
- BLOCKING deployment issues, with exact location, why it will fail, and fix
- Performance issues that will affect users at scale
- Caching issues (if Drupal): missing cache tags/contexts and their impact
- Configuration concerns
- Debug code that must be removed
- Infrastructure score (1-10)
- BLOCKING issues list

Focus on what would cause a 2am wake-up call or failed deployment.`,
			},
			{
				ID:          TaskDecision,
				Worker:      "Technical Lead Reviewer",
				Description: decisionDescription,
				DependsOn:   []string{TaskQuality, TaskSecurity, TaskFrontend, TaskInfrastructure},
				ExpectedOutput: `A final review decision formatted for easy scanning:

## DECISION: [APPROVE / REQUEST CHANGES / REJECT]

**Rationale:** (2-3 sentences explaining the decision)

### BLOCKING - Must Fix Before Merge
(Numbered list with exact locations - or "None" if clean)

### HIGH PRIORITY - Should Fix
(Numbered list with exact locations - or "None")

### SUGGESTIONS - Optional Improvements
(Bulleted list - or "None")

### Next Steps
(Specific actions for the developer)

Remove duplicates across reviewers. Be concise. Make it easy to act on.`,
			},
		},
		TerminalID: TaskDecision,
	}
}

// ReviewResult is the outcome of one crew review.
type ReviewResult struct {
	// RunID identifies the underlying engine run.
	RunID string
	// Decision is the terminal task's output.
	Decision string
	// Results maps completed task IDs to their results, the terminal
	// included.
	Results map[string]string
	// Usage holds collaborator token totals when a tracker was attached.
	Usage *Usage
}

// Usage summarizes collaborator token consumption for a run.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	Calls        int
	Cost         float64
}

// Reviewer binds a crew to an engine and runs reviews.
type Reviewer struct {
	crew    *Crew
	engine  *engine.Engine
	tracker *inference.TokenTracker
}

// ReviewerOptions configures a Reviewer.
type ReviewerOptions struct {
	// MaxInFlight bounds concurrent task executions; zero means unbounded.
	MaxInFlight int64
	// OnEvent receives engine events; see engine.Options.
	OnEvent func(engine.Event)
	// Tracker, if set, is read after each run to fill ReviewResult.Usage.
	Tracker *inference.TokenTracker
}

// NewReviewer validates the crew and builds a Reviewer over the executor.
func NewReviewer(c *Crew, exec engine.TaskExecutor, opts ReviewerOptions) (*Reviewer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Reviewer{
		crew: c,
		engine: engine.New(exec, c.Workers, engine.Options{
			MaxInFlight: opts.MaxInFlight,
			OnEvent:     opts.OnEvent,
		}),
		tracker: opts.Tracker,
	}, nil
}

// Review runs the crew over the artifact and returns the terminal decision.
// On failure or cancellation the partial results gathered so far are still
// returned alongside the error.
func (r *Reviewer) Review(ctx context.Context, artifact string) (*ReviewResult, error) {
	if artifact == "" {
		return nil, fmt.Errorf("nothing to review: artifact is empty")
	}

	runResult, err := r.engine.Run(ctx, r.crew.instantiate(), r.crew.TerminalID, artifact)

	result := &ReviewResult{}
	if runResult != nil {
		result.RunID = runResult.RunID
		result.Decision = runResult.Output
		result.Results = runResult.Results
	}
	if r.tracker != nil {
		in, out := r.tracker.Total()
		result.Usage = &Usage{
			InputTokens:  in,
			OutputTokens: out,
			Calls:        r.tracker.Calls(),
			Cost:         r.tracker.Cost(),
		}
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
