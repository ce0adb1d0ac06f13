package worker

import (
	"fmt"
	"strings"
)

// ArtifactPlaceholder marks where the reviewed artifact is substituted into
// a task description template.
const ArtifactPlaceholder = "{{artifact}}"

// Dependency is one completed upstream result injected into a dependent
// task's prompt.
type Dependency struct {
	// TaskID identifies the upstream task.
	TaskID string
	// Worker is the role that produced the result.
	Worker string
	// Result is the upstream task's completed output.
	Result string
}

// BuildPrompt resolves a task's description template into the final prompt:
// the artifact is substituted for its placeholder (or appended in a fenced
// block if the template has none), dependency results are concatenated with
// delimiters naming the producing worker, and the expected-output contract
// closes the prompt.
func BuildPrompt(description, expectedOutput, artifact string, deps []Dependency) string {
	var b strings.Builder

	if strings.Contains(description, ArtifactPlaceholder) {
		b.WriteString(strings.ReplaceAll(description, ArtifactPlaceholder, artifact))
	} else {
		b.WriteString(description)
		if artifact != "" {
			b.WriteString("\n\n```\n")
			b.WriteString(artifact)
			b.WriteString("\n```")
		}
	}

	for _, dep := range deps {
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("=== Findings from %s (task %s) ===\n", dep.Worker, dep.TaskID))
		b.WriteString(dep.Result)
		b.WriteString(fmt.Sprintf("\n=== End of findings from %s ===", dep.Worker))
	}

	if expectedOutput != "" {
		b.WriteString("\n\nExpected output:\n")
		b.WriteString(expectedOutput)
	}

	return b.String()
}
