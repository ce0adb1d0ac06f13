package models

// Worker is a named persona that executes tasks by delegating to the
// inference collaborator. Workers hold no mutable state and may be shared
// concurrently across tasks.
type Worker struct {
	// Role is the unique name of this worker (e.g. "Security Analyst").
	Role string `json:"role" yaml:"role"`
	// Goal is a one-line statement of what the worker optimizes for.
	Goal string `json:"goal" yaml:"goal"`
	// Backstory is free-form persona text passed verbatim to the inference
	// collaborator as the system prompt on every call.
	Backstory string `json:"backstory" yaml:"backstory"`
}

// Persona returns the full instruction text sent as the system prompt.
func (w Worker) Persona() string {
	if w.Goal == "" {
		return w.Backstory
	}
	if w.Backstory == "" {
		return "Your goal: " + w.Goal
	}
	return w.Backstory + "\n\nYour goal: " + w.Goal
}
