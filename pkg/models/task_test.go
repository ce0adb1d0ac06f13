package models

import "testing"

func TestTaskStatusValid(t *testing.T) {
	valid := []TaskStatus{
		TaskStatusPending, TaskStatusReady, TaskStatusRunning,
		TaskStatusCompleted, TaskStatusFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	if TaskStatus("bogus").Valid() {
		t.Error("expected unknown status to be invalid")
	}
	if TaskStatus("").Valid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if !TaskStatusCompleted.Terminal() {
		t.Error("completed should be terminal")
	}
	if !TaskStatusFailed.Terminal() {
		t.Error("failed should be terminal")
	}
	if TaskStatusRunning.Terminal() {
		t.Error("running should not be terminal")
	}
	if TaskStatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
}

func TestWorkerPersona(t *testing.T) {
	w := Worker{
		Role:      "Security Analyst",
		Goal:      "find vulnerabilities",
		Backstory: "You are a security analyst.",
	}
	persona := w.Persona()
	if persona != "You are a security analyst.\n\nYour goal: find vulnerabilities" {
		t.Errorf("unexpected persona: %q", persona)
	}

	// Goal-only and backstory-only workers still produce usable personas.
	goalOnly := Worker{Role: "x", Goal: "review code"}
	if goalOnly.Persona() != "Your goal: review code" {
		t.Errorf("unexpected goal-only persona: %q", goalOnly.Persona())
	}
	storyOnly := Worker{Role: "x", Backstory: "You review code."}
	if storyOnly.Persona() != "You review code." {
		t.Errorf("unexpected backstory-only persona: %q", storyOnly.Persona())
	}
}
