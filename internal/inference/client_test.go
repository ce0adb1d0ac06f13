package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 100)

	input, output := tracker.Total()
	if input != 300 {
		t.Errorf("expected 300 input tokens, got %d", input)
	}
	if output != 150 {
		t.Errorf("expected 150 output tokens, got %d", output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("expected 2 calls, got %d", tracker.Calls())
	}

	tracker.Reset()
	input, output = tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Error("expected tracker to be empty after reset")
	}
}

func TestTokenTrackerCost(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(1_000_000, 1_000_000)

	cost := tracker.Cost()
	// $3/1M input + $15/1M output
	if cost < 17.9 || cost > 18.1 {
		t.Errorf("expected cost around $18, got $%.2f", cost)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient(ClientConfig{})
	if err == nil {
		t.Fatal("expected error when no API key is available")
	}
}

func TestNewClientDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-REDACTED")

	c, err := NewClient(ClientConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("expected default sonnet model, got %s", c.Model())
	}
	if c.Tracker() == nil {
		t.Error("expected non-nil tracker")
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeSonnet4_20250514)
	if got != "us.anthropic.claude-sonnet-4-20250514-v1:0" {
		t.Errorf("unexpected bedrock model: %s", got)
	}

	// Unknown models pass through unchanged.
	custom := anthropic.Model("custom-model")
	if translateModelForBedrock(custom) != custom {
		t.Error("expected unknown model to pass through")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"rate limited", &anthropic.Error{StatusCode: 429}, true},
		{"timeout", &anthropic.Error{StatusCode: 408}, true},
		{"overloaded", &anthropic.Error{StatusCode: 529}, true},
		{"server error", &anthropic.Error{StatusCode: 500}, true},
		{"bad request", &anthropic.Error{StatusCode: 400}, false},
		{"unauthorized", &anthropic.Error{StatusCode: 401}, false},
		{"network", errors.New("connection reset by peer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
