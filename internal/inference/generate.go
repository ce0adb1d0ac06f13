package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Generate executes a single persona-steered completion and returns the
// concatenated text blocks. No tools are provided; review workers are pure
// text-in/text-out.
func (c *AnthropicClient) Generate(ctx context.Context, persona, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if persona != "" {
		params.System = []anthropic.TextBlockParam{{Text: persona}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	return result.String(), nil
}

// IsTransient reports whether an inference error is worth retrying:
// rate limiting, server overload, timeouts, or plain network failures.
// Invalid requests and authentication failures are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	// Caller-driven cancellation is never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 408, 429:
			return true
		default:
			return apierr.StatusCode >= 500
		}
	}

	// Non-API errors (connection reset, DNS) are assumed transient.
	return true
}
