package reviewers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/tribunal/internal/providers"
)

const narratorSystem = `You are the clerk of a forensic code audit tribunal. The bench has already fixed the score; you never change it.

Write a short remediation paragraph for the developer: concrete, actionable, grounded only in the reviewer arguments you are given. Two to four sentences of plain prose. No JSON, no markdown headers, no score restatement beyond what you are told.`

// ProseNarrator generates mid-band remediation prose through an LLM provider.
// It is bounded on every axis: at most maxAttempts calls, each under its own
// timeout, with a fixed backoff between attempts. Callers treat any error as
// a signal to use their deterministic fallback.
type ProseNarrator struct {
	provider    providers.Provider
	maxAttempts int
	timeout     time.Duration
	backoff     time.Duration
}

// NewNarrator builds a ProseNarrator. maxAttempts is clamped to [1,2].
func NewNarrator(p providers.Provider, maxAttempts int, timeout time.Duration) *ProseNarrator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if maxAttempts > 2 {
		maxAttempts = 2
	}
	return &ProseNarrator{
		provider:    p,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		backoff:     time.Second,
	}
}

// Remediate produces remediation prose for one dimension.
func (n *ProseNarrator) Remediate(ctx context.Context, dimensionName string, score int, arguments []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dimension: %s\n", dimensionName)
	fmt.Fprintf(&b, "Final score: %d/5\n\n", score)
	b.WriteString("Reviewer arguments:\n")
	b.WriteString(strings.Join(arguments, "\n"))
	userPrompt := b.String()

	var lastErr error
	for attempt := 0; attempt < n.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(n.backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, n.timeout)
		resp, err := n.provider.Chat(callCtx, providers.ChatRequest{
			SystemPrompt: narratorSystem,
			UserPrompt:   userPrompt,
			MaxTokens:    512,
		})
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		text := strings.TrimSpace(resp.Content)
		if text == "" {
			lastErr = fmt.Errorf("empty narrative response")
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("narrative generation failed after %d attempts: %w", n.maxAttempts, lastErr)
}
