package reviewers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/tribunal/internal/adjudicate"
	"github.com/dshills/tribunal/internal/cache"
	"github.com/dshills/tribunal/internal/evidence"
	"github.com/dshills/tribunal/internal/providers"
	"github.com/dshills/tribunal/internal/rubric"
)

const (
	opinionMaxTokens = 2048
	// errorDetailMax bounds how much of a provider error leaks into a
	// fallback opinion argument.
	errorDetailMax = 200
)

// Bench runs the three reviewer personas over every dimension that has
// evidence. Personas run concurrently; each writes into its own slot of an
// indexed results slice so no opinion is lost or duplicated.
type Bench struct {
	provider  providers.Provider
	model     string
	cache     *cache.Cache
	retryWait time.Duration

	// Unredacted skips secret redaction on evidence text. Off unless the
	// operator disables redaction explicitly.
	Unredacted bool
}

// NewBench builds a Bench. c may be nil to disable response caching.
func NewBench(p providers.Provider, model string, c *cache.Cache) *Bench {
	return &Bench{
		provider:  p,
		model:     model,
		cache:     c,
		retryWait: 2 * time.Second,
	}
}

// Deliberate collects one opinion per persona per evidenced dimension. It
// never returns an error: a persona that cannot produce a parseable verdict
// contributes its fixed fallback opinion instead.
func (b *Bench) Deliberate(ctx context.Context, rub rubric.Rubric, store *evidence.Store) []adjudicate.Opinion {
	personas := adjudicate.Personas()
	results := make([][]adjudicate.Opinion, len(personas))

	var wg sync.WaitGroup
	for i, p := range personas {
		wg.Add(1)
		go func(i int, p adjudicate.Persona) {
			defer wg.Done()
			results[i] = b.deliberatePersona(ctx, p, rub, store)
		}(i, p)
	}
	wg.Wait()

	var all []adjudicate.Opinion
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

func (b *Bench) deliberatePersona(ctx context.Context, p adjudicate.Persona, rub rubric.Rubric, store *evidence.Store) []adjudicate.Opinion {
	var opinions []adjudicate.Opinion
	for _, dim := range rub.Dimensions {
		evs := store.ForDimension(dim.ID)
		if len(evs) == 0 {
			continue
		}
		opinions = append(opinions, b.evaluate(ctx, p, dim, evs))
	}
	return opinions
}

func (b *Bench) evaluate(ctx context.Context, p adjudicate.Persona, dim rubric.Dimension, evs []evidence.Evidence) adjudicate.Opinion {
	evidenceText := evidence.ContextText(evs)
	if b.Unredacted {
		evidenceText = evidence.ContextTextUnredacted(evs)
	}
	userPrompt := buildUserPrompt(p, dim, evidenceText)
	key := cache.BuildOpinionKey(b.provider.Name(), b.model, string(p), dim.ID, cache.HashKey(evidenceText))

	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			if op, err := parseOpinion(cached, p, dim.ID); err == nil {
				return op
			}
		}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := b.provider.Chat(ctx, providers.ChatRequest{
			SystemPrompt: systemPrompt(p),
			UserPrompt:   userPrompt,
			MaxTokens:    opinionMaxTokens,
		})
		if err != nil {
			lastErr = err
		} else {
			op, perr := parseOpinion(resp.Content, p, dim.ID)
			if perr == nil {
				if b.cache != nil {
					b.cache.Put(key, resp.Content)
				}
				return op
			}
			lastErr = perr
		}

		if attempt == 0 {
			select {
			case <-ctx.Done():
				return fallbackOpinion(p, dim.ID, ctx.Err())
			case <-time.After(b.retryWait):
			}
		}
	}

	return fallbackOpinion(p, dim.ID, lastErr)
}

// fallbackOpinion is deterministic: fixed score per persona, error detail
// bounded, no citations. It keeps the bench complete when a provider fails.
func fallbackOpinion(p adjudicate.Persona, dimensionID string, cause error) adjudicate.Opinion {
	detail := "unknown error"
	if cause != nil {
		detail = cause.Error()
	}
	if len(detail) > errorDetailMax {
		detail = detail[:errorDetailMax]
	}
	return adjudicate.Opinion{
		Reviewer:    p,
		DimensionID: dimensionID,
		Score:       fallbackScore(p),
		Argument:    fmt.Sprintf("[%s ERROR] Structured output failed after 2 attempts: %s", strings.ToUpper(string(p)), detail),
	}
}

func buildUserPrompt(p adjudicate.Persona, dim rubric.Dimension, evidenceText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dimension: %s\n", dim.Name)
	fmt.Fprintf(&b, "Success pattern: %s\n", dim.SuccessPattern)
	fmt.Fprintf(&b, "Failure pattern: %s\n\n", dim.FailurePattern)
	fmt.Fprintf(&b, "Evidence collected by the investigators:\n%s\n\n", evidenceText)
	fmt.Fprintf(&b, "Return your opinion as JSON. Set reviewer=%q and dimensionId=%q.", string(p), dim.ID)
	return b.String()
}
