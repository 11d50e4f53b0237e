package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"examforge/internal/logger"
)

const (
	attemptsPerModel = 2
	retryDelay       = 2 * time.Second
	discoveryTimeout = 10 * time.Second
)

// Preference tables rank discovered models; earlier substrings win. Models
// matching nothing keep their discovery order after all matches.
var modelPreferences = map[string][]string{
	"gemini": {"gemini-2.0-flash", "gemini-1.5-flash", "gemini-2.0-pro", "gemini-1.5-pro", "gemini-pro"},
	"openai": {"gpt-4o-mini", "gpt-4.1-mini", "gpt-4o", "gpt-4.1", "gpt-4-turbo"},
}

// Hard-coded candidates used when discovery fails.
var fallbackModels = map[string][]string{
	"gemini": {"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"},
	"openai": {"gpt-4o-mini", "gpt-4.1-mini", "gpt-4o"},
}

// Client walks an ordered candidate model list until one produces text.
// Discovery runs at most once per process; the result, or the hard-coded
// fallback on discovery failure, is kept for the process lifetime.
type Client struct {
	provider Provider
	log      *logger.Logger

	// pinned skips discovery and uses exactly one model.
	pinned string

	mu        sync.Mutex
	attempted bool
	models    []string

	fallback []string
	sleep    func(time.Duration)
}

// NewClient wraps a provider with the fallback chain. pinnedModel, when
// non-empty, disables discovery.
func NewClient(provider Provider, pinnedModel string, log *logger.Logger) *Client {
	return &Client{
		provider: provider,
		pinned:   pinnedModel,
		log:      log,
		fallback: fallbackModels[provider.Name()],
		sleep:    time.Sleep,
	}
}

// Generate tries each candidate model up to twice and returns the first
// non-empty response along with the model that produced it. Rate-limit and
// not-found errors skip to the next candidate immediately; anything else
// earns one short sleep and a second attempt. When every candidate is
// exhausted the last error comes back to the caller.
func (c *Client) Generate(ctx context.Context, req Request) (string, string, error) {
	candidates := c.candidateModels(ctx)
	if len(candidates) == 0 {
		return "", "", fmt.Errorf("no candidate models available")
	}

	var lastErr error
	for _, model := range candidates {
		for attempt := 1; attempt <= attemptsPerModel; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", "", err
			}

			text, err := c.provider.Generate(ctx, model, req)
			if err == nil {
				if strings.TrimSpace(text) != "" {
					return text, model, nil
				}
				err = fmt.Errorf("model %s returned an empty response", model)
			}
			lastErr = err

			if IsRateLimited(err) || IsModelNotFound(err) {
				c.log.Warn("skipping model", "model", model, "error", err)
				break
			}
			c.log.Warn("generation attempt failed", "model", model, "attempt", attempt, "error", err)
			if attempt < attemptsPerModel {
				c.sleep(retryDelay)
			}
		}
	}
	return "", "", fmt.Errorf("all candidate models exhausted: %w", lastErr)
}

// Models returns the candidate list, triggering discovery on first use.
func (c *Client) Models(ctx context.Context) []string {
	return c.candidateModels(ctx)
}

// Provider reports the underlying vendor name.
func (c *Client) Provider() string {
	return c.provider.Name()
}

func (c *Client) candidateModels(ctx context.Context) []string {
	if c.pinned != "" {
		return []string{c.pinned}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attempted {
		c.attempted = true
		c.models = c.discover(ctx)
	}
	return append([]string(nil), c.models...)
}

// discover runs the one list-models call this process will ever make.
// Failures fall back to the hard-coded list and are never re-probed.
func (c *Client) discover(ctx context.Context) []string {
	dctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	ids, err := c.provider.ListModels(dctx)
	if err != nil || len(ids) == 0 {
		c.log.Warn("model discovery failed, using fallback list", "provider", c.provider.Name(), "error", err)
		return append([]string(nil), c.fallback...)
	}

	ranked := rankModels(ids, modelPreferences[c.provider.Name()])
	c.log.Info("discovered models", "provider", c.provider.Name(), "count", len(ranked), "first", ranked[0])
	return ranked
}

// rankModels orders ids by the first preference substring they contain.
// The sort is stable so unmatched models keep their discovery order.
func rankModels(ids, prefs []string) []string {
	ranked := append([]string(nil), ids...)
	rank := func(id string) int {
		for i, p := range prefs {
			if strings.Contains(id, p) {
				return i
			}
		}
		return len(prefs)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return rank(ranked[i]) < rank(ranked[j])
	})
	return ranked
}
