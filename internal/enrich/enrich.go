// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich asks a Generative AI API for qualitative trend context:
// category, related phrasing, and — when no measured signal exists — full
// momentum, volume, and history estimates.
//
// The provider is genuinely probabilistic: there is no determinism
// guarantee on content. The adapter's only contract is shape-validity or
// an explicit error; malformed responses never propagate a parse failure
// to the caller.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/trend-engine/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// It takes a rendered prompt and returns the raw response text.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Seed is the measured-signal summary used to steer the generative request.
type Seed struct {
	MomentumScore int
	SearchVolume  int
	Related       []string
}

// Result is the generative tier's output for one keyword. Steered reports
// which prompt variant produced it: steered responses carry only category,
// a volume estimate, and related phrasing; unsteered responses carry a
// full record estimate.
type Result struct {
	Category string
	Steered  bool

	// Steered-mode fields.
	PinterestVolume  int
	PinterestRelated []string

	// Unsteered-mode fields.
	MomentumScore int
	SearchVolume  int
	Related       []string
	History       []types.HistoryPoint
}

// VolumeEstimate returns whichever monthly-volume estimate this response
// carries, independent of prompt variant.
func (r Result) VolumeEstimate() int {
	if r.Steered {
		return r.PinterestVolume
	}
	return r.SearchVolume
}

// RelatedTerms returns whichever related-term list this response carries.
func (r Result) RelatedTerms() []string {
	if r.Steered {
		return r.PinterestRelated
	}
	return r.Related
}

// Enricher renders the prompt for a keyword, calls the backend with
// retries, and defensively parses the response.
type Enricher struct {
	Backend Backend
	Config  types.EnrichmentConfig
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Enrich requests trend context for the keyword. A non-nil seed selects
// the steered prompt variant. API errors and malformed JSON return an
// error; the caller treats any error as this tier being unavailable.
func (e *Enricher) Enrich(ctx context.Context, keyword string, seed *Seed) (Result, error) {
	prompt, err := renderPrompt(keyword, seed)
	if err != nil {
		return Result{}, fmt.Errorf("rendering prompt: %w", err)
	}

	maxRetries := e.Config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	text, err := e.completeWithRetry(ctx, prompt, maxRetries)
	if err != nil {
		return Result{}, err
	}

	return parseResponse(text, seed != nil)
}

// completeWithRetry calls the backend with exponential backoff.
func (e *Enricher) completeWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := e.Backend.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// enrichResponse is the superset of both prompt variants' JSON shapes.
type enrichResponse struct {
	Category         string               `json:"category"`
	PinterestVolume  int                  `json:"pinterest_volume"`
	PinterestRelated []string             `json:"pinterest_related"`
	MomentumScore    int                  `json:"momentum_score"`
	SearchVolume     int                  `json:"search_volume"`
	Related          []string             `json:"related"`
	History          []types.HistoryPoint `json:"history"`
}

// parseResponse strips any code-fence wrapping and decodes the JSON body.
func parseResponse(text string, steered bool) (Result, error) {
	body := stripCodeFence(text)

	var er enrichResponse
	if err := json.Unmarshal([]byte(body), &er); err != nil {
		return Result{}, fmt.Errorf("parsing enrichment response: %w", err)
	}

	return Result{
		Category:         er.Category,
		Steered:          steered,
		PinterestVolume:  er.PinterestVolume,
		PinterestRelated: er.PinterestRelated,
		MomentumScore:    er.MomentumScore,
		SearchVolume:     er.SearchVolume,
		Related:          er.Related,
		History:          er.History,
	}, nil
}

// stripCodeFence removes a surrounding Markdown code fence, with or
// without a language tag, leaving bare text untouched.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, "{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
