// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signal fetches measured interest data for a keyword from the
// SerpApi Google Trends endpoints and reduces it to a momentum estimate,
// a volume estimate, related terms, and a short daily history.
//
// One logical fetch issues two HTTP calls (interest timeline and related
// queries). Either call failing fails the whole fetch: momentum and
// related-term selection both assume series data is present, so there is
// no partial signal result.
package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/trend-engine/internal/httputil"
	"github.com/pdiddy/trend-engine/pkg/types"
)

// serpAPIBase is the SerpApi search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search.json"

const (
	defaultLookbackDays = 7
	defaultMaxRelated   = 5

	// volumeScale converts the last normalized interest sample (0-100)
	// into a monthly-volume estimate.
	volumeScale = 1000
)

// Result is the measured tier's output for one keyword.
type Result struct {
	// MomentumScore is in [0, 100], centered at 50 and driven by the
	// slope of the final two interest samples.
	MomentumScore int

	// SearchVolume is a linear scale-up of the last interest sample.
	// It is an estimate, not an authoritative count.
	SearchVolume int

	// Related holds the top-ranked related queries, possibly empty.
	Related []string

	// History holds up to 7 daily interest points, oldest first.
	History []types.HistoryPoint
}

// Provider queries the SerpApi Google Trends engine.
type Provider struct {
	Client *http.Client
	APIKey string
}

// Fetch retrieves the interest timeline and related queries for the keyword
// over the lookback window and reduces them to a Result. Any transport
// error, non-200 status, parse error, or empty series fails the whole call.
func (p *Provider) Fetch(ctx context.Context, keyword string, cfg types.SignalConfig) (Result, error) {
	timeline, err := p.fetchTimeline(ctx, keyword, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("interest timeline: %w", err)
	}

	related, err := p.fetchRelated(ctx, keyword, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("related queries: %w", err)
	}

	values := make([]int, len(timeline))
	for i, pt := range timeline {
		values[i] = pt.Value
	}

	maxRelated := cfg.MaxRelated
	if maxRelated <= 0 {
		maxRelated = defaultMaxRelated
	}
	if len(related) > maxRelated {
		related = related[:maxRelated]
	}

	if len(timeline) > 7 {
		timeline = timeline[len(timeline)-7:]
	}

	return Result{
		MomentumScore: momentum(values),
		SearchVolume:  values[len(values)-1] * volumeScale,
		Related:       related,
		History:       timeline,
	}, nil
}

// momentum centers the score at 50 and amplifies the slope of the final
// two samples by 2, clamped to [0, 100]. Missing samples count as 0.
func momentum(values []int) int {
	var last, prev int
	if len(values) >= 1 {
		last = values[len(values)-1]
	}
	if len(values) >= 2 {
		prev = values[len(values)-2]
	}
	return clamp(50 + 2*(last-prev))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (p *Provider) fetchTimeline(ctx context.Context, keyword string, cfg types.SignalConfig) ([]types.HistoryPoint, error) {
	body, err := p.get(ctx, keyword, "TIMESERIES", cfg)
	if err != nil {
		return nil, err
	}

	var tr timelineResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("parsing timeline response: %w", err)
	}
	if len(tr.InterestOverTime.TimelineData) == 0 {
		return nil, fmt.Errorf("empty interest series for %q", keyword)
	}

	points := make([]types.HistoryPoint, 0, len(tr.InterestOverTime.TimelineData))
	for _, td := range tr.InterestOverTime.TimelineData {
		if len(td.Values) == 0 {
			continue
		}
		points = append(points, types.HistoryPoint{
			Date:  pointDate(td),
			Value: td.Values[0].ExtractedValue,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("malformed interest series for %q", keyword)
	}
	return points, nil
}

func (p *Provider) fetchRelated(ctx context.Context, keyword string, cfg types.SignalConfig) ([]string, error) {
	body, err := p.get(ctx, keyword, "RELATED_QUERIES", cfg)
	if err != nil {
		return nil, err
	}

	var rr relatedResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("parsing related response: %w", err)
	}

	var terms []string
	for _, q := range rr.RelatedQueries.Top {
		if q.Query != "" {
			terms = append(terms, q.Query)
		}
	}
	// An empty related list is a valid, non-failing result.
	return terms, nil
}

func (p *Provider) get(ctx context.Context, keyword, dataType string, cfg types.SignalConfig) ([]byte, error) {
	days := cfg.LookbackDays
	if days <= 0 {
		days = defaultLookbackDays
	}

	params := url.Values{
		"engine":    {"google_trends"},
		"q":         {keyword},
		"data_type": {dataType},
		"date":      {fmt.Sprintf("now %d-d", days)},
		"api_key":   {p.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("trends API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading trends response: %w", err)
	}
	return body, nil
}

// pointDate prefers the unix timestamp; the raw date label is a fallback
// for responses that omit it.
func pointDate(td timelineData) string {
	if secs, err := strconv.ParseInt(td.Timestamp, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC().Format("2006-01-02")
	}
	return td.Date
}

// SerpApi JSON structures.
type timelineResponse struct {
	InterestOverTime struct {
		TimelineData []timelineData `json:"timeline_data"`
	} `json:"interest_over_time"`
}

type timelineData struct {
	Date      string          `json:"date"`
	Timestamp string          `json:"timestamp"`
	Values    []timelineValue `json:"values"`
}

type timelineValue struct {
	Query          string `json:"query"`
	Value          string `json:"value"`
	ExtractedValue int    `json:"extracted_value"`
}

type relatedResponse struct {
	RelatedQueries struct {
		Top    []relatedQuery `json:"top"`
		Rising []relatedQuery `json:"rising"`
	} `json:"related_queries"`
}

type relatedQuery struct {
	Position       int    `json:"position"`
	Query          string `json:"query"`
	ExtractedValue int    `json:"extracted_value"`
}
