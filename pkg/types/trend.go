// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures exchanged between
// pipeline stages: trend records, page metadata, and stage configuration.
package types

import (
	"strings"
	"time"
)

// Source identifies which tier(s) produced a trend record.
type Source string

const (
	// SourceSignal marks records built from measured interest data alone.
	SourceSignal Source = "Signal"

	// SourceEnrichment marks records built from the generative tier alone.
	SourceEnrichment Source = "Enrichment"

	// SourceBoth marks records merged from both provider tiers.
	SourceBoth Source = "Signal+Enrichment"

	// SourceFallback marks synthesized records served when both
	// provider tiers were unavailable.
	SourceFallback Source = "Fallback"
)

// HistoryPoint is a single daily interest sample.
type HistoryPoint struct {
	// Date is the sample day in YYYY-MM-DD form.
	Date string `json:"date" yaml:"date"`

	// Value is the normalized interest level for that day (>= 0).
	Value int `json:"value" yaml:"value"`
}

// TrendRecord is the canonical resolved trend for one keyword. Records are
// immutable once constructed: a new resolution replaces the record wholesale,
// never patches individual fields.
type TrendRecord struct {
	// Keyword is the trimmed query with its display casing preserved.
	// Cache lookups use CacheKey instead.
	Keyword string `json:"keyword" yaml:"keyword"`

	Category string `json:"category" yaml:"category"`

	// MomentumScore is an integer in [0, 100].
	MomentumScore int `json:"momentum_score" yaml:"momentum_score"`

	// SearchVolume is a non-negative estimate of monthly interest.
	SearchVolume int `json:"search_volume" yaml:"search_volume"`

	// RelatedKeywords is deduplicated and holds at most 8 entries.
	RelatedKeywords []string `json:"related_keywords" yaml:"related_keywords"`

	// HistoricalData is chronological and holds at most 7 daily points.
	HistoricalData []HistoryPoint `json:"historical_data" yaml:"historical_data"`

	// Source records which tier(s) produced the record.
	Source Source `json:"source" yaml:"source"`

	// ResolvedAt is set when the record is persisted.
	ResolvedAt time.Time `json:"resolved_at" yaml:"resolved_at"`
}

// CacheKey returns the case-folded store key for the record's keyword.
func (r TrendRecord) CacheKey() string {
	return NormalizeKeyword(r.Keyword)
}

// Fresh reports whether the record is inside the TTL window at the given time.
func (r TrendRecord) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.ResolvedAt) < ttl
}

// NormalizeKeyword trims surrounding whitespace, collapses internal runs of
// whitespace, and case-folds the result for use as a cache key.
func NormalizeKeyword(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// DisplayKeyword trims and collapses whitespace but preserves casing.
func DisplayKeyword(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// PageMetadata is the scraped metadata for one URL, cached by the
// metadata pipeline (24-hour TTL, see CacheConfig).
type PageMetadata struct {
	URL         string    `json:"url" yaml:"url"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	ImageURL    string    `json:"image_url" yaml:"image_url"`
	FetchedAt   time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Fresh reports whether the metadata is inside the TTL window.
func (m PageMetadata) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(m.FetchedAt) < ttl
}
