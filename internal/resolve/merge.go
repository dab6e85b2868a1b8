// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"sort"

	"github.com/pdiddy/trend-engine/internal/enrich"
	"github.com/pdiddy/trend-engine/internal/signal"
	"github.com/pdiddy/trend-engine/pkg/types"
)

// Defaults applied when neither tier supplies a quantitative field. They
// only matter for degenerate single-tier responses; the fallback tier has
// its own constants.
const (
	defaultMomentum = 50
	defaultVolume   = 1000

	maxRelated = 8
	maxHistory = 7
)

// merge combines the tier results into one canonical record. At least one
// of s and e is non-nil; the caller runs the fallback synthesizer instead
// when both tiers failed.
//
// Tie-breaks favor the measured tier for quantitative fields (momentum,
// volume, history) and the generative tier for qualitative ones (category,
// phrasing of related terms).
func merge(keyword string, s *signal.Result, e *enrich.Result) types.TrendRecord {
	rec := types.TrendRecord{
		Keyword:  keyword,
		Category: "General",
	}

	if e != nil && e.Category != "" {
		rec.Category = e.Category
	}

	switch {
	case s != nil:
		rec.MomentumScore = s.MomentumScore
	case e != nil && !e.Steered:
		rec.MomentumScore = e.MomentumScore
	default:
		// Steered enrichment carries no momentum estimate.
		rec.MomentumScore = defaultMomentum
	}

	switch {
	case s != nil && e != nil:
		// Average of whatever numeric estimate each tier contributed.
		rec.SearchVolume = (s.SearchVolume + e.VolumeEstimate()) / 2
	case s != nil:
		rec.SearchVolume = s.SearchVolume
	case e != nil:
		rec.SearchVolume = e.VolumeEstimate()
	default:
		rec.SearchVolume = defaultVolume
	}

	var related []string
	if s != nil {
		related = append(related, s.Related...)
	}
	if e != nil {
		related = append(related, e.RelatedTerms()...)
	}
	rec.RelatedKeywords = related

	// The measured series is authoritative when present.
	if s != nil && len(s.History) > 0 {
		rec.HistoricalData = s.History
	} else if e != nil {
		rec.HistoricalData = e.History
	}

	switch {
	case s != nil && e != nil:
		rec.Source = types.SourceBoth
	case e != nil:
		rec.Source = types.SourceEnrichment
	default:
		rec.Source = types.SourceSignal
	}

	return rec
}

// normalize enforces the record bounds regardless of which tier produced
// each field: momentum in [0,100], non-negative volume and history values,
// deduplicated related terms capped at 8, chronological history capped at
// the 7 most recent points.
func normalize(rec types.TrendRecord) types.TrendRecord {
	if rec.MomentumScore < 0 {
		rec.MomentumScore = 0
	}
	if rec.MomentumScore > 100 {
		rec.MomentumScore = 100
	}
	if rec.SearchVolume < 0 {
		rec.SearchVolume = 0
	}

	seen := make(map[string]bool, len(rec.RelatedKeywords))
	var related []string
	for _, term := range rec.RelatedKeywords {
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		related = append(related, term)
		if len(related) == maxRelated {
			break
		}
	}
	rec.RelatedKeywords = related

	history := make([]types.HistoryPoint, 0, len(rec.HistoricalData))
	for _, pt := range rec.HistoricalData {
		if pt.Value < 0 {
			pt.Value = 0
		}
		history = append(history, pt)
	}
	// ISO dates sort chronologically as strings.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	rec.HistoricalData = history

	return rec
}
