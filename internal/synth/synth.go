// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth generates a complete, schema-valid trend record from
// nothing but the keyword. It is the terminal fallback tier: it has no
// external dependencies and cannot fail.
package synth

import (
	"math/rand"
	"time"

	"github.com/pdiddy/trend-engine/pkg/types"
)

// Fixed fallback estimates. The record's shape is stable; history values
// are the only pseudo-random content.
const (
	fallbackMomentum = 72
	fallbackVolume   = 12500
	fallbackCategory = "General"

	historyDays = 7
	valueFloor  = 40
	valueCeil   = 100
)

// relatedTemplates expand the keyword into exactly five related phrases.
var relatedTemplates = []func(kw string) string{
	func(kw string) string { return kw + " ideas" },
	func(kw string) string { return kw + " aesthetic" },
	func(kw string) string { return "best " + kw },
	func(kw string) string { return kw + " diy" },
	func(kw string) string { return kw + " trends" },
}

// Record builds a fallback trend record for the keyword. The history holds
// one point per day ending today (in UTC relative to now), with values
// drawn from rng in [40, 100]. Callers own the seed: production uses a
// time-seeded source, tests a fixed one.
func Record(keyword string, now time.Time, rng *rand.Rand) types.TrendRecord {
	related := make([]string, len(relatedTemplates))
	for i, tmpl := range relatedTemplates {
		related[i] = tmpl(keyword)
	}

	history := make([]types.HistoryPoint, historyDays)
	for i := range history {
		day := now.UTC().AddDate(0, 0, i-historyDays+1)
		history[i] = types.HistoryPoint{
			Date:  day.Format("2006-01-02"),
			Value: valueFloor + rng.Intn(valueCeil-valueFloor+1),
		}
	}

	return types.TrendRecord{
		Keyword:         keyword,
		Category:        fallbackCategory,
		MomentumScore:   fallbackMomentum,
		SearchVolume:    fallbackVolume,
		RelatedKeywords: related,
		HistoricalData:  history,
		Source:          types.SourceFallback,
	}
}
