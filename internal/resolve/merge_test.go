// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"reflect"
	"testing"

	"github.com/pdiddy/trend-engine/internal/enrich"
	"github.com/pdiddy/trend-engine/internal/signal"
	"github.com/pdiddy/trend-engine/pkg/types"
)

func sigResult() *signal.Result {
	return &signal.Result{
		MomentumScore: 80,
		SearchVolume:  5000,
		Related:       []string{"minimalist"},
		History: []types.HistoryPoint{
			{Date: "2026-08-18", Value: 55},
			{Date: "2026-08-19", Value: 60},
		},
	}
}

func steeredResult() *enrich.Result {
	return &enrich.Result{
		Category:         "Home Decor",
		Steered:          true,
		PinterestVolume:  7000,
		PinterestRelated: []string{"decor ideas"},
	}
}

func unsteeredResult() *enrich.Result {
	return &enrich.Result{
		Category:      "Home Decor",
		MomentumScore: 65,
		SearchVolume:  4200,
		Related:       []string{"decor ideas", "cozy home"},
		History: []types.HistoryPoint{
			{Date: "2026-08-17", Value: 48},
		},
	}
}

func TestMergeBothTiers(t *testing.T) {
	got := merge("minimalist decor", sigResult(), steeredResult())

	if got.Category != "Home Decor" {
		t.Errorf("Category = %q", got.Category)
	}
	if got.MomentumScore != 80 {
		t.Errorf("MomentumScore = %d, want signal's 80", got.MomentumScore)
	}
	if got.SearchVolume != 6000 {
		t.Errorf("SearchVolume = %d, want mean of 5000 and 7000", got.SearchVolume)
	}
	if !reflect.DeepEqual(got.RelatedKeywords, []string{"minimalist", "decor ideas"}) {
		t.Errorf("RelatedKeywords = %v", got.RelatedKeywords)
	}
	if len(got.HistoricalData) != 2 || got.HistoricalData[1].Value != 60 {
		t.Errorf("HistoricalData = %v, want signal's series", got.HistoricalData)
	}
	if got.Source != types.SourceBoth {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceBoth)
	}
}

func TestMergeMomentumPrecedence(t *testing.T) {
	tests := []struct {
		name string
		s    *signal.Result
		e    *enrich.Result
		want int
	}{
		{"signal wins over unsteered enrichment", sigResult(), unsteeredResult(), 80},
		{"signal wins over steered enrichment", sigResult(), steeredResult(), 80},
		{"unsteered enrichment alone supplies momentum", nil, unsteeredResult(), 65},
		{"steered enrichment alone has no estimate", nil, steeredResult(), 50},
		{"signal alone", sigResult(), nil, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := merge("kw", tt.s, tt.e); got.MomentumScore != tt.want {
				t.Errorf("MomentumScore = %d, want %d", got.MomentumScore, tt.want)
			}
		})
	}
}

func TestMergeVolumeUsesPresentEstimates(t *testing.T) {
	tests := []struct {
		name string
		s    *signal.Result
		e    *enrich.Result
		want int
	}{
		{"both present averages signal and steered estimate", sigResult(), steeredResult(), 6000},
		{"both present averages signal and unsteered estimate", sigResult(), unsteeredResult(), 4600},
		{"signal only", sigResult(), nil, 5000},
		{"steered enrichment only", nil, steeredResult(), 7000},
		{"unsteered enrichment only", nil, unsteeredResult(), 4200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := merge("kw", tt.s, tt.e); got.SearchVolume != tt.want {
				t.Errorf("SearchVolume = %d, want %d", got.SearchVolume, tt.want)
			}
		})
	}
}

func TestMergeCategoryDefaults(t *testing.T) {
	got := merge("kw", sigResult(), nil)
	if got.Category != "General" {
		t.Errorf("Category = %q, want General when enrichment is absent", got.Category)
	}
	if got.Source != types.SourceSignal {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceSignal)
	}

	e := steeredResult()
	e.Category = ""
	got = merge("kw", sigResult(), e)
	if got.Category != "General" {
		t.Errorf("Category = %q, want General when enrichment omits it", got.Category)
	}
}

func TestMergeHistoryPrecedence(t *testing.T) {
	// Signal history is authoritative even when enrichment has one.
	got := merge("kw", sigResult(), unsteeredResult())
	if len(got.HistoricalData) != 2 || got.HistoricalData[0].Date != "2026-08-18" {
		t.Errorf("HistoricalData = %v, want signal series", got.HistoricalData)
	}

	got = merge("kw", nil, unsteeredResult())
	if len(got.HistoricalData) != 1 || got.HistoricalData[0].Date != "2026-08-17" {
		t.Errorf("HistoricalData = %v, want enrichment series", got.HistoricalData)
	}
	if got.Source != types.SourceEnrichment {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceEnrichment)
	}
}

func TestMergeRelatedUnionOrder(t *testing.T) {
	s := sigResult()
	s.Related = []string{"a", "b", "c"}
	e := steeredResult()
	e.PinterestRelated = []string{"b", "d"}

	got := normalize(merge("kw", s, e))
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got.RelatedKeywords, want) {
		t.Errorf("RelatedKeywords = %v, want first-seen union %v", got.RelatedKeywords, want)
	}
}

func TestNormalize(t *testing.T) {
	rec := types.TrendRecord{
		Keyword:       "kw",
		MomentumScore: 140,
		SearchVolume:  -5,
		RelatedKeywords: []string{
			"a", "b", "a", "", "c", "d", "e", "f", "g", "h", "i",
		},
		HistoricalData: []types.HistoryPoint{
			{Date: "2026-08-20", Value: 10},
			{Date: "2026-08-18", Value: -3},
			{Date: "2026-08-19", Value: 5},
		},
	}

	got := normalize(rec)

	if got.MomentumScore != 100 {
		t.Errorf("MomentumScore = %d, want clamped to 100", got.MomentumScore)
	}
	if got.SearchVolume != 0 {
		t.Errorf("SearchVolume = %d, want clamped to 0", got.SearchVolume)
	}
	if len(got.RelatedKeywords) != 8 {
		t.Errorf("RelatedKeywords length = %d, want capped at 8", len(got.RelatedKeywords))
	}
	for i, term := range got.RelatedKeywords {
		if term == "" {
			t.Errorf("RelatedKeywords[%d] is empty", i)
		}
		for j := i + 1; j < len(got.RelatedKeywords); j++ {
			if term == got.RelatedKeywords[j] {
				t.Errorf("duplicate related keyword %q", term)
			}
		}
	}
	wantDates := []string{"2026-08-18", "2026-08-19", "2026-08-20"}
	for i, pt := range got.HistoricalData {
		if pt.Date != wantDates[i] {
			t.Errorf("HistoricalData[%d].Date = %q, want %q", i, pt.Date, wantDates[i])
		}
		if pt.Value < 0 {
			t.Errorf("HistoricalData[%d].Value = %d, want non-negative", i, pt.Value)
		}
	}
}

func TestNormalizeTruncatesHistoryKeepingRecent(t *testing.T) {
	var history []types.HistoryPoint
	for d := 10; d <= 19; d++ {
		history = append(history, types.HistoryPoint{
			Date: "2026-08-" + string(rune('0'+d/10)) + string(rune('0'+d%10)), Value: d,
		})
	}
	got := normalize(types.TrendRecord{HistoricalData: history})
	if len(got.HistoricalData) != 7 {
		t.Fatalf("history length = %d, want 7", len(got.HistoricalData))
	}
	if got.HistoricalData[0].Date != "2026-08-13" || got.HistoricalData[6].Date != "2026-08-19" {
		t.Errorf("kept wrong window: %v", got.HistoricalData)
	}
}
