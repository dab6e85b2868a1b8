// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pdiddy/trend-engine/pkg/types"
)

func TestRecordShape(t *testing.T) {
	now := time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC)
	rec := Record("pottery", now, rand.New(rand.NewSource(1)))

	if rec.Keyword != "pottery" {
		t.Errorf("Keyword = %q", rec.Keyword)
	}
	if rec.MomentumScore != 72 {
		t.Errorf("MomentumScore = %d, want 72", rec.MomentumScore)
	}
	if rec.SearchVolume != 12500 {
		t.Errorf("SearchVolume = %d, want 12500", rec.SearchVolume)
	}
	if rec.Category != "General" {
		t.Errorf("Category = %q, want General", rec.Category)
	}
	if rec.Source != types.SourceFallback {
		t.Errorf("Source = %q, want %q", rec.Source, types.SourceFallback)
	}

	wantRelated := []string{"pottery ideas", "pottery aesthetic", "best pottery", "pottery diy", "pottery trends"}
	if len(rec.RelatedKeywords) != 5 {
		t.Fatalf("RelatedKeywords length = %d, want exactly 5", len(rec.RelatedKeywords))
	}
	for i, want := range wantRelated {
		if rec.RelatedKeywords[i] != want {
			t.Errorf("RelatedKeywords[%d] = %q, want %q", i, rec.RelatedKeywords[i], want)
		}
	}

	if len(rec.HistoricalData) != 7 {
		t.Fatalf("HistoricalData length = %d, want 7", len(rec.HistoricalData))
	}
	if rec.HistoricalData[6].Date != "2026-08-24" {
		t.Errorf("last history date = %q, want today", rec.HistoricalData[6].Date)
	}
	if rec.HistoricalData[0].Date != "2026-08-18" {
		t.Errorf("first history date = %q, want six days back", rec.HistoricalData[0].Date)
	}
	for i, pt := range rec.HistoricalData {
		if pt.Value < 40 || pt.Value > 100 {
			t.Errorf("HistoricalData[%d].Value = %d, want in [40,100]", i, pt.Value)
		}
		if i > 0 && pt.Date <= rec.HistoricalData[i-1].Date {
			t.Errorf("history dates not increasing at %d: %q then %q",
				i, rec.HistoricalData[i-1].Date, pt.Date)
		}
	}
}

func TestRecordDeterministicWithFixedSeed(t *testing.T) {
	now := time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC)
	a := Record("pottery", now, rand.New(rand.NewSource(42)))
	b := Record("pottery", now, rand.New(rand.NewSource(42)))

	for i := range a.HistoricalData {
		if a.HistoricalData[i] != b.HistoricalData[i] {
			t.Errorf("point %d differs across same-seed runs: %v vs %v",
				i, a.HistoricalData[i], b.HistoricalData[i])
		}
	}
}
