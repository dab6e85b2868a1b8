// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/pdiddy/trend-engine/internal/enrich"
	"github.com/pdiddy/trend-engine/internal/signal"
	"github.com/pdiddy/trend-engine/pkg/types"
)

// --- mocks ---

type memStore struct {
	records  map[string]types.TrendRecord
	putCalls int
	failPut  bool
	failGet  bool
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]types.TrendRecord)}
}

func (m *memStore) Get(_ context.Context, keyword string) (*types.TrendRecord, error) {
	if m.failGet {
		return nil, fmt.Errorf("store offline")
	}
	rec, ok := m.records[types.NormalizeKeyword(keyword)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memStore) Put(_ context.Context, rec types.TrendRecord) error {
	m.putCalls++
	if m.failPut {
		return fmt.Errorf("disk full")
	}
	m.records[rec.CacheKey()] = rec
	return nil
}

type stubSignal struct {
	res   signal.Result
	err   error
	calls int
}

func (s *stubSignal) Fetch(_ context.Context, _ string, _ types.SignalConfig) (signal.Result, error) {
	s.calls++
	return s.res, s.err
}

type stubEnricher struct {
	res   enrich.Result
	err   error
	calls int
	seeds []*enrich.Seed
}

func (e *stubEnricher) Enrich(_ context.Context, _ string, seed *enrich.Seed) (enrich.Result, error) {
	e.calls++
	e.seeds = append(e.seeds, seed)
	return e.res, e.err
}

var testNow = time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC)

func testResolver(store *memStore, sig *stubSignal, enr *stubEnricher) *Resolver {
	r := &Resolver{
		Store: store,
		Now:   func() time.Time { return testNow },
		RNG:   rand.New(rand.NewSource(1)),
	}
	if sig != nil {
		r.Signal = sig
	}
	if enr != nil {
		r.Enricher = enr
	}
	return r
}

// --- tests ---

func TestResolveEmptyQuery(t *testing.T) {
	r := testResolver(newMemStore(), nil, nil)
	for _, query := range []string{"", "   ", "\t\n"} {
		if _, err := r.Resolve(context.Background(), query); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", query)
		}
	}
}

func TestResolveFreshCacheHit(t *testing.T) {
	store := newMemStore()
	cached := types.TrendRecord{
		Keyword:       "Pottery",
		Category:      "Crafts",
		MomentumScore: 61,
		SearchVolume:  3000,
		Source:        types.SourceBoth,
		ResolvedAt:    testNow.Add(-5 * time.Minute),
	}
	store.records[cached.CacheKey()] = cached

	sig := &stubSignal{}
	enr := &stubEnricher{}
	r := testResolver(store, sig, enr)

	got, err := r.Resolve(context.Background(), "pottery")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	// Cached record served unchanged: same source and resolution time.
	if got.Source != cached.Source || !got.ResolvedAt.Equal(cached.ResolvedAt) {
		t.Errorf("cache hit altered the record: %+v", got)
	}
	if got.Keyword != "Pottery" {
		t.Errorf("Keyword = %q, want stored display casing", got.Keyword)
	}
	if sig.calls != 0 || enr.calls != 0 {
		t.Errorf("provider calls on cache hit: signal=%d enrichment=%d", sig.calls, enr.calls)
	}
	if store.putCalls != 0 {
		t.Errorf("putCalls = %d, want 0 on cache hit", store.putCalls)
	}
}

func TestResolveStaleCacheReResolves(t *testing.T) {
	store := newMemStore()
	stale := types.TrendRecord{
		Keyword:    "pottery",
		Source:     types.SourceFallback,
		ResolvedAt: testNow.Add(-11 * time.Minute),
	}
	store.records[stale.CacheKey()] = stale

	sig := &stubSignal{res: signal.Result{MomentumScore: 70, SearchVolume: 2000}}
	enr := &stubEnricher{res: enrich.Result{Category: "Crafts", Steered: true, PinterestVolume: 4000}}
	r := testResolver(store, sig, enr)

	got, err := r.Resolve(context.Background(), "pottery")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if sig.calls != 1 || enr.calls != 1 {
		t.Errorf("provider calls: signal=%d enrichment=%d, want 1 each", sig.calls, enr.calls)
	}
	if got.Source != types.SourceBoth {
		t.Errorf("Source = %q", got.Source)
	}
	if !got.ResolvedAt.Equal(testNow) {
		t.Errorf("ResolvedAt = %v, want resolution time", got.ResolvedAt)
	}

	// The stale entry is overwritten, never accumulated.
	if len(store.records) != 1 {
		t.Errorf("store holds %d entries for one keyword, want 1", len(store.records))
	}
	if stored := store.records[stale.CacheKey()]; stored.Source != types.SourceBoth {
		t.Errorf("stored record not replaced: %+v", stored)
	}
}

func TestResolveEndToEnd(t *testing.T) {
	store := newMemStore()
	sig := &stubSignal{res: signal.Result{
		MomentumScore: 80,
		SearchVolume:  5000,
		Related:       []string{"minimalist"},
		History: []types.HistoryPoint{
			{Date: "2026-08-18", Value: 40}, {Date: "2026-08-19", Value: 45},
			{Date: "2026-08-20", Value: 50}, {Date: "2026-08-21", Value: 55},
			{Date: "2026-08-22", Value: 60}, {Date: "2026-08-23", Value: 58},
			{Date: "2026-08-24", Value: 63},
		},
	}}
	enr := &stubEnricher{res: enrich.Result{
		Category:         "Home Decor",
		Steered:          true,
		PinterestVolume:  7000,
		PinterestRelated: []string{"decor ideas"},
	}}
	r := testResolver(store, sig, enr)

	got, err := r.Resolve(context.Background(), "minimalist decor")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if got.Category != "Home Decor" {
		t.Errorf("Category = %q", got.Category)
	}
	if got.MomentumScore != 80 {
		t.Errorf("MomentumScore = %d, want 80", got.MomentumScore)
	}
	if got.SearchVolume != 6000 {
		t.Errorf("SearchVolume = %d, want 6000", got.SearchVolume)
	}
	if len(got.RelatedKeywords) != 2 || got.RelatedKeywords[0] != "minimalist" || got.RelatedKeywords[1] != "decor ideas" {
		t.Errorf("RelatedKeywords = %v", got.RelatedKeywords)
	}
	if len(got.HistoricalData) != 7 {
		t.Errorf("HistoricalData length = %d, want 7", len(got.HistoricalData))
	}
	if got.Source != types.SourceBoth {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceBoth)
	}

	// The enricher was steered by the signal result.
	if len(enr.seeds) != 1 || enr.seeds[0] == nil {
		t.Fatalf("enricher seed = %v, want steered", enr.seeds)
	}
	if enr.seeds[0].MomentumScore != 80 || enr.seeds[0].SearchVolume != 5000 {
		t.Errorf("seed = %+v", enr.seeds[0])
	}
}

func TestResolveSignalOnly(t *testing.T) {
	sig := &stubSignal{res: signal.Result{MomentumScore: 90, SearchVolume: 8000, Related: []string{"x"}}}
	enr := &stubEnricher{err: fmt.Errorf("model overloaded")}
	var log bytes.Buffer
	r := testResolver(newMemStore(), sig, enr)
	r.Log = &log

	got, err := r.Resolve(context.Background(), "kw")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Source != types.SourceSignal {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceSignal)
	}
	if got.Category != "General" {
		t.Errorf("Category = %q, want default without enrichment", got.Category)
	}
	if got.MomentumScore != 90 || got.SearchVolume != 8000 {
		t.Errorf("quantitative fields = %d/%d", got.MomentumScore, got.SearchVolume)
	}
	if log.Len() == 0 {
		t.Error("expected a degradation warning in the log")
	}
}

func TestResolveEnrichmentOnlyIsUnsteered(t *testing.T) {
	sig := &stubSignal{err: fmt.Errorf("quota exceeded")}
	enr := &stubEnricher{res: enrich.Result{
		Category:      "Food & Drink",
		MomentumScore: 55,
		SearchVolume:  2400,
		Related:       []string{"recipes"},
	}}
	r := testResolver(newMemStore(), sig, enr)

	got, err := r.Resolve(context.Background(), "sourdough")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Source != types.SourceEnrichment {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceEnrichment)
	}
	if got.MomentumScore != 55 || got.SearchVolume != 2400 {
		t.Errorf("fields = %d/%d", got.MomentumScore, got.SearchVolume)
	}
	if len(enr.seeds) != 1 || enr.seeds[0] != nil {
		t.Errorf("seed = %v, want nil (unsteered) when signal failed", enr.seeds)
	}
}

func TestResolveFallbackTotality(t *testing.T) {
	sig := &stubSignal{err: fmt.Errorf("network down")}
	enr := &stubEnricher{err: fmt.Errorf("api down")}
	store := newMemStore()
	r := testResolver(store, sig, enr)

	got, err := r.Resolve(context.Background(), "macrame")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if got.MomentumScore != 72 || got.SearchVolume != 12500 || got.Category != "General" {
		t.Errorf("fallback fields = %d/%d/%q", got.MomentumScore, got.SearchVolume, got.Category)
	}
	if len(got.RelatedKeywords) != 5 {
		t.Errorf("RelatedKeywords length = %d, want exactly 5", len(got.RelatedKeywords))
	}
	if len(got.HistoricalData) != 7 {
		t.Errorf("HistoricalData length = %d, want 7", len(got.HistoricalData))
	}
	if got.Source != types.SourceFallback {
		t.Errorf("Source = %q, want %q", got.Source, types.SourceFallback)
	}

	// Fallback records are persisted like any other.
	if stored := store.records[got.CacheKey()]; stored.Source != types.SourceFallback {
		t.Errorf("fallback record not persisted: %+v", stored)
	}
}

func TestResolveNilProvidersDegradeToFallback(t *testing.T) {
	r := testResolver(newMemStore(), nil, nil)
	got, err := r.Resolve(context.Background(), "kw")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Source != types.SourceFallback {
		t.Errorf("Source = %q, want %q with no providers configured", got.Source, types.SourceFallback)
	}
}

func TestResolvePersistFailureStillServes(t *testing.T) {
	store := newMemStore()
	store.failPut = true
	sig := &stubSignal{res: signal.Result{MomentumScore: 75, SearchVolume: 1000}}
	var log bytes.Buffer
	r := testResolver(store, sig, nil)
	r.Log = &log

	got, err := r.Resolve(context.Background(), "kw")
	if err != nil {
		t.Fatalf("Resolve() error: %v, want record despite write failure", err)
	}
	if got.MomentumScore != 75 {
		t.Errorf("MomentumScore = %d", got.MomentumScore)
	}
	if log.Len() == 0 {
		t.Error("expected a persistence warning in the log")
	}
}

func TestResolveStoreReadFailureTreatedAsMiss(t *testing.T) {
	store := newMemStore()
	store.failGet = true
	sig := &stubSignal{res: signal.Result{MomentumScore: 60, SearchVolume: 500}}
	var log bytes.Buffer
	r := testResolver(store, sig, nil)
	r.Log = &log

	got, err := r.Resolve(context.Background(), "kw")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Source != types.SourceSignal {
		t.Errorf("Source = %q", got.Source)
	}
	if sig.calls != 1 {
		t.Errorf("signal calls = %d, want 1 (read failure is a miss)", sig.calls)
	}
}

func TestResolveNormalizesQueryWhitespace(t *testing.T) {
	sig := &stubSignal{res: signal.Result{MomentumScore: 50, SearchVolume: 100}}
	store := newMemStore()
	r := testResolver(store, sig, nil)

	got, err := r.Resolve(context.Background(), "  Minimalist \t Decor  ")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Keyword != "Minimalist Decor" {
		t.Errorf("Keyword = %q, want collapsed whitespace with casing preserved", got.Keyword)
	}
	if _, ok := store.records["minimalist decor"]; !ok {
		t.Errorf("store key not case-folded: %v", store.records)
	}
}
