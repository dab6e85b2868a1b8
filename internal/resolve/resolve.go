// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve orchestrates trend resolution: staleness-gated cache
// check, best-effort provider fetches, merge, fallback synthesis, and
// persistence. Resolution never surfaces a provider failure to the caller;
// it degrades tier by tier and tags the record's provenance instead.
package resolve

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/pdiddy/trend-engine/internal/enrich"
	"github.com/pdiddy/trend-engine/internal/signal"
	"github.com/pdiddy/trend-engine/internal/synth"
	"github.com/pdiddy/trend-engine/pkg/types"
)

// SignalProvider is the measured-interest tier.
type SignalProvider interface {
	Fetch(ctx context.Context, keyword string, cfg types.SignalConfig) (signal.Result, error)
}

// Enricher is the generative tier. A non-nil seed requests steered mode.
type Enricher interface {
	Enrich(ctx context.Context, keyword string, seed *enrich.Seed) (enrich.Result, error)
}

// Store is the keyed record store consumed by the resolver.
type Store interface {
	Get(ctx context.Context, keyword string) (*types.TrendRecord, error)
	Put(ctx context.Context, rec types.TrendRecord) error
}

// Resolver sequences one resolution: cache check, provider calls,
// merge or fallback, persistence. Dependencies are injected; a nil
// provider simply means that tier is unavailable, so an unconfigured
// install degrades to the fallback tier rather than erroring.
type Resolver struct {
	Store    Store
	Signal   SignalProvider
	Enricher Enricher

	SignalConfig types.SignalConfig

	// TTL is the cache freshness window (default types.TTLTrend).
	TTL time.Duration

	// Now is the clock (default time.Now). Tests pin it.
	Now func() time.Time

	// RNG seeds fallback history values (default time-seeded).
	RNG *rand.Rand

	// Log receives tier-degradation warnings (default io.Discard).
	Log io.Writer
}

// Resolve normalizes the query and produces a trend record. The only error
// it returns is an empty query after trimming; provider and persistence
// failures degrade instead. Concurrent resolutions for the same keyword are
// not deduplicated: each runs independently and the last store write wins.
func (r *Resolver) Resolve(ctx context.Context, query string) (types.TrendRecord, error) {
	keyword := types.DisplayKeyword(query)
	if keyword == "" {
		return types.TrendRecord{}, fmt.Errorf("query is empty: provide a keyword to resolve")
	}

	now := r.now()
	ttl := r.TTL
	if ttl <= 0 {
		ttl = types.TTLTrend
	}

	// Fast path: a fresh cached record is served unchanged, with no
	// provider calls.
	cached, err := r.Store.Get(ctx, keyword)
	if err != nil {
		fmt.Fprintf(r.log(), "warning: cache read for %q failed: %v\n", keyword, err)
	}
	if cached != nil && cached.Fresh(now, ttl) {
		return *cached, nil
	}

	sig := r.fetchSignal(ctx, keyword)
	enr := r.fetchEnrichment(ctx, keyword, sig)

	var rec types.TrendRecord
	if sig == nil && enr == nil {
		rec = synth.Record(keyword, now, r.rng())
	} else {
		rec = normalize(merge(keyword, sig, enr))
	}
	rec.ResolvedAt = now

	// Serve-then-best-effort-persist: a failed write is logged, never
	// surfaced to the caller.
	if err := r.Store.Put(ctx, rec); err != nil {
		fmt.Fprintf(r.log(), "warning: persisting %q failed: %v\n", keyword, err)
	}

	return rec, nil
}

// fetchSignal runs the measured tier, containing any failure to a warning.
func (r *Resolver) fetchSignal(ctx context.Context, keyword string) *signal.Result {
	if r.Signal == nil {
		return nil
	}
	res, err := r.Signal.Fetch(ctx, keyword, r.SignalConfig)
	if err != nil {
		fmt.Fprintf(r.log(), "warning: signal tier unavailable for %q: %v\n", keyword, err)
		return nil
	}
	return &res
}

// fetchEnrichment runs the generative tier, steered by the signal result
// when one exists. Failures are contained to a warning.
func (r *Resolver) fetchEnrichment(ctx context.Context, keyword string, sig *signal.Result) *enrich.Result {
	if r.Enricher == nil {
		return nil
	}

	var seed *enrich.Seed
	if sig != nil {
		seed = &enrich.Seed{
			MomentumScore: sig.MomentumScore,
			SearchVolume:  sig.SearchVolume,
			Related:       sig.Related,
		}
	}

	res, err := r.Enricher.Enrich(ctx, keyword, seed)
	if err != nil {
		fmt.Fprintf(r.log(), "warning: enrichment tier unavailable for %q: %v\n", keyword, err)
		return nil
	}
	return &res
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) rng() *rand.Rand {
	if r.RNG != nil {
		return r.RNG
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (r *Resolver) log() io.Writer {
	if r.Log != nil {
		return r.Log
	}
	return io.Discard
}
