// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trend-engine/internal/enrich"
	"github.com/pdiddy/trend-engine/internal/resolve"
	"github.com/pdiddy/trend-engine/internal/signal"
	"github.com/pdiddy/trend-engine/internal/store"
	"github.com/pdiddy/trend-engine/pkg/types"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "trend-engine/0.1"
	defaultModel     = "claude-sonnet-4-5-20250929"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [keyword]",
	Short: "Resolve a keyword into a normalized trend record",
	Long: `Resolve produces a trend record for a keyword: momentum score, search
volume, category, related keywords, and a 7-day history.

A fresh cache entry (under 10 minutes old) is served directly. On a miss
the measured signal tier and the generative enrichment tier are consulted
best-effort and merged; if both are unavailable a synthetic fallback record
is served. The record's source field reports which tiers contributed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 10s)")
	resolveCmd.Flags().Duration("ttl", 0, "cache freshness window (default 10m)")
	resolveCmd.Flags().Int("lookback-days", 0, "interest window length in days (default 7)")
	resolveCmd.Flags().String("model", "", "AI model for the enrichment tier")
	resolveCmd.Flags().Bool("json", false, "output the record as JSON")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("provide a non-empty keyword to resolve")
	}

	cfg := pipelineConfig(cmd)

	s, err := store.Open(cfg.Cache)
	if err != nil {
		return err
	}
	defer s.Close()

	resolver := newResolver(s, cfg)

	rec, err := resolver.Resolve(context.Background(), query)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printRecord(rec)
	return nil
}

// newResolver wires the configured tiers. A tier without an API key is
// left nil; the resolver treats it as unavailable.
func newResolver(s *store.Store, cfg types.PipelineConfig) *resolve.Resolver {
	r := &resolve.Resolver{
		Store:        s,
		SignalConfig: cfg.Signal,
		TTL:          cfg.Cache.TrendTTL,
		Log:          os.Stderr,
	}

	if cfg.Signal.APIKey != "" {
		r.Signal = &signal.Provider{
			Client: &http.Client{Timeout: cfg.Signal.Timeout},
			APIKey: cfg.Signal.APIKey,
		}
	}
	if cfg.Enrichment.APIKey != "" {
		r.Enricher = &enrich.Enricher{
			Backend: &enrich.ClaudeBackend{
				APIKey: cfg.Enrichment.APIKey,
				Model:  cfg.Enrichment.Model,
				Client: &http.Client{Timeout: cfg.Signal.Timeout},
			},
			Config: cfg.Enrichment,
		}
	}
	return r
}

// pipelineConfig assembles stage configuration from flags, the viper
// config file, and loaded secrets, in that order of precedence.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl == 0 {
		ttl = viper.GetDuration("cache.trend_ttl")
	}
	if ttl == 0 {
		ttl = types.TTLTrend
	}

	lookback, _ := cmd.Flags().GetInt("lookback-days")
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("enrichment.model")
	}
	if model == "" {
		model = defaultModel
	}

	dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("cache.data_dir")
	}
	if dataDir == "" {
		dataDir = "data"
	}

	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent}

	return types.PipelineConfig{
		Signal: types.SignalConfig{
			HTTPConfig:   httpCfg,
			APIKey:       secretDefault("serpapi-api-key", viper.GetString("signal.api_key")),
			LookbackDays: lookback,
		},
		Enrichment: types.EnrichmentConfig{
			AIConfig: types.AIConfig{
				Model:      model,
				APIKey:     secretDefault("anthropic-api-key", viper.GetString("enrichment.api_key")),
				MaxRetries: viper.GetInt("enrichment.max_retries"),
			},
		},
		Cache: types.CacheConfig{
			DataDir:     dataDir,
			TrendTTL:    ttl,
			MetadataTTL: types.TTLMetadata,
		},
		Scrape: types.ScrapeConfig{HTTPConfig: httpCfg},
	}
}

func printRecord(rec types.TrendRecord) {
	fmt.Printf("%-16s %s\n", "Keyword:", rec.Keyword)
	fmt.Printf("%-16s %s\n", "Category:", rec.Category)
	fmt.Printf("%-16s %d/100\n", "Momentum:", rec.MomentumScore)
	fmt.Printf("%-16s %d\n", "Search volume:", rec.SearchVolume)
	fmt.Printf("%-16s %s\n", "Related:", strings.Join(rec.RelatedKeywords, ", "))
	fmt.Printf("%-16s %s\n", "Source:", rec.Source)
	fmt.Printf("%-16s %s\n", "Resolved at:", rec.ResolvedAt.Format(time.RFC3339))
	if len(rec.HistoricalData) > 0 {
		fmt.Println("History:")
		for _, pt := range rec.HistoricalData {
			fmt.Printf("  %s  %3d\n", pt.Date, pt.Value)
		}
	}
}
