// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TTL constants per cached data type. These are compared against the
// stored resolution timestamp at read time; entries are never swept.
const (
	// TTLTrend bounds how long a resolved trend record is served without
	// re-consulting the providers. Interest data moves fast.
	TTLTrend = 10 * time.Minute

	// TTLMetadata bounds the page-metadata cache. Page titles and
	// descriptions are close to static.
	TTLMetadata = 24 * time.Hour
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trend-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SignalConfig holds settings for the measured-interest tier.
type SignalConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the SerpApi Google Trends endpoints.
	// An empty key disables the tier.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// LookbackDays is the interest window length (default 7).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days"`

	// MaxRelated caps the related terms taken from the ranked list (default 5).
	MaxRelated int `json:"max_related" yaml:"max_related"`
}

// EnrichmentConfig holds settings for the generative tier.
type EnrichmentConfig struct {
	AIConfig `yaml:",inline"`
}

// CacheConfig holds settings for the persistent record store.
type CacheConfig struct {
	// DataDir is the directory holding trends.db (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// TrendTTL is the freshness window for trend records (default TTLTrend).
	TrendTTL time.Duration `json:"trend_ttl" yaml:"trend_ttl"`

	// MetadataTTL is the freshness window for page metadata (default TTLMetadata).
	MetadataTTL time.Duration `json:"metadata_ttl" yaml:"metadata_ttl"`
}

// ScrapeConfig holds settings for the page-metadata stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Signal     SignalConfig     `json:"signal" yaml:"signal"`
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Scrape     ScrapeConfig     `json:"scrape" yaml:"scrape"`
}
