// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trend-engine CLI.
//
// The CLI exposes the trend resolution pipeline (resolve), the persistent
// cache (cache), and the page-metadata scraper (scrape) as subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trend-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, then the named secret,
// then the empty string.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the trend-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "trend-engine",
	Short: "Keyword trend resolution with tiered degradation",
	Long: `trend-engine resolves keywords into normalized trend records by combining
a measured search signal (Google Trends via SerpApi), generative enrichment
(Claude), and a synthetic fallback, behind a 10-minute persistent cache.

Resolution never hard-fails: when a tier is unavailable the pipeline
degrades and tags the record's source field instead. The scrape subcommand
fetches page metadata with its own 24-hour cache; unlike resolution it may
fail and ask for manual entry.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trend-engine.yaml or ~/.config/trend-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for the trend cache database (default: data)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trend-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trend-engine"))
		}
	}

	viper.SetEnvPrefix("TREND_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
