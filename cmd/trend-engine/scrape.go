// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trend-engine/internal/scrape"
	"github.com/pdiddy/trend-engine/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Fetch page metadata for a URL",
	Long: `Scrape fetches the title, description, and image for a page, serving
from a 24-hour cache when possible. Unlike trend resolution this command
can fail: when nothing usable can be extracted it reports that the details
must be entered manually.`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 10s)")
	scrapeCmd.Flags().Bool("json", false, "output metadata as JSON")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	s, err := store.Open(cfg.Cache)
	if err != nil {
		return err
	}
	defer s.Close()

	scraper := &scrape.Scraper{
		Client: &http.Client{Timeout: cfg.Scrape.Timeout},
		Cache:  s,
		Config: cfg.Scrape,
		TTL:    cfg.Cache.MetadataTTL,
		Log:    os.Stderr,
	}

	meta, err := scraper.Fetch(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	fmt.Printf("%-13s %s\n", "Title:", meta.Title)
	fmt.Printf("%-13s %s\n", "Description:", meta.Description)
	fmt.Printf("%-13s %s\n", "Image:", meta.ImageURL)
	return nil
}
