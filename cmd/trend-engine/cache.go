// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trend-engine/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and export the trend cache",
	Long: `Cache inspects the persistent trend record store. Entries are never
actively expired; staleness is evaluated when a record is read, so listed
entries may be older than the resolution TTL.`,
}

// --- list subcommand ---

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cached trend records",
	RunE:  runCacheList,
}

func runCacheList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.List(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	fmt.Printf("%-30s  %-16s  %-8s  %-10s  %-18s  %s\n",
		"Keyword", "Category", "Momentum", "Volume", "Source", "Resolved")
	fmt.Println(strings.Repeat("-", 100))
	for _, rec := range records {
		keyword := rec.Keyword
		if len(keyword) > 30 {
			keyword = keyword[:27] + "..."
		}
		category := rec.Category
		if len(category) > 16 {
			category = category[:13] + "..."
		}
		fmt.Printf("%-30s  %-16s  %-8d  %-10d  %-18s  %s\n",
			keyword, category, rec.MomentumScore, rec.SearchVolume,
			rec.Source, rec.ResolvedAt.Format(time.RFC3339))
	}
	fmt.Printf("\n%d records\n", len(records))
	return nil
}

// --- show subcommand ---

var cacheShowCmd = &cobra.Command{
	Use:   "show [keyword]",
	Short: "Show one cached trend record",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheShow,
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	keyword := strings.Join(args, " ")
	rec, err := s.Get(context.Background(), keyword)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no cached record for %q", keyword)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	printRecord(*rec)
	return nil
}

// --- export subcommand ---

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the trend cache to YAML or JSON",
	RunE:  runCacheExport,
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	switch format {
	case "yaml", "":
		if out == "" {
			out = "trends-export.yaml"
		}
		if err := s.ExportYAML(context.Background(), out); err != nil {
			return err
		}
	case "json":
		if out == "" {
			out = "trends-export.json"
		}
		if err := s.ExportJSON(context.Background(), out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", out)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := pipelineConfig(cmd)
	return store.Open(cfg.Cache)
}

func init() {
	cacheShowCmd.Flags().Bool("json", false, "output the record as JSON")
	cacheExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	cacheExportCmd.Flags().String("out", "", "output path (default trends-export.[format])")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	rootCmd.AddCommand(cacheCmd)
}
