// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/autoresearcher/internal/retrieve"
	"github.com/meshintel/autoresearcher/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local document store (process, search, stats, export)",
	Long: `Store manages a local SQLite document store with FTS5 indexing. Use
subcommands to collect and index documents for a goal, search the stored
chunks, inspect collection statistics, or export the collection.

The binary must be built with the sqlite_fts5 build tag ("mage build" sets
it); without the tag SQLite has no FTS5 module and the store cannot be
initialized.`,
}

// --- process subcommand ---

var storeProcessCmd = &cobra.Command{
	Use:   "process [goal]",
	Short: "Collect documents for a goal and index them",
	Long: `Process collects documents for the research goal, chunks each document's
title and abstract, and indexes the chunks. Chunks already present are
skipped, so re-running with the same goal is safe.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStoreProcess,
}

func runStoreProcess(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")
	if len(goal) < 8 {
		return fmt.Errorf("goal must be at least 8 characters")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	s, err := store.New(storeConfig())
	if err != nil {
		return err
	}
	defer s.Close()

	collector := newCollector(retrievalConfig())
	result := collector.Collect(context.Background(), goal, maxResults, nil)
	if result.Error != "" {
		return fmt.Errorf("%s", result.Error)
	}

	docs := retrieve.Rank(result.Documents, goal, false)
	summary, err := s.Store(context.Background(), docs)
	if err != nil {
		return err
	}

	fmt.Printf("Collected %d documents; stored %d chunks, skipped %d existing.\n",
		len(docs), summary.StoredCount, summary.SkippedExisting)
	return nil
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the stored chunks with full-text search",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStoreSearch,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := store.New(storeConfig())
	if err != nil {
		return err
	}
	defer s.Close()

	matches, err := s.SearchSimilar(context.Background(), query, limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-40s  %s\n", "Rank", "Text", "Title", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, m := range matches {
		text := m.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		title := m.Metadata.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-40s  %s\n", i+1, text, title, m.Metadata.Source)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(matches))
	return nil
}

// --- stats subcommand ---

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document store statistics",
	RunE:  runStoreStats,
}

func runStoreStats(cmd *cobra.Command, args []string) error {
	s, err := store.New(storeConfig())
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Total chunks:     %d\n", stats.TotalChunks)
	fmt.Printf("Unique documents: %d\n", stats.UniqueDocuments)

	if len(stats.Sources) > 0 {
		fmt.Println("\nChunks by source:")
		names := make([]string, 0, len(stats.Sources))
		for name := range stats.Sources {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-20s %d\n", name, stats.Sources[name])
		}
	}

	if len(stats.Years) > 0 {
		fmt.Println("\nChunks by year (most recent):")
		years := make([]int, 0, len(stats.Years))
		for y := range stats.Years {
			years = append(years, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(years)))
		for _, y := range years {
			fmt.Printf("  %d  %d\n", y, stats.Years[y])
		}
	}

	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document store to YAML",
	Long:  `Export writes the full chunk collection to <data-dir>/index/export.yaml.`,
	RunE:  runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	cfg := storeConfig()

	s, err := store.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Exported to %s/index/export.yaml\n", cfg.DataDir)
	return nil
}

func init() {
	storeProcessCmd.Flags().Int("max-results", 10, "maximum number of documents per source")

	storeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeSearchCmd.Flags().Bool("json", false, "output results as JSON")

	storeStatsCmd.Flags().Bool("json", false, "output statistics as JSON")

	storeCmd.AddCommand(storeProcessCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeStatsCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
