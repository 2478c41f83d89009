// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/autoresearcher/internal/retrieve"
	"github.com/meshintel/autoresearcher/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect [goal]",
	Short: "Collect documents from the configured sources",
	Long: `Collect queries the enabled sources (arXiv, Semantic Scholar, Wikipedia)
concurrently for documents matching the research goal, deduplicates
near-duplicates across sources, and ranks the survivors by relevance.
A failing source is reported as a warning; the others still contribute.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCollect,
}

func runCollect(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")
	if len(goal) < 8 {
		return fmt.Errorf("goal must be at least 8 characters")
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	sourcesFlag, _ := cmd.Flags().GetString("sources")
	recencyBias, _ := cmd.Flags().GetBool("recency-bias")

	var requested []string
	if sourcesFlag != "" {
		for _, s := range strings.Split(sourcesFlag, ",") {
			requested = append(requested, strings.TrimSpace(s))
		}
	}

	collector := newCollector(retrievalConfig())
	result := collector.Collect(context.Background(), goal, maxResults, requested)
	if result.Error != "" {
		return fmt.Errorf("%s", result.Error)
	}

	result.Documents = retrieve.Rank(result.Documents, goal, recencyBias)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return formatCollectOutput(result)
}

func formatCollectOutput(result types.AggregateResult) error {
	for name, sr := range result.Sources {
		if sr.Error != "" {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", name, sr.Error)
		}
	}

	if len(result.Documents) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-60s  %-6s  %-18s  %s\n",
		"Rank", "Title", "Year", "Source", "Citations")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, d := range result.Documents {
		title := d.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := "-"
		if d.Year > 0 {
			year = fmt.Sprintf("%d", d.Year)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-60s  %-6s  %-18s  %d\n",
			i+1, title, year, d.Source, d.CitationCount)
	}

	fmt.Fprintf(os.Stdout, "\n%d unique documents (%d found across sources)\n",
		result.UniqueDocuments, result.TotalFoundAcrossSources)
	return nil
}

func init() {
	collectCmd.Flags().Int("max-results", 10, "maximum number of documents per source")
	collectCmd.Flags().String("sources", "", "comma-separated source subset: arxiv, semantic_scholar, wikipedia (default: all)")
	collectCmd.Flags().Bool("recency-bias", false, "boost recently published documents in ranking")
	collectCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(collectCmd)
}
