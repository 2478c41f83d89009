// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/autoresearcher/internal/plan"
	"github.com/meshintel/autoresearcher/internal/report"
	"github.com/meshintel/autoresearcher/internal/retrieve"
	"github.com/meshintel/autoresearcher/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report [goal]",
	Short: "Generate a Markdown research report for a goal",
	Long: `Report collects and ranks documents for the research goal, indexes them in
the document store so the per-subtopic analysis can cite stored chunks, and
renders a structured Markdown report with references.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")
	if len(goal) < 8 {
		return fmt.Errorf("goal must be at least 8 characters")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	output, _ := cmd.Flags().GetString("output")

	collector := newCollector(retrievalConfig())
	result := collector.Collect(context.Background(), goal, maxResults, nil)
	if result.Error != "" {
		return fmt.Errorf("%s", result.Error)
	}

	docs := retrieve.Rank(result.Documents, goal, true)

	s, err := store.New(storeConfig())
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Store(context.Background(), docs); err != nil {
		fmt.Fprintf(os.Stderr, "warning: indexing documents failed: %v\n", err)
	}

	p := plan.Make(goal)
	markdown := report.NewGenerator(s).Generate(context.Background(), goal, docs, p.Subtopics)

	if output == "" || output == "-" {
		fmt.Println(markdown)
		return nil
	}

	if err := os.WriteFile(output, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s (%d documents)\n", output, len(docs))
	return nil
}

func init() {
	reportCmd.Flags().Int("max-results", 10, "maximum number of documents per source")
	reportCmd.Flags().String("output", "", "write the report to a file instead of stdout")

	rootCmd.AddCommand(reportCmd)
}
