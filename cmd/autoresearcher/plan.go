// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/autoresearcher/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan [goal]",
	Short: "Expand a research goal into a structured plan",
	Long: `Plan expands a research goal into subtopics with rationales, suggested
search queries, free data sources, and recommended next pipeline steps.
The plan is rule-based and involves no network calls.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")
	if len(goal) < 8 {
		return fmt.Errorf("goal must be at least 8 characters")
	}

	p := plan.Make(goal)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	fmt.Printf("Goal: %s\n\n", p.NormalizedGoal)

	fmt.Println("Subtopics:")
	for _, st := range p.Subtopics {
		fmt.Printf("  - %s\n    %s\n", st.Name, st.Rationale)
	}

	fmt.Println("\nSuggested queries:")
	for _, q := range p.SuggestedQueries {
		fmt.Printf("  - %s\n", q)
	}

	fmt.Println("\nSuggested sources:")
	for _, s := range p.SuggestedSources {
		fmt.Printf("  - %s\n", s)
	}

	fmt.Println("\nNext actions:")
	for i, a := range p.NextActions {
		fmt.Printf("  %d. %s\n", i+1, a)
	}

	return nil
}

func init() {
	planCmd.Flags().Bool("json", false, "output the plan as JSON")
	rootCmd.AddCommand(planCmd)
}
