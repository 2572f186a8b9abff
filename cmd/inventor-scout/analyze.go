// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [patent-number] [inventor-name]",
	Short: "Find contact leads for one inventor of a patent",
	Long: `Analyze runs the enrichment loop for a single inventor: a text-generation
round plans the search, the web search gathers profile candidates, and a
second round selects or declines a profile URL. The result is cached per
(patent, inventor) pair; repeating the command returns the cached analysis
without touching the network.

Quote multi-word inventor names: inventor-scout analyze US7654321 "Jane Doe"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(pipelineConfig(), true)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	inventor := strings.Join(args[1:], " ")

	rec, err := c.registry.Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	result, cached, err := c.analyzer.Analyze(ctx, rec, inventor)
	if err != nil {
		return err
	}
	if cached {
		fmt.Fprintln(os.Stderr, "using cached analysis")
	} else if c.results != nil {
		if err := c.results.SaveAnalysis(result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: persisting analysis failed: %v\n", err)
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Inventor:   %s\n", result.InventorName)
	fmt.Printf("Patent:     %s (%s)\n", rec.PatentNumber, rec.Title)
	if result.Found() {
		fmt.Printf("Profile:    %s (confidence %.0f%%)\n", result.ProfileURL, result.Confidence*100)
	} else {
		fmt.Println("Profile:    not found")
	}
	if len(result.EmailSuggestions) > 0 {
		fmt.Printf("Emails:     %s\n", strings.Join(result.EmailSuggestions, ", "))
	}
	if len(result.RepoSearchTerms) > 0 {
		fmt.Printf("Repos:      %s\n", strings.Join(result.RepoSearchTerms, ", "))
	}
	if result.SearchStrategy != "" {
		fmt.Printf("Strategy:   %s\n", result.SearchStrategy)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "output the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
