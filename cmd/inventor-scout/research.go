// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/inventor-scout/internal/pipeline"
)

var researchCmd = &cobra.Command{
	Use:   "research [patent-number]...",
	Short: "Fetch a batch of patent records from the registry",
	Long: `Research fetches one or more patents from the public registry, reporting
per-item progress. Identifiers may carry a "US" prefix and a kind code
("US7654321B2"); they are normalized before lookup. Fetched records are
cached and persisted to the results database for later export.

A failed item is reported and skipped; the rest of the batch continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(pipelineConfig(), true)
	if err != nil {
		return err
	}
	defer c.Close()

	coord := pipeline.NewCoordinator(c.registry, c.results, log().Named("pipeline"))
	sink := pipeline.WriterSink{W: os.Stdout}
	if err := coord.Run(context.Background(), args, sink); err != nil {
		return fmt.Errorf("batch run: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(researchCmd)
}
