// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/inventor-scout/internal/export"
	"github.com/meshintel/inventor-scout/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write accumulated results as an Excel workbook",
	Long: `Export writes every stored patent and inventor analysis to a two-sheet
Excel workbook: "Patent Data" and "Contact Analysis".`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	results, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer results.Close()

	patents, err := results.Patents()
	if err != nil {
		return err
	}
	analyses, err := results.Analyses()
	if err != nil {
		return err
	}
	if len(patents) == 0 && len(analyses) == 0 {
		return fmt.Errorf("nothing to export: run research or analyze first")
	}

	out, _ := cmd.Flags().GetString("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := export.Workbook(f, patents, analyses); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d patents, %d analyses)\n", out, len(patents), len(analyses))
	return nil
}

func init() {
	exportCmd.Flags().String("out", "inventor-scout.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
