// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders stored patents and analyses as a two-sheet Excel
// workbook for handoff to outreach teams.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/meshintel/inventor-scout/pkg/types"
)

const (
	patentSheet   = "Patent Data"
	analysisSheet = "Contact Analysis"
)

var patentHeader = []any{"Patent Number", "Title", "Inventors", "Publication Date", "Source"}

var analysisHeader = []any{
	"Patent Number", "Inventor Name", "Confidence", "Profile URL",
	"Email Suggestions", "Repo Search Terms", "Search Strategy", "Analysis Date",
}

// Workbook writes an xlsx workbook to w. The first sheet lists patents, the
// second the per-inventor contact analyses. The analysis sheet is omitted
// when there are no analyses.
func Workbook(w io.Writer, patents []types.PatentRecord, analyses []types.InventorAnalysis) error {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than leaving an empty "Sheet1" behind.
	if err := f.SetSheetName("Sheet1", patentSheet); err != nil {
		return fmt.Errorf("naming patent sheet: %w", err)
	}
	if err := writePatentSheet(f, patents); err != nil {
		return err
	}

	if len(analyses) > 0 {
		if _, err := f.NewSheet(analysisSheet); err != nil {
			return fmt.Errorf("creating analysis sheet: %w", err)
		}
		if err := writeAnalysisSheet(f, analyses); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writePatentSheet(f *excelize.File, patents []types.PatentRecord) error {
	if err := setRow(f, patentSheet, 1, patentHeader); err != nil {
		return err
	}
	for i, rec := range patents {
		date := ""
		if !rec.PublicationDate.IsZero() {
			date = rec.PublicationDate.Format("2006-01-02")
		}
		row := []any{
			rec.PatentNumber,
			rec.Title,
			strings.Join(rec.Inventors, ", "),
			date,
			rec.Source,
		}
		if err := setRow(f, patentSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAnalysisSheet(f *excelize.File, analyses []types.InventorAnalysis) error {
	if err := setRow(f, analysisSheet, 1, analysisHeader); err != nil {
		return err
	}
	for i, a := range analyses {
		profile := a.ProfileURL
		if profile == "" {
			profile = "Not Found"
		}
		row := []any{
			a.PatentNumber,
			a.InventorName,
			fmt.Sprintf("%.0f%%", a.Confidence*100),
			profile,
			strings.Join(a.EmailSuggestions, ", "),
			strings.Join(a.RepoSearchTerms, ", "),
			a.SearchStrategy,
			a.CreatedAt.Format("2006-01-02"),
		}
		if err := setRow(f, analysisSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("computing cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
