package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mrstrict/internal/domain"
)

// SheetName is the worksheet holding the marks table.
const SheetName = "Marks"

// WriteXLSX renders the results as a spreadsheet with the same columns as
// the CSV report. Grades are text ("9/10"); scores are numbers shown with
// two decimals.
func WriteXLSX(out io.Writer, results []domain.ComparisonResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range results {
		r := &results[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.CandidateID, r.Grade.String(), r.ScorePercent}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(results) > 0 {
		format := "0.00"
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
		if err != nil {
			return fmt.Errorf("create score style: %w", err)
		}
		last := fmt.Sprintf("C%d", len(results)+1)
		if err := f.SetCellStyle(SheetName, "C2", last, style); err != nil {
			return fmt.Errorf("apply score style: %w", err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
