// Package xlsx exports monthly summaries as Excel workbooks.
package xlsx

import (
	"fmt"
	"io"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the summary is written to.
const SheetName = "Monthly Accidents"

// WriteSummary writes s as a workbook: a MONTH column followed by one column
// per year, with empty cells where no accidents were recorded and a totals
// row at the bottom.
func WriteSummary(w io.Writer, s domain.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(s.Years)+1)
	header = append(header, "MONTH")
	for _, y := range s.Years {
		header = append(header, y)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range s.Rows {
		values := make([]any, 0, len(row.Counts)+1)
		values = append(values, row.Month)
		for _, c := range row.Counts {
			if c == nil {
				values = append(values, nil)
				continue
			}
			values = append(values, *c)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write month %d: %w", row.Month, err)
		}
	}

	totals := make([]any, 0, len(s.Years)+1)
	totals = append(totals, "TOTAL")
	for _, y := range s.Years {
		totals = append(totals, s.Total(y))
	}
	cell, err := excelize.CoordinatesToCellName(1, len(s.Rows)+2)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	return f.Write(w)
}
