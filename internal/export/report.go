package export

import (
	"fmt"
	"math"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	placementSheet = "Placements"
	unplacedSheet  = "Unplaced"
)

// ExportReport writes an XLSX workbook with a summary, one row per placed
// piece and one row per unplaced piece.
func ExportReport(path string, result model.LayoutResult, settings model.NestSettings) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{placementSheet, unplacedSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	summary := [][]interface{}{
		{"Fabric", settings.FabricName},
		{"Fabric width (mm)", settings.SheetWidth},
		{"Piece spacing (mm)", settings.Shift},
		{"Sheets used", len(result.Sheets)},
		{"Total length (mm)", round2(result.TotalLength())},
		{"Efficiency (%)", round2(result.TotalEfficiency())},
		{"Pieces placed", result.PlacedCount()},
		{"Pieces unplaced", len(result.Unplaced)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	placements := [][]interface{}{
		{"Sheet", "Piece", "ID", "X (mm)", "Y (mm)", "Rotation (deg)", "Mirrored", "Area (mm²)"},
	}
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Pieces {
			at := p.Transform.Offset()
			placements = append(placements, []interface{}{
				sheet.Index + 1, p.Label, p.ID,
				round2(at.X), round2(at.Y), round2(p.Transform.RotationDegrees()),
				p.Mirrored, round2(p.Area()),
			})
		}
	}
	if err := writeRows(f, placementSheet, placements); err != nil {
		return err
	}

	unplaced := [][]interface{}{{"Piece", "ID", "Reason"}}
	for _, u := range result.Unplaced {
		unplaced = append(unplaced, []interface{}{u.Piece.Label, u.Piece.ID, u.Reason})
	}
	if err := writeRows(f, unplacedSheet, unplaced); err != nil {
		return err
	}

	for _, name := range []string{placementSheet, unplacedSheet} {
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("style %s header: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
