// Package export writes nesting results to PDF markers, QR labels, XLSX
// reports, DXF cutting files and image previews.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SeamNest/internal/model"
)

// ErrNoSheets is returned when a layout has nothing to export.
var ErrNoSheets = errors.New("no sheets to export")

// pieceColor represents an RGB color for a placed piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// drawnLength is the roll length shown for a sheet: the used length, or
// the whole sheet when nothing was placed.
func drawnLength(sheet model.SheetLayout) float64 {
	if sheet.UsedLength > 0 {
		return sheet.UsedLength
	}
	return sheet.Height
}

// ExportPDF writes a marker: one page per sheet with the placed outlines,
// followed by a summary page. The roll runs left to right on the page.
func ExportPDF(path string, result model.LayoutResult, settings model.NestSettings) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, sheet := range result.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, sheet, settings)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

// pageMapper turns sheet coordinates (x across the width, y along the
// roll) into page coordinates with the roll running left to right.
type pageMapper struct {
	scale, offsetX, offsetY, width float64
}

func (m pageMapper) point(p model.Point2D) fpdf.PointType {
	return fpdf.PointType{
		X: m.offsetX + p.Y*m.scale,
		Y: m.offsetY + (m.width-p.X)*m.scale,
	}
}

func (m pageMapper) polygon(o model.Outline) []fpdf.PointType {
	pts := make([]fpdf.PointType, len(o))
	for i, p := range o {
		pts[i] = m.point(p)
	}
	return pts
}

// renderSheetPage draws a single sheet on the current PDF page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.SheetLayout, settings model.NestSettings) {
	length := drawnLength(sheet)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	name := settings.FabricName
	if name == "" {
		name = "Fabric"
	}
	title := fmt.Sprintf("Sheet %d: %s (%.0f mm wide, %.0f mm used)", sheet.Index+1, name, sheet.Width, sheet.UsedLength)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Piece area: %.0f mm² | Used area: %.0f mm² | Efficiency: %.1f%%",
		len(sheet.Pieces), sheet.UsedArea(), sheet.Width*sheet.UsedLength, sheet.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/length, drawHeight/sheet.Width)
	canvasW := length * scale
	canvasH := sheet.Width * scale
	m := pageMapper{
		scale:   scale,
		offsetX: marginLeft + (drawWidth-canvasW)/2,
		offsetY: drawAreaTop,
		width:   sheet.Width,
	}

	// Fabric background
	pdf.SetFillColor(235, 228, 214)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(m.offsetX, m.offsetY, canvasW, canvasH, "FD")

	for i, p := range sheet.Pieces {
		col := pieceColors[i%len(pieceColors)]
		outline := p.PlacedOutline()

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(m.polygon(outline), "FD")

		min, max := outline.BoundingBox()
		pw := (max.Y - min.Y) * scale
		ph := (max.X - min.X) * scale
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			center := m.point(model.Point2D{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2})
			labelW := pdf.GetStringWidth(p.Label)
			if labelW < pw-2 {
				pdf.SetXY(center.X-labelW/2, center.Y-2)
				pdf.CellFormat(labelW, 4, p.Label, "", 0, "C", false, 0, "")
			}
		}
	}

	// Occupied-region boundary
	if len(sheet.Boundary) >= 3 && len(sheet.Pieces) > 0 {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.2)
		pdf.SetDashPattern([]float64{1.5, 1}, 0)
		pdf.Polygon(m.polygon(sheet.Boundary), "D")
		pdf.SetDashPattern([]float64{}, 0)
	}

	drawDimensionAnnotations(pdf, sheet.Width, length, m.offsetX, m.offsetY, canvasW, canvasH)
	drawPiecesLegend(pdf, sheet, m.offsetY+canvasH+5)
}

// drawDimensionAnnotations labels the used length below the drawing and
// the fabric width to its left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, width, length, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	lengthLabel := fmt.Sprintf("%.0f mm", length)
	lLabelW := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX+(canvasW-lLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(lLabelW, 4, lengthLabel, "", 0, "C", false, 0, "")

	widthLabel := fmt.Sprintf("%.0f mm", width)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX-3-wLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPiecesLegend renders a compact legend of placed pieces below the sheet.
func drawPiecesLegend(pdf *fpdf.Fpdf, sheet model.SheetLayout, startY float64) {
	if len(sheet.Pieces) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Pieces {
		col := pieceColors[i%len(pieceColors)]
		label := p.Label
		if deg := p.Transform.RotationDegrees(); math.Abs(deg) > 1e-6 {
			label += fmt.Sprintf(" %.0f°", deg)
		}
		if p.Mirrored {
			label += " M"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.LayoutResult, settings model.NestSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Sheets Used", fmt.Sprintf("%d", len(result.Sheets))},
		{"Total Length", fmt.Sprintf("%.0f mm", result.TotalLength())},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", result.TotalEfficiency())},
		{"Pieces Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Unplaced Pieces", fmt.Sprintf("%d", len(result.Unplaced))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 50, 50, 35, 35, 60}
	headers := []string{"Sheet", "Width", "Used Length", "Pieces", "Efficiency", "Piece / Used Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range result.Sheets {
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", sheet.Index+1),
			fmt.Sprintf("%.0f mm", sheet.Width),
			fmt.Sprintf("%.0f mm", sheet.UsedLength),
			fmt.Sprintf("%d", len(sheet.Pieces)),
			fmt.Sprintf("%.1f%%", sheet.Efficiency()),
			fmt.Sprintf("%.0f / %.0f mm²", sheet.UsedArea(), sheet.Width*sheet.UsedLength),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Pieces", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, u := range result.Unplaced {
			if y > pageHeight-marginBottom-10 {
				break
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %s", u.Piece.Label, u.Reason)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Nesting Settings", "", 0, "L", false, 0, "")
	y += 9

	rotation := "off"
	if settings.AllowRotation {
		rotation = fmt.Sprintf("every %d°", settings.RotationStep)
	}
	strategy := "bounding area"
	if settings.PreferLengthSaving {
		strategy = "length saving"
	}
	settingsItems := []struct {
		label string
		value string
	}{
		{"Fabric Width", fmt.Sprintf("%.0f mm", settings.SheetWidth)},
		{"Piece Spacing", fmt.Sprintf("%.1f mm", settings.Shift)},
		{"Rotation", rotation},
		{"Ranking", strategy},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		if y > pageHeight-marginBottom-6 {
			break
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SeamNest - pattern nesting", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the piece box dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
