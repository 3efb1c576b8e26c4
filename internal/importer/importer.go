// Package importer reads piece lists from CSV, Excel, JSON and DXF files.
// Spreadsheet imports detect the delimiter, map columns by header name
// (case-insensitive) and collect per-row problems instead of failing the
// whole file.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Pieces   []model.Piece
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
	Points   int
	NoMirror int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":     {"label", "name", "piece", "piece name", "description", "desc", "part", "item"},
	"width":     {"width", "w", "x"},
	"height":    {"height", "h", "length", "len", "y"},
	"quantity":  {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"points":    {"points", "outline", "polygon", "shape"},
	"no_mirror": {"forbid_mirroring", "forbid mirroring", "no mirror", "nomirror", "directional", "nap"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (label, width, height, quantity, points, no-mirror) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1, Points: -1, NoMirror: -1}
	slots := map[string]*int{
		"label":     &mapping.Label,
		"width":     &mapping.Width,
		"height":    &mapping.Height,
		"quantity":  &mapping.Quantity,
		"points":    &mapping.Points,
		"no_mirror": &mapping.NoMirror,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3, Points: 4, NoMirror: 5}, false
	}
	return mapping, true
}

// parseFlag reads a yes/no cell. The second result is false for unrecognized text.
func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "x":
		return true, true
	case "", "no", "n", "false", "0", "-":
		return false, true
	default:
		return false, false
	}
}

// ParsePoints parses an outline written as space-separated "x:y" pairs,
// e.g. "0:0 120:0 120:80 0:80".
func ParsePoints(s string) (model.Outline, error) {
	var outline model.Outline
	for _, pair := range strings.Fields(s) {
		xs, ys, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("point %q: expected x:y", pair)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pair, err)
		}
		outline = append(outline, model.Point2D{X: x, Y: y})
	}
	if len(outline) < 3 {
		return nil, fmt.Errorf("outline needs at least 3 points, got %d", len(outline))
	}
	return outline, nil
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Piece from a row using the given column mapping.
// A non-empty points cell defines the outline; otherwise width and height
// describe a rectangle. Returns the piece, any error message, and any
// warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, pieceCount int) (model.Piece, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Piece %d", pieceCount+1)
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.Piece{}, fmt.Sprintf("%s: Missing quantity value", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.Piece{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
	}
	if qty <= 0 {
		return model.Piece{}, fmt.Sprintf("%s: Quantity must be positive", rowLabel), ""
	}

	var outline model.Outline
	if pts := getCell(row, mapping.Points); pts != "" {
		outline, err = ParsePoints(pts)
		if err != nil {
			return model.Piece{}, fmt.Sprintf("%s: Invalid outline: %v", rowLabel, err), ""
		}
		if outline.Area() < 1e-9 {
			return model.Piece{}, fmt.Sprintf("%s: Outline has no area", rowLabel), ""
		}
		outline = normalizeOutline(outline.CounterClockwise())
	} else {
		widthStr := getCell(row, mapping.Width)
		if widthStr == "" {
			return model.Piece{}, fmt.Sprintf("%s: Missing width value", rowLabel), ""
		}
		width, err := strconv.ParseFloat(widthStr, 64)
		if err != nil {
			return model.Piece{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr), ""
		}

		heightStr := getCell(row, mapping.Height)
		if heightStr == "" {
			return model.Piece{}, fmt.Sprintf("%s: Missing height value", rowLabel), ""
		}
		height, err := strconv.ParseFloat(heightStr, 64)
		if err != nil {
			return model.Piece{}, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr), ""
		}

		if width <= 0 || height <= 0 {
			return model.Piece{}, fmt.Sprintf("%s: Width and height must be positive", rowLabel), ""
		}
		outline = model.Rect(width, height)
	}

	piece := model.NewPiece(label, outline, qty)

	var warning string
	if flagStr := getCell(row, mapping.NoMirror); flagStr != "" {
		flag, ok := parseFlag(flagStr)
		if ok {
			piece.ForbidMirroring = flag
		} else {
			warning = fmt.Sprintf("%s: Unknown mirroring flag '%s', mirroring allowed", rowLabel, flagStr)
		}
	}

	return piece, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile dispatches on the file extension.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ImportCSV(path)
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	case ".json":
		return ImportJSON(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", filepath.Ext(path))}}
	}
}

// ImportCSV imports pieces from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports pieces from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports pieces from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportJSON reads either a bare piece array or an object with a "pieces"
// field. Pieces without an ID or layout polygon get them filled in.
func ImportJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	var pieces []model.Piece
	if err := json.Unmarshal(data, &pieces); err != nil {
		var wrapped struct {
			Pieces []model.Piece `json:"pieces"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse JSON: %v", err))
			return result
		}
		pieces = wrapped.Pieces
	}

	for i, p := range pieces {
		if len(p.Outline) < 3 {
			result.Errors = append(result.Errors, fmt.Sprintf("Piece %d: outline needs at least 3 points", i+1))
			continue
		}
		piece := model.NewPiece(p.Label, normalizeOutline(p.Outline.CounterClockwise()), p.Quantity)
		if p.ID != "" {
			piece.ID = p.ID
		}
		if piece.Label == "" {
			piece.Label = fmt.Sprintf("Piece %d", i+1)
		}
		if piece.Quantity < 1 {
			piece.Quantity = 1
		}
		if len(p.Layout) >= 3 {
			piece.Layout = p.Layout.CounterClockwise()
		}
		piece.ForbidMirroring = p.ForbidMirroring
		result.Pieces = append(result.Pieces, piece)
	}

	if len(result.Pieces) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No pieces found")
	}
	return result
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Points == -1 {
			if mapping.Width == -1 {
				missing = append(missing, "Width")
			}
			if mapping.Height == -1 {
				missing = append(missing, "Height")
			}
		}
		if mapping.Quantity == -1 {
			missing = append(missing, "Quantity")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil && strings.TrimSpace(rows[0][1]) != "" {
			// Unrecognized header; keep the positional mapping
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		piece, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Pieces))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Pieces = append(result.Pieces, piece)
	}

	return result
}
