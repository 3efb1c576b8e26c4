package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SeamNest/internal/model"
)

// buildTestResult lays out three pieces over two sheets by hand.
func buildTestResult() model.LayoutResult {
	front := model.NewPiece("Front", model.Rect(600, 400), 1)
	front.Placed = true

	sleeve := model.NewPiece("Sleeve", model.Outline{{X: 0, Y: 0}, {X: 300, Y: 0}, {X: 250, Y: 500}, {X: 50, Y: 500}}, 1)
	sleeve.Placed = true
	sleeve.Transform = model.Translation(600, 0)

	back := model.NewPiece("Back", model.Rect(400, 800), 1)
	back.Placed = true
	back.Transform = model.Translation(800, 0).Mul(model.Rotation(math.Pi / 2))

	return model.LayoutResult{
		Sheets: []model.SheetLayout{
			{
				Index: 0, Width: 1500, Height: 10000,
				Pieces:     []model.Piece{front, sleeve},
				Boundary:   model.Rect(900, 500),
				UsedLength: 500,
			},
			{
				Index: 1, Width: 1500, Height: 10000,
				Pieces:     []model.Piece{back},
				Boundary:   model.Rect(800, 400),
				UsedLength: 400,
			},
		},
		Unplaced: []model.UnplacedPiece{
			{Piece: model.NewPiece("Collar", model.Rect(2000, 50), 1), Reason: "no feasible placement"},
		},
	}
}

func requireFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker.pdf")

	settings := model.DefaultNestSettings()
	settings.FabricName = "Cotton twill"
	if err := ExportPDF(path, buildTestResult(), settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	requireFile(t, path, 500)
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, model.LayoutResult{}, model.DefaultNestSettings())
	if err != ErrNoSheets {
		t.Errorf("expected ErrNoSheets, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no file should be written for an empty result")
	}
}

func TestExportPDF_EmptySheetUsesFullHeight(t *testing.T) {
	sheet := model.SheetLayout{Width: 1500, Height: 3000}
	if got := drawnLength(sheet); got != 3000 {
		t.Errorf("drawnLength = %v, want 3000", got)
	}
	sheet.UsedLength = 120
	if got := drawnLength(sheet); got != 120 {
		t.Errorf("drawnLength = %v, want 120", got)
	}
}

func TestPageMapperRotatesRollOntoPage(t *testing.T) {
	m := pageMapper{scale: 0.5, offsetX: 10, offsetY: 20, width: 100}

	origin := m.point(model.Point2D{})
	if origin.X != 10 || origin.Y != 70 {
		t.Errorf("origin mapped to %v", origin)
	}
	far := m.point(model.Point2D{X: 100, Y: 40})
	if far.X != 30 || far.Y != 20 {
		t.Errorf("far corner mapped to %v", far)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 25, 7},
		{10, 15, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestResult()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	requireFile(t, path, 500)
}

func TestExportLabels_NoPieces(t *testing.T) {
	result := model.LayoutResult{Sheets: []model.SheetLayout{{Width: 100, Height: 100}}}
	if err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), result); err == nil {
		t.Error("expected error when nothing is placed")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestResult())
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}

	sleeve := labels[1]
	if sleeve.PieceLabel != "Sleeve" || sleeve.SheetIndex != 1 {
		t.Errorf("unexpected label %+v", sleeve)
	}
	if sleeve.X != 600 || sleeve.Y != 0 {
		t.Errorf("expected sleeve at (600, 0), got (%v, %v)", sleeve.X, sleeve.Y)
	}
	if sleeve.Width != 300 || sleeve.Height != 500 {
		t.Errorf("expected 300x500 box, got %vx%v", sleeve.Width, sleeve.Height)
	}

	back := labels[2]
	if back.SheetIndex != 2 {
		t.Errorf("expected back on sheet 2, got %d", back.SheetIndex)
	}
	if math.Abs(back.Rotation-90) > 1e-9 {
		t.Errorf("expected 90 degree rotation, got %v", back.Rotation)
	}
}

func TestExportReport_CreatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	if err := ExportReport(path, buildTestResult(), model.DefaultNestSettings()); err != nil {
		t.Fatalf("ExportReport returned error: %v", err)
	}
	requireFile(t, path, 1000)
}

func TestRound2(t *testing.T) {
	if got := round2(1.005e3 / 3); got != 335 {
		t.Errorf("round2 = %v, want 335", got)
	}
	if got := round2(-2.346); got != -2.35 {
		t.Errorf("round2 = %v, want -2.35", got)
	}
}

func TestExportDXF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")

	if err := ExportDXF(path, buildTestResult()); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}
	requireFile(t, path, 500)
}

func TestExportDXF_EmptyResult(t *testing.T) {
	if err := ExportDXF(filepath.Join(t.TempDir(), "layout.dxf"), model.LayoutResult{}); err != ErrNoSheets {
		t.Errorf("expected ErrNoSheets, got %v", err)
	}
}

func TestExportPreview_Formats(t *testing.T) {
	sheet := buildTestResult().Sheets[0]
	dir := t.TempDir()

	for _, name := range []string{"sheet.png", "sheet.svg"} {
		path := filepath.Join(dir, name)
		if err := ExportPreview(path, sheet); err != nil {
			t.Fatalf("ExportPreview(%s) returned error: %v", name, err)
		}
		requireFile(t, path, 100)
	}

	if err := ExportPreview(filepath.Join(dir, "sheet"), sheet); err != nil {
		t.Fatalf("ExportPreview returned error: %v", err)
	}
	requireFile(t, filepath.Join(dir, "sheet.png"), 100)
}

func TestExportPreview_ZeroSheet(t *testing.T) {
	if err := ExportPreview(filepath.Join(t.TempDir(), "x.png"), model.SheetLayout{}); err == nil {
		t.Error("expected error for a sheet without area")
	}
}
