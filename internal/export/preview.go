package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/SeamNest/internal/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// previewWidth is the image width; the height follows the sheet's aspect ratio.
const previewWidth = 8 * vg.Inch

// ExportPreview renders one sheet to an image. The format follows the file
// extension (.png, .svg, .pdf; anything else gets .png appended).
func ExportPreview(path string, sheet model.SheetLayout) error {
	length := drawnLength(sheet)
	if sheet.Width <= 0 || length <= 0 {
		return fmt.Errorf("sheet %d has no area", sheet.Index+1)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sheet %d: %.0f mm used, %.1f%% efficiency", sheet.Index+1, sheet.UsedLength, sheet.Efficiency())
	p.X.Label.Text = "Length (mm)"
	p.Y.Label.Text = "Width (mm)"

	// Roll runs along the X axis of the image.
	fabric, err := plotter.NewPolygon(plotter.XYs{
		{X: 0, Y: 0}, {X: length, Y: 0}, {X: length, Y: sheet.Width}, {X: 0, Y: sheet.Width},
	})
	if err != nil {
		return err
	}
	fabric.Color = color.RGBA{R: 235, G: 228, B: 214, A: 255}
	fabric.LineStyle.Color = color.Gray{Y: 100}
	p.Add(fabric)

	var centers plotter.XYs
	var names []string
	for i, piece := range sheet.Pieces {
		outline := piece.PlacedOutline()
		xys := make(plotter.XYs, len(outline))
		for k, pt := range outline {
			xys[k] = plotter.XY{X: pt.Y, Y: pt.X}
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return fmt.Errorf("piece %s: %w", piece.Label, err)
		}
		col := pieceColors[i%len(pieceColors)]
		poly.Color = color.RGBA{R: uint8(col.R), G: uint8(col.G), B: uint8(col.B), A: 200}
		poly.LineStyle.Color = color.Black
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)

		min, max := outline.BoundingBox()
		centers = append(centers, plotter.XY{X: (min.Y + max.Y) / 2, Y: (min.X + max.X) / 2})
		names = append(names, piece.Label)
	}
	if len(names) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: centers, Labels: names})
		if err != nil {
			return err
		}
		p.Add(labels)
	}

	p.X.Min, p.X.Max = 0, length
	p.Y.Min, p.Y.Max = 0, sheet.Width

	height := vg.Length(float64(previewWidth) * sheet.Width / length)
	if height < 2*vg.Inch {
		height = 2 * vg.Inch
	}
	if height > 3*previewWidth {
		height = 3 * previewWidth
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf":
	default:
		path += ".png"
	}
	if err := p.Save(previewWidth, height, path); err != nil {
		return fmt.Errorf("write preview %s: %w", path, err)
	}
	return nil
}
