package export

import (
	"fmt"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// sheetGap separates consecutive sheets laid side by side in the DXF.
const sheetGap = 100.0

// ExportDXF writes every sheet into one DXF drawing. Sheet n sits on layer
// SHEET_n, shifted along X so sheets do not overlap. Each sheet gets its
// fabric rectangle (width x used length) and the placed piece outlines with
// their labels.
func ExportDXF(path string, result model.LayoutResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}

	d := dxf.NewDrawing()
	offset := 0.0
	for _, sheet := range result.Sheets {
		layer := fmt.Sprintf("SHEET_%d", sheet.Index+1)
		if _, err := d.AddLayer(layer, color.ColorNumber(sheet.Index%7+1), dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", layer, err)
		}

		if err := drawOutline(d, model.Rect(sheet.Width, drawnLength(sheet)).Translate(offset, 0)); err != nil {
			return fmt.Errorf("sheet %d: %w", sheet.Index+1, err)
		}
		for _, p := range sheet.Pieces {
			outline := p.PlacedOutline().Translate(offset, 0)
			if err := drawOutline(d, outline); err != nil {
				return fmt.Errorf("piece %s: %w", p.Label, err)
			}
			min, max := outline.BoundingBox()
			if _, err := d.Text(p.Label, (min.X+max.X)/2, (min.Y+max.Y)/2, 0, 5); err != nil {
				return fmt.Errorf("label %s: %w", p.Label, err)
			}
		}
		offset += sheet.Width + sheetGap
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("write dxf %s: %w", path, err)
	}
	return nil
}

// drawOutline adds the closed outline as LINE entities on the current layer.
func drawOutline(d *drawing.Drawing, o model.Outline) error {
	for i := 0; i < o.EdgeCount(); i++ {
		a, b := o.Edge(i)
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return err
		}
	}
	return nil
}
