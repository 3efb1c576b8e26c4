package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/SeamNest/internal/model"
)

// boundsTolerance absorbs coordinate rounding in the written program.
const boundsTolerance = 0.01

// Violation is a cutting move that leaves the fabric.
type Violation struct {
	SheetIndex int
	MoveIndex  int
	X, Y       float64
	Overshoot  float64 // distance outside the fabric rectangle in mm
}

// CheckSheet parses a sheet program and reports every cutting move whose
// end point leaves the fabric rectangle (width by used length). At most one
// violation is reported per move.
func CheckSheet(sheet model.SheetLayout, code string) []Violation {
	return checkMoves(sheet, Parse(code))
}

func checkMoves(sheet model.SheetLayout, moves []GCodeMove) []Violation {
	length := sheet.UsedLength
	if length <= 0 {
		length = sheet.Height
	}

	var violations []Violation
	for i, m := range moves {
		if !m.Cutting() {
			continue
		}
		for _, p := range [][2]float64{{m.FromX, m.FromY}, {m.ToX, m.ToY}} {
			d := distanceOutside(p[0], p[1], sheet.Width, length)
			if d > boundsTolerance {
				violations = append(violations, Violation{
					SheetIndex: sheet.Index,
					MoveIndex:  i,
					X:          p[0],
					Y:          p[1],
					Overshoot:  d,
				})
				break
			}
		}
	}
	return violations
}

// CheckAll checks every sheet program produced by g, honouring the
// profile's knife commands.
func (g *Generator) CheckAll(result model.LayoutResult) []Violation {
	var violations []Violation
	parser := g.Parser()
	for i, code := range g.Generate(result) {
		violations = append(violations, checkMoves(result.Sheets[i], parser.Parse(code))...)
	}
	return violations
}

// distanceOutside returns 0 for a point inside the rectangle (0,0)-(w,h)
// and its distance to the rectangle otherwise.
func distanceOutside(x, y, w, h float64) float64 {
	nearestX := math.Max(0, math.Min(x, w))
	nearestY := math.Max(0, math.Min(y, h))
	return math.Hypot(x-nearestX, y-nearestY)
}

// FormatViolations produces human-readable warning messages.
func FormatViolations(violations []Violation) []string {
	var warnings []string
	for _, v := range violations {
		warnings = append(warnings, fmt.Sprintf(
			"Sheet %d: knife leaves the fabric at (%.1f, %.1f) on move %d, %.2f mm outside",
			v.SheetIndex+1, v.X, v.Y, v.MoveIndex+1, v.Overshoot,
		))
	}
	return warnings
}
