package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// segment is one LINE or arc piece waiting to be chained into an outline.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

const (
	// arcSegments is the number of chords used per arc or bulge.
	arcSegments = 32
	// chainTolerance is the endpoint gap (mm) still treated as connected.
	chainTolerance = 0.01
	// simplifyTolerance bounds the deviation (mm) introduced when
	// flattened curves are thinned out.
	simplifyTolerance = 0.05
)

// ImportDXF imports pattern pieces from a DXF file. Each closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes a piece
// whose outline is moved to the origin and oriented counter-clockwise.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []model.Outline
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, circleToOutline(e, 2*arcSegments))

		case *entity.Arc:
			pts := arcToPoints(e, arcSegments)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	chained, open := chainSegments(segments, chainTolerance)
	outlines = append(outlines, chained...)
	if open > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d open contour(s)", open))
	}

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	pieceNum := 0
	for _, outline := range outlines {
		normalized := normalizeOutline(model.SimplifyOutline(outline, simplifyTolerance).CounterClockwise())
		min, max := normalized.BoundingBox()
		width := max.X - min.X
		height := max.Y - min.Y

		if width < 0.01 || height < 0.01 || len(normalized) < 3 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", width, height))
			continue
		}

		pieceNum++
		result.Pieces = append(result.Pieces, model.NewPiece(fmt.Sprintf("DXF Piece %d", pieceNum), normalized, 1))
	}

	return result
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an Outline.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			// This vertex has a bulge: interpolate an arc to the next vertex
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, arcSegments)
			// Add all but the last point (next vertex will be added naturally)
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	return outline
}

// sampleArc returns n+1 points on the circle (center, r) starting at angle
// from (radians) and sweeping by sweep, negative for clockwise.
func sampleArc(center model.Point2D, r, from, sweep float64, n int) model.Outline {
	pts := make(model.Outline, n+1)
	for i := range pts {
		a := from + sweep*float64(i)/float64(n)
		pts[i] = model.Point2D{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return pts
}

// bulgeArcPoints flattens the arc between p1 and p2 described by a DXF
// bulge, the tangent of a quarter of the included angle. Positive bulges
// run counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Outline {
	chord := p2.Sub(p1)
	c := chord.Len()
	if c < 1e-9 {
		return model.Outline{p1, p2}
	}

	sweep := 4 * math.Atan(bulge)
	half := sweep / 2
	// Signed offset of the centre from the chord midpoint along its left normal.
	offset := (c / 2) / math.Tan(half)
	normal := model.Point2D{X: -chord.Y / c, Y: chord.X / c}
	center := p1.Add(chord.Scale(0.5)).Add(normal.Scale(offset))
	r := math.Abs((c / 2) / math.Sin(half))

	start := p1.Sub(center)
	return sampleArc(center, r, math.Atan2(start.Y, start.X), sweep, numSegments)
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, numSegments int) model.Outline {
	center := model.Point2D{X: c.Center[0], Y: c.Center[1]}
	return sampleArc(center, c.Radius, 0, 2*math.Pi, numSegments)[:numSegments]
}

// arcToPoints flattens a DXF ARC, which always runs counter-clockwise from
// its start to its end angle (degrees).
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	from := a.Angle[0] * math.Pi / 180
	to := a.Angle[1] * math.Pi / 180
	if to <= from {
		to += 2 * math.Pi
	}
	center := model.Point2D{X: a.Circle.Center[0], Y: a.Circle.Center[1]}
	return sampleArc(center, a.Circle.Radius, from, to-from, numSegments)
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines, largest
// first. tolerance is the maximum distance between endpoints to consider
// them connected. It also returns how many chains did not close.
func chainSegments(segs []segment, tolerance float64) ([]model.Outline, int) {
	if len(segs) == 0 {
		return nil, 0
	}

	used := make([]bool, len(segs))
	var outlines []model.Outline
	open := 0

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := model.Outline{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if tail.Near(seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if tail.Near(seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 4 && chain[0].Near(chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		} else {
			open++
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].Area() > outlines[j].Area()
	})

	return outlines, open
}

// normalizeOutline translates the outline so its bounding box starts at (0, 0).
func normalizeOutline(o model.Outline) model.Outline {
	if len(o) == 0 {
		return o
	}
	min, _ := o.BoundingBox()
	return o.Translate(-min.X, -min.Y)
}
