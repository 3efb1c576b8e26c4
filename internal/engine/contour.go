package engine

import (
	"math"

	"github.com/piwi3910/SeamNest/internal/model"
)

// JoinType selects how a placed piece is merged into the sheet boundary.
type JoinType int

const (
	// JoinWhole makes the placed outline the whole boundary. Used for the
	// first piece on an empty sheet.
	JoinWhole JoinType = iota
	// JoinInsert splices the piece's far-side chain into the boundary at the
	// touched edge.
	JoinInsert
)

func (j JoinType) String() string {
	if j == JoinWhole {
		return "whole"
	}
	return "insert"
}

// SheetContour owns a sheet's dimensions and the outer boundary of the
// region already occupied by placed pieces. While the sheet is empty the
// boundary is the sheet rectangle itself.
//
// A SheetContour is not safe for concurrent mutation. Search tasks read a
// Snapshot instead.
type SheetContour struct {
	width    float64
	height   float64
	shift    float64
	boundary model.Outline
	placed   int
}

// NewSheetContour creates the contour of an empty width x height sheet.
// shift is the minimum gap kept between pieces.
func NewSheetContour(width, height, shift float64) *SheetContour {
	return &SheetContour{
		width:    width,
		height:   height,
		shift:    math.Max(0, shift),
		boundary: model.Rect(width, height),
	}
}

func (c *SheetContour) Width() float64  { return c.width }
func (c *SheetContour) Height() float64 { return c.height }
func (c *SheetContour) Shift() float64  { return c.shift }

// Valid reports whether the sheet has positive dimensions.
func (c *SheetContour) Valid() bool {
	return c.width > 0 && c.height > 0
}

// IsEmpty reports whether no piece has been united into the contour yet.
func (c *SheetContour) IsEmpty() bool { return c.placed == 0 }

// Placed returns the number of pieces united into the contour.
func (c *SheetContour) Placed() int { return c.placed }

// EdgeCount returns the number of boundary edges, which bounds the search space.
func (c *SheetContour) EdgeCount() int { return c.boundary.EdgeCount() }

// Edge returns the endpoints of boundary edge i.
func (c *SheetContour) Edge(i int) (model.Point2D, model.Point2D) {
	return c.boundary.Edge(i)
}

// Boundary returns a copy of the current boundary polygon.
func (c *SheetContour) Boundary() model.Outline { return c.boundary.Clone() }

// OccupiedArea returns the area enclosed by the occupied region, 0 while empty.
func (c *SheetContour) OccupiedArea() float64 {
	if c.IsEmpty() {
		return 0
	}
	return c.boundary.Area()
}

// UsedLength returns how far along the sheet the occupied region reaches.
func (c *SheetContour) UsedLength() float64 {
	if c.IsEmpty() {
		return 0
	}
	_, max := c.boundary.BoundingBox()
	return math.Max(0, max.Y)
}

// ContourSnapshot is an immutable view of a SheetContour handed to search tasks.
type ContourSnapshot struct {
	Width    float64
	Height   float64
	Shift    float64
	Empty    bool
	Boundary model.Outline
}

// Snapshot returns a copy of the contour state.
func (c *SheetContour) Snapshot() ContourSnapshot {
	return ContourSnapshot{
		Width:    c.width,
		Height:   c.height,
		Shift:    c.shift,
		Empty:    c.IsEmpty(),
		Boundary: c.boundary.Clone(),
	}
}

// UniteWithPiece merges the placed piece into the boundary. The piece's
// Transform must already position edge pieceEdge of its phase polygon
// against boundary edge sheetEdge. Returns nil, leaving the contour
// untouched, when the indices are out of range, the piece does not touch
// the edge, or the union is not a single simple polygon. On success the
// union becomes the new boundary and a copy of it is returned.
func (c *SheetContour) UniteWithPiece(piece model.Piece, sheetEdge, pieceEdge int, join JoinType) model.Outline {
	if sheetEdge < 0 || sheetEdge >= c.EdgeCount() {
		return nil
	}
	poly := piece.PhaseOutline(c.IsEmpty())
	if pieceEdge < 0 || pieceEdge >= poly.EdgeCount() {
		return nil
	}
	placed := poly.Apply(piece.Transform)

	var union model.Outline
	switch join {
	case JoinWhole:
		if !c.IsEmpty() {
			return nil
		}
		union = wholeUnion(c.boundary, sheetEdge, placed, c.width, c.height)
	case JoinInsert:
		if c.IsEmpty() {
			return nil
		}
		union = spliceUnion(c.boundary, sheetEdge, placed, c.shift)
	}
	if union == nil {
		return nil
	}

	c.boundary = union
	c.placed++
	return union.Clone()
}

// wholeUnion validates a first placement against the sheet rectangle and
// returns the placed outline as the new boundary.
func wholeUnion(rect model.Outline, edge int, placed model.Outline, w, h float64) model.Outline {
	f, ok := edgeFrame(rect, edge, true)
	if !ok || !f.touches(placed, 0) || !withinSheet(placed, w, h) {
		return nil
	}
	union := cleanRing(placed.CounterClockwise())
	if !isSimple(union) {
		return nil
	}
	return union
}
