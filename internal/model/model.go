package model

import (
	"math"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point2D) Add(q Point2D) Point2D   { return Point2D{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point2D) Sub(q Point2D) Point2D   { return Point2D{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point2D) Scale(s float64) Point2D { return Point2D{X: p.X * s, Y: p.Y * s} }
func (p Point2D) Dot(q Point2D) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point2D) Cross(q Point2D) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point2D) Len() float64            { return math.Hypot(p.X, p.Y) }
func (p Point2D) Dist(q Point2D) float64  { return p.Sub(q).Len() }

// Near reports whether p and q are within eps of each other.
func (p Point2D) Near(q Point2D, eps float64) bool {
	return p.Dist(q) <= eps
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// EdgeCount returns the number of edges of the closed outline.
func (o Outline) EdgeCount() int {
	if len(o) < 2 {
		return 0
	}
	return len(o)
}

// Edge returns the endpoints of edge i, which runs from point i to point i+1 (mod n).
func (o Outline) Edge(i int) (Point2D, Point2D) {
	return o[i], o[(i+1)%len(o)]
}

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// SignedArea returns the shoelace area. Positive for counter-clockwise
// outlines in a y-up frame.
func (o Outline) SignedArea() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return sum / 2
}

// Area returns the absolute enclosed area.
func (o Outline) Area() float64 {
	return math.Abs(o.SignedArea())
}

// Perimeter returns the length of the closed outline.
func (o Outline) Perimeter() float64 {
	var total float64
	for i := range o {
		a, b := o.Edge(i)
		total += a.Dist(b)
	}
	return total
}

// Reversed returns the outline with its point order reversed.
func (o Outline) Reversed() Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[len(o)-1-i] = p
	}
	return result
}

// CounterClockwise returns the outline oriented with positive signed area.
func (o Outline) CounterClockwise() Outline {
	if o.SignedArea() < 0 {
		return o.Reversed()
	}
	return o.Clone()
}

// Clone returns a copy that does not share storage with o.
func (o Outline) Clone() Outline {
	if o == nil {
		return nil
	}
	return append(Outline(nil), o...)
}

// Apply returns the outline mapped through t.
func (o Outline) Apply(t Transform) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = t.Apply(p)
	}
	return result
}

// Rect builds the axis-aligned rectangle outline (0,0)-(w,0)-(w,h)-(0,h).
func Rect(w, h float64) Outline {
	return Outline{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Piece is one pattern component to be nested on a sheet.
type Piece struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label" yaml:"label"`
	Quantity int     `json:"quantity" yaml:"quantity"`
	Outline  Outline `json:"outline" yaml:"outline"`                   // Full cutting boundary
	Layout   Outline `json:"layout,omitempty" yaml:"layout,omitempty"` // Simplified boundary used once a sheet holds pieces

	// ForbidMirroring marks directional pieces (print, nap) that must not be flipped.
	ForbidMirroring bool `json:"forbid_mirroring" yaml:"forbid_mirroring"`

	// Set once the piece is placed.
	Placed    bool      `json:"placed,omitempty" yaml:"-"`
	Transform Transform `json:"transform,omitempty" yaml:"-"`
	Mirrored  bool      `json:"mirrored,omitempty" yaml:"-"`
}

// NewPiece creates a piece whose layout polygon is the convex hull of the outline.
func NewPiece(label string, outline Outline, qty int) Piece {
	return Piece{
		ID:        uuid.New().String()[:8],
		Label:     label,
		Quantity:  qty,
		Outline:   outline,
		Layout:    ConvexHull(outline),
		Transform: Identity(),
	}
}

// LayoutOutline returns the layout polygon, deriving it from the outline when unset.
func (p Piece) LayoutOutline() Outline {
	if len(p.Layout) > 0 {
		return p.Layout
	}
	return ConvexHull(p.Outline)
}

// PhaseOutline returns the polygon used for placement: the full outline
// on an empty sheet, the layout polygon otherwise.
func (p Piece) PhaseOutline(sheetEmpty bool) Outline {
	if sheetEmpty {
		return p.Outline
	}
	return p.LayoutOutline()
}

// PlacedOutline returns the cutting outline mapped through the placement transform.
func (p Piece) PlacedOutline() Outline {
	return p.Outline.Apply(p.Transform)
}

// Area returns the area of the cutting outline.
func (p Piece) Area() float64 {
	return p.Outline.Area()
}

// RotationPolicy controls which extra rotations the packer samples.
type RotationPolicy struct {
	Allow bool `json:"allow" yaml:"allow"`
	Step  int  `json:"step" yaml:"step"` // degrees, divides 360, in [1,180]
}

// ValidRotationStep reports whether step is usable as a rotation increment.
func ValidRotationStep(step int) bool {
	return step >= 1 && step <= 180 && 360%step == 0
}

// NewRotationPolicy returns a policy whose step falls back to 180 when invalid.
func NewRotationPolicy(allow bool, step int) RotationPolicy {
	if !ValidRotationStep(step) {
		step = 180
	}
	return RotationPolicy{Allow: allow, Step: step}
}

// Angles returns the sampled rotation angles in degrees, ascending from 0.
func (rp RotationPolicy) Angles() []float64 {
	if !rp.Allow {
		return []float64{0}
	}
	step := rp.Step
	if !ValidRotationStep(step) {
		step = 180
	}
	angles := make([]float64, 0, 360/step)
	for a := 0; a < 360; a += step {
		angles = append(angles, float64(a))
	}
	return angles
}

// ForPiece derives the policy for one placement. A piece that may not be
// mirrored still gets a half turn when rotation is otherwise disabled.
func (rp RotationPolicy) ForPiece(p Piece) RotationPolicy {
	if p.ForbidMirroring && !rp.Allow {
		return RotationPolicy{Allow: true, Step: 180}
	}
	return rp
}

// SheetLayout represents one sheet with its placed pieces.
type SheetLayout struct {
	Index      int     `json:"index"`
	Width      float64 `json:"width"`  // mm
	Height     float64 `json:"height"` // mm
	Pieces     []Piece `json:"pieces"`
	Boundary   Outline `json:"boundary"`    // Occupied region after the last placement
	UsedLength float64 `json:"used_length"` // Auto-cropped length along the roll (mm)
}

// UsedArea returns the total outline area of placed pieces.
func (sl SheetLayout) UsedArea() float64 {
	var total float64
	for _, p := range sl.Pieces {
		total += p.Area()
	}
	return total
}

// Efficiency returns the usage percentage of the cropped sheet.
func (sl SheetLayout) Efficiency() float64 {
	ta := sl.Width * sl.UsedLength
	if ta == 0 {
		return 0
	}
	return (sl.UsedArea() / ta) * 100.0
}

// UnplacedPiece records a piece the layout could not place and why.
type UnplacedPiece struct {
	Piece  Piece  `json:"piece"`
	Reason string `json:"reason"`
}

// LayoutResult holds the full nesting solution.
type LayoutResult struct {
	Sheets   []SheetLayout   `json:"sheets"`
	Unplaced []UnplacedPiece `json:"unplaced"`
}

// TotalLength returns the summed used length of all sheets.
func (lr LayoutResult) TotalLength() float64 {
	var total float64
	for _, s := range lr.Sheets {
		total += s.UsedLength
	}
	return total
}

// PlacedCount returns the number of placed pieces over all sheets.
func (lr LayoutResult) PlacedCount() int {
	n := 0
	for _, s := range lr.Sheets {
		n += len(s.Pieces)
	}
	return n
}

// TotalEfficiency returns overall fabric usage percentage.
func (lr LayoutResult) TotalEfficiency() float64 {
	var usedArea, totalArea float64
	for _, s := range lr.Sheets {
		usedArea += s.UsedArea()
		totalArea += s.Width * s.UsedLength
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}

// Project ties everything together for save/load.
type Project struct {
	Name     string        `json:"name"`
	Pieces   []Piece       `json:"pieces"`
	Settings NestSettings  `json:"settings"`
	Result   *LayoutResult `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Pieces:   []Piece{},
		Settings: DefaultNestSettings(),
	}
}
