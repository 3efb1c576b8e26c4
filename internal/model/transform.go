package model

import "math"

// Transform is a 2D affine transform in row-major form:
//
//	[ a b c ]
//	[ d e f ]
//
// where (x', y') = (a*x + b*y + c, d*x + e*y + f). Placements only ever
// hold rotations, translations and the x-axis reflection used for mirroring.
type Transform struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform { return Transform{A: 1, E: 1} }

// Translation returns a pure translation by (dx, dy).
func Translation(dx, dy float64) Transform { return Transform{A: 1, E: 1, C: dx, F: dy} }

// Rotation returns a rotation about the origin by rad radians (counter-clockwise).
// Sines and cosines within 1e-12 of 0 or ±1 are snapped so quarter turns stay exact.
func Rotation(rad float64) Transform {
	s, c := snapUnit(math.Sin(rad)), snapUnit(math.Cos(rad))
	return Transform{A: c, B: -s, D: s, E: c}
}

// MirrorX reflects x to -x.
func MirrorX() Transform { return Transform{A: -1, E: 1} }

func snapUnit(v float64) float64 {
	const eps = 1e-12
	switch {
	case math.Abs(v) < eps:
		return 0
	case math.Abs(v-1) < eps:
		return 1
	case math.Abs(v+1) < eps:
		return -1
	}
	return v
}

// Apply maps p through t.
func (t Transform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// Mul composes two transforms (applies u then t).
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		A: t.A*u.A + t.B*u.D,
		B: t.A*u.B + t.B*u.E,
		C: t.A*u.C + t.B*u.F + t.C,
		D: t.D*u.A + t.E*u.D,
		E: t.D*u.B + t.E*u.E,
		F: t.D*u.C + t.E*u.F + t.F,
	}
}

// Offset returns the translation part.
func (t Transform) Offset() Point2D { return Point2D{X: t.C, Y: t.F} }

// IsMirror reports whether t flips orientation.
func (t Transform) IsMirror() bool { return t.A*t.E-t.B*t.D < 0 }

// IsZero reports whether t is the zero value (never set).
func (t Transform) IsZero() bool { return t == Transform{} }

// RotationDegrees returns the rotation angle in [0, 360) of the linear part,
// measured after removing a mirror.
func (t Transform) RotationDegrees() float64 {
	a, d := t.A, t.D
	if t.IsMirror() {
		// R·M has first column (-cos, -sin).
		a, d = -a, -d
	}
	deg := math.Atan2(d, a) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360-1e-9 {
		deg = 0
	}
	return deg
}
