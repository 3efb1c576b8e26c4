package model

import (
	"math"
	"sort"
)

// ConvexHull returns the counter-clockwise convex hull of the outline
// using Andrew's monotone chain. Collinear points are dropped.
func ConvexHull(o Outline) Outline {
	n := len(o)
	if n < 3 {
		return o.Clone()
	}
	pts := make(Outline, n)
	copy(pts, o)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	pts = dedupeSorted(pts)
	if len(pts) < 3 {
		return pts
	}

	lower := make(Outline, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make(Outline, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := make(Outline, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func dedupeSorted(p Outline) Outline {
	q := p[:0]
	for i, pt := range p {
		if i == 0 || pt != q[len(q)-1] {
			q = append(q, pt)
		}
	}
	return q
}

func turn(o, a, b Point2D) float64 {
	return a.Sub(o).Cross(b.Sub(o))
}

// SimplifyOutline reduces the vertex count of a closed outline with the
// Douglas-Peucker algorithm. Points closer than tolerance to the simplified
// boundary are removed. The result always keeps at least three points.
func SimplifyOutline(o Outline, tolerance float64) Outline {
	n := len(o)
	if n <= 3 || tolerance <= 0 {
		return o.Clone()
	}

	// Split the ring at the vertex farthest from point 0 so both halves are open chains.
	far := 0
	var farDist float64
	for i := 1; i < n; i++ {
		if d := o[0].Dist(o[i]); d > farDist {
			far, farDist = i, d
		}
	}
	keep := make([]bool, n+1)
	ring := append(o.Clone(), o[0])
	keep[0], keep[far], keep[n] = true, true, true
	douglasPeucker(ring, 0, far, tolerance, keep)
	douglasPeucker(ring, far, n, tolerance, keep)

	result := make(Outline, 0, n)
	for i := 0; i < n; i++ {
		if keep[i] {
			result = append(result, o[i])
		}
	}
	if len(result) < 3 {
		return o.Clone()
	}
	return result
}

func douglasPeucker(pts Outline, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := start
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(pts[i], pts[start], pts[end])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		keep[index] = true
		douglasPeucker(pts, start, index, eps, keep)
		douglasPeucker(pts, index, end, eps, keep)
	}
}

func perpendicularDistance(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	l := ab.Len()
	if l == 0 {
		return p.Dist(a)
	}
	return math.Abs(ab.Cross(p.Sub(a))) / l
}
