package engine

import (
	"math"

	"github.com/piwi3910/SeamNest/internal/model"
)

// tolerance is the geometric tolerance in mm used by all predicates.
const tolerance = 1e-6

type box struct {
	min, max model.Point2D
}

func segmentBox(a, b model.Point2D) box {
	return box{
		min: model.Point2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		max: model.Point2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

func outlineBox(o model.Outline) box {
	min, max := o.BoundingBox()
	return box{min: min, max: max}
}

// near reports whether the boxes overlap or lie within gap of each other.
func (b box) near(o box, gap float64) bool {
	return b.min.X <= o.max.X+gap && o.min.X <= b.max.X+gap &&
		b.min.Y <= o.max.Y+gap && o.min.Y <= b.max.Y+gap
}

// side returns the side of line ab that p lies on: 1 left, -1 right, 0 on the line.
func side(a, b, p model.Point2D) int {
	ab := b.Sub(a)
	l := ab.Len()
	if l == 0 {
		return 0
	}
	d := ab.Cross(p.Sub(a)) / l
	switch {
	case d > tolerance:
		return 1
	case d < -tolerance:
		return -1
	}
	return 0
}

// segmentsCross reports a proper crossing: each segment strictly straddles
// the other's supporting line. Touching and collinear overlap do not count.
func segmentsCross(a, b, c, d model.Point2D) bool {
	return side(c, d, a)*side(c, d, b) < 0 && side(a, b, c)*side(a, b, d) < 0
}

func pointSegmentDistance(p, a, b model.Point2D) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}

func segmentDistance(a, b, c, d model.Point2D) float64 {
	if segmentsCross(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(a, c, d), pointSegmentDistance(b, c, d)),
		math.Min(pointSegmentDistance(c, a, b), pointSegmentDistance(d, a, b)),
	)
}

// outlineDistance returns the minimum distance between the boundaries of a and b.
// Pairs further apart than limit are skipped, so results above limit are not exact.
// Piece and region never overlap when this is called, so boundary distance
// is the gap between them.
func outlineDistance(a, b model.Outline, limit float64) float64 {
	best := math.Inf(1)
	for i := range a {
		p, q := a.Edge(i)
		pq := segmentBox(p, q)
		for j := range b {
			r, s := b.Edge(j)
			if !pq.near(segmentBox(r, s), limit) {
				continue
			}
			if d := segmentDistance(p, q, r, s); d < best {
				best = d
			}
		}
	}
	return best
}

// collinear reports whether cur lies on the line through prev and next,
// whether or not the path folds back on itself at cur.
func collinear(prev, cur, next model.Point2D) bool {
	u, v := cur.Sub(prev), next.Sub(cur)
	lu, lv := u.Len(), v.Len()
	if lu <= tolerance || lv <= tolerance {
		return false
	}
	return math.Abs(u.Cross(v)) <= tolerance*math.Max(lu, lv)
}

// cleanRing removes duplicate vertices, collinear vertices and zero-width
// spikes until none remain.
func cleanRing(ring model.Outline) model.Outline {
	pts := ring.Clone()
	for changed := true; changed && len(pts) >= 3; {
		changed = false
		for k := 0; k < len(pts) && len(pts) >= 3; k++ {
			n := len(pts)
			prev, cur, next := pts[(k+n-1)%n], pts[k], pts[(k+1)%n]
			if cur.Near(prev, tolerance) || collinear(prev, cur, next) {
				pts = append(pts[:k], pts[k+1:]...)
				changed = true
				k--
			}
		}
	}
	return pts
}

// isSimple reports whether the closed ring has no zero-length edges, no
// fold-backs and no contact between non-adjacent edges.
func isSimple(ring model.Outline) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	boxes := make([]box, n)
	for k := range ring {
		a, b := ring.Edge(k)
		if a.Dist(b) <= tolerance {
			return false
		}
		boxes[k] = segmentBox(a, b)
	}
	for k := 0; k < n; k++ {
		a, b := ring.Edge(k)
		c := ring[(k+2)%n]
		u, v := b.Sub(a), c.Sub(b)
		if u.Dot(v) < 0 && math.Abs(u.Cross(v)) <= tolerance*math.Max(u.Len(), v.Len()) {
			return false
		}
		for l := k + 2; l < n; l++ {
			if k == 0 && l == n-1 {
				continue
			}
			if !boxes[k].near(boxes[l], tolerance) {
				continue
			}
			p, q := ring.Edge(l)
			if segmentDistance(a, b, p, q) <= tolerance {
				return false
			}
		}
	}
	return true
}

// frame describes an edge of the boundary as a line with a tangent
// direction and the normal pointing to the side pieces are placed on.
type frame struct {
	origin model.Point2D
	dir    model.Point2D
	normal model.Point2D
	length float64
}

// edgeFrame builds the frame of edge i. On an empty sheet pieces go inside
// the rectangle (left of the edge); otherwise they go outside the occupied
// region (right of the edge).
func edgeFrame(boundary model.Outline, i int, inside bool) (frame, bool) {
	a, b := boundary.Edge(i)
	l := a.Dist(b)
	if l <= tolerance {
		return frame{}, false
	}
	dir := b.Sub(a).Scale(1 / l)
	normal := model.Point2D{X: -dir.Y, Y: dir.X}
	if !inside {
		normal = normal.Scale(-1)
	}
	return frame{origin: a, dir: dir, normal: normal, length: l}, true
}

// coords returns p's tangential (t) and normal (s) coordinates in the frame.
func (f frame) coords(p model.Point2D) (t, s float64) {
	v := p.Sub(f.origin)
	return v.Dot(f.dir), v.Dot(f.normal)
}

func (f frame) at(t float64) model.Point2D {
	return f.origin.Add(f.dir.Scale(t))
}

// extent returns the range of t and the minimum s over the outline.
func (f frame) extent(o model.Outline) (minT, maxT, minS float64) {
	minT, maxT, minS = math.Inf(1), math.Inf(-1), math.Inf(1)
	for _, p := range o {
		t, s := f.coords(p)
		minT = math.Min(minT, t)
		maxT = math.Max(maxT, t)
		minS = math.Min(minS, s)
	}
	return minT, maxT, minS
}

// touches reports whether the outline rests at distance gap from the edge
// line and its tangential extent overlaps the edge.
func (f frame) touches(o model.Outline, gap float64) bool {
	minT, maxT, minS := f.extent(o)
	if math.Abs(minS-gap) > touchTolerance(f.length) {
		return false
	}
	return maxT > tolerance && minT < f.length-tolerance
}

func touchTolerance(scale float64) float64 {
	return tolerance * math.Max(1, scale/1000)
}

// spliceUnion inserts the far-side chain of placed into the boundary at
// edge i, producing the outer boundary of the region plus the piece and the
// spacing corridor between them. Returns nil when the piece does not touch
// the edge or the result is not a simple polygon.
func spliceUnion(boundary model.Outline, i int, placed model.Outline, gap float64) model.Outline {
	f, ok := edgeFrame(boundary, i, false)
	if !ok || !f.touches(placed, gap) {
		return nil
	}
	piece := placed.CounterClockwise()
	n := len(piece)
	ts := make([]float64, n)
	ss := make([]float64, n)
	minT, maxT := math.Inf(1), math.Inf(-1)
	for k, p := range piece {
		ts[k], ss[k] = f.coords(p)
		minT = math.Min(minT, ts[k])
		maxT = math.Max(maxT, ts[k])
	}

	// The chain runs from the outermost vertex at the low end of the
	// extent to the outermost vertex at the high end.
	first, last := -1, -1
	for k := range piece {
		if ts[k] <= minT+tolerance && (first < 0 || ss[k] > ss[first]) {
			first = k
		}
		if ts[k] >= maxT-tolerance && (last < 0 || ss[k] > ss[last]) {
			last = k
		}
	}

	ring := make(model.Outline, 0, len(boundary)+n+2)
	ring = append(ring, boundary[:i+1]...)
	ring = append(ring, f.at(minT))
	for k := first; ; k = (k + 1) % n {
		ring = append(ring, piece[k])
		if k == last {
			break
		}
	}
	ring = append(ring, f.at(maxT))
	ring = append(ring, boundary[i+1:]...)

	ring = cleanRing(ring)
	if !isSimple(ring) || ring.SignedArea() <= boundary.SignedArea() {
		return nil
	}
	if !encloses(ring, boundary, piece) {
		return nil
	}
	return ring
}
