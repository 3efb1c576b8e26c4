package engine

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/piwi3910/SeamNest/internal/model"
)

// toPolygon converts an outline into a single-ring polygon.
func toPolygon(o model.Outline) geom.Polygon {
	path := make(geom.Path, len(o))
	for i, p := range o {
		path[i] = geom.Point{X: p.X, Y: p.Y}
	}
	return geom.Polygon{path}
}

func fromPath(path geom.Path) model.Outline {
	o := make(model.Outline, len(path))
	for i, p := range path {
		o[i] = model.Point2D{X: p.X, Y: p.Y}
	}
	return o
}

// areaTolerance is the area of a sliver tolerance wide running along the
// whole outline. Boolean results below it are rounding noise.
func areaTolerance(o model.Outline) float64 {
	return tolerance * math.Max(1, o.Perimeter())
}

// rings returns the rings of p whose area exceeds eps.
func rings(p geom.Polygon, eps float64) []model.Outline {
	var out []model.Outline
	for _, path := range p {
		ring := fromPath(path)
		if ring.Area() > eps {
			out = append(out, ring)
		}
	}
	return out
}

// overlaps reports whether the interiors of piece and region intersect.
// Touching along edges or at vertices is allowed.
func overlaps(piece, region model.Outline) bool {
	if !outlineBox(piece).near(outlineBox(region), tolerance) {
		return false
	}
	common := toPolygon(piece).Intersection(toPolygon(region))
	return common.Area() > areaTolerance(piece)
}

// withinSheet reports whether every vertex lies inside [0,w]x[0,h].
func withinSheet(o model.Outline, w, h float64) bool {
	sheet := toPolygon(model.Rect(w+2*tolerance, h+2*tolerance).Translate(-tolerance, -tolerance))
	for _, p := range o {
		if (geom.Point{X: p.X, Y: p.Y}).Within(sheet) == geom.Outside {
			return false
		}
	}
	return true
}

// encloses reports whether ring is one polygon covering both region and
// piece: uniting all three must give back a single ring of ring's area.
func encloses(ring, region, piece model.Outline) bool {
	all := toPolygon(ring).Union(toPolygon(region).Union(toPolygon(piece)))
	eps := areaTolerance(ring)
	got := rings(all.(geom.Polygon), eps)
	if len(got) != 1 {
		return false
	}
	return math.Abs(got[0].Area()-ring.Area()) <= eps
}
