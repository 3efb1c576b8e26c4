package engine

import (
	"math"

	"github.com/piwi3910/SeamNest/internal/model"
)

// Anchor selects which end of the sheet edge a placement slides to.
type Anchor int

const (
	AnchorStart Anchor = iota // piece extent starts at the edge start point
	AnchorEnd                 // piece extent ends at the edge end point
)

// CandidateResult is the outcome of evaluating one (sheet edge, piece edge) pair.
type CandidateResult struct {
	Valid     bool
	Transform model.Transform // maps the piece's own coordinates onto the sheet
	Mirrored  bool
	SheetEdge int
	PieceEdge int
	Angle     float64 // extra rotation in degrees applied after edge alignment
	Anchor    Anchor
	Join      JoinType
	Union     model.Outline // boundary after the hypothetical union
	Score     Score
}

// CandidateTask is the immutable input of one search task.
type CandidateTask struct {
	Contour   ContourSnapshot
	Polygon   model.Outline // phase polygon in piece coordinates
	SheetEdge int
	PieceEdge int
	Mirrors   []bool    // mirror options to try, non-mirrored first
	Angles    []float64 // rotation angles in degrees, ascending
	Strategy  ScoreStrategy
}

// rankBefore reports whether a should be chosen over b. Both must be valid.
func rankBefore(a, b CandidateResult) bool {
	if c := a.Score.Compare(b.Score); c != 0 {
		return c < 0
	}
	if a.Mirrored != b.Mirrored {
		return !a.Mirrored
	}
	if a.SheetEdge != b.SheetEdge {
		return a.SheetEdge < b.SheetEdge
	}
	if a.PieceEdge != b.PieceEdge {
		return a.PieceEdge < b.PieceEdge
	}
	if a.Angle != b.Angle {
		return a.Angle < b.Angle
	}
	return a.Anchor < b.Anchor
}

// EvaluateCandidate aligns piece edge PieceEdge with sheet edge SheetEdge
// for every mirror option, rotation angle and anchor, and returns the best
// feasible placement. It returns an invalid result when nothing fits or the
// stop flag is raised; it never mutates its input.
func EvaluateCandidate(task CandidateTask, stop *StopFlag) CandidateResult {
	snap := task.Contour
	if task.SheetEdge < 0 || task.SheetEdge >= snap.Boundary.EdgeCount() ||
		task.PieceEdge < 0 || task.PieceEdge >= task.Polygon.EdgeCount() {
		return CandidateResult{}
	}
	f, ok := edgeFrame(snap.Boundary, task.SheetEdge, snap.Empty)
	if !ok {
		return CandidateResult{}
	}
	e := &evaluator{task: task, frame: f}
	if !snap.Empty {
		e.gap = snap.Shift
		_, e.regionMax = snap.Boundary.BoundingBox()
	}

	for _, mirrored := range task.Mirrors {
		base := model.Identity()
		if mirrored {
			base = model.MirrorX()
		}
		poly := task.Polygon.Apply(base)
		a, b := poly.Edge(task.PieceEdge)
		if a.Dist(b) <= tolerance {
			return CandidateResult{}
		}

		// Direction the piece edge must point so the piece interior lies on
		// the placement side of the sheet edge.
		target := f.dir
		if !snap.Empty {
			target = target.Scale(-1)
		}
		if poly.SignedArea() < 0 {
			target = target.Scale(-1)
		}
		edge := b.Sub(a)
		align := math.Atan2(target.Y, target.X) - math.Atan2(edge.Y, edge.X)

		for _, angle := range task.Angles {
			if stop.Stopped() {
				return CandidateResult{}
			}
			rot := model.Rotation(align + angle*math.Pi/180).Mul(base)
			e.tryAngle(rot, mirrored, angle)
		}
	}
	return e.best
}

type evaluator struct {
	task      CandidateTask
	frame     frame
	gap       float64
	regionMax model.Point2D
	best      CandidateResult
}

// tryAngle rests the rotated piece against the edge line, slides it to
// each anchor and keeps the best feasible placement.
func (e *evaluator) tryAngle(rot model.Transform, mirrored bool, angle float64) {
	f := e.frame
	pts := e.task.Polygon.Apply(rot)
	minT, maxT, minS := f.extent(pts)
	lift := e.gap - minS

	slides := []float64{-minT}
	if end := f.length - maxT; math.Abs(end+minT) > tolerance {
		slides = append(slides, end)
	}

	join := JoinInsert
	if e.task.Contour.Empty {
		join = JoinWhole
	}
	for k, slide := range slides {
		offset := f.normal.Scale(lift).Add(f.dir.Scale(slide))
		placed := pts.Translate(offset.X, offset.Y)
		union, score, ok := e.feasible(placed)
		if !ok {
			continue
		}
		r := CandidateResult{
			Valid:     true,
			Transform: model.Translation(offset.X, offset.Y).Mul(rot),
			Mirrored:  mirrored,
			SheetEdge: e.task.SheetEdge,
			PieceEdge: e.task.PieceEdge,
			Angle:     angle,
			Anchor:    Anchor(k),
			Join:      join,
			Union:     union,
			Score:     score,
		}
		if !e.best.Valid || rankBefore(r, e.best) {
			e.best = r
		}
	}
}

// feasible checks sheet bounds, overlap, spacing and the hypothetical union,
// and scores the union. Placements whose score cannot match the best so far
// are dropped before the union is built.
func (e *evaluator) feasible(placed model.Outline) (model.Outline, Score, bool) {
	snap := e.task.Contour
	if !withinSheet(placed, snap.Width, snap.Height) {
		return nil, Score{}, false
	}

	// Every union vertex comes from the region, the piece or the edge line,
	// so this bound never exceeds the union's score.
	_, pmax := placed.BoundingBox()
	bound := e.task.Strategy.Score(math.Max(pmax.X, e.regionMax.X), math.Max(pmax.Y, e.regionMax.Y))
	if e.best.Valid && bound.Compare(e.best.Score) > 0 {
		return nil, Score{}, false
	}

	var union model.Outline
	if snap.Empty {
		union = placed.CounterClockwise()
	} else {
		ccw := placed.CounterClockwise()
		if overlaps(ccw, snap.Boundary) {
			return nil, Score{}, false
		}
		if e.gap > 0 && outlineDistance(ccw, snap.Boundary, e.gap) < e.gap-touchTolerance(e.frame.length) {
			return nil, Score{}, false
		}
		union = spliceUnion(snap.Boundary, e.task.SheetEdge, placed, e.gap)
		if union == nil {
			return nil, Score{}, false
		}
	}

	_, umax := union.BoundingBox()
	return union, e.task.Strategy.Score(math.Max(0, umax.X), math.Max(0, umax.Y)), true
}
