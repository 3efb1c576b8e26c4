package engine

import "math"

// Score ranks a placement. Lower is better; Primary is compared first.
type Score struct {
	Primary   float64
	Secondary float64
}

// ScoreStrategy turns the bounding box of the occupied region (anchored at
// the sheet origin) into a Score.
type ScoreStrategy interface {
	Name() string
	Score(usedWidth, usedLength float64) Score
}

// LengthSaving minimizes used length along the roll, then bounding area.
type LengthSaving struct{}

func (LengthSaving) Name() string { return "length-saving" }

func (LengthSaving) Score(usedWidth, usedLength float64) Score {
	return Score{Primary: usedLength, Secondary: usedWidth * usedLength}
}

// BoundingArea minimizes the bounding rectangle area, then used length.
type BoundingArea struct{}

func (BoundingArea) Name() string { return "bounding-area" }

func (BoundingArea) Score(usedWidth, usedLength float64) Score {
	return Score{Primary: usedWidth * usedLength, Secondary: usedLength}
}

// StrategyFor returns the strategy selected by the prefer-length-saving option.
func StrategyFor(preferLengthSaving bool) ScoreStrategy {
	if preferLengthSaving {
		return LengthSaving{}
	}
	return BoundingArea{}
}

// compareFloat compares with a relative tolerance so placements that differ
// only by rounding noise tie and fall through to the tie-breaks.
func compareFloat(a, b float64) int {
	eps := 1e-9 * math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	switch {
	case a < b-eps:
		return -1
	case a > b+eps:
		return 1
	}
	return 0
}

// Compare returns -1 if s ranks ahead of o, 1 if behind, 0 on a tie.
func (s Score) Compare(o Score) int {
	if c := compareFloat(s.Primary, o.Primary); c != 0 {
		return c
	}
	return compareFloat(s.Secondary, o.Secondary)
}
