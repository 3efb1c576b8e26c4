package engine

import "github.com/piwi3910/SeamNest/internal/model"

// CandidateSelector reduces task results into the single best placement.
// Ranking: score, then non-mirrored before mirrored, then lower sheet edge,
// then lower piece edge, then lower angle and the start anchor.
type CandidateSelector struct {
	best  CandidateResult
	fed   int
	valid int
}

// NewCandidateSelector returns an empty selector.
func NewCandidateSelector() *CandidateSelector {
	return &CandidateSelector{}
}

// Feed accumulates one task result. Invalid results are counted and dropped.
func (s *CandidateSelector) Feed(r CandidateResult) {
	s.fed++
	if !r.Valid {
		return
	}
	s.valid++
	if !s.best.Valid || rankBefore(r, s.best) {
		s.best = r
	}
}

// HasValidResult reports whether any fed result was feasible.
func (s *CandidateSelector) HasValidResult() bool { return s.best.Valid }

// Best returns the winning result. It is invalid if HasValidResult is false.
func (s *CandidateSelector) Best() CandidateResult { return s.best }

func (s *CandidateSelector) Transform() model.Transform { return s.best.Transform }
func (s *CandidateSelector) Mirrored() bool             { return s.best.Mirrored }
func (s *CandidateSelector) SheetEdge() int             { return s.best.SheetEdge }
func (s *CandidateSelector) PieceEdge() int             { return s.best.PieceEdge }

// Counts returns how many results were fed and how many of them were valid.
func (s *CandidateSelector) Counts() (fed, valid int) { return s.fed, s.valid }
