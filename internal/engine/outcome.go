package engine

import "errors"

// Outcome is the result of one PlacePiece call.
type Outcome int

const (
	OutcomePlaced Outcome = iota
	OutcomeInvalidSheet
	OutcomeInvalidPiece
	OutcomeNoFeasiblePlacement
	OutcomeCancelled
)

var (
	ErrInvalidSheet        = errors.New("invalid sheet")
	ErrInvalidPiece        = errors.New("invalid piece")
	ErrNoFeasiblePlacement = errors.New("no feasible placement")
	ErrCancelled           = errors.New("nesting cancelled")
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlaced:
		return "placed"
	case OutcomeInvalidSheet:
		return "invalid sheet"
	case OutcomeInvalidPiece:
		return "invalid piece"
	case OutcomeNoFeasiblePlacement:
		return "no feasible placement"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Err maps the outcome to its sentinel error, nil for OutcomePlaced.
func (o Outcome) Err() error {
	switch o {
	case OutcomePlaced:
		return nil
	case OutcomeInvalidSheet:
		return ErrInvalidSheet
	case OutcomeInvalidPiece:
		return ErrInvalidPiece
	case OutcomeCancelled:
		return ErrCancelled
	default:
		return ErrNoFeasiblePlacement
	}
}
