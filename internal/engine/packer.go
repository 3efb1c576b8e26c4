package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/piwi3910/SeamNest/internal/model"
)

// DefaultPollInterval is how often a waiting coordinator checks the stop flag.
const DefaultPollInterval = 100 * time.Millisecond

// PackerOptions configures a SheetPacker. Zero values select defaults.
type PackerOptions struct {
	Pool         *WorkerPool   // shared task pool; DefaultPool() when nil
	Stop         *StopFlag     // cancellation flag; a private flag when nil
	PollInterval time.Duration // DefaultPollInterval when zero
	Logger       *slog.Logger  // slog.Default() when nil
}

// PlaceResult reports the outcome of one PlacePiece call. Piece carries the
// transform and mirror flag when the outcome is OutcomePlaced.
type PlaceResult struct {
	Outcome   Outcome
	Piece     model.Piece
	Candidate CandidateResult
}

// SheetPacker places pieces one at a time onto a single sheet. It is the
// only writer of its SheetContour; PlacePiece must not be called
// concurrently on the same packer.
type SheetPacker struct {
	contour  *SheetContour
	policy   model.RotationPolicy
	strategy ScoreStrategy
	pool     *WorkerPool
	stop     *StopFlag
	poll     time.Duration
	logger   *slog.Logger
	pieces   []model.Piece
}

// NewSheetPacker creates a packer for an empty sheet described by settings.
func NewSheetPacker(settings model.NestSettings, opts PackerOptions) *SheetPacker {
	p := &SheetPacker{
		contour:  NewSheetContour(settings.SheetWidth, settings.SheetHeight, settings.Shift),
		policy:   settings.Policy(),
		strategy: StrategyFor(settings.PreferLengthSaving),
		pool:     opts.Pool,
		stop:     opts.Stop,
		poll:     opts.PollInterval,
		logger:   opts.Logger,
	}
	if p.pool == nil {
		p.pool = DefaultPool()
	}
	if p.stop == nil {
		p.stop = &StopFlag{}
	}
	if p.poll <= 0 {
		p.poll = DefaultPollInterval
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Contour returns the sheet contour. Callers must not mutate it while a
// placement is in flight.
func (p *SheetPacker) Contour() *SheetContour { return p.contour }

// StopFlag returns the flag that cancels this packer's searches.
func (p *SheetPacker) StopFlag() *StopFlag { return p.stop }

// Pieces returns the placed pieces in placement order.
func (p *SheetPacker) Pieces() []model.Piece {
	return append([]model.Piece(nil), p.pieces...)
}

// Layout returns the sheet as a model.SheetLayout.
func (p *SheetPacker) Layout(index int) model.SheetLayout {
	return model.SheetLayout{
		Index:      index,
		Width:      p.contour.Width(),
		Height:     p.contour.Height(),
		Pieces:     p.Pieces(),
		Boundary:   p.contour.Boundary(),
		UsedLength: p.contour.UsedLength(),
	}
}

// PlacePiece searches every (sheet edge, piece edge) pair in parallel and
// commits the best placement. It always returns one of the Outcome values;
// on anything but OutcomePlaced the contour is left unchanged.
func (p *SheetPacker) PlacePiece(ctx context.Context, piece model.Piece) PlaceResult {
	if ctx.Err() != nil {
		p.stop.Stop()
	}
	if p.stop.Stopped() {
		return PlaceResult{Outcome: OutcomeCancelled, Piece: piece}
	}
	if !p.contour.Valid() {
		return PlaceResult{Outcome: OutcomeInvalidSheet, Piece: piece}
	}
	if piece.Outline.EdgeCount() < 3 || piece.LayoutOutline().EdgeCount() < 3 {
		return PlaceResult{Outcome: OutcomeInvalidPiece, Piece: piece}
	}

	policy := p.policy.ForPiece(piece)
	snap := p.contour.Snapshot()
	poly := piece.PhaseOutline(snap.Empty)
	mirrors := []bool{false}
	if !piece.ForbidMirroring {
		mirrors = append(mirrors, true)
	}
	angles := policy.Angles()

	sheetEdges, pieceEdges := p.contour.EdgeCount(), poly.EdgeCount()
	results := make([]CandidateResult, sheetEdges*pieceEdges)
	var wg sync.WaitGroup
	wg.Add(len(results))
	for i := 0; i < sheetEdges; i++ {
		for j := 0; j < pieceEdges; j++ {
			task := CandidateTask{
				Contour:   snap,
				Polygon:   poly,
				SheetEdge: i,
				PieceEdge: j,
				Mirrors:   mirrors,
				Angles:    angles,
				Strategy:  p.strategy,
			}
			slot := &results[i*pieceEdges+j]
			p.pool.Submit(func() {
				defer wg.Done()
				*slot = EvaluateCandidate(task, p.stop)
			})
		}
	}

	if !p.wait(ctx, &wg) {
		p.logger.Info("placement cancelled", "piece", piece.Label)
		return PlaceResult{Outcome: OutcomeCancelled, Piece: piece}
	}

	selector := NewCandidateSelector()
	for _, r := range results {
		selector.Feed(r)
	}
	if !selector.HasValidResult() {
		p.logger.Debug("no feasible placement", "piece", piece.Label, "tasks", len(results))
		return PlaceResult{Outcome: OutcomeNoFeasiblePlacement, Piece: piece}
	}

	best := selector.Best()
	placed := piece
	placed.Transform = best.Transform
	placed.Mirrored = best.Mirrored
	placed.Placed = true
	if p.contour.UniteWithPiece(placed, best.SheetEdge, best.PieceEdge, best.Join) == nil {
		p.logger.Warn("degenerate union discarded", "piece", piece.Label,
			"sheet_edge", best.SheetEdge, "piece_edge", best.PieceEdge)
		return PlaceResult{Outcome: OutcomeNoFeasiblePlacement, Piece: piece, Candidate: best}
	}
	p.pieces = append(p.pieces, placed)

	p.logger.Debug("piece placed",
		"piece", piece.Label,
		"sheet_edge", best.SheetEdge,
		"piece_edge", best.PieceEdge,
		"angle", best.Angle,
		"mirrored", best.Mirrored,
		"used_length", p.contour.UsedLength(),
	)
	return PlaceResult{Outcome: OutcomePlaced, Piece: placed, Candidate: best}
}

// wait blocks until every task finished or the search is cancelled. It
// reports false on cancellation. A cancelled context raises the stop flag
// so in-flight tasks abort at their next angle.
func (p *SheetPacker) wait(ctx context.Context, wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return !p.stop.Stopped()
		case <-ctx.Done():
			p.stop.Stop()
			return false
		case <-ticker.C:
			if p.stop.Stopped() {
				return false
			}
		}
	}
}
