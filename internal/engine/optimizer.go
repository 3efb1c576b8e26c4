package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/piwi3910/SeamNest/internal/model"
)

// Optimizer lays out a piece list over as many sheets as needed.
type Optimizer struct {
	Settings model.NestSettings

	pool   *WorkerPool
	stop   *StopFlag
	logger *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithPool runs searches on the given pool instead of one built from the settings.
func WithPool(p *WorkerPool) Option {
	return func(o *Optimizer) { o.pool = p }
}

// WithStopFlag shares a cancellation flag with the caller.
func WithStopFlag(f *StopFlag) Option {
	return func(o *Optimizer) { o.stop = f }
}

func New(settings model.NestSettings, opts ...Option) *Optimizer {
	o := &Optimizer{Settings: settings}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.stop == nil {
		o.stop = &StopFlag{}
	}
	if o.pool == nil {
		o.pool = poolFor(settings)
	}
	return o
}

type poolKey struct {
	workers int
	expiry  time.Duration
}

// poolKeyFor normalizes the pool settings so that unset values and values
// equal to the defaults compare equal.
func poolKeyFor(s model.NestSettings) poolKey {
	k := poolKey{workers: s.Workers, expiry: time.Duration(s.IdleExpiryMS) * time.Millisecond}
	if k.workers <= 0 {
		k.workers = runtime.NumCPU()
	}
	if k.expiry <= 0 {
		k.expiry = DefaultIdleExpiry
	}
	return k
}

// poolFor returns the process-wide pool unless the settings ask for another
// size or idle expiry.
func poolFor(s model.NestSettings) *WorkerPool {
	k := poolKeyFor(s)
	if k == poolKeyFor(model.NestSettings{}) {
		return DefaultPool()
	}
	return NewWorkerPool(k.workers, k.expiry)
}

// Stop requests cancellation of the running Optimize call, or of the next
// one when none is running. A cancelled call lowers the flag again before
// it returns, so the optimizer can be reused.
func (o *Optimizer) Stop() { o.stop.Stop() }

// Optimize places every piece (expanded by quantity) and returns the
// layout. Pieces are placed largest first unless KeepOrder is set. When a
// piece does not fit on the current sheet a new sheet is started; a piece
// that does not fit on a fresh sheet is reported as unplaced. On
// cancellation the partial layout is returned with an error wrapping
// ErrCancelled.
func (o *Optimizer) Optimize(ctx context.Context, pieces []model.Piece) (model.LayoutResult, error) {
	s := o.Settings
	if s.SheetWidth <= 0 || s.SheetHeight <= 0 {
		return model.LayoutResult{}, fmt.Errorf("sheet %gx%g: %w", s.SheetWidth, s.SheetHeight, ErrInvalidSheet)
	}

	queue := ExpandPieces(pieces)
	if !s.KeepOrder {
		sortByArea(queue)
	}

	var (
		result  model.LayoutResult
		packers []*SheetPacker
		current *SheetPacker
	)
	newSheet := func() bool {
		if s.MaxSheets > 0 && len(packers) >= s.MaxSheets {
			return false
		}
		current = NewSheetPacker(s, PackerOptions{
			Pool:         o.pool,
			Stop:         o.stop,
			PollInterval: time.Duration(s.PollIntervalMS) * time.Millisecond,
			Logger:       o.logger,
		})
		packers = append(packers, current)
		o.logger.Info("sheet started", "sheet", len(packers), "width", s.SheetWidth, "height", s.SheetHeight)
		return true
	}

	for n, piece := range queue {
		if current == nil && !newSheet() {
			result.Unplaced = append(result.Unplaced, model.UnplacedPiece{Piece: piece, Reason: "sheet limit reached"})
			continue
		}

		res := current.PlacePiece(ctx, piece)
		if res.Outcome == OutcomeNoFeasiblePlacement && !current.Contour().IsEmpty() {
			if newSheet() {
				res = current.PlacePiece(ctx, piece)
			} else {
				result.Unplaced = append(result.Unplaced, model.UnplacedPiece{Piece: piece, Reason: "sheet limit reached"})
				continue
			}
		}

		switch res.Outcome {
		case OutcomePlaced:
		case OutcomeCancelled:
			result.Sheets = collectSheets(packers)
			for _, rest := range queue[n:] {
				result.Unplaced = append(result.Unplaced, model.UnplacedPiece{Piece: rest, Reason: res.Outcome.String()})
			}
			o.stop.Reset()
			return result, fmt.Errorf("stopped after %d of %d pieces: %w", n, len(queue), ErrCancelled)
		default:
			o.logger.Warn("piece not placed", "piece", piece.Label, "reason", res.Outcome.String())
			result.Unplaced = append(result.Unplaced, model.UnplacedPiece{Piece: piece, Reason: res.Outcome.String()})
		}
	}

	result.Sheets = collectSheets(packers)
	o.logger.Info("layout finished",
		"sheets", len(result.Sheets),
		"placed", result.PlacedCount(),
		"unplaced", len(result.Unplaced),
		"length", result.TotalLength(),
	)
	return result, nil
}

// ExpandPieces repeats each piece by its quantity. Copies after the first
// get a numbered label and their own ID suffix.
func ExpandPieces(pieces []model.Piece) []model.Piece {
	var out []model.Piece
	for _, p := range pieces {
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		for k := 1; k <= qty; k++ {
			c := p
			c.Quantity = 1
			if qty > 1 {
				c.Label = fmt.Sprintf("%s #%d", p.Label, k)
				c.ID = fmt.Sprintf("%s-%d", p.ID, k)
			}
			out = append(out, c)
		}
	}
	return out
}

// sortByArea orders pieces by outline area, largest first. Equal areas keep
// their input order.
func sortByArea(pieces []model.Piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		return pieces[i].Area() > pieces[j].Area()
	})
}

func collectSheets(packers []*SheetPacker) []model.SheetLayout {
	var sheets []model.SheetLayout
	for _, p := range packers {
		if p.Contour().IsEmpty() {
			continue
		}
		sheets = append(sheets, p.Layout(len(sheets)))
	}
	return sheets
}
