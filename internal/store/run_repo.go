package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/SeamNest/internal/model"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Run is the summary of one nesting invocation.
type Run struct {
	ID           string
	Source       string // input file or project name
	Fabric       string
	SheetWidth   float64
	Sheets       int
	Placed       int
	Unplaced     int
	TotalLength  float64
	Efficiency   float64
	Duration     time.Duration
	Status       string
	SettingsJSON string
	CreatedAt    int64

	Placements []Placement
}

// Placement is one placed piece of a run.
type Placement struct {
	RunID      string
	SheetIndex int
	SeqNo      int
	PieceID    string
	Label      string
	Angle      float64
	Mirrored   bool
	Transform  model.Transform
}

// NewRun summarises a layout result together with the settings that
// produced it.
func NewRun(source string, settings model.NestSettings, result model.LayoutResult, d time.Duration, status string) (Run, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return Run{}, fmt.Errorf("encode settings: %w", err)
	}

	run := Run{
		Source:       source,
		Fabric:       settings.FabricName,
		SheetWidth:   settings.SheetWidth,
		Sheets:       len(result.Sheets),
		Placed:       result.PlacedCount(),
		Unplaced:     len(result.Unplaced),
		TotalLength:  result.TotalLength(),
		Efficiency:   result.TotalEfficiency(),
		Duration:     d,
		Status:       status,
		SettingsJSON: string(settingsJSON),
	}
	for _, sheet := range result.Sheets {
		for i, p := range sheet.Pieces {
			run.Placements = append(run.Placements, Placement{
				SheetIndex: sheet.Index,
				SeqNo:      i,
				PieceID:    p.ID,
				Label:      p.Label,
				Angle:      p.Transform.RotationDegrees(),
				Mirrored:   p.Mirrored,
				Transform:  p.Transform,
			})
		}
	}
	return run, nil
}

// RunRepo handles persistence for Run records.
type RunRepo struct{}

// Save inserts a run and its placements in one transaction. An empty ID is
// filled with a new UUID and a zero CreatedAt with the current time. The
// stored ID is returned.
func (r *RunRepo) Save(ctx context.Context, db *sql.DB, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	if run.Status == "" {
		run.Status = StatusCompleted
	}
	if run.SettingsJSON == "" {
		run.SettingsJSON = "{}"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run tx: %w", err)
	}
	defer tx.Rollback()

	const qRun = `INSERT INTO runs (run_id, source, fabric, sheet_width, sheets, placed, unplaced,
	total_length, efficiency, duration_ms, status, settings_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, qRun,
		run.ID,
		run.Source,
		run.Fabric,
		run.SheetWidth,
		run.Sheets,
		run.Placed,
		run.Unplaced,
		run.TotalLength,
		run.Efficiency,
		run.Duration.Milliseconds(),
		run.Status,
		run.SettingsJSON,
		run.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	const qPlacement = `INSERT INTO placements (run_id, sheet_index, seq_no, piece_id, label, angle, mirrored,
	tx_a, tx_b, tx_c, tx_d, tx_e, tx_f)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range run.Placements {
		t := p.Transform
		_, err := tx.ExecContext(ctx, qPlacement,
			run.ID, p.SheetIndex, p.SeqNo, p.PieceID, p.Label, p.Angle, boolToInt(p.Mirrored),
			t.A, t.B, t.C, t.D, t.E, t.F,
		)
		if err != nil {
			return "", fmt.Errorf("insert placement %s: %w", p.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `run_id, source, fabric, sheet_width, sheets, placed, unplaced,
	total_length, efficiency, duration_ms, status, settings_json, created_at`

// Get returns a single run without its placements.
func (r *RunRepo) Get(ctx context.Context, db *sql.DB, runID string) (Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns all runs.
func (r *RunRepo) List(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Placements returns the placements of a run ordered by sheet and
// placement order.
func (r *RunRepo) Placements(ctx context.Context, db *sql.DB, runID string) ([]Placement, error) {
	const q = `SELECT run_id, sheet_index, seq_no, piece_id, label, angle, mirrored,
	tx_a, tx_b, tx_c, tx_d, tx_e, tx_f
FROM placements
WHERE run_id = ?
ORDER BY sheet_index ASC, seq_no ASC`

	rows, err := db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var p Placement
		var mirrored int
		t := &p.Transform
		if err := rows.Scan(&p.RunID, &p.SheetIndex, &p.SeqNo, &p.PieceID, &p.Label, &p.Angle, &mirrored,
			&t.A, &t.B, &t.C, &t.D, &t.E, &t.F); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.Mirrored = mirrored != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a run and its placements.
func (r *RunRepo) Delete(ctx context.Context, db *sql.DB, runID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var run Run
	var durationMS int64
	err := s.Scan(&run.ID, &run.Source, &run.Fabric, &run.SheetWidth, &run.Sheets, &run.Placed, &run.Unplaced,
		&run.TotalLength, &run.Efficiency, &durationMS, &run.Status, &run.SettingsJSON, &run.CreatedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
