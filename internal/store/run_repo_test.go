package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/SeamNest/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLayout() model.LayoutResult {
	front := model.NewPiece("Front", model.Rect(500, 700), 1)
	front.Placed = true
	front.Transform = model.Translation(0, 0)

	sleeve := model.NewPiece("Sleeve", model.Rect(300, 600), 1)
	sleeve.Placed = true
	sleeve.Mirrored = true
	sleeve.Transform = model.Translation(800, 0).Mul(model.Rotation(math.Pi / 2)).Mul(model.MirrorX())

	collar := model.NewPiece("Collar", model.Rect(400, 100), 1)
	return model.LayoutResult{
		Sheets: []model.SheetLayout{{
			Index: 0, Width: 1500, Height: 10000, UsedLength: 700,
			Pieces: []model.Piece{front, sleeve},
		}},
		Unplaced: []model.UnplacedPiece{{Piece: collar, Reason: "no feasible placement"}},
	}
}

func TestNewRun_Summary(t *testing.T) {
	settings := model.DefaultNestSettings()
	run, err := NewRun("shirt.dxf", settings, testLayout(), 1500*time.Millisecond, StatusCompleted)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if run.Sheets != 1 || run.Placed != 2 || run.Unplaced != 1 {
		t.Errorf("unexpected counts sheets=%d placed=%d unplaced=%d", run.Sheets, run.Placed, run.Unplaced)
	}
	if run.TotalLength != 700 || run.Fabric != settings.FabricName {
		t.Errorf("unexpected summary %+v", run)
	}
	if len(run.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(run.Placements))
	}
	if run.Placements[1].Angle != 90 || !run.Placements[1].Mirrored {
		t.Errorf("expected mirrored sleeve at 90 degrees, got %+v", run.Placements[1])
	}
}

func TestRunRepo_SaveAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &RunRepo{}

	run, err := NewRun("shirt.dxf", model.DefaultNestSettings(), testLayout(), 2*time.Second, StatusCompleted)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	id, err := repo.Save(ctx, db, run)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated run ID")
	}

	got, err := repo.Get(ctx, db, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "shirt.dxf" || got.Placed != 2 || got.Status != StatusCompleted {
		t.Errorf("unexpected run %+v", got)
	}
	if got.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", got.Duration)
	}
	if got.CreatedAt == 0 {
		t.Error("expected CreatedAt to be set")
	}

	placements, err := repo.Placements(ctx, db, id)
	if err != nil {
		t.Fatalf("Placements: %v", err)
	}
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	if placements[0].Label != "Front" || placements[1].Label != "Sleeve" {
		t.Errorf("unexpected placement order %s, %s", placements[0].Label, placements[1].Label)
	}
	if placements[1].Transform != run.Placements[1].Transform {
		t.Errorf("transform did not round trip: %+v", placements[1].Transform)
	}
	if !placements[1].Mirrored || placements[0].Mirrored {
		t.Error("mirror flags did not round trip")
	}
}

func TestRunRepo_GetNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := (&RunRepo{}).Get(context.Background(), db, "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepo_ListNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &RunRepo{}

	base := time.Now().Unix()
	for i, src := range []string{"a.csv", "b.csv", "c.csv"} {
		_, err := repo.Save(ctx, db, Run{ID: src, Source: src, CreatedAt: base + int64(i)})
		if err != nil {
			t.Fatalf("Save %s: %v", src, err)
		}
	}

	runs, err := repo.List(ctx, db, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Source != "c.csv" || runs[1].Source != "b.csv" {
		t.Errorf("unexpected order %s, %s", runs[0].Source, runs[1].Source)
	}

	all, err := repo.List(ctx, db, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs with no limit, got %d", len(all))
	}
}

func TestRunRepo_SaveDuplicateID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &RunRepo{}

	if _, err := repo.Save(ctx, db, Run{ID: "r1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Save(ctx, db, Run{ID: "r1"}); err == nil {
		t.Fatal("expected error for duplicate run ID")
	}
}

func TestRunRepo_Delete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &RunRepo{}

	run, err := NewRun("shirt.dxf", model.DefaultNestSettings(), testLayout(), time.Second, StatusCancelled)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	id, err := repo.Save(ctx, db, run)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := repo.Delete(ctx, db, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	placements, err := repo.Placements(ctx, db, id)
	if err != nil {
		t.Fatalf("Placements: %v", err)
	}
	if len(placements) != 0 {
		t.Errorf("expected placements to cascade, got %d", len(placements))
	}
	if err := repo.Delete(ctx, db, id); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
	}
}
