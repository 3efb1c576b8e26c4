package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings(w, h float64) model.NestSettings {
	s := model.DefaultNestSettings()
	// Plain sheet: no spacing, no extra rotation
	s.SheetWidth = w
	s.SheetHeight = h
	s.Shift = 0
	s.AllowRotation = false
	s.RotationStep = 180
	s.PreferLengthSaving = true
	s.PollIntervalMS = 5
	return s
}

func newTestPacker(t *testing.T, s model.NestSettings) *SheetPacker {
	t.Helper()
	return NewSheetPacker(s, PackerOptions{
		Pool:         NewWorkerPool(4, 50*time.Millisecond),
		PollInterval: 5 * time.Millisecond,
		Logger:       quietLogger(),
	})
}

func squarePiece(label string, size float64) model.Piece {
	return model.NewPiece(label, model.Rect(size, size), 1)
}

func lPiece(label string) model.Piece {
	return model.NewPiece(label, model.Outline{
		{X: 0, Y: 0}, {X: 80, Y: 0}, {X: 80, Y: 30}, {X: 30, Y: 30}, {X: 30, Y: 60}, {X: 0, Y: 60},
	}, 1)
}

func requireBox(t *testing.T, o model.Outline, minX, minY, maxX, maxY float64) {
	t.Helper()
	min, max := o.BoundingBox()
	require.InDelta(t, minX, min.X, 1e-6, "min x")
	require.InDelta(t, minY, min.Y, 1e-6, "min y")
	require.InDelta(t, maxX, max.X, 1e-6, "max x")
	require.InDelta(t, maxY, max.Y, 1e-6, "max y")
}
