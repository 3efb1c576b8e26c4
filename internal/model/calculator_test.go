package model

import (
	"math"
	"testing"
)

func TestEstimateFabricBasic(t *testing.T) {
	pieces := []Piece{
		{Label: "Front", Outline: Rect(500, 300), Quantity: 4},
	}
	est := EstimateFabric(pieces, 1500, 0, 20, 10)

	expectedArea := 500.0 * 300.0 * 4
	if math.Abs(est.TotalPieceArea-expectedArea) > 0.1 {
		t.Errorf("expected total area %.1f, got %.1f", expectedArea, est.TotalPieceArea)
	}
	if math.Abs(est.MinimumLength-400) > 1e-9 {
		t.Errorf("expected minimum length 400, got %f", est.MinimumLength)
	}
	// 400 * 1.2 = 480, rounded up to 500
	if est.RecommendedLength != 500 {
		t.Errorf("expected recommended length 500, got %f", est.RecommendedLength)
	}
	if math.Abs(est.EstimatedCost-5.0) > 1e-9 {
		t.Errorf("expected cost 5.0, got %f", est.EstimatedCost)
	}
}

func TestEstimateFabricIncludesShift(t *testing.T) {
	pieces := []Piece{{Label: "P", Outline: Rect(100, 100), Quantity: 1}}
	without := EstimateFabric(pieces, 1000, 0, 0, 0)
	with := EstimateFabric(pieces, 1000, 4, 0, 0)
	if with.TotalPieceArea <= without.TotalPieceArea {
		t.Errorf("shift should grow the area: %f <= %f", with.TotalPieceArea, without.TotalPieceArea)
	}
}

func TestEstimateFabricLongPieceSpan(t *testing.T) {
	// A piece wider than the area suggests still needs its own span of fabric.
	pieces := []Piece{{Label: "Sleeve", Outline: Rect(100, 800), Quantity: 1}}
	est := EstimateFabric(pieces, 1500, 0, 0, 0)
	if est.MinimumLength != 100 {
		t.Errorf("expected minimum length 100 (smallest side), got %f", est.MinimumLength)
	}
}

func TestEstimateFabricZeroWidth(t *testing.T) {
	pieces := []Piece{{Label: "P1", Outline: Rect(100, 100), Quantity: 1}}
	est := EstimateFabric(pieces, 0, 0, 15, 10)
	if est.MinimumLength != 0 || est.RecommendedLength != 0 {
		t.Error("expected zero lengths for zero fabric width")
	}
	if est.TotalPieceArea != 10000 {
		t.Errorf("expected area 10000, got %f", est.TotalPieceArea)
	}
}
