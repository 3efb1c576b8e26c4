package engine

import (
	"context"
	"testing"
	"time"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultScenarios(t *testing.T) {
	s := testSettings(1000, 1000)
	s.Shift = 4

	scenarios := BuildDefaultScenarios(s)
	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, "Rank by bounding-area", scenarios[1].Name)
	assert.False(t, scenarios[1].Settings.PreferLengthSaving)
	assert.Equal(t, 90, scenarios[2].Settings.RotationStep)
	assert.Equal(t, 2.0, scenarios[3].Settings.Shift)
	assert.True(t, scenarios[4].Settings.KeepOrder)
}

func TestBuildDefaultScenariosSkipsNoOps(t *testing.T) {
	s := testSettings(1000, 1000)
	s.AllowRotation = true
	s.RotationStep = 45
	s.KeepOrder = true

	scenarios := BuildDefaultScenarios(s)
	assert.Len(t, scenarios, 2)
}

func TestCompareScenariosRanksByOutcome(t *testing.T) {
	wide := testSettings(400, 1000)
	narrow := testSettings(100, 1000)
	tooSmall := testSettings(50, 50)

	scenarios := []ComparisonScenario{
		{Name: "too small", Settings: tooSmall},
		{Name: "narrow", Settings: narrow},
		{Name: "wide", Settings: wide},
	}
	pieces := []model.Piece{model.NewPiece("Panel", model.Rect(100, 100), 4)}

	results := CompareScenarios(context.Background(), scenarios, pieces,
		WithLogger(quietLogger()), WithPool(NewWorkerPool(2, 50*time.Millisecond)))
	require.Len(t, results, 3)

	assert.Equal(t, "wide", results[0].Scenario.Name)
	assert.InDelta(t, 100.0, results[0].TotalLength, 1e-9)
	assert.Equal(t, "narrow", results[1].Scenario.Name)
	assert.InDelta(t, 400.0, results[1].TotalLength, 1e-9)
	assert.Equal(t, "too small", results[2].Scenario.Name)
	assert.Equal(t, 4, results[2].UnplacedCount)
}

func TestCompareScenariosStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := CompareScenarios(ctx, BuildDefaultScenarios(testSettings(1000, 1000)), nil, WithLogger(quietLogger()))
	assert.Empty(t, results)
}
