package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/piwi3910/SeamNest/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.NestSettings
}

// ComparisonResult holds the layout and computed statistics for a single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.LayoutResult
	SheetsUsed    int
	TotalLength   float64
	Efficiency    float64
	UnplacedCount int
	Err           error
}

// CompareScenarios runs the optimizer for each scenario and returns the
// results ranked by total used length, then sheet count, then unplaced
// pieces. Scenarios with the same pool settings share one worker pool. A
// cancelled context stops the remaining scenarios.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, pieces []model.Piece, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	pools := make(map[poolKey]*WorkerPool)

	for _, scenario := range scenarios {
		if ctx.Err() != nil {
			break
		}
		key := poolKeyFor(scenario.Settings)
		if pools[key] == nil {
			pools[key] = poolFor(scenario.Settings)
		}
		opt := New(scenario.Settings, append([]Option{WithPool(pools[key])}, opts...)...)
		result, err := opt.Optimize(ctx, pieces)

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        result,
			SheetsUsed:    len(result.Sheets),
			TotalLength:   result.TotalLength(),
			Efficiency:    result.TotalEfficiency(),
			UnplacedCount: len(result.Unplaced),
			Err:           err,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.UnplacedCount != b.UnplacedCount {
			return a.UnplacedCount < b.UnplacedCount
		}
		if c := compareFloat(a.TotalLength, b.TotalLength); c != 0 {
			return c < 0
		}
		return a.SheetsUsed < b.SheetsUsed
	})
	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(baseSettings model.NestSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: the other ranking strategy
	altRank := baseSettings
	altRank.PreferLengthSaving = !baseSettings.PreferLengthSaving
	scenarios = append(scenarios, ComparisonScenario{
		Name:     "Rank by " + StrategyFor(altRank.PreferLengthSaving).Name(),
		Settings: altRank,
	})

	// Scenario: finer rotation sampling
	if !baseSettings.AllowRotation || baseSettings.RotationStep > 90 {
		quarter := baseSettings
		quarter.AllowRotation = true
		quarter.RotationStep = 90
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Quarter-turn rotation",
			Settings: quarter,
		})
	}

	// Scenario: half the spacing
	if baseSettings.Shift > 0 {
		tight := baseSettings
		tight.Shift = baseSettings.Shift * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Shift %.1fmm (half)", tight.Shift),
			Settings: tight,
		})
	}

	// Scenario: keep input order
	if !baseSettings.KeepOrder {
		ordered := baseSettings
		ordered.KeepOrder = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Input order",
			Settings: ordered,
		})
	}

	return scenarios
}
