package engine

import (
	"fmt"

	"github.com/cutstock/sharedcut/internal/model"
)

// ComparisonScenario names one Settings variant to run side by side with
// the others, adapted from sheet-layout kerf/algorithm variants to this
// domain's loss and chain-length knobs.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds one scenario's outcome plus the derived statistics
// a caller would otherwise have to recompute from CuttingResult by hand.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.CuttingResult
	BarsUsed      int
	WastePercent  float64
	UnplacedCount int
	Err           error
}

// CompareScenarios runs the optimizer once per scenario, in order, and
// returns one ComparisonResult per scenario. A scenario whose Settings fail
// validation or whose run otherwise errors is reported with Err set rather
// than aborting the remaining comparisons.
func CompareScenarios(scenarios []ComparisonScenario, materials []model.Material, parts []model.Part) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := New(scenario.Settings).Optimize(materials, parts)
		cr := ComparisonResult{Scenario: scenario, Result: result, Err: err}
		if err == nil {
			cr.BarsUsed = result.TotalMaterialsUsed
			cr.WastePercent = 100 * (1 - result.OverallUtilization)
			cr.UnplacedCount = len(result.UnplacedParts)
		}
		results = append(results, cr)
	}
	return results
}

// BuildDefaultScenarios generates a small set of what-if variants around
// baseSettings: the alternate algorithm, a tighter cutting loss, a wider
// angle tolerance, and chains capped at 2 parts, mirroring a
// kerf/algorithm/edge-trim comparison
// shape but over this domain's settings.
func BuildDefaultScenarios(baseSettings model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "current settings", Settings: baseSettings},
	}

	altAlgo := baseSettings
	if baseSettings.Algorithm == model.AlgorithmGenetic {
		altAlgo.Algorithm = model.AlgorithmBestFit
		scenarios = append(scenarios, ComparisonScenario{Name: "best-fit algorithm", Settings: altAlgo})
	} else {
		altAlgo.Algorithm = model.AlgorithmGenetic
		scenarios = append(scenarios, ComparisonScenario{Name: "genetic algorithm", Settings: altAlgo})
	}

	if baseSettings.CuttingLoss > 1 {
		tighter := baseSettings
		tighter.CuttingLoss = baseSettings.CuttingLoss / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("cutting loss %.1fmm (half)", tighter.CuttingLoss),
			Settings: tighter,
		})
	}

	if baseSettings.AngleTolerance < 20 {
		wider := baseSettings
		wider.AngleTolerance = baseSettings.AngleTolerance * 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("angle tolerance %.0f° (double)", wider.AngleTolerance),
			Settings: wider,
		})
	}

	if baseSettings.MaxChainLength > 2 {
		shorter := baseSettings
		shorter.MaxChainLength = 2
		scenarios = append(scenarios, ComparisonScenario{Name: "chains capped at 2 parts", Settings: shorter})
	}

	return scenarios
}
