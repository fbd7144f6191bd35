package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes the result aggregator over the bars that received at
// least one placement. Plans not carrying any PlacedPart are excluded from
// totalMaterialsUsed and the utilization statistics.
//
// Sums over bar lengths use gonum's compensated floats.SumCompensated
// rather than a naive loop, to keep rounding error small once thousands of
// bars are involved. Bars arrive in spawn order, which is deterministic, so
// repeated runs over the same input give bit-identical totals.
func Summarize(plans []MaterialInstance, chains []SharedCutChain, invalidParts []InvalidPart, unplacedParts []Part, settings Settings) CuttingResult {
	var used []MaterialInstance
	for _, p := range plans {
		if !p.IsEmpty() {
			used = append(used, p)
		}
	}

	lengths := make([]float64, len(used))
	usedLengths := make([]float64, len(used))
	utilizations := make([]float64, len(used))
	for i, p := range used {
		lengths[i] = p.Length
		usedLengths[i] = p.UsedLength
		utilizations[i] = p.Utilization()
	}

	totalLength := floats.SumCompensated(lengths)
	totalUsed := floats.SumCompensated(usedLengths)

	var overallUtilization float64
	if totalLength > 0 {
		overallUtilization = totalUsed / totalLength
	}

	var utilizationStdDev float64
	if len(utilizations) > 1 {
		utilizationStdDev = stat.StdDev(utilizations, nil)
	}

	var totalSavings float64
	chainSavings := make([]float64, len(chains))
	for i, c := range chains {
		chainSavings[i] = c.TotalSavings
	}
	totalSavings = floats.Sum(chainSavings)

	result := CuttingResult{
		MaterialUsagePlans:         used,
		UnplacedParts:              unplacedParts,
		InvalidParts:               invalidParts,
		Chains:                     chains,
		AllPartsPlaced:             len(unplacedParts) == 0,
		TotalMaterialsUsed:         len(used),
		TotalWasteLength:           totalLength - totalUsed,
		OverallUtilization:         overallUtilization,
		UtilizationStdDev:          utilizationStdDev,
		TotalSavingsFromSharedCuts: totalSavings,
		Summary: ResultSummary{
			MaterialUtilization: fmt.Sprintf("%.1f%%", overallUtilization*100),
		},
	}

	result.Warnings = append(result.Warnings, DetectFragmentation(used, settings.MinUsableOffcut)...)
	if len(used) > 0 && overallUtilization < 0.5 {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    "low_utilization",
			Message: fmt.Sprintf("overall utilization %.1f%% is below 50%%", overallUtilization*100),
			Fields:  map[string]any{"utilization": overallUtilization},
		})
	}

	return result
}

// DetectFragmentation flags bars whose remaining length is nonzero but
// below minUsableOffcut: material left over but too short to reuse.
// Mirrors a minimum-offcut-dimension check adapted from a 2D area
// threshold down to a 1D length threshold.
func DetectFragmentation(plans []MaterialInstance, minUsableOffcut float64) []Warning {
	if minUsableOffcut <= 0 {
		return nil
	}
	var warnings []Warning
	for _, p := range plans {
		remaining := p.RemainingLength()
		if remaining > 0 && remaining < minUsableOffcut {
			warnings = append(warnings, Warning{
				Kind:    "fragmentation",
				Message: fmt.Sprintf("material %s instance %d has an unusable remnant of %.1f", p.MaterialID, p.InstanceIndex, remaining),
				Fields: map[string]any{
					"material_id":    p.MaterialID,
					"instance_index": p.InstanceIndex,
					"remaining":      remaining,
				},
			})
		}
	}
	return warnings
}
