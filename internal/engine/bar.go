package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/cutstock/sharedcut/internal/model"
)

// minDefaultBarLength is the floor placed on the auto-provisioned
// material type used when the caller supplies no materials at all.
const minDefaultBarLength = 6000.0

// BarPool tracks every MaterialInstance spawned during a run and the
// material type definitions available to spawn from. It is not safe for
// concurrent use; one pool serves one Optimizer.Optimize call.
type BarPool struct {
	materials  []model.Material // ascending by Length
	spawnCount map[string]int
	bars       []*model.MaterialInstance
	warnings   []model.Warning
}

// NewBarPool prepares a pool from the caller's material catalog. When the
// catalog is empty, a single unlimited-supply material type is synthesized,
// sized to the largest of (longestPartLength + frontCuttingLoss +
// cuttingLoss) and minDefaultBarLength, so a run never fails for lack of
// any declared stock.
func NewBarPool(materials []model.Material, longestPartLength, frontCuttingLoss, cuttingLoss float64) *BarPool {
	defs := append([]model.Material(nil), materials...)
	if len(defs) == 0 {
		size := math.Max(longestPartLength+frontCuttingLoss+cuttingLoss, minDefaultBarLength)
		defs = []model.Material{model.NewMaterial("default", size)}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Length < defs[j].Length })
	return &BarPool{materials: defs, spawnCount: make(map[string]int, len(defs))}
}

// FindBestFit returns the already-spawned bar that wastes the least space
// once the pending item is placed on it. A bar
// still carrying only its raw ends needs requiredIfEmpty space (it pays the
// front cutting loss); a bar that already has a cut face needs only
// requiredIfReused (an ordinary kerf). Ties break in favor of a bar that
// already carries parts, then the bar with the longer source material type,
// then the lowest instance index — all needed for bit-identical results
// across runs since map iteration never drives this choice.
func (bp *BarPool) FindBestFit(requiredIfEmpty, requiredIfReused float64) (*model.MaterialInstance, bool) {
	var best *model.MaterialInstance
	var bestRequired float64
	for _, b := range bp.bars {
		required := requiredIfReused
		if b.IsEmpty() {
			required = requiredIfEmpty
		}
		if b.RemainingLength() < required {
			continue
		}
		if best == nil || bestFitLess(b, required, best, bestRequired) {
			best = b
			bestRequired = required
		}
	}
	return best, best != nil
}

func bestFitLess(candidate *model.MaterialInstance, candidateRequired float64, current *model.MaterialInstance, currentRequired float64) bool {
	cSlack := candidate.RemainingLength() - candidateRequired
	curSlack := current.RemainingLength() - currentRequired
	if cSlack != curSlack {
		return cSlack < curSlack
	}
	if candidate.IsEmpty() != current.IsEmpty() {
		return !candidate.IsEmpty()
	}
	if candidate.Length != current.Length {
		return candidate.Length > current.Length
	}
	return candidate.InstanceIndex < current.InstanceIndex
}

// Provision spawns a fresh bar long enough to hold requiredIfEmpty (every
// new bar starts empty, so it always pays the front cutting loss), picking
// the shortest declared material type that fits it to minimize the waste a
// brand-new bar starts with. When no declared type is long enough, it
// synthesizes an oversized one-off type instead of giving up: the
// completeness guarantee means provisioning must always succeed, so a part
// longer than anything in the caller's catalog still gets a bar built for
// it rather than being reported unplaced. When a finite-supply material type
// is spawned past its preferred count, a SoftWarning is appended to the
// pool's accumulated warnings (retrievable via Warnings) instead of failing
// the run.
func (bp *BarPool) Provision(requiredIfEmpty float64) (*model.MaterialInstance, bool) {
	chosen, ok := bp.pickMaterialFor(requiredIfEmpty)
	if !ok {
		chosen = bp.synthesizeOversizeMaterial(requiredIfEmpty)
	}

	count := bp.spawnCount[chosen.ID]
	if chosen.Supply.Kind == model.SupplyFinite && count >= chosen.Supply.Count {
		bp.warnings = append(bp.warnings, model.Warning{
			Kind:    "supply_exceeded",
			Message: fmt.Sprintf("material %s exceeded its preferred supply of %d bars", chosen.ID, chosen.Supply.Count),
			Fields:  map[string]any{"materialId": chosen.ID, "instanceIndex": count},
		})
	}

	bar := &model.MaterialInstance{MaterialID: chosen.ID, InstanceIndex: count, Length: chosen.Length}
	bp.spawnCount[chosen.ID] = count + 1
	bp.bars = append(bp.bars, bar)
	return bar, true
}

// pickMaterialFor returns the shortest declared material type able to hold
// requiredIfEmpty, if any.
func (bp *BarPool) pickMaterialFor(requiredIfEmpty float64) (model.Material, bool) {
	for _, m := range bp.materials {
		if m.Length >= requiredIfEmpty {
			return m, true
		}
	}
	return model.Material{}, false
}

// synthesizeOversizeMaterial builds and records a one-off unlimited-supply
// material type sized to hold requiredIfEmpty (floored at
// minDefaultBarLength), for when nothing in the caller's catalog qualifies.
// It logs a SoftWarning rather than silently growing the catalog, since this
// indicates the caller's stock list didn't anticipate a part this long.
func (bp *BarPool) synthesizeOversizeMaterial(requiredIfEmpty float64) model.Material {
	size := math.Max(requiredIfEmpty, minDefaultBarLength)
	m := model.NewMaterial(fmt.Sprintf("auto-oversize-%d", len(bp.materials)), size)
	bp.materials = append(bp.materials, m)
	sort.Slice(bp.materials, func(i, j int) bool { return bp.materials[i].Length < bp.materials[j].Length })
	bp.warnings = append(bp.warnings, model.Warning{
		Kind:    "oversize_auto_provision",
		Message: fmt.Sprintf("no declared material type was long enough (%.1f required); auto-provisioned a %.1f-length bar", requiredIfEmpty, size),
		Fields:  map[string]any{"required": requiredIfEmpty, "length": size},
	})
	return m
}

// AcquireBar returns a bar able to hold the pending item, first trying the
// existing pool (Best-Fit) and provisioning a new bar only on a miss: bars
// are always reused before new ones are spawned.
func (bp *BarPool) AcquireBar(requiredIfEmpty, requiredIfReused float64) (*model.MaterialInstance, bool) {
	if bar, ok := bp.FindBestFit(requiredIfEmpty, requiredIfReused); ok {
		return bar, true
	}
	return bp.Provision(requiredIfEmpty)
}

// Bars returns a snapshot of every spawned bar, in spawn order.
func (bp *BarPool) Bars() []model.MaterialInstance {
	out := make([]model.MaterialInstance, len(bp.bars))
	for i, b := range bp.bars {
		out[i] = *b
	}
	return out
}

// Warnings returns the SoftWarnings accumulated while provisioning bars.
func (bp *BarPool) Warnings() []model.Warning { return bp.warnings }

// Place seats one standalone part on bar: it always
// pays an ordinary kerf (cuttingLoss) for its own cut, plus the one-time
// frontCuttingLoss if the bar has not been cut into yet. It does not check
// fit; callers must have already confirmed the bar has room via
// FindBestFit/Provision (requiredIfEmpty = length + cuttingLoss +
// frontCuttingLoss; requiredIfReused = length + cuttingLoss).
//
// Chain members are seated directly by the optimizer instead of through
// Place, since consecutive chain members share a reduced, savings-adjusted
// gap rather than a full cuttingLoss.
func Place(bar *model.MaterialInstance, frontCuttingLoss, cuttingLoss float64, placed model.PlacedPart) model.PlacedPart {
	loss := cuttingLoss
	if bar.IsEmpty() {
		loss += frontCuttingLoss
	}
	bar.UsedLength += loss
	placed.Position = bar.UsedLength
	placed.MaterialID = bar.MaterialID
	placed.MaterialInstanceIndex = bar.InstanceIndex
	bar.Placed = append(bar.Placed, placed)
	bar.UsedLength += placed.Length
	return placed
}
