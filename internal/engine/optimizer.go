package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/cutstock/sharedcut/internal/model"
)

// Optimizer runs the two-phase placement engine over a
// demand list and a material catalog: Phase A seats shared-cut chains
// highest-savings first, Phase B fills everything left over with a
// Decreasing single-part Best-Fit pass, and bars are spawned from the
// supplied (or auto-provisioned) material types on demand.
type Optimizer struct {
	Settings model.Settings
	Logger   *slog.Logger
}

// New builds an Optimizer. Settings are validated lazily, on Optimize, so
// callers can construct one before finishing configuration.
func New(settings model.Settings) *Optimizer {
	return &Optimizer{Settings: settings, Logger: slog.Default()}
}

// WithLogger overrides the default logger and returns the optimizer for
// chaining.
func (o *Optimizer) WithLogger(logger *slog.Logger) *Optimizer {
	o.Logger = logger
	return o
}

func (o *Optimizer) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Optimize places every valid part from parts onto bars drawn from
// materials, building and seating shared-cut chains along the way. It never
// returns a partial result silently: a part that cannot be placed is
// reported in CuttingResult.UnplacedParts, and a part that fails validation
// is reported in CuttingResult.InvalidParts, but Σ placed + Σ unplaced must
// equal Σ valid quantity or Optimize returns a *model.LogicFault.
func (o *Optimizer) Optimize(materials []model.Material, parts []model.Part) (model.CuttingResult, error) {
	if err := o.Settings.Validate(); err != nil {
		return model.CuttingResult{}, err
	}
	log := o.logger()

	valid, invalid := splitValidParts(parts)
	log.Debug("validated parts", "valid", len(valid), "invalid", len(invalid))
	if len(valid) == 0 {
		return model.Summarize(nil, nil, invalid, nil, o.Settings), nil
	}

	if o.Settings.Algorithm == model.AlgorithmGenetic {
		result, _ := OptimizeGenetic(o.Settings, materials, valid, DefaultGeneticConfig(), log)
		demanded, accounted := 0, 0
		for _, p := range valid {
			demanded += p.Quantity
		}
		for _, bar := range result.MaterialUsagePlans {
			accounted += len(bar.Placed)
		}
		for _, p := range result.UnplacedParts {
			accounted += p.Quantity
		}
		if accounted != demanded {
			return model.CuttingResult{}, &model.LogicFault{Message: fmt.Sprintf(
				"placement accounting mismatch: demanded %d, placed plus unplaced %d", demanded, accounted)}
		}
		result.InvalidParts = invalid
		return result, nil
	}
	return o.optimizeBestFit(materials, valid, invalid, log)
}

// optimizeBestFit is the deterministic default path. The genetic path
// decodes its candidate orderings through the same chain-seating and
// instance-seating logic, in whatever order the candidate gives, just
// reimplemented against a scratch pool per candidate (see genetic.go's
// seatChain/seatInstance).
func (o *Optimizer) optimizeBestFit(materials []model.Material, valid []model.Part, invalid []model.InvalidPart, log *slog.Logger) (model.CuttingResult, error) {
	chains, remaining := BuildChains(valid, o.Settings.AngleTolerance, o.Settings.MaxChainLength)
	log.Debug("shared-cut chains built", "chains", len(chains), "remaining_parts", len(remaining))

	pool := o.seedPool(materials, valid)
	queues := instanceQueues(valid)

	o.placeChains(pool, chains, valid, queues, log)
	order := decreasingInstanceOrder(valid, queues)
	o.placeInstances(pool, order, queues)

	unplaced := unplacedFromQueues(valid, queues)
	if err := assertComplete(valid, pool, unplaced); err != nil {
		return model.CuttingResult{}, err
	}

	result := model.Summarize(pool.Bars(), chains, invalid, unplaced, o.Settings)
	result.Warnings = append(result.Warnings, pool.Warnings()...)
	logWarnings(log, result.Warnings)
	return result, nil
}

// seedPool builds the bar pool sized to the longest demanded part.
func (o *Optimizer) seedPool(materials []model.Material, valid []model.Part) *BarPool {
	longest := 0.0
	for _, p := range valid {
		if p.Length > longest {
			longest = p.Length
		}
	}
	return NewBarPool(materials, longest, o.Settings.FrontCuttingLoss, o.Settings.CuttingLoss)
}

// instanceQueues expands every valid part's quantity into individual
// PartInstance values (C5, see expand.go) and groups them per part id, in
// ascending instance-index order, so placement can hand out "the next
// physical copy of this part" by popping the front of its queue instead of
// re-deriving an instance index from a quantity counter.
func instanceQueues(valid []model.Part) map[string][]model.PartInstance {
	queues := make(map[string][]model.PartInstance, len(valid))
	for _, inst := range ExpandInstances(valid) {
		queues[inst.PartID] = append(queues[inst.PartID], inst)
	}
	return queues
}

// popInstance removes and returns the next queued instance for partID. The
// caller must only invoke it when the queue is known non-empty (see
// chainInstancesAvailable).
func popInstance(queues map[string][]model.PartInstance, partID string) model.PartInstance {
	q := queues[partID]
	inst := q[0]
	queues[partID] = q[1:]
	return inst
}

// placeChains runs Phase A: chains are already sorted mixed-first then by
// descending TotalSavings (BuildChains), so seating them in that order
// greedily captures the highest-value shared cuts first. Exactly one queued
// instance of every member part is consumed per seated chain (via C5's
// instance queues, see instanceQueues/popInstance).
//
// A chain pays the same leading loss any single part would: an ordinary
// cuttingLoss for its own leading cut, plus frontCuttingLoss on top of that
// when the bar is still uncut (mirrors placeInstances). Internally,
// consecutive members are placed `cuttingLoss - connection.savings` apart
// instead of a full cuttingLoss (occasionally a small negative shrinkage,
// reflecting that a shared bevel cut replaces two ordinary kerfs with
// one). An earlier draft let a chain reused onto a non-empty bar skip its
// own leading cut entirely, but that breaks non-overlap against whatever
// already sits on the bar unless that neighbor happens to be part of the
// same chain, so the leading cuttingLoss is always charged (see DESIGN.md).
func (o *Optimizer) placeChains(pool *BarPool, chains []model.SharedCutChain, valid []model.Part, queues map[string][]model.PartInstance, log *slog.Logger) {
	byID := make(map[string]model.Part, len(valid))
	for _, p := range valid {
		byID[p.ID] = p
	}

	for _, chain := range chains {
		if !chainInstancesAvailable(chain, queues) {
			log.Debug("chain member exhausted, skipping seat", "chain", chain.ID)
			continue
		}

		n := len(chain.PartIDs)
		internalKerf := float64(n-1) * o.Settings.CuttingLoss
		requiredIfEmpty := o.Settings.FrontCuttingLoss + o.Settings.CuttingLoss + chain.TotalLength + internalKerf
		requiredIfReused := o.Settings.CuttingLoss + chain.TotalLength + internalKerf

		// AcquireBar always succeeds: FindBestFit reuses an existing bar when
		// one fits, and Provision now falls back to synthesizing an
		// oversized one-off material type rather than reporting failure, so
		// there is no longer a "chain unseatable" path to fall through.
		bar, _ := pool.AcquireBar(requiredIfEmpty, requiredIfReused)

		leading := o.Settings.CuttingLoss
		if bar.IsEmpty() {
			leading += o.Settings.FrontCuttingLoss
		}
		bar.UsedLength += leading

		for i, partID := range chain.PartIDs {
			if i > 0 {
				bar.UsedLength += o.Settings.CuttingLoss - chain.Connections[i-1].Savings
			}
			p := byID[partID]
			inst := popInstance(queues, partID)
			var prev, next *model.SharedCutConnection
			if i > 0 {
				prev = &chain.Connections[i-1]
			}
			if i < len(chain.Connections) {
				next = &chain.Connections[i]
			}
			placed := model.PlacedPart{
				PartID:                partID,
				PartInstanceIndex:     inst.InstanceIndex,
				MaterialID:            bar.MaterialID,
				MaterialInstanceIndex: bar.InstanceIndex,
				Position:              bar.UsedLength,
				Length:                p.Length,
				IsInSharedCutChain:    true,
				SharedCutInfo: &model.SharedCutInfo{
					ChainID:         chain.ID,
					PositionInChain: i,
					PrevConnection:  prev,
					NextConnection:  next,
				},
			}
			bar.Placed = append(bar.Placed, placed)
			bar.UsedLength += p.Length
		}
	}
}

// chainInstancesAvailable reports whether every member part of chain still
// has at least one queued instance left to consume.
func chainInstancesAvailable(chain model.SharedCutChain, queues map[string][]model.PartInstance) bool {
	for _, partID := range chain.PartIDs {
		if len(queues[partID]) == 0 {
			return false
		}
	}
	return true
}

// workItem is one remaining physical instance awaiting Phase B placement.
type workItem struct {
	part model.Part
	inst model.PartInstance
}

// decreasingInstanceOrder expands every part's still-queued instances and
// sorts them by length descending (the "Decreasing" of Best-Fit-Decreasing),
// breaking ties by part id then instance index for determinism. It walks the
// valid slice rather than ranging over queues directly so iteration order
// never depends on map order.
func decreasingInstanceOrder(valid []model.Part, queues map[string][]model.PartInstance) []workItem {
	var items []workItem
	for _, p := range valid {
		for _, inst := range queues[p.ID] {
			items = append(items, workItem{part: p, inst: inst})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].part.Length != items[j].part.Length {
			return items[i].part.Length > items[j].part.Length
		}
		if items[i].part.ID != items[j].part.ID {
			return items[i].part.ID < items[j].part.ID
		}
		return items[i].inst.InstanceIndex < items[j].inst.InstanceIndex
	})
	return items
}

// placeInstances runs Phase B: every remaining instance is seated by
// Best-Fit in Decreasing-length order, provisioning a new bar only when no
// existing bar has room. Every instance always pays its own cuttingLoss
// regardless of bar reuse, plus frontCuttingLoss on top of that when the
// bar is still uncut. The part's queue is popped on every successful seat so
// unplacedFromQueues, called after both phases, reflects what Phase B
// actually placed rather than just what Phase A left behind.
func (o *Optimizer) placeInstances(pool *BarPool, items []workItem, queues map[string][]model.PartInstance) {
	for _, it := range items {
		requiredIfEmpty := it.part.Length + o.Settings.CuttingLoss + o.Settings.FrontCuttingLoss
		requiredIfReused := it.part.Length + o.Settings.CuttingLoss

		// See the comment in placeChains: AcquireBar cannot fail anymore.
		bar, _ := pool.AcquireBar(requiredIfEmpty, requiredIfReused)
		Place(bar, o.Settings.FrontCuttingLoss, o.Settings.CuttingLoss, model.PlacedPart{
			PartID:            it.part.ID,
			PartInstanceIndex: it.inst.InstanceIndex,
			Length:            it.part.Length,
		})
		popInstance(queues, it.part.ID)
	}
}

// unplacedFromQueues reports one Part entry per part id that still has
// queued instances after both placement phases, with Quantity set to the
// count still owed.
func unplacedFromQueues(valid []model.Part, queues map[string][]model.PartInstance) []model.Part {
	var out []model.Part
	for _, p := range valid {
		if left := len(queues[p.ID]); left > 0 {
			up := p
			up.Quantity = left
			out = append(out, up)
		}
	}
	return out
}

// logWarnings emits one Warn-level log line per accumulated SoftWarning,
// with the warning's kind and fields as structured attributes, mirroring
// the logger.Warn(message, key, value, ...) shape the grounding example
// uses for its own degraded-but-recoverable conditions. Field keys are
// sorted first so the emitted attribute order never depends on map
// iteration, keeping log output reproducible across runs.
func logWarnings(log *slog.Logger, warnings []model.Warning) {
	for _, w := range warnings {
		args := make([]any, 0, 2+2*len(w.Fields))
		args = append(args, "kind", w.Kind)
		keys := make([]string, 0, len(w.Fields))
		for k := range w.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			args = append(args, k, w.Fields[k])
		}
		log.Warn(w.Message, args...)
	}
}

// assertComplete is the completeness guarantee: the count of
// placed instances across every bar plus the count reported unplaced must
// equal the demanded quantity for every valid part. A mismatch can only
// come from a bug in chain or instance bookkeeping, never from caller
// input, so it is reported as a LogicFault rather than a validation error.
func assertComplete(valid []model.Part, pool *BarPool, unplaced []model.Part) error {
	demanded := 0
	for _, p := range valid {
		demanded += p.Quantity
	}
	placed := 0
	for _, bar := range pool.Bars() {
		placed += len(bar.Placed)
	}
	stillOwed := 0
	for _, p := range unplaced {
		stillOwed += p.Quantity
	}
	if placed+stillOwed != demanded {
		return &model.LogicFault{Message: fmt.Sprintf(
			"placement accounting mismatch: demanded %d, placed %d, unplaced %d", demanded, placed, stillOwed)}
	}
	return nil
}

// splitValidParts partitions parts into those that pass model.ValidatePart
// and those that don't, collecting every validation failure rather than
// stopping at the first.
func splitValidParts(parts []model.Part) (valid []model.Part, invalid []model.InvalidPart) {
	for _, p := range parts {
		if err := model.ValidatePart(p); err != nil {
			invalid = append(invalid, model.InvalidPart{Part: p, Reason: err})
			continue
		}
		valid = append(valid, p)
	}
	return valid, invalid
}
