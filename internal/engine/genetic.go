package engine

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/cutstock/sharedcut/internal/model"
)

// GeneticConfig holds the tunables for the genetic refinement pass,
// trimmed of the rotation-specific knobs that don't apply to a 1D domain.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultGeneticConfig returns a population/generation scale carried over
// unchanged from sheet-layout tuning, since nothing about this domain's
// search space size argues for different defaults.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           1,
	}
}

// workUnit is one atomic thing Phase-equivalent placement can seat: either
// an entire shared-cut chain (seated as a block, preserving its internal
// savings-adjusted spacing) or a single remaining part instance.
type workUnit struct {
	chain    *model.SharedCutChain
	instance *workItem
}

// chromosome is a candidate placement order: a permutation of workUnits.
type chromosome struct {
	order   []int
	fitness float64
}

// geneticOptimizer searches orderings of chains-and-instances instead of
// the fixed savings-desc/length-desc order optimizeBestFit always uses,
// decoding each candidate through the same BarPool-based packer so every
// candidate is a legal, complete placement.
type geneticOptimizer struct {
	settings  model.Settings
	config    GeneticConfig
	units     []workUnit
	byID      map[string]model.Part
	longest   float64
	materials []model.Material
	rng       *rand.Rand
}

// OptimizeGenetic runs the genetic meta-heuristic over chains and remaining
// part instances and returns the best placement found. It never replaces
// the Best-Fit path's completeness guarantee: the fittest chromosome is
// decoded with the same AcquireBar-or-provision packer as optimizeBestFit,
// so every unit is always seated somewhere, just as the deterministic path
// never fails to account for it.
func OptimizeGenetic(settings model.Settings, materials []model.Material, valid []model.Part, config GeneticConfig, log *slog.Logger) (model.CuttingResult, []model.InvalidPart) {
	chains, remaining := BuildChains(valid, settings.AngleTolerance, settings.MaxChainLength)

	byID := make(map[string]model.Part, len(valid))
	for _, p := range valid {
		byID[p.ID] = p
	}

	// A chain with a Quantity-0 member has no instance to fill that slot, so
	// it is not seated as a block; its members are enqueued as standalone
	// instances instead, as placeChains does on the Best-Fit path.
	var units []workUnit
	seatable := make([]bool, len(chains))
	for i := range chains {
		seatable[i] = true
		for _, id := range chains[i].PartIDs {
			if byID[id].Quantity < 1 {
				seatable[i] = false
			}
		}
		if seatable[i] {
			units = append(units, workUnit{chain: &chains[i]})
		}
	}
	for _, p := range remaining {
		for _, inst := range ExpandInstances([]model.Part{p}) {
			it := workItem{part: p, inst: inst}
			units = append(units, workUnit{instance: &it})
		}
	}
	// Parts that are chain members but have quantity > 1 contribute their
	// remaining (non-representative) instances too: index 0 is always the
	// copy a seated chain itself consumes (see seatChain), so it's skipped
	// here unless the chain is not seated.
	for ci, c := range chains {
		for _, id := range c.PartIDs {
			p := byID[id]
			for _, inst := range ExpandInstances([]model.Part{p}) {
				if seatable[ci] && inst.InstanceIndex == 0 {
					continue
				}
				it := workItem{part: p, inst: inst}
				units = append(units, workUnit{instance: &it})
			}
		}
	}

	if len(units) == 0 {
		return model.Summarize(nil, chains, nil, nil, settings), nil
	}

	longest := 0.0
	for _, p := range byID {
		if p.Length > longest {
			longest = p.Length
		}
	}

	g := &geneticOptimizer{
		settings:  settings,
		config:    config,
		units:     units,
		byID:      byID,
		longest:   longest,
		materials: materials,
		rng:       rand.New(rand.NewSource(config.Seed)),
	}

	best := g.run()
	pool, unplaced := g.decode(best)
	log.Debug("genetic search complete", "generations", config.Generations, "fitness", best.fitness)

	result := model.Summarize(pool.Bars(), chains, nil, unplaced, settings)
	result.Warnings = append(result.Warnings, pool.Warnings()...)
	logWarnings(log, result.Warnings)
	return result, nil
}

func (g *geneticOptimizer) run() chromosome {
	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		sort.Slice(population, func(i, j int) bool { return population[i].fitness > population[j].fitness })

		elite := g.config.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		next := make([]chromosome, 0, len(population))
		for i := 0; i < elite; i++ {
			next = append(next, copyChromosome(population[i]))
		}
		for len(next) < len(population) {
			p1 := g.tournamentSelect(population)
			p2 := g.tournamentSelect(population)
			child := g.orderCrossover(p1, p2)
			g.mutate(&child)
			child.fitness = g.evaluate(child)
			next = append(next, child)
		}
		population = next
	}

	sort.Slice(population, func(i, j int) bool { return population[i].fitness > population[j].fitness })
	return population[0]
}

func (g *geneticOptimizer) initPopulation() []chromosome {
	n := len(g.units)
	population := make([]chromosome, g.config.PopulationSize)
	for i := range population {
		order := g.rng.Perm(n)
		population[i] = chromosome{order: order}
	}
	if len(population) > 0 {
		population[0] = chromosome{order: g.greedyOrder()}
	}
	return population
}

// greedyOrder seeds the population with optimizeBestFit's own ordering
// (chains in BuildChains' order, mixed first then by savings desc, already
// first in g.units; instances by length desc, then part id, then instance
// index, within the remainder) so the search never does worse than the
// deterministic default.
func (g *geneticOptimizer) greedyOrder() []int {
	idx := make([]int, len(g.units))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		ui, uj := g.units[idx[i]], g.units[idx[j]]
		if (ui.chain != nil) != (uj.chain != nil) {
			return ui.chain != nil
		}
		if ui.chain != nil {
			return false // both chains: keep BuildChains' order
		}
		if unitWeight(ui) != unitWeight(uj) {
			return unitWeight(ui) > unitWeight(uj)
		}
		if ui.instance.part.ID != uj.instance.part.ID {
			return ui.instance.part.ID < uj.instance.part.ID
		}
		return ui.instance.inst.InstanceIndex < uj.instance.inst.InstanceIndex
	})
	return idx
}

func unitWeight(u workUnit) float64 {
	if u.chain != nil {
		return u.chain.TotalLength + u.chain.TotalSavings*1000
	}
	return u.instance.part.Length
}

func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		cand := population[g.rng.Intn(len(population))]
		if cand.fitness > best.fitness {
			best = cand
		}
	}
	return best
}

// orderCrossover is OX1: copy a random slice from parent1 verbatim, fill
// the rest in parent2's relative order, skipping anything already copied.
func (g *geneticOptimizer) orderCrossover(p1, p2 chromosome) chromosome {
	n := len(p1.order)
	child := make([]int, n)
	for i := range child {
		child[i] = -1
	}
	a, b := g.rng.Intn(n), g.rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	used := make(map[int]bool, n)
	for i := a; i <= b; i++ {
		child[i] = p1.order[i]
		used[p1.order[i]] = true
	}
	pos := 0
	for _, v := range p2.order {
		if used[v] {
			continue
		}
		for pos >= a && pos <= b {
			pos++
		}
		if pos >= n {
			break
		}
		child[pos] = v
		pos++
	}
	return chromosome{order: child}
}

func (g *geneticOptimizer) mutate(c *chromosome) {
	if g.rng.Float64() >= g.config.MutationRate || len(c.order) < 2 {
		return
	}
	i := g.rng.Intn(len(c.order))
	j := g.rng.Intn(len(c.order))
	c.order[i], c.order[j] = c.order[j], c.order[i]
}

func copyChromosome(c chromosome) chromosome {
	order := append([]int(nil), c.order...)
	return chromosome{order: order, fitness: c.fitness}
}

// evaluate decodes c against a scratch bar pool and scores it by
// utilization, penalizing unplaced units and bar count the way the
// teacher's evaluate() penalizes unplaced parts and extra sheets.
func (g *geneticOptimizer) evaluate(c chromosome) float64 {
	pool, unplaced := g.decode(c)
	bars := pool.Bars()
	if len(bars) == 0 {
		return 0
	}
	var used, total float64
	for _, b := range bars {
		used += b.UsedLength
		total += b.Length
	}
	if total == 0 {
		return 0
	}
	efficiency := used / total
	unplacedPenalty := float64(len(unplaced)) * 0.1
	barPenalty := float64(len(bars)-1) * 0.02
	fitness := efficiency - unplacedPenalty - barPenalty
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// decode seats every unit, in chromosome order, onto a fresh BarPool using
// the same AcquireBar/Place machinery optimizeBestFit uses, so a candidate
// ordering's fitness reflects a placement the engine could actually emit.
func (g *geneticOptimizer) decode(c chromosome) (*BarPool, []model.Part) {
	pool := NewBarPool(g.materials, g.longest, g.settings.FrontCuttingLoss, g.settings.CuttingLoss)

	shortfall := make(map[string]int)
	for _, idx := range c.order {
		u := g.units[idx]
		if u.chain != nil {
			g.seatChain(pool, u.chain, shortfall)
			continue
		}
		g.seatInstance(pool, u.instance, shortfall)
	}

	var unplaced []model.Part
	for id, n := range shortfall {
		if n > 0 {
			p := g.byID[id]
			p.Quantity = n
			unplaced = append(unplaced, p)
		}
	}
	return pool, unplaced
}

// seatChain always consumes instance index 0 of every member part:
// OptimizeGenetic only enqueues a chain whose members all have Quantity >= 1,
// and for such a chain it only ever enqueues a standalone workItem for a
// member's indices 1..Quantity-1, never index 0.
func (g *geneticOptimizer) seatChain(pool *BarPool, chain *model.SharedCutChain, shortfall map[string]int) {
	n := len(chain.PartIDs)
	internalKerf := float64(n-1) * g.settings.CuttingLoss
	requiredIfEmpty := g.settings.FrontCuttingLoss + g.settings.CuttingLoss + chain.TotalLength + internalKerf
	requiredIfReused := g.settings.CuttingLoss + chain.TotalLength + internalKerf

	// AcquireBar cannot fail: Provision always synthesizes an oversize bar
	// when no declared material type fits. The shortfall bookkeeping below
	// is defensive only, kept in case that guarantee ever changes.
	bar, ok := pool.AcquireBar(requiredIfEmpty, requiredIfReused)
	if !ok {
		for _, id := range chain.PartIDs {
			shortfall[id]++
		}
		return
	}
	leading := g.settings.CuttingLoss
	if bar.IsEmpty() {
		leading += g.settings.FrontCuttingLoss
	}
	bar.UsedLength += leading
	for i, partID := range chain.PartIDs {
		if i > 0 {
			bar.UsedLength += g.settings.CuttingLoss - chain.Connections[i-1].Savings
		}
		p := g.byID[partID]
		var prev, next *model.SharedCutConnection
		if i > 0 {
			prev = &chain.Connections[i-1]
		}
		if i < len(chain.Connections) {
			next = &chain.Connections[i]
		}
		bar.Placed = append(bar.Placed, model.PlacedPart{
			PartID: partID, PartInstanceIndex: 0, Position: bar.UsedLength, Length: p.Length,
			MaterialID: bar.MaterialID, MaterialInstanceIndex: bar.InstanceIndex,
			IsInSharedCutChain: true,
			SharedCutInfo: &model.SharedCutInfo{
				ChainID: chain.ID, PositionInChain: i, PrevConnection: prev, NextConnection: next,
			},
		})
		bar.UsedLength += p.Length
	}
}

func (g *geneticOptimizer) seatInstance(pool *BarPool, item *workItem, shortfall map[string]int) {
	requiredIfEmpty := item.part.Length + g.settings.CuttingLoss + g.settings.FrontCuttingLoss
	requiredIfReused := item.part.Length + g.settings.CuttingLoss

	// See the comment on seatChain: AcquireBar cannot fail anymore.
	bar, ok := pool.AcquireBar(requiredIfEmpty, requiredIfReused)
	if !ok {
		shortfall[item.part.ID]++
		return
	}
	Place(bar, g.settings.FrontCuttingLoss, g.settings.CuttingLoss, model.PlacedPart{
		PartID: item.part.ID, PartInstanceIndex: item.inst.InstanceIndex, Length: item.part.Length,
	})
}
