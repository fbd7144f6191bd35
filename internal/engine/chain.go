package engine

import (
	"fmt"
	"sort"

	"github.com/cutstock/sharedcut/internal/model"
)

// edge is a directed adjacency record: the bevel connection available
// between the owning part and other, seen from the owning part's side.
type edge struct {
	other       string
	fromPos     model.CornerPosition
	toPos       model.CornerPosition
	sharedAngle float64
	savings     float64
}

// buildAdjacency turns a pairwise match index into a directed neighbor list
// per part, so chain extension can ask "who can this end connect to" in
// O(degree) instead of rescanning the whole match index.
func buildAdjacency(matches []model.PartMatch) map[string][]edge {
	adj := make(map[string][]edge, len(matches)*2)
	for _, pm := range matches {
		adj[pm.Part1ID] = append(adj[pm.Part1ID], edge{
			other: pm.Part2ID, fromPos: pm.Best.Part1Position, toPos: pm.Best.Part2Position,
			sharedAngle: pm.Best.SharedAngle, savings: pm.Best.Savings,
		})
		adj[pm.Part2ID] = append(adj[pm.Part2ID], edge{
			other: pm.Part1ID, fromPos: pm.Best.Part2Position, toPos: pm.Best.Part1Position,
			sharedAngle: pm.Best.SharedAngle, savings: pm.Best.Savings,
		})
	}
	return adj
}

// bestExtension picks the highest-savings unconsumed neighbor of endID,
// breaking ties by the neighbor's part id for determinism.
func bestExtension(adj map[string][]edge, endID string, consumed map[string]bool) (edge, bool) {
	var best edge
	found := false
	for _, e := range adj[endID] {
		if consumed[e.other] {
			continue
		}
		if !found || e.savings > best.savings || (e.savings == best.savings && e.other < best.other) {
			best = e
			found = true
		}
	}
	return best, found
}

// isMixedChain reports whether the parts at the given ids differ in length,
// effective thickness, or angle pattern: a chain is "mixed" once it
// contains more than one distinct part shape.
func isMixedChain(partIDs []string, byID map[string]model.Part) bool {
	if len(partIDs) == 0 {
		return false
	}
	first := byID[partIDs[0]]
	for _, id := range partIDs[1:] {
		p := byID[id]
		if p.Length != first.Length || p.EffectiveThickness() != first.EffectiveThickness() || p.Angles != first.Angles {
			return true
		}
	}
	return false
}

func buildChain(partIDs []string, connections []model.SharedCutConnection, byID map[string]model.Part) model.SharedCutChain {
	var totalLength, totalSavings float64
	for _, id := range partIDs {
		totalLength += byID[id].Length
	}
	for _, c := range connections {
		totalSavings += c.Savings
	}
	return model.SharedCutChain{
		PartIDs:      append([]string(nil), partIDs...),
		Connections:  connections,
		TotalLength:  totalLength,
		TotalSavings: totalSavings,
		IsMixedChain: isMixedChain(partIDs, byID),
	}
}

// BuildChains runs the greedy seed-and-extend shared-cut chain builder
// over distinct part definitions. It operates
// one node per Part.ID regardless of Quantity: chain membership is decided
// at the part-shape level, and the optimizer's placement phase decides, per
// chain, which single instance of each member part actually occupies the
// chain's slot (see internal/engine/optimizer.go).
//
// Parts that never enter a chain — because they have no usable angle, or
// because every match touching them was claimed by a higher-savings chain
// first — are returned as remaining, in their original order.
//
// Chain ids are assigned only after the full chain list is sorted, as
// sequential "chain-N" strings, so that two runs over identical input
// produce byte-identical output: nothing in this function depends on wall
// clock or random state.
func BuildChains(parts []model.Part, tolerance float64, maxChainLength int) ([]model.SharedCutChain, []model.Part) {
	byID := make(map[string]model.Part, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}

	matches := BuildPairwiseMatches(parts, tolerance)
	adj := buildAdjacency(matches)
	consumed := make(map[string]bool, len(parts))

	var chains []model.SharedCutChain

	for _, pm := range matches {
		if consumed[pm.Part1ID] || consumed[pm.Part2ID] {
			continue
		}

		partIDs := []string{pm.Part1ID, pm.Part2ID}
		connections := []model.SharedCutConnection{{
			FromPartID: pm.Part1ID, ToPartID: pm.Part2ID,
			FromPosition: pm.Best.Part1Position, ToPosition: pm.Best.Part2Position,
			SharedAngle: pm.Best.SharedAngle, Savings: pm.Best.Savings,
		}}
		consumed[pm.Part1ID] = true
		consumed[pm.Part2ID] = true

		for maxChainLength <= 0 || len(partIDs) < maxChainLength {
			headID, tailID := partIDs[0], partIDs[len(partIDs)-1]
			headCand, headOK := bestExtension(adj, headID, consumed)
			tailCand, tailOK := bestExtension(adj, tailID, consumed)
			if !headOK && !tailOK {
				break
			}

			extendHead := chooseExtension(partIDs, byID, headCand, headOK, tailCand, tailOK)

			if extendHead {
				partIDs = append([]string{headCand.other}, partIDs...)
				connections = append([]model.SharedCutConnection{{
					FromPartID: headCand.other, ToPartID: headID,
					FromPosition: headCand.toPos, ToPosition: headCand.fromPos,
					SharedAngle: headCand.sharedAngle, Savings: headCand.savings,
				}}, connections...)
				consumed[headCand.other] = true
			} else {
				partIDs = append(partIDs, tailCand.other)
				connections = append(connections, model.SharedCutConnection{
					FromPartID: tailID, ToPartID: tailCand.other,
					FromPosition: tailCand.fromPos, ToPosition: tailCand.toPos,
					SharedAngle: tailCand.sharedAngle, Savings: tailCand.savings,
				})
				consumed[tailCand.other] = true
			}
		}

		chains = append(chains, buildChain(partIDs, connections, byID))
	}

	sort.SliceStable(chains, func(i, j int) bool {
		if chains[i].IsMixedChain != chains[j].IsMixedChain {
			return chains[i].IsMixedChain
		}
		if chains[i].TotalSavings != chains[j].TotalSavings {
			return chains[i].TotalSavings > chains[j].TotalSavings
		}
		return chains[i].PartIDs[0] < chains[j].PartIDs[0]
	})
	for i := range chains {
		chains[i].ID = fmt.Sprintf("chain-%d", i+1)
	}

	var remaining []model.Part
	for _, p := range parts {
		if !consumed[p.ID] {
			remaining = append(remaining, p)
		}
	}

	return chains, remaining
}

// chooseExtension decides whether to grow the chain at the head or the tail
// when both ends have a candidate. It prefers whichever extension makes the
// chain mixed; when both or neither would, it falls back to
// the higher-savings candidate, then to the lexicographically smaller
// candidate part id.
func chooseExtension(partIDs []string, byID map[string]model.Part, headCand edge, headOK bool, tailCand edge, tailOK bool) bool {
	if headOK && !tailOK {
		return true
	}
	if tailOK && !headOK {
		return false
	}

	headMixed := isMixedChain(append([]string{headCand.other}, partIDs...), byID)
	tailMixed := isMixedChain(append(append([]string{}, partIDs...), tailCand.other), byID)
	if headMixed != tailMixed {
		return headMixed
	}
	if headCand.savings != tailCand.savings {
		return headCand.savings > tailCand.savings
	}
	return headCand.other < tailCand.other
}
