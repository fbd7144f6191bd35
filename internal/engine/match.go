package engine

import (
	"math"
	"sort"

	"github.com/cutstock/sharedcut/internal/model"
)

// allCorners enumerates the four corner positions in a fixed order so that
// position-index tie-breaking is well defined.
var allCorners = [4]model.CornerPosition{
	model.TopLeft, model.TopRight, model.BottomLeft, model.BottomRight,
}

// AngleMatchesForPair enumerates every corner×corner pairing between p1 and
// p2 that can share a bevel cut within tolerance, in position order so ties
// are resolved by (smaller p1 position, smaller p2 position).
func AngleMatchesForPair(p1, p2 model.Part, tolerance float64) []model.AngleMatch {
	var matches []model.AngleMatch
	t1, t2 := p1.EffectiveThickness(), p2.EffectiveThickness()

	for _, pos1 := range allCorners {
		a1 := p1.Angles.At(pos1)
		for _, pos2 := range allCorners {
			a2 := p2.Angles.At(pos2)
			if !model.CanAnglesMatch(a1, a2, tolerance) {
				continue
			}
			shared := math.Min(a1, a2)
			matches = append(matches, model.AngleMatch{
				Part1Position: pos1,
				Part2Position: pos2,
				SharedAngle:   shared,
				Savings:       model.SharedCutSavings(shared, t1, t2),
			})
		}
	}
	return matches
}

// GetBestMatch returns the match with the highest savings, breaking ties by
// (smaller part1Position, then smaller part2Position) since matches is
// already produced in that order by AngleMatchesForPair.
func GetBestMatch(matches []model.AngleMatch) (model.AngleMatch, bool) {
	if len(matches) == 0 {
		return model.AngleMatch{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Savings > best.Savings {
			best = m
		}
	}
	return best, true
}

// HasUsableAngles reports whether a part has at least one nonzero corner.
func HasUsableAngles(p model.Part) bool { return p.HasUsableAngles() }

// BuildPairwiseMatches produces a PartMatch for every unordered pair of
// parts with at least one usable AngleMatch. Parts without usable angles
// are excluded up front. The result is sorted
// by best-match savings descending, ties broken by (part1Id, part2Id)
// lexicographic order for determinism.
//
// Once more than maxPairsBeforePruning pairs have been evaluated, pairs whose
// best savings is zero are dropped. Angles in (0, 90) with a positive
// effective thickness always give positive savings, so for validated parts
// nothing is dropped and the index is not bounded: it stays O(parts²) in
// the worst case.
func BuildPairwiseMatches(parts []model.Part, tolerance float64) []model.PartMatch {
	usable := make([]model.Part, 0, len(parts))
	for _, p := range parts {
		if p.HasUsableAngles() {
			usable = append(usable, p)
		}
	}

	const maxPairsBeforePruning = 10000
	pairsEvaluated := 0

	var result []model.PartMatch
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			pairsEvaluated++
			matches := AngleMatchesForPair(usable[i], usable[j], tolerance)
			if len(matches) == 0 {
				continue
			}
			best, _ := GetBestMatch(matches)
			if best.Savings <= 0 && pairsEvaluated > maxPairsBeforePruning {
				continue
			}
			result = append(result, model.PartMatch{
				Part1ID:    usable[i].ID,
				Part2ID:    usable[j].ID,
				Best:       best,
				AllMatches: matches,
			})
		}
	}

	sort.SliceStable(result, func(a, b int) bool {
		if result[a].Best.Savings != result[b].Best.Savings {
			return result[a].Best.Savings > result[b].Best.Savings
		}
		if result[a].Part1ID != result[b].Part1ID {
			return result[a].Part1ID < result[b].Part1ID
		}
		return result[a].Part2ID < result[b].Part2ID
	})

	return result
}
