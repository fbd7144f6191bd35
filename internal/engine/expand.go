package engine

import "github.com/cutstock/sharedcut/internal/model"

// ExpandInstances expands each part's quantity into individual PartInstance
// values. A part with Quantity 0 is skipped silently rather than treated as
// invalid: it simply contributes nothing to place.
func ExpandInstances(parts []model.Part) []model.PartInstance {
	var out []model.PartInstance
	for _, p := range parts {
		for i := 0; i < p.Quantity; i++ {
			out = append(out, model.PartInstance{PartID: p.ID, InstanceIndex: i})
		}
	}
	return out
}
