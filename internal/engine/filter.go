package engine

import "github.com/uprez/upgrade-engine/internal/model"

// FilterCandidates selects the properties eligible to be offered as an
// upgrade for the given original. A candidate must not be the original
// itself, must have at least as many beds (never offer a smaller unit),
// must not be on the host's blocked list, and must not be priced above
// the original's list rate times the configured multiplier. Input order
// is preserved so that equal scores later break ties deterministically.
// An empty result is a normal outcome, not an error.
func FilterCandidates(all []model.Property, original model.Property, g Guardrails) []model.Property {
	blocked := make(map[string]struct{}, len(g.BlockedPropIDs))
	for _, id := range g.BlockedPropIDs {
		blocked[id] = struct{}{}
	}

	eligible := make([]model.Property, 0, len(all))
	for _, cand := range all {
		if cand.ID == original.ID {
			continue
		}
		if _, ok := blocked[cand.ID]; ok {
			continue
		}
		if cand.Beds < original.Beds {
			continue
		}
		// Unrealistic jumps are skipped outright rather than scored down.
		if g.MaxADRMultiplier > 0 && cand.ListNightlyRate > original.ListNightlyRate*g.MaxADRMultiplier {
			continue
		}
		eligible = append(eligible, cand)
	}
	return eligible
}
