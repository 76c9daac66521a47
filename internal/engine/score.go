package engine

import "github.com/uprez/upgrade-engine/internal/model"

// ComputeScore assigns a viability score in [0,10] to a candidate
// upgrade relative to the original property and booking. Scoring starts
// from a neutral base of 5.0 and adds independent bonuses:
//
//	+2.0 more beds than the original
//	+1.0 more baths than the original
//	+1.0 same location as the original
//	+1.0 list-rate ratio in (1.1, 2.5): a sane upsell, neither a
//	     side-grade nor an unrealistic jump
//
// The result is clamped to 10. Ties are resolved later by the stable
// sort in Assemble, which preserves filter order.
func ComputeScore(original, candidate model.Property, booking model.Booking) float64 {
	score := 5.0

	if candidate.Beds > original.Beds {
		score += 2.0
	}
	if candidate.Baths > original.Baths {
		score += 1.0
	}
	if candidate.Location == original.Location {
		score += 1.0
	}
	if original.ListNightlyRate > 0 {
		ratio := candidate.ListNightlyRate / original.ListNightlyRate
		if ratio > 1.1 && ratio < 2.5 {
			score += 1.0
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}
