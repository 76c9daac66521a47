package engine

import (
	"fmt"
	"sort"

	"github.com/uprez/upgrade-engine/internal/model"
)

// TopN is the shortlist length: an offer presents at most this many
// ranked options.
const TopN = 3

// BuildOption scores, prices and diffs one filtered candidate, then
// packages it as an unranked option with deterministic fallback copy.
// Two pricing outcomes exclude a candidate from ranking: a non-positive
// revenue lift (misconfigured data where the candidate's list rate does
// not clear the contracted rate), and an offer ADR below the host's
// minimum ratio over the contracted ADR (the offer would under-sell the
// upgrade inventory).
func BuildOption(original, candidate model.Property, booking model.Booking, g Guardrails) (model.UpgradeOption, bool) {
	score := ComputeScore(original, candidate, booking)
	pricing := CalculatePricing(
		booking.BaseNightlyRate,
		candidate.ListNightlyRate,
		booking.Nights,
		g.MaxDiscountPct,
		booking.TotalPaid,
		g.MinLiftPerNight,
	)
	if pricing.RevenueLift <= 0 {
		return model.UpgradeOption{}, false
	}
	if g.MinADRRatio > 0 && pricing.OfferADR < booking.BaseNightlyRate*g.MinADRRatio {
		return model.UpgradeOption{}, false
	}

	diffs := PropertyDiffs(original, candidate)
	images := candidate.Images
	if len(images) == 0 {
		images = []string{fmt.Sprintf("/properties/%s.png", candidate.ID)}
	}

	return model.UpgradeOption{
		PropID:         candidate.ID,
		PropName:       candidate.Name,
		ViabilityScore: score,
		Pricing:        pricing,
		Diffs:          diffs,
		Headline:       FallbackHeadline(candidate),
		Summary:        FallbackSummary(candidate, diffs),
		Images:         images,
		Amenities:      candidate.Amenities,
	}, true
}

// Assemble turns the filtered candidate set into the ranked shortlist.
// Every candidate is built into an option, the list is sorted by
// non-increasing score (stable, so filter order breaks ties), truncated
// to TopN and assigned ranks 1..len. An empty result means no viable
// upgrade exists; the caller creates no offer in that case.
func Assemble(original model.Property, candidates []model.Property, booking model.Booking, g Guardrails) []model.UpgradeOption {
	options := make([]model.UpgradeOption, 0, len(candidates))
	for _, cand := range candidates {
		if opt, ok := BuildOption(original, cand, booking, g); ok {
			options = append(options, opt)
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].ViabilityScore > options[j].ViabilityScore
	})
	if len(options) > TopN {
		options = options[:TopN]
	}
	for i := range options {
		options[i].Ranking = i + 1
	}
	return options
}
