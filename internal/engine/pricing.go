package engine

import "github.com/uprez/upgrade-engine/internal/model"

// Currency is the portfolio currency. Pricing is single-currency; all
// monetary fields in a PricingDetails carry this code.
const Currency = "EUR"

// CalculatePricing computes the bounded offer price for one candidate.
// The constraints are applied in a fixed order:
//
//  1. Maximum discount: the discount comes off the delta between the
//     contracted rate and the candidate's list rate, never off the full
//     list rate: offerAdr = fromAdr + (toAdr-fromAdr)*(1-maxDiscountPct).
//  2. Lift floor: if the per-night lift falls below minLiftPerNight the
//     rate is raised so the lift equals the floor exactly.
//  3. List-rate ceiling: offerAdr never exceeds toAdr. The guest is
//     never charged more than the plain upgrade price, even when that
//     violates the floor; the floor is advisory, the ceiling absolute.
//
// No rounding happens here. All outputs are exact functions of the
// inputs, so calling twice with the same arguments yields bit-identical
// results. Misconfigured inputs (toAdr below fromAdr) clamp to a zero
// or negative lift rather than failing; the assembler excludes such
// options from ranking.
func CalculatePricing(fromAdr, toAdr float64, nights int, maxDiscountPct, fromTotal, minLiftPerNight float64) model.PricingDetails {
	offerAdr := fromAdr + (toAdr-fromAdr)*(1-maxDiscountPct)

	if offerAdr-fromAdr < minLiftPerNight {
		offerAdr = fromAdr + minLiftPerNight
	}
	if offerAdr > toAdr {
		offerAdr = toAdr
	}

	n := float64(nights)
	offerTotal := offerAdr * n
	listTotal := toAdr * n
	discountAmount := listTotal - offerTotal

	// Effective discount off the list total, as a 0..1 fraction.
	discountPct := 0.0
	if listTotal > 0 {
		discountPct = discountAmount / listTotal
	}

	return model.PricingDetails{
		Currency:            Currency,
		FromADR:             fromAdr,
		ToADRList:           toAdr,
		OfferADR:            offerAdr,
		Nights:              nights,
		FromTotal:           fromTotal,
		OfferTotal:          offerTotal,
		ListTotal:           listTotal,
		DiscountPercent:     discountPct,
		DiscountAmountTotal: discountAmount,
		RevenueLift:         offerTotal - fromTotal,
	}
}
