// Package engine implements the deterministic core of offer generation:
// candidate filtering, viability scoring, guardrail pricing, diff text
// and shortlist assembly. Everything in this package is pure; all I/O
// (persistence, copywriting, notification) lives behind interfaces in
// the service layer.
package engine

import "github.com/uprez/upgrade-engine/internal/model"

// Guardrails is the host economic policy the calculator and filter
// operate under. It is an explicit value passed into every call rather
// than process-wide state, so tests can inject policy directly.
type Guardrails struct {
	MaxDiscountPct   float64  // max discount applied to the ADR delta, 0..1
	MinLiftPerNight  float64  // revenue lift floor per night
	MinADRRatio      float64  // minimum offer_adr / from_adr ratio
	MaxADRMultiplier float64  // candidates above orig rate * this are skipped
	BlockedPropIDs   []string // properties the host never offers as upgrades
}

// GuardrailsFrom extracts the pricing and filtering policy from stored
// host settings.
func GuardrailsFrom(s model.HostSettings) Guardrails {
	return Guardrails{
		MaxDiscountPct:   s.MaxDiscountPct,
		MinLiftPerNight:  s.MinRevenueLiftPerNight,
		MinADRRatio:      s.MinADRRatio,
		MaxADRMultiplier: s.MaxADRMultiplier,
		BlockedPropIDs:   s.BlockedPropIDs,
	}
}

// DefaultGuardrails returns the policy used when a host has no stored
// settings at all. Matches model.DefaultHostSettings.
func DefaultGuardrails() Guardrails {
	return GuardrailsFrom(model.DefaultHostSettings(""))
}
