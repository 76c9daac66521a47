package model

import "time"

// HostSettings is the per (host, session) economic policy the engine
// prices against. Rows are seeded with defaults on first use, mutated
// through the settings API and reset to defaults on explicit request.
// Session-scoped rows shadow the global row for the same host; reads
// fall back to the global row when no session row exists. The monthly
// counters are incremented with additive SQL updates so that concurrent
// generation and acceptance events never race on a stale read.
type HostSettings struct {
	HostID                 string    `json:"host_id"`                    // host_settings.host_id
	SessionID              string    `json:"session_id,omitempty"`       // host_settings.session_id (nullable)
	HostName               string    `json:"host_name"`                  // host_settings.host_name
	PMCompanyName          string    `json:"pm_company_name"`            // host_settings.pm_company_name
	MinRevenueLiftPerNight float64   `json:"min_revenue_lift_per_night"` // host_settings.min_revenue_lift_per_night
	MaxDiscountPct         float64   `json:"max_discount_pct"`           // host_settings.max_discount_pct (0..1)
	MinADRRatio            float64   `json:"min_adr_ratio"`              // host_settings.min_adr_ratio
	MaxADRMultiplier       float64   `json:"max_adr_multiplier"`         // host_settings.max_adr_multiplier
	ChannelFeePct          float64   `json:"channel_fee_pct"`            // host_settings.channel_fee_pct
	ChangeFee              float64   `json:"change_fee"`                 // host_settings.change_fee
	BlockedPropIDs         []string  `json:"blocked_prop_ids"`           // host_settings.blocked_prop_ids (JSON text)
	OfferValidityHours     int       `json:"offer_validity_hours"`       // host_settings.offer_validity_hours
	UseAICopy              bool      `json:"use_ai_copy"`                // host_settings.use_ai_copy
	OffersSentThisMonth    int       `json:"offers_sent_this_month"`     // host_settings.offers_sent_this_month
	RevenueLiftedThisMonth float64   `json:"revenue_lifted_this_month"`  // host_settings.revenue_lifted_this_month
	UpdatedAt              time.Time `json:"updated_at"`                 // host_settings.updated_at
}

// DefaultHostSettings returns the seeded policy for a host that has no
// stored row yet. The numbers mirror the product defaults: a generous
// discount ceiling with a modest lift floor so that demo portfolios
// produce offers out of the box.
func DefaultHostSettings(hostID string) HostSettings {
	return HostSettings{
		HostID:                 hostID,
		HostName:               "Premium Property Management",
		PMCompanyName:          "Premium Stays",
		MinRevenueLiftPerNight: 15,
		MaxDiscountPct:         0.45,
		MinADRRatio:            1.05,
		MaxADRMultiplier:       2.5,
		ChannelFeePct:          0.15,
		ChangeFee:              30,
		OfferValidityHours:     24,
		UseAICopy:              true,
	}
}
