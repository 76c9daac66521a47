package model

import "time"

// Offer status values. Both accepted and expired are terminal: once an
// offer leaves active no further transition is permitted.
const (
	OfferStatusActive   = "active"
	OfferStatusAccepted = "accepted"
	OfferStatusExpired  = "expired"
)

// PricingDetails is the financial breakdown for one upgrade option as
// produced by the guardrail calculator. All amounts are plain decimals
// in the offer currency; rounding happens only at presentation time.
type PricingDetails struct {
	Currency            string  `json:"currency"`
	FromADR             float64 `json:"from_adr"`
	ToADRList           float64 `json:"to_adr_list"`
	OfferADR            float64 `json:"offer_adr"`
	Nights              int     `json:"nights"`
	FromTotal           float64 `json:"from_total"`
	OfferTotal          float64 `json:"offer_total"`
	ListTotal           float64 `json:"list_total"`
	DiscountPercent     float64 `json:"discount_percent"`
	DiscountAmountTotal float64 `json:"discount_amount_total"`
	RevenueLift         float64 `json:"revenue_lift"`
}

// OfferCopy is the marketing copy block attached to an upgrade option.
// It is produced by the external copywriting collaborator; when that
// collaborator is unavailable the option carries deterministic fallback
// headline and summary text instead and AICopy stays nil.
type OfferCopy struct {
	Subject            string   `json:"subject"`
	EmailTitle         string   `json:"email_title,omitempty"`
	EmailContent       string   `json:"email_content,omitempty"`
	EmailSellingPoints []string `json:"email_selling_points,omitempty"`
	EmailCTA           string   `json:"email_cta,omitempty"`
	LandingHero        string   `json:"landing_hero"`
	LandingSummary     string   `json:"landing_summary"`
	DiffBullets        []string `json:"diff_bullets,omitempty"`
}

// UpgradeOption is one ranked candidate property within an offer. The
// ranked list is owned exclusively by its parent Offer and stored as a
// JSON array whose order equals rank order.
type UpgradeOption struct {
	Ranking        int            `json:"ranking"`
	PropID         string         `json:"prop_id"`
	PropName       string         `json:"prop_name"`
	ViabilityScore float64        `json:"viability_score"`
	Pricing        PricingDetails `json:"pricing"`
	Diffs          []string       `json:"diffs"`
	Headline       string         `json:"headline"`
	Summary        string         `json:"summary"`
	Images         []string       `json:"images"`
	Amenities      []string       `json:"amenities"`
	AICopy         *OfferCopy     `json:"ai_copy,omitempty"`
}

// Offer is the aggregate the engine produces and manages: a ranked,
// time-boxed shortlist of upgrade options for exactly one booking.
// At most one active offer may exist per booking (unique constraint on
// bookings reference) and exactly one option can ever be accepted.
//
// Fields:
//  ID             - UUID, used in the public offer URL.
//  SessionID      - owning demo session; empty means the global scope.
//  BookingID      - the guest's original booking (unique).
//  Status         - active, accepted or expired.
//  Top3           - ranked upgrade options, best first.
//  ExpiresAt      - wall-clock deadline after which accepting fails.
//  EmailSubject   - denormalized subject for the best option's email.
//  EmailBody      - denormalized body for the best option's email.
//  SelectedPropID - chosen property once the offer is accepted.
//  AcceptedAt     - acceptance timestamp once the offer is accepted.
type Offer struct {
	ID             string          `json:"id"`                         // offers.id
	SessionID      string          `json:"session_id,omitempty"`       // offers.session_id (nullable)
	BookingID      string          `json:"booking_id"`                 // offers.booking_id (unique)
	Status         string          `json:"status"`                     // offers.status
	Top3           []UpgradeOption `json:"top3"`                       // offers.top3 (JSON text)
	ExpiresAt      time.Time       `json:"expires_at"`                 // offers.expires_at
	EmailSubject   string          `json:"email_subject"`              // offers.email_subject
	EmailBody      string          `json:"email_body_html"`            // offers.email_body_html
	SelectedPropID string          `json:"selected_prop_id,omitempty"` // offers.selected_prop_id (nullable)
	AcceptedAt     *time.Time      `json:"accepted_at,omitempty"`      // offers.accepted_at (nullable)
	CreatedAt      time.Time       `json:"created_at"`                 // offers.created_at
	UpdatedAt      time.Time       `json:"updated_at"`                 // offers.updated_at
}

// EffectiveStatus reports the status the offer should present at the
// given instant: an active offer whose deadline has passed reads as
// expired even before the stored row is updated. Mutating operations
// must still re-check expiry at write time rather than trust this.
func (o *Offer) EffectiveStatus(now time.Time) string {
	if o.Status == OfferStatusActive && !now.Before(o.ExpiresAt) {
		return OfferStatusExpired
	}
	return o.Status
}

// Option returns the option for the given property, or nil when the
// property is not part of this offer's shortlist.
func (o *Offer) Option(propID string) *UpgradeOption {
	for i := range o.Top3 {
		if o.Top3[i].PropID == propID {
			return &o.Top3[i]
		}
	}
	return nil
}
