// Package queue defines message payloads exchanged over the message
// broker and the publisher that sends them.
package queue

// OfferCreatedEvent is published when an offer has been assembled and
// persisted. It carries enough information for downstream consumers,
// the email channel foremost, to act without querying the primary
// database.
type OfferCreatedEvent struct {
	OfferID      string  `json:"offer_id"`
	SessionID    string  `json:"session_id,omitempty"`
	BookingID    string  `json:"booking_id"`
	GuestName    string  `json:"guest_name"`
	GuestEmail   string  `json:"guest_email"`
	BestPropID   string  `json:"best_prop_id"`
	BestPropName string  `json:"best_prop_name"`
	OptionCount  int     `json:"option_count"`
	EmailSubject string  `json:"email_subject"`
	OfferTotal   float64 `json:"offer_total"`
	RevenueLift  float64 `json:"revenue_lift"`
	ExpiresAt    string  `json:"expires_at"`
	CreatedAt    string  `json:"created_at"`
}

// OfferAcceptedEvent is published when a guest claims an upgrade. The
// acceptance confirmation email is driven off this event.
type OfferAcceptedEvent struct {
	OfferID     string  `json:"offer_id"`
	SessionID   string  `json:"session_id,omitempty"`
	BookingID   string  `json:"booking_id"`
	GuestName   string  `json:"guest_name"`
	GuestEmail  string  `json:"guest_email"`
	PropID      string  `json:"prop_id"`
	PropName    string  `json:"prop_name"`
	OfferTotal  float64 `json:"offer_total"`
	RevenueLift float64 `json:"revenue_lift"`
	AcceptedAt  string  `json:"accepted_at"`
}
