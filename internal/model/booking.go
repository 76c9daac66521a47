package model

import "time"

// Booking status values. A booking starts life as confirmed, may be
// upgraded exactly once by an accepted offer, and is otherwise only
// cancelled by intake tooling outside this service.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusUpgraded  = "upgraded"
)

// Booking records a guest's confirmed reservation. It is the source of
// truth for the contracted rate and total that upgrade pricing starts
// from. On acceptance of an offer the property reference, rate, total
// and status are rewritten to those of the chosen option.
//
// Fields:
//  ID              - primary key identifier.
//  SessionID       - owning demo session; empty means the global scope.
//  HostID          - host or PM company managing this booking.
//  PropID          - property currently assigned to the guest.
//  ArrivalDate     - check-in date (midnight UTC).
//  DepartureDate   - check-out date (midnight UTC).
//  Nights          - stay length in nights, always > 0.
//  GuestName       - primary guest's full name.
//  GuestEmail      - address used by the notification channel.
//  BaseNightlyRate - nightly rate the guest actually contracted.
//  TotalPaid       - total paid for the original reservation.
//  Status          - confirmed, cancelled or upgraded.
//  UpgradedFromPropID - original property when the booking was upgraded.
//  UpgradeAt       - when the guest accepted their upgrade offer.
type Booking struct {
	ID                 string     `json:"id"`                              // bookings.id
	SessionID          string     `json:"session_id,omitempty"`            // bookings.session_id (nullable)
	HostID             string     `json:"host_id"`                         // bookings.host_id
	PropID             string     `json:"prop_id"`                         // bookings.prop_id
	ArrivalDate        time.Time  `json:"arrival_date"`                    // bookings.arrival_date
	DepartureDate      time.Time  `json:"departure_date"`                  // bookings.departure_date
	Nights             int        `json:"nights"`                          // bookings.nights
	GuestName          string     `json:"guest_name"`                      // bookings.guest_name
	GuestEmail         string     `json:"guest_email"`                     // bookings.guest_email
	BaseNightlyRate    float64    `json:"base_nightly_rate"`               // bookings.base_nightly_rate
	TotalPaid          float64    `json:"total_paid"`                      // bookings.total_paid
	Status             string     `json:"status"`                          // bookings.status
	UpgradedFromPropID string     `json:"upgraded_from_prop_id,omitempty"` // bookings.upgraded_from_prop_id (nullable)
	UpgradeAt          *time.Time `json:"upgrade_at,omitempty"`            // bookings.upgrade_at (nullable)
	CreatedAt          time.Time  `json:"created_at"`                      // bookings.created_at
	UpdatedAt          time.Time  `json:"updated_at"`                      // bookings.updated_at
}
