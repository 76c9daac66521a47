package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uprez/upgrade-engine/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup fails, including
// the case where the row exists but belongs to a different session.
var ErrBookingNotFound = errors.New("booking not found")

// sessionScope is the predicate applied to every booking and offer
// read. A session sees exactly its own rows plus the globally seeded
// rows (NULL session); with an empty session id only global rows match.
// Session-scoped data of one demo tenant is never visible to another.
// The single ? placeholder takes the caller's session id.
const sessionScope = `(session_id <=> NULLIF(?, '') OR session_id IS NULL)`

// BookingRepo provides persistence for guest bookings. Bookings are
// created by reservation intake outside this service; the engine only
// reads them and rewrites them once when an upgrade is accepted.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, session_id, host_id, prop_id, arrival_date, departure_date, nights,
       guest_name, guest_email, base_nightly_rate, total_paid, status,
       upgraded_from_prop_id, upgrade_at, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (*model.Booking, error) {
	var b model.Booking
	var sessionID, upgradedFrom sql.NullString
	var upgradeAt sql.NullTime
	if err := scan(
		&b.ID, &sessionID, &b.HostID, &b.PropID, &b.ArrivalDate, &b.DepartureDate, &b.Nights,
		&b.GuestName, &b.GuestEmail, &b.BaseNightlyRate, &b.TotalPaid, &b.Status,
		&upgradedFrom, &upgradeAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.SessionID = sessionID.String
	b.UpgradedFromPropID = upgradedFrom.String
	if upgradeAt.Valid {
		t := upgradeAt.Time
		b.UpgradeAt = &t
	}
	return &b, nil
}

// GetByID retrieves a booking visible to the given session. It returns
// ErrBookingNotFound when no row exists in scope.
func (r *BookingRepo) GetByID(ctx context.Context, id, sessionID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? AND ` + sessionScope
	row := r.db.QueryRowContext(ctx, q, id, sessionID)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns all bookings visible to the given session, newest first.
func (r *BookingRepo) List(ctx context.Context, sessionID string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + sessionScope + ` ORDER BY created_at DESC, id`
	return r.queryBookings(ctx, q, sessionID)
}

// ListReady returns confirmed bookings in scope that have no offer yet.
// These are the bookings the external trigger would generate for.
func (r *BookingRepo) ListReady(ctx context.Context, sessionID string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumnsPrefixed + `
	           FROM bookings b
	           LEFT JOIN offers o ON o.booking_id = b.id
	           WHERE o.id IS NULL AND b.status = ? AND ` + sessionScopePrefixed + `
	           ORDER BY b.created_at DESC, b.id`
	return r.queryBookings(ctx, q, model.BookingStatusConfirmed, sessionID)
}

// Prefixed column/scope fragments for joined queries.
const bookingColumnsPrefixed = `b.id, b.session_id, b.host_id, b.prop_id, b.arrival_date, b.departure_date, b.nights,
       b.guest_name, b.guest_email, b.base_nightly_rate, b.total_paid, b.status,
       b.upgraded_from_prop_id, b.upgrade_at, b.created_at, b.updated_at`
const sessionScopePrefixed = `(b.session_id <=> NULLIF(?, '') OR b.session_id IS NULL)`

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// applyUpgradeTx rewrites a booking with the accepted option's property
// and pricing within the caller's transaction: new property reference,
// new rate and total, status upgraded, and the original property kept
// for reporting. OfferRepo.Accept runs it in the same transaction as
// the offer status flip so a torn accept can never leave a claimed
// offer with an unmodified booking.
func applyUpgradeTx(ctx context.Context, tx *sql.Tx, bookingID, newPropID string, newRate, newTotal float64, at time.Time) error {
	const q = `UPDATE bookings
	           SET upgraded_from_prop_id = prop_id,
	               prop_id = ?,
	               base_nightly_rate = ?,
	               total_paid = ?,
	               status = ?,
	               upgrade_at = ?,
	               updated_at = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, newPropID, newRate, newTotal, model.BookingStatusUpgraded, at.UTC(), at.UTC(), bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
