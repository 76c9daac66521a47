package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/uprez/upgrade-engine/internal/model"
)

// ErrOfferNotFound is returned when an offer lookup fails, including
// the case where the row exists but belongs to a different session.
var ErrOfferNotFound = errors.New("offer not found")

// mysqlDuplicateEntry is the server error number for a unique key
// violation. Offer creation relies on it to detect the generation race.
const mysqlDuplicateEntry = 1062

// OfferRepo provides persistence for offers and their ranked option
// lists. The at-most-one-active-offer-per-booking rule is enforced
// here by the unique key on booking_id, and at-most-once acceptance by
// a conditional update on the stored status.
type OfferRepo struct {
	db *sql.DB
}

// NewOfferRepo constructs an OfferRepo with the given DB handle.
func NewOfferRepo(db *sql.DB) *OfferRepo { return &OfferRepo{db: db} }

const offerColumns = `id, session_id, booking_id, status, top3, expires_at,
       email_subject, email_body_html, selected_prop_id, accepted_at, created_at, updated_at`

func scanOffer(scan func(dest ...any) error) (*model.Offer, error) {
	var o model.Offer
	var sessionID, top3, subject, body, selected sql.NullString
	var acceptedAt sql.NullTime
	if err := scan(
		&o.ID, &sessionID, &o.BookingID, &o.Status, &top3, &o.ExpiresAt,
		&subject, &body, &selected, &acceptedAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.SessionID = sessionID.String
	o.EmailSubject = subject.String
	o.EmailBody = body.String
	o.SelectedPropID = selected.String
	if acceptedAt.Valid {
		t := acceptedAt.Time
		o.AcceptedAt = &t
	}
	var err error
	if o.Top3, err = decodeOptions(top3); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a fully assembled offer. It returns ErrOfferExists
// when the booking already has an offer (unique key on booking_id), so
// callers can tell the duplicate-generation race apart from other
// write failures.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	top3, err := encodeOptions(o.Top3)
	if err != nil {
		return err
	}
	const q = `INSERT INTO offers
	           (id, session_id, booking_id, status, top3, expires_at, email_subject, email_body_html, created_at, updated_at)
	           VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		o.ID, o.SessionID, o.BookingID, o.Status, top3, o.ExpiresAt.UTC(),
		o.EmailSubject, o.EmailBody, o.CreatedAt.UTC(), o.CreatedAt.UTC(),
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrOfferExists
		}
		return err
	}
	return nil
}

// GetByID retrieves an offer visible to the given session. The stored
// status is returned as-is; lazily computed expiry is the service
// layer's concern.
func (r *OfferRepo) GetByID(ctx context.Context, id, sessionID string) (*model.Offer, error) {
	const q = `SELECT ` + offerColumns + ` FROM offers WHERE id = ? AND ` + sessionScope
	row := r.db.QueryRowContext(ctx, q, id, sessionID)
	o, err := scanOffer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return o, nil
}

// List returns all offers visible to the given session, newest first.
func (r *OfferRepo) List(ctx context.Context, sessionID string) ([]model.Offer, error) {
	const q = `SELECT ` + offerColumns + ` FROM offers WHERE ` + sessionScope + ` ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Accept atomically claims an offer and rewrites its booking. The
// transition only succeeds if the persisted status is still active and
// the deadline has not passed at write time; of two concurrent accepts
// exactly one wins and the loser sees ErrOfferAccepted. On success the
// bound booking is moved to the chosen option's property, rate and
// total in the same transaction, so a torn accept can never leave a
// claimed offer with an unmodified booking.
func (r *OfferRepo) Accept(ctx context.Context, offerID, propID, sessionID string, now time.Time) (*model.Offer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the row so classification below reads authoritative state.
	const sel = `SELECT ` + offerColumns + ` FROM offers WHERE id = ? AND ` + sessionScope + ` FOR UPDATE`
	row := tx.QueryRowContext(ctx, sel, offerID, sessionID)
	o, err := scanOffer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}

	switch o.Status {
	case model.OfferStatusAccepted:
		return nil, ErrOfferAccepted
	case model.OfferStatusExpired:
		return nil, ErrOfferExpired
	}
	// Re-check wall-clock expiry at the moment of mutation, never
	// trust an earlier read.
	if !now.Before(o.ExpiresAt) {
		return nil, ErrOfferExpired
	}

	opt := o.Option(propID)
	if opt == nil {
		return nil, ErrOptionNotFound
	}

	const upd = `UPDATE offers
	             SET status = ?, selected_prop_id = ?, accepted_at = ?, updated_at = ?
	             WHERE id = ? AND status = ? AND expires_at > ?`
	res, err := tx.ExecContext(ctx, upd,
		model.OfferStatusAccepted, propID, now.UTC(), now.UTC(),
		offerID, model.OfferStatusActive, now.UTC(),
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Should not happen while holding the row lock; treat as lost race.
		return nil, ErrOfferAccepted
	}

	if err := applyUpgradeTx(ctx, tx, o.BookingID, propID, opt.Pricing.OfferADR, opt.Pricing.OfferTotal, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	o.Status = model.OfferStatusAccepted
	o.SelectedPropID = propID
	t := now
	o.AcceptedAt = &t
	return o, nil
}

// Expire marks an active offer as expired (manual early expiry). It
// returns ErrOfferNotFound when no row exists in scope and ErrConflict
// when the offer already reached a terminal state.
func (r *OfferRepo) Expire(ctx context.Context, offerID, sessionID string, now time.Time) error {
	const q = `UPDATE offers SET status = ?, updated_at = ?
	           WHERE id = ? AND status = ? AND ` + sessionScope
	res, err := r.db.ExecContext(ctx, q, model.OfferStatusExpired, now.UTC(), offerID, model.OfferStatusActive, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// Distinguish a missing row from a terminal one.
	const sel = `SELECT status FROM offers WHERE id = ? AND ` + sessionScope
	var status string
	if err := r.db.QueryRowContext(ctx, sel, offerID, sessionID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOfferNotFound
		}
		return err
	}
	return ErrConflict
}

// UpdateOptions rewrites the ranked option list of an offer, used by
// on-demand copy enrichment. Only the top3 column changes; rank order
// is whatever the caller passes, which for enrichment is the original
// order with a single option replaced.
func (r *OfferRepo) UpdateOptions(ctx context.Context, offerID string, top3 []model.UpgradeOption, sessionID string, now time.Time) error {
	encoded, err := encodeOptions(top3)
	if err != nil {
		return err
	}
	const q = `UPDATE offers SET top3 = ?, updated_at = ? WHERE id = ? AND ` + sessionScope
	res, err := r.db.ExecContext(ctx, q, encoded, now.UTC(), offerID, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// ExpireCompeting expires every other active offer that lists the given
// property among its options. Accepting an upgrade takes the property
// off the market, so competing offers must not stay acceptable; the
// JSON text match mirrors how the option list is stored.
func (r *OfferRepo) ExpireCompeting(ctx context.Context, acceptedOfferID, propID string, now time.Time) (int64, error) {
	const q = `UPDATE offers SET status = ?, updated_at = ?
	           WHERE status = ? AND id <> ? AND top3 LIKE ?`
	pattern := fmt.Sprintf(`%%"prop_id":%q%%`, propID)
	res, err := r.db.ExecContext(ctx, q, model.OfferStatusExpired, now.UTC(), model.OfferStatusActive, acceptedOfferID, pattern)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
