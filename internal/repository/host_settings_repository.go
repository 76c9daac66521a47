package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uprez/upgrade-engine/internal/model"
)

// ErrSettingsNotFound is returned when no settings row exists for a
// (host, session) pair in either the session or the global scope.
var ErrSettingsNotFound = errors.New("host settings not found")

// HostSettingsRepo provides persistence for per-host economic policy.
// Unlike bookings and offers, settings reads deliberately fall back
// from the session scope to the global scope: policy is host-wide,
// data is guest-interaction-specific. The session column stores the
// empty string rather than NULL so the composite unique key on
// (host_id, session_id) holds for global rows too.
type HostSettingsRepo struct {
	db *sql.DB
}

// NewHostSettingsRepo constructs a HostSettingsRepo with the given DB handle.
func NewHostSettingsRepo(db *sql.DB) *HostSettingsRepo { return &HostSettingsRepo{db: db} }

const settingsColumns = `host_id, session_id, host_name, pm_company_name,
       min_revenue_lift_per_night, max_discount_pct, min_adr_ratio, max_adr_multiplier,
       channel_fee_pct, change_fee, blocked_prop_ids, offer_validity_hours,
       use_ai_copy, offers_sent_this_month, revenue_lifted_this_month, updated_at`

func scanSettings(scan func(dest ...any) error) (*model.HostSettings, error) {
	var s model.HostSettings
	var blocked sql.NullString
	if err := scan(
		&s.HostID, &s.SessionID, &s.HostName, &s.PMCompanyName,
		&s.MinRevenueLiftPerNight, &s.MaxDiscountPct, &s.MinADRRatio, &s.MaxADRMultiplier,
		&s.ChannelFeePct, &s.ChangeFee, &blocked, &s.OfferValidityHours,
		&s.UseAICopy, &s.OffersSentThisMonth, &s.RevenueLiftedThisMonth, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if s.BlockedPropIDs, err = decodeStrings(blocked); err != nil {
		return nil, err
	}
	return &s, nil
}

// get reads one exact (host, session) row.
func (r *HostSettingsRepo) get(ctx context.Context, hostID, sessionID string) (*model.HostSettings, error) {
	const q = `SELECT ` + settingsColumns + ` FROM host_settings WHERE host_id = ? AND session_id = ?`
	row := r.db.QueryRowContext(ctx, q, hostID, sessionID)
	s, err := scanSettings(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return s, nil
}

// Get resolves settings for a (host, session) pair: the session row if
// one exists, otherwise the global row. ErrSettingsNotFound when the
// host has no row in either scope.
func (r *HostSettingsRepo) Get(ctx context.Context, hostID, sessionID string) (*model.HostSettings, error) {
	if sessionID != "" {
		s, err := r.get(ctx, hostID, sessionID)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSettingsNotFound) {
			return nil, err
		}
	}
	return r.get(ctx, hostID, "")
}

// GetOrSeed resolves settings like Get but seeds the requested scope
// with defaults on first use instead of failing.
func (r *HostSettingsRepo) GetOrSeed(ctx context.Context, hostID, sessionID string) (*model.HostSettings, error) {
	s, err := r.Get(ctx, hostID, sessionID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}
	def := model.DefaultHostSettings(hostID)
	def.SessionID = sessionID
	if err := r.Save(ctx, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Save upserts a settings row in its exact (host, session) scope. The
// monthly counters are not written here; they only ever move through
// the additive increment methods below.
func (r *HostSettingsRepo) Save(ctx context.Context, s *model.HostSettings) error {
	blocked, err := encodeStrings(s.BlockedPropIDs)
	if err != nil {
		return err
	}
	const q = `INSERT INTO host_settings
	           (host_id, session_id, host_name, pm_company_name,
	            min_revenue_lift_per_night, max_discount_pct, min_adr_ratio, max_adr_multiplier,
	            channel_fee_pct, change_fee, blocked_prop_ids, offer_validity_hours,
	            use_ai_copy, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	            host_name = VALUES(host_name),
	            pm_company_name = VALUES(pm_company_name),
	            min_revenue_lift_per_night = VALUES(min_revenue_lift_per_night),
	            max_discount_pct = VALUES(max_discount_pct),
	            min_adr_ratio = VALUES(min_adr_ratio),
	            max_adr_multiplier = VALUES(max_adr_multiplier),
	            channel_fee_pct = VALUES(channel_fee_pct),
	            change_fee = VALUES(change_fee),
	            blocked_prop_ids = VALUES(blocked_prop_ids),
	            offer_validity_hours = VALUES(offer_validity_hours),
	            use_ai_copy = VALUES(use_ai_copy),
	            updated_at = VALUES(updated_at)`
	_, err = r.db.ExecContext(ctx, q,
		s.HostID, s.SessionID, s.HostName, s.PMCompanyName,
		s.MinRevenueLiftPerNight, s.MaxDiscountPct, s.MinADRRatio, s.MaxADRMultiplier,
		s.ChannelFeePct, s.ChangeFee, blocked, s.OfferValidityHours,
		s.UseAICopy, time.Now().UTC(),
	)
	return err
}

// Reset deletes the (host, session) row so the next read reseeds
// defaults. Resetting a session scope never touches the global row.
func (r *HostSettingsRepo) Reset(ctx context.Context, hostID, sessionID string) error {
	const q = `DELETE FROM host_settings WHERE host_id = ? AND session_id = ?`
	_, err := r.db.ExecContext(ctx, q, hostID, sessionID)
	return err
}

// IncrementOffersSent bumps the monthly offer counter on the row the
// given scope resolves to. The increment is additive in SQL so that
// concurrent generation events never race on a stale read.
func (r *HostSettingsRepo) IncrementOffersSent(ctx context.Context, hostID, sessionID string) error {
	return r.increment(ctx, hostID, sessionID,
		`UPDATE host_settings SET offers_sent_this_month = offers_sent_this_month + 1 WHERE host_id = ? AND session_id = ?`)
}

// AddRevenueLifted adds the realized lift of an accepted offer to the
// monthly revenue counter, additively like IncrementOffersSent.
func (r *HostSettingsRepo) AddRevenueLifted(ctx context.Context, hostID, sessionID string, amount float64) error {
	const q = `UPDATE host_settings SET revenue_lifted_this_month = revenue_lifted_this_month + ? WHERE host_id = ? AND session_id = ?`
	res, err := r.db.ExecContext(ctx, q, amount, hostID, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 || sessionID == "" {
		return nil
	}
	_, err = r.db.ExecContext(ctx, q, amount, hostID, "")
	return err
}

func (r *HostSettingsRepo) increment(ctx context.Context, hostID, sessionID, q string) error {
	res, err := r.db.ExecContext(ctx, q, hostID, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 || sessionID == "" {
		return nil
	}
	// No session row; fall back to the global row.
	_, err = r.db.ExecContext(ctx, q, hostID, "")
	return err
}
