// Package service orchestrates offer generation and lifecycle over the
// persistence and collaborator boundaries. All per-candidate scoring,
// pricing and diffing is pure and sequential (see the engine package);
// the only suspension points are the store calls and the optional
// copywriting call, and no in-process lock is held across either.
package service

import (
	"context"
	"time"

	"github.com/uprez/upgrade-engine/internal/model"
	"github.com/uprez/upgrade-engine/internal/queue"
)

// PropertyStore is the read-only property portfolio. All calls are
// fallible; the service never assumes success.
type PropertyStore interface {
	GetByID(ctx context.Context, id string) (*model.Property, error)
	GetAll(ctx context.Context) ([]model.Property, error)
}

// BookingStore reads bookings scoped to a session. The booking
// mutation on acceptance happens inside OfferStore.Accept so it shares
// the offer's transaction.
type BookingStore interface {
	GetByID(ctx context.Context, id, sessionID string) (*model.Booking, error)
	List(ctx context.Context, sessionID string) ([]model.Booking, error)
	ListReady(ctx context.Context, sessionID string) ([]model.Booking, error)
}

// OfferStore persists offers and enforces the two conditional-atomic
// rules: unique active offer per booking on Create (ErrOfferExists)
// and at-most-once acceptance on Accept (compare-and-swap on status,
// booking rewritten in the same transaction).
type OfferStore interface {
	Create(ctx context.Context, o *model.Offer) error
	GetByID(ctx context.Context, id, sessionID string) (*model.Offer, error)
	List(ctx context.Context, sessionID string) ([]model.Offer, error)
	Accept(ctx context.Context, offerID, propID, sessionID string, now time.Time) (*model.Offer, error)
	Expire(ctx context.Context, offerID, sessionID string, now time.Time) error
	UpdateOptions(ctx context.Context, offerID string, top3 []model.UpgradeOption, sessionID string, now time.Time) error
	ExpireCompeting(ctx context.Context, acceptedOfferID, propID string, now time.Time) (int64, error)
}

// SettingsStore resolves host policy with the session-to-global
// fallback and owns the additive monthly counters.
type SettingsStore interface {
	GetOrSeed(ctx context.Context, hostID, sessionID string) (*model.HostSettings, error)
	IncrementOffersSent(ctx context.Context, hostID, sessionID string) error
	AddRevenueLifted(ctx context.Context, hostID, sessionID string, amount float64) error
}

// CopyGenerator is the external copywriting collaborator. It is slow
// and unreliable by assumption: a failure skips enrichment for the
// option in question and never aborts offer creation.
type CopyGenerator interface {
	GenerateCopy(ctx context.Context, original, candidate model.Property, pricing model.PricingDetails, booking model.Booking, diffs []string) (*model.OfferCopy, error)
}

// Notifier is the fire-and-forget notification channel. Errors are
// logged by the implementation and never propagated as offer failures.
type Notifier interface {
	OfferCreated(ctx context.Context, ev queue.OfferCreatedEvent) error
	OfferAccepted(ctx context.Context, ev queue.OfferAcceptedEvent) error
}
