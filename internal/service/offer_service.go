package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/uprez/upgrade-engine/internal/engine"
	"github.com/uprez/upgrade-engine/internal/model"
	"github.com/uprez/upgrade-engine/internal/queue"
	"github.com/uprez/upgrade-engine/internal/repository"
)

// ErrCopyUnavailable is returned by on-demand copy enrichment when no
// copywriting collaborator is configured or the collaborator failed.
// During offer generation the same condition is merely logged and the
// deterministic fallback copy is kept.
var ErrCopyUnavailable = errors.New("copywriting service unavailable")

// arrivalCapHour caps an offer's validity at this hour (UTC) on the
// booking's arrival day: an upgrade decision makes no sense once the
// guest is about to check in.
const arrivalCapHour = 10

// OfferService is the offer lifecycle manager. It owns generation,
// acceptance, expiry and copy enrichment, delegating all pure work to
// the engine package and all persistence to the store interfaces.
type OfferService struct {
	props    PropertyStore
	bookings BookingStore
	offers   OfferStore
	settings SettingsStore
	copy     CopyGenerator // nil disables AI enrichment entirely
	notify   Notifier      // nil disables event publishing

	now func() time.Time
}

// NewOfferService wires an OfferService. The copy generator and the
// notifier may be nil; everything else must be non-nil.
func NewOfferService(props PropertyStore, bookings BookingStore, offers OfferStore, settings SettingsStore, copyGen CopyGenerator, notify Notifier) *OfferService {
	if props == nil || bookings == nil || offers == nil || settings == nil {
		panic("nil store passed to NewOfferService")
	}
	return &OfferService{
		props:    props,
		bookings: bookings,
		offers:   offers,
		settings: settings,
		copy:     copyGen,
		notify:   notify,
		now:      time.Now,
	}
}

// GenerateOffer assembles and persists the ranked upgrade shortlist
// for a booking. It returns (nil, nil) when no viable candidate
// exists, which is a normal outcome and not an error. A duplicate
// generation race surfaces as repository.ErrOfferExists.
func (s *OfferService) GenerateOffer(ctx context.Context, bookingID, sessionID string) (*model.Offer, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID, sessionID)
	if err != nil {
		return nil, err
	}

	original, err := s.props.GetByID(ctx, booking.PropID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetOrSeed(ctx, booking.HostID, sessionID)
	if err != nil {
		return nil, err
	}
	guardrails := engine.GuardrailsFrom(*settings)

	all, err := s.props.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := engine.FilterCandidates(all, *original, guardrails)
	top := engine.Assemble(*original, candidates, *booking, guardrails)
	if len(top) == 0 {
		log.Printf("offer: no viable upgrade for booking %s", bookingID)
		return nil, nil
	}

	// Copy is generated for rank 1 only, to bound latency and cost.
	// Ranks 2..n keep their deterministic fallback text until an
	// on-demand enrichment targets them. A copy failure never aborts
	// generation.
	if settings.UseAICopy && s.copy != nil {
		if cand := findProperty(all, top[0].PropID); cand != nil {
			ai, err := s.copy.GenerateCopy(ctx, *original, *cand, top[0].Pricing, *booking, top[0].Diffs)
			if err != nil {
				log.Printf("offer: copy generation failed for %s: %v", top[0].PropID, err)
			} else if ai != nil {
				applyCopy(&top[0], ai)
			}
		}
	}

	now := s.now().UTC()
	expiresAt := now.Add(time.Duration(settings.OfferValidityHours) * time.Hour)
	// Never let an offer outlive the morning of arrival.
	arrivalCap := time.Date(
		booking.ArrivalDate.Year(), booking.ArrivalDate.Month(), booking.ArrivalDate.Day(),
		arrivalCapHour, 0, 0, 0, time.UTC,
	)
	if arrivalCap.After(now) && expiresAt.After(arrivalCap) {
		expiresAt = arrivalCap
	}

	best := top[0]
	subject := engine.FallbackSubject(booking.GuestName, best.PropName)
	body := fmt.Sprintf("<p>%s</p><p>%s</p>", best.Headline, best.Summary)
	if best.AICopy != nil {
		if best.AICopy.Subject != "" {
			subject = best.AICopy.Subject
		}
		if best.AICopy.EmailContent != "" {
			body = fmt.Sprintf("<p>%s</p>", best.AICopy.EmailContent)
		}
	}

	offer := &model.Offer{
		ID:           uuid.NewString(),
		SessionID:    booking.SessionID,
		BookingID:    booking.ID,
		Status:       model.OfferStatusActive,
		Top3:         top,
		ExpiresAt:    expiresAt,
		EmailSubject: subject,
		EmailBody:    body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	if err := s.settings.IncrementOffersSent(ctx, booking.HostID, sessionID); err != nil {
		log.Printf("offer: counter increment failed for host %s: %v", booking.HostID, err)
	}

	if s.notify != nil {
		ev := queue.OfferCreatedEvent{
			OfferID:      offer.ID,
			SessionID:    offer.SessionID,
			BookingID:    booking.ID,
			GuestName:    booking.GuestName,
			GuestEmail:   booking.GuestEmail,
			BestPropID:   best.PropID,
			BestPropName: best.PropName,
			OptionCount:  len(top),
			EmailSubject: subject,
			OfferTotal:   best.Pricing.OfferTotal,
			RevenueLift:  best.Pricing.RevenueLift,
			ExpiresAt:    expiresAt.Format(time.RFC3339),
			CreatedAt:    now.Format(time.RFC3339),
		}
		_ = s.notify.OfferCreated(ctx, ev) // fire and forget, channel logs its own failures
	}

	return offer, nil
}

// GetOffer returns an offer with its lazily computed status: an active
// offer past its deadline reads as expired without the row being
// written back.
func (s *OfferService) GetOffer(ctx context.Context, offerID, sessionID string) (*model.Offer, error) {
	o, err := s.offers.GetByID(ctx, offerID, sessionID)
	if err != nil {
		return nil, err
	}
	o.Status = o.EffectiveStatus(s.now())
	return o, nil
}

// ListOffers returns all offers visible to the session, each with its
// lazily computed status.
func (s *OfferService) ListOffers(ctx context.Context, sessionID string) ([]model.Offer, error) {
	offers, err := s.offers.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range offers {
		offers[i].Status = offers[i].EffectiveStatus(now)
	}
	return offers, nil
}

// AcceptOffer claims an offer for the chosen property. The store makes
// the transition conditionally atomic, so of two concurrent accepts
// exactly one succeeds; the loser receives repository.ErrOfferAccepted.
// Post-acceptance bookkeeping (revenue counter, competing-offer expiry,
// notification) is best effort and never fails the acceptance.
func (s *OfferService) AcceptOffer(ctx context.Context, offerID, propID, sessionID string) (*model.Offer, error) {
	now := s.now()
	o, err := s.offers.Accept(ctx, offerID, propID, sessionID, now)
	if err != nil {
		return nil, err
	}
	opt := o.Option(propID)

	booking, err := s.bookings.GetByID(ctx, o.BookingID, sessionID)
	if err != nil {
		log.Printf("offer: accepted %s but booking %s read failed: %v", offerID, o.BookingID, err)
	}

	if booking != nil && opt != nil {
		if err := s.settings.AddRevenueLifted(ctx, booking.HostID, sessionID, opt.Pricing.RevenueLift); err != nil {
			log.Printf("offer: revenue counter update failed for host %s: %v", booking.HostID, err)
		}
	}

	// Accepting takes the property off the market, so competing active
	// offers for it must die too.
	if n, err := s.offers.ExpireCompeting(ctx, offerID, propID, now); err != nil {
		log.Printf("offer: expiring competing offers for %s failed: %v", propID, err)
	} else if n > 0 {
		log.Printf("offer: expired %d competing offer(s) for property %s", n, propID)
	}

	if s.notify != nil && booking != nil && opt != nil {
		ev := queue.OfferAcceptedEvent{
			OfferID:     o.ID,
			SessionID:   o.SessionID,
			BookingID:   booking.ID,
			GuestName:   booking.GuestName,
			GuestEmail:  booking.GuestEmail,
			PropID:      opt.PropID,
			PropName:    opt.PropName,
			OfferTotal:  opt.Pricing.OfferTotal,
			RevenueLift: opt.Pricing.RevenueLift,
			AcceptedAt:  now.UTC().Format(time.RFC3339),
		}
		_ = s.notify.OfferAccepted(ctx, ev)
	}

	return o, nil
}

// ExpireOffer manually expires an active offer ahead of its deadline.
func (s *OfferService) ExpireOffer(ctx context.Context, offerID, sessionID string) error {
	return s.offers.Expire(ctx, offerID, sessionID, s.now())
}

// GenerateOptionCopy enriches a single option of an existing offer
// with freshly generated copy. It is idempotent in the overwrite
// sense: repeating the call replaces the option's copy and never
// touches the other options or the rank order.
func (s *OfferService) GenerateOptionCopy(ctx context.Context, offerID, propID, sessionID string) (*model.OfferCopy, error) {
	if s.copy == nil {
		return nil, ErrCopyUnavailable
	}

	o, err := s.offers.GetByID(ctx, offerID, sessionID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range o.Top3 {
		if o.Top3[i].PropID == propID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, repository.ErrOptionNotFound
	}

	booking, err := s.bookings.GetByID(ctx, o.BookingID, sessionID)
	if err != nil {
		return nil, err
	}
	original, err := s.props.GetByID(ctx, booking.PropID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.props.GetByID(ctx, propID)
	if err != nil {
		return nil, err
	}

	opt := o.Top3[idx]
	ai, err := s.copy.GenerateCopy(ctx, *original, *candidate, opt.Pricing, *booking, opt.Diffs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopyUnavailable, err)
	}

	applyCopy(&o.Top3[idx], ai)
	if err := s.offers.UpdateOptions(ctx, offerID, o.Top3, sessionID, s.now()); err != nil {
		return nil, err
	}
	return ai, nil
}

// TriggerReady generates offers for every confirmed booking in scope
// that has none yet, the job a cron-like external caller would run.
// Bookings that race with another trigger are skipped silently; other
// failures are logged and skipped so one bad booking cannot starve
// the rest.
func (s *OfferService) TriggerReady(ctx context.Context, sessionID string) ([]string, error) {
	ready, err := s.bookings.ListReady(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	generated := make([]string, 0, len(ready))
	for _, b := range ready {
		offer, err := s.GenerateOffer(ctx, b.ID, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrOfferExists) {
				continue
			}
			log.Printf("offer: trigger failed for booking %s: %v", b.ID, err)
			continue
		}
		if offer != nil {
			generated = append(generated, offer.ID)
		}
	}
	return generated, nil
}

// ReadyBookings lists the bookings TriggerReady would generate for.
func (s *OfferService) ReadyBookings(ctx context.Context, sessionID string) ([]model.Booking, error) {
	return s.bookings.ListReady(ctx, sessionID)
}

// SetClock overrides the service's time source. Tests use it to
// exercise expiry behavior deterministically.
func (s *OfferService) SetClock(now func() time.Time) { s.now = now }

func findProperty(all []model.Property, id string) *model.Property {
	for i := range all {
		if all[i].ID == id {
			return &all[i]
		}
	}
	return nil
}

// applyCopy attaches a copy block to an option, overriding the
// fallback headline and summary when the block provides them.
func applyCopy(opt *model.UpgradeOption, ai *model.OfferCopy) {
	opt.AICopy = ai
	if ai.LandingHero != "" {
		opt.Headline = ai.LandingHero
	}
	if ai.LandingSummary != "" {
		opt.Summary = ai.LandingSummary
	}
	if len(ai.DiffBullets) > 0 {
		opt.Diffs = ai.DiffBullets
	}
}
