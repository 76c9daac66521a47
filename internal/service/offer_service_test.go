package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/uprez/upgrade-engine/internal/model"
	"github.com/uprez/upgrade-engine/internal/queue"
	"github.com/uprez/upgrade-engine/internal/repository"
)

// fakeStore is an in-memory implementation of every store interface,
// guarded by one mutex so the concurrency tests exercise the same
// at-most-once guarantees the MySQL repository provides.
type fakeStore struct {
	mu       sync.Mutex
	props    map[string]model.Property
	order    []string // property iteration order for GetAll
	bookings map[string]*model.Booking
	offers   map[string]*model.Offer
	settings map[string]*model.HostSettings

	offersSent  map[string]int
	revenue     map[string]float64
	competing   int
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		props:      map[string]model.Property{},
		bookings:   map[string]*model.Booking{},
		offers:     map[string]*model.Offer{},
		settings:   map[string]*model.HostSettings{},
		offersSent: map[string]int{},
		revenue:    map[string]float64{},
	}
}

func (f *fakeStore) addProp(p model.Property) {
	f.props[p.ID] = p
	f.order = append(f.order, p.ID)
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return nil, repository.ErrPropertyNotFound
	}
	return &p, nil
}

func (f *fakeStore) GetAll(ctx context.Context) ([]model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Property, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.props[id])
	}
	return out, nil
}

// bookingStore adapts fakeStore to the BookingStore interface; the
// property GetByID signature collides with the booking one, so the
// booking methods live on a wrapper.
type bookingStore struct{ f *fakeStore }

func (b bookingStore) GetByID(ctx context.Context, id, sessionID string) (*model.Booking, error) {
	b.f.mu.Lock()
	defer b.f.mu.Unlock()
	bk, ok := b.f.bookings[id]
	if !ok || !visible(bk.SessionID, sessionID) {
		return nil, repository.ErrBookingNotFound
	}
	cp := *bk
	return &cp, nil
}

func (b bookingStore) List(ctx context.Context, sessionID string) ([]model.Booking, error) {
	b.f.mu.Lock()
	defer b.f.mu.Unlock()
	out := []model.Booking{}
	for _, bk := range b.f.bookings {
		if visible(bk.SessionID, sessionID) {
			out = append(out, *bk)
		}
	}
	return out, nil
}

func (b bookingStore) ListReady(ctx context.Context, sessionID string) ([]model.Booking, error) {
	b.f.mu.Lock()
	defer b.f.mu.Unlock()
	out := []model.Booking{}
	for _, bk := range b.f.bookings {
		if !visible(bk.SessionID, sessionID) || bk.Status != model.BookingStatusConfirmed {
			continue
		}
		hasOffer := false
		for _, o := range b.f.offers {
			if o.BookingID == bk.ID {
				hasOffer = true
				break
			}
		}
		if !hasOffer {
			out = append(out, *bk)
		}
	}
	return out, nil
}

// visible mirrors the SQL scope rule: a row is visible when it belongs
// to the session or to the global scope.
func visible(rowSession, callerSession string) bool {
	return rowSession == "" || rowSession == callerSession
}

type offerStore struct{ f *fakeStore }

func (s offerStore) Create(ctx context.Context, o *model.Offer) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, existing := range s.f.offers {
		if existing.BookingID == o.BookingID {
			return repository.ErrOfferExists
		}
	}
	cp := *o
	s.f.offers[o.ID] = &cp
	return nil
}

func (s offerStore) GetByID(ctx context.Context, id, sessionID string) (*model.Offer, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	o, ok := s.f.offers[id]
	if !ok || !visible(o.SessionID, sessionID) {
		return nil, repository.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (s offerStore) List(ctx context.Context, sessionID string) ([]model.Offer, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	out := []model.Offer{}
	for _, o := range s.f.offers {
		if visible(o.SessionID, sessionID) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s offerStore) Accept(ctx context.Context, offerID, propID, sessionID string, now time.Time) (*model.Offer, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	o, ok := s.f.offers[offerID]
	if !ok || !visible(o.SessionID, sessionID) {
		return nil, repository.ErrOfferNotFound
	}
	switch {
	case o.Status == model.OfferStatusAccepted:
		return nil, repository.ErrOfferAccepted
	case o.Status == model.OfferStatusExpired, !now.Before(o.ExpiresAt):
		return nil, repository.ErrOfferExpired
	}
	opt := o.Option(propID)
	if opt == nil {
		return nil, repository.ErrOptionNotFound
	}
	o.Status = model.OfferStatusAccepted
	o.SelectedPropID = propID
	at := now
	o.AcceptedAt = &at
	if bk, ok := s.f.bookings[o.BookingID]; ok {
		bk.UpgradedFromPropID = bk.PropID
		bk.PropID = propID
		bk.BaseNightlyRate = opt.Pricing.OfferADR
		bk.TotalPaid = opt.Pricing.OfferTotal
		bk.Status = model.BookingStatusUpgraded
		bk.UpgradeAt = &at
	}
	cp := *o
	return &cp, nil
}

func (s offerStore) Expire(ctx context.Context, offerID, sessionID string, now time.Time) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	o, ok := s.f.offers[offerID]
	if !ok || !visible(o.SessionID, sessionID) {
		return repository.ErrOfferNotFound
	}
	if o.Status != model.OfferStatusActive {
		return repository.ErrConflict
	}
	o.Status = model.OfferStatusExpired
	return nil
}

func (s offerStore) UpdateOptions(ctx context.Context, offerID string, top3 []model.UpgradeOption, sessionID string, now time.Time) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	o, ok := s.f.offers[offerID]
	if !ok || !visible(o.SessionID, sessionID) {
		return repository.ErrOfferNotFound
	}
	o.Top3 = top3
	s.f.updateCalls++
	return nil
}

func (s offerStore) ExpireCompeting(ctx context.Context, acceptedOfferID, propID string, now time.Time) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var n int64
	for id, o := range s.f.offers {
		if id == acceptedOfferID || o.Status != model.OfferStatusActive {
			continue
		}
		if o.Option(propID) != nil {
			o.Status = model.OfferStatusExpired
			n++
		}
	}
	s.f.competing++
	return n, nil
}

type settingsStore struct{ f *fakeStore }

// settingsKey scopes a settings row the way the MySQL composite unique
// key on (host_id, session_id) does.
func settingsKey(hostID, sessionID string) string {
	return hostID + "\x00" + sessionID
}

func (s settingsStore) GetOrSeed(ctx context.Context, hostID, sessionID string) (*model.HostSettings, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	// Policy falls back session scope to global scope, unlike the
	// booking and offer reads.
	if sessionID != "" {
		if st, ok := s.f.settings[settingsKey(hostID, sessionID)]; ok {
			cp := *st
			return &cp, nil
		}
	}
	if st, ok := s.f.settings[settingsKey(hostID, "")]; ok {
		cp := *st
		return &cp, nil
	}
	st := model.DefaultHostSettings(hostID)
	st.SessionID = sessionID
	s.f.settings[settingsKey(hostID, sessionID)] = &st
	cp := st
	return &cp, nil
}

func (s settingsStore) IncrementOffersSent(ctx context.Context, hostID, sessionID string) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.offersSent[hostID]++
	return nil
}

func (s settingsStore) AddRevenueLifted(ctx context.Context, hostID, sessionID string, amount float64) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.revenue[hostID] += amount
	return nil
}

// fakeCopy returns a canned copy block, or fails when err is set.
type fakeCopy struct {
	err   error
	calls int
}

func (f *fakeCopy) GenerateCopy(ctx context.Context, original, candidate model.Property, pricing model.PricingDetails, booking model.Booking, diffs []string) (*model.OfferCopy, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.OfferCopy{
		Subject:        "A special upgrade for " + booking.GuestName,
		LandingHero:    "Hero for " + candidate.Name,
		LandingSummary: "Summary for " + candidate.Name,
	}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	created  []queue.OfferCreatedEvent
	accepted []queue.OfferAcceptedEvent
}

func (f *fakeNotifier) OfferCreated(ctx context.Context, ev queue.OfferCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ev)
	return nil
}

func (f *fakeNotifier) OfferAccepted(ctx context.Context, ev queue.OfferAcceptedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, ev)
	return nil
}

// newTestService wires a service over a seeded fake store: a studio
// original, two viable upgrades and one confirmed booking five days
// out, so the arrival cap never interferes unless a test wants it to.
func newTestService(t *testing.T, copyGen CopyGenerator) (*OfferService, *fakeStore, *fakeNotifier, time.Time) {
	t.Helper()
	f := newFakeStore()
	f.addProp(model.Property{ID: "studio", Name: "City Studio", Location: "Old Town", Beds: 1, Baths: 1, ListNightlyRate: 100})
	f.addProp(model.Property{ID: "loft", Name: "Harbor Loft", Location: "Harbor", Beds: 2, Baths: 1, ListNightlyRate: 150})
	f.addProp(model.Property{ID: "villa", Name: "Garden Villa", Location: "Old Town", Beds: 3, Baths: 2, ListNightlyRate: 180, Amenities: []string{"pool"}})

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f.bookings["bk1"] = &model.Booking{
		ID:              "bk1",
		HostID:          "host1",
		PropID:          "studio",
		ArrivalDate:     now.AddDate(0, 0, 5),
		DepartureDate:   now.AddDate(0, 0, 8),
		Nights:          3,
		GuestName:       "Maria",
		GuestEmail:      "maria@example.com",
		BaseNightlyRate: 100,
		TotalPaid:       300,
		Status:          model.BookingStatusConfirmed,
	}

	notifier := &fakeNotifier{}
	svc := NewOfferService(f, bookingStore{f}, offerStore{f}, settingsStore{f}, copyGen, notifier)
	svc.SetClock(func() time.Time { return now })
	return svc, f, notifier, now
}

func TestGenerateOfferRanksAndPersists(t *testing.T) {
	svc, f, notifier, now := newTestService(t, nil)

	offer, err := svc.GenerateOffer(context.Background(), "bk1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if offer == nil {
		t.Fatalf("expected an offer")
	}
	if offer.Status != model.OfferStatusActive {
		t.Fatalf("status = %s, want active", offer.Status)
	}
	if len(offer.Top3) != 2 {
		t.Fatalf("got %d options, want 2", len(offer.Top3))
	}
	// villa scores higher (beds +2, baths +1, location +1, ratio +1).
	if offer.Top3[0].PropID != "villa" || offer.Top3[0].Ranking != 1 {
		t.Fatalf("rank 1 = %s (%d), want villa", offer.Top3[0].PropID, offer.Top3[0].Ranking)
	}
	if offer.Top3[1].PropID != "loft" || offer.Top3[1].Ranking != 2 {
		t.Fatalf("rank 2 = %s (%d), want loft", offer.Top3[1].PropID, offer.Top3[1].Ranking)
	}
	if want := now.Add(24 * time.Hour); !offer.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", offer.ExpiresAt, want)
	}
	if offer.EmailSubject == "" || offer.EmailBody == "" {
		t.Fatalf("fallback email content missing")
	}
	if _, ok := f.offers[offer.ID]; !ok {
		t.Fatalf("offer not persisted")
	}
	if f.offersSent["host1"] != 1 {
		t.Fatalf("offers sent counter = %d, want 1", f.offersSent["host1"])
	}
	if len(notifier.created) != 1 || notifier.created[0].BestPropID != "villa" {
		t.Fatalf("created event = %+v, want one event for villa", notifier.created)
	}
}

func TestGenerateOfferNoViableCandidate(t *testing.T) {
	svc, f, notifier, _ := newTestService(t, nil)
	// A penthouse booking has nothing above it in the portfolio.
	f.addProp(model.Property{ID: "pent", Name: "Penthouse", Location: "Old Town", Beds: 5, Baths: 4, ListNightlyRate: 500})
	f.bookings["bk2"] = &model.Booking{
		ID: "bk2", HostID: "host1", PropID: "pent",
		ArrivalDate: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		Nights:      2, BaseNightlyRate: 500, TotalPaid: 1000,
		Status: model.BookingStatusConfirmed,
	}

	offer, err := svc.GenerateOffer(context.Background(), "bk2", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if offer != nil {
		t.Fatalf("expected nil offer, got %+v", offer)
	}
	if len(f.offers) != 0 {
		t.Fatalf("no offer row should be written")
	}
	if len(notifier.created) != 0 {
		t.Fatalf("no event should be published")
	}
	if f.offersSent["host1"] != 0 {
		t.Fatalf("counter must not move on a no-op generation")
	}
}

func TestGenerateOfferDuplicateBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.GenerateOffer(ctx, "bk1", ""); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if _, err := svc.GenerateOffer(ctx, "bk1", ""); !errors.Is(err, repository.ErrOfferExists) {
		t.Fatalf("second generate err = %v, want ErrOfferExists", err)
	}
}

func TestGenerateOfferUnknownBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	if _, err := svc.GenerateOffer(context.Background(), "missing", ""); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestGenerateOfferCopyForBestOptionOnly(t *testing.T) {
	gen := &fakeCopy{}
	svc, _, _, _ := newTestService(t, gen)

	offer, err := svc.GenerateOffer(context.Background(), "bk1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("copy generator called %d times, want 1", gen.calls)
	}
	if offer.Top3[0].AICopy == nil {
		t.Fatalf("rank 1 should carry ai copy")
	}
	if offer.Top3[1].AICopy != nil {
		t.Fatalf("rank 2 should keep fallback copy")
	}
	if offer.EmailSubject != "A special upgrade for Maria" {
		t.Fatalf("subject = %q, want generated subject", offer.EmailSubject)
	}
	if offer.Top3[0].Headline != "Hero for Garden Villa" {
		t.Fatalf("headline = %q, want generated hero", offer.Top3[0].Headline)
	}
}

func TestGenerateOfferCopyFailureFallsBack(t *testing.T) {
	gen := &fakeCopy{err: errors.New("model overloaded")}
	svc, _, _, _ := newTestService(t, gen)

	offer, err := svc.GenerateOffer(context.Background(), "bk1", "")
	if err != nil {
		t.Fatalf("generate must not fail on copy error: %v", err)
	}
	if offer.Top3[0].AICopy != nil {
		t.Fatalf("failed copy must not be attached")
	}
	if offer.EmailSubject == "" || offer.Top3[0].Headline == "" {
		t.Fatalf("fallback copy missing")
	}
}

func TestGenerateOfferRespectsUseAICopyOff(t *testing.T) {
	gen := &fakeCopy{}
	svc, f, _, _ := newTestService(t, gen)
	st := model.DefaultHostSettings("host1")
	st.UseAICopy = false
	f.settings[settingsKey("host1", "")] = &st

	if _, err := svc.GenerateOffer(context.Background(), "bk1", ""); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("copy generator called %d times, want 0", gen.calls)
	}
}

func TestGenerateOfferArrivalCapsExpiry(t *testing.T) {
	svc, f, _, now := newTestService(t, nil)
	// Guest arrives tomorrow; 10:00 on arrival day lands before the
	// 24h validity window ends.
	f.bookings["bk1"].ArrivalDate = now.AddDate(0, 0, 1)

	offer, err := svc.GenerateOffer(context.Background(), "bk1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	if !offer.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want arrival-day cap %v", offer.ExpiresAt, want)
	}
}

func TestAcceptOfferRewritesBooking(t *testing.T) {
	svc, f, notifier, now := newTestService(t, nil)
	ctx := context.Background()
	offer, err := svc.GenerateOffer(ctx, "bk1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	accepted, err := svc.AcceptOffer(ctx, offer.ID, "villa", "")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.OfferStatusAccepted || accepted.SelectedPropID != "villa" {
		t.Fatalf("offer after accept = %+v", accepted)
	}
	if accepted.AcceptedAt == nil || !accepted.AcceptedAt.Equal(now) {
		t.Fatalf("accepted at = %v, want %v", accepted.AcceptedAt, now)
	}

	bk := f.bookings["bk1"]
	if bk.PropID != "villa" || bk.Status != model.BookingStatusUpgraded {
		t.Fatalf("booking not rewritten: %+v", bk)
	}
	if bk.UpgradedFromPropID != "studio" {
		t.Fatalf("original property not preserved: %q", bk.UpgradedFromPropID)
	}
	opt := accepted.Option("villa")
	if bk.BaseNightlyRate != opt.Pricing.OfferADR || bk.TotalPaid != opt.Pricing.OfferTotal {
		t.Fatalf("booking price not rewritten: rate=%v total=%v", bk.BaseNightlyRate, bk.TotalPaid)
	}

	if f.revenue["host1"] != opt.Pricing.RevenueLift {
		t.Fatalf("revenue counter = %v, want %v", f.revenue["host1"], opt.Pricing.RevenueLift)
	}
	if f.competing != 1 {
		t.Fatalf("competing expiry not attempted")
	}
	if len(notifier.accepted) != 1 || notifier.accepted[0].PropID != "villa" {
		t.Fatalf("accepted event = %+v", notifier.accepted)
	}
}

func TestAcceptOfferAtMostOnce(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")

	if _, err := svc.AcceptOffer(ctx, offer.ID, "villa", ""); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.AcceptOffer(ctx, offer.ID, "loft", ""); !errors.Is(err, repository.ErrOfferAccepted) {
		t.Fatalf("second accept err = %v, want ErrOfferAccepted", err)
	}
}

func TestAcceptOfferConcurrentSingleWinner(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AcceptOffer(ctx, offer.ID, "villa", "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, repository.ErrOfferAccepted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d accepts won, want exactly 1", wins)
	}
}

func TestAcceptOfferPastDeadline(t *testing.T) {
	svc, _, _, now := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")

	svc.SetClock(func() time.Time { return now.Add(25 * time.Hour) })
	if _, err := svc.AcceptOffer(ctx, offer.ID, "villa", ""); !errors.Is(err, repository.ErrOfferExpired) {
		t.Fatalf("err = %v, want ErrOfferExpired", err)
	}
}

func TestAcceptOfferUnknownOption(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")
	if _, err := svc.AcceptOffer(ctx, offer.ID, "studio", ""); !errors.Is(err, repository.ErrOptionNotFound) {
		t.Fatalf("err = %v, want ErrOptionNotFound", err)
	}
}

func TestGetOfferLazyExpiry(t *testing.T) {
	svc, _, _, now := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")

	got, err := svc.GetOffer(ctx, offer.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.OfferStatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}

	svc.SetClock(func() time.Time { return now.Add(24*time.Hour + time.Minute) })
	got, err = svc.GetOffer(ctx, offer.ID, "")
	if err != nil {
		t.Fatalf("get after deadline: %v", err)
	}
	if got.Status != model.OfferStatusExpired {
		t.Fatalf("status = %s, want expired without a write-back", got.Status)
	}
}

func TestExpireOfferTerminalConflict(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")

	if err := svc.ExpireOffer(ctx, offer.ID, ""); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if err := svc.ExpireOffer(ctx, offer.ID, ""); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second expire err = %v, want ErrConflict", err)
	}
}

func TestGenerateOptionCopyReplacesSingleOption(t *testing.T) {
	gen := &fakeCopy{}
	svc, f, _, _ := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")

	// Attach the generator after creation, as if enabling copy later.
	svc.copy = gen

	block, err := svc.GenerateOptionCopy(ctx, offer.ID, "loft", "")
	if err != nil {
		t.Fatalf("generate option copy: %v", err)
	}
	if block == nil || block.LandingHero != "Hero for Harbor Loft" {
		t.Fatalf("copy block = %+v", block)
	}

	stored := f.offers[offer.ID]
	if stored.Top3[1].AICopy == nil || stored.Top3[1].PropID != "loft" {
		t.Fatalf("loft option not enriched: %+v", stored.Top3[1])
	}
	if stored.Top3[0].AICopy != nil {
		t.Fatalf("villa option must be untouched")
	}
	if stored.Top3[0].Ranking != 1 || stored.Top3[1].Ranking != 2 {
		t.Fatalf("rank order disturbed")
	}
	if f.updateCalls != 1 {
		t.Fatalf("update calls = %d, want 1", f.updateCalls)
	}
}

func TestGenerateOptionCopyWithoutGenerator(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	offer, _ := svc.GenerateOffer(ctx, "bk1", "")
	if _, err := svc.GenerateOptionCopy(ctx, offer.ID, "loft", ""); !errors.Is(err, ErrCopyUnavailable) {
		t.Fatalf("err = %v, want ErrCopyUnavailable", err)
	}
}

func TestTriggerReadySkipsBookingsWithOffers(t *testing.T) {
	svc, f, _, now := newTestService(t, nil)
	ctx := context.Background()
	f.bookings["bk2"] = &model.Booking{
		ID: "bk2", HostID: "host1", PropID: "studio",
		ArrivalDate: now.AddDate(0, 0, 6), Nights: 2,
		GuestName: "Jonas", BaseNightlyRate: 100, TotalPaid: 200,
		Status: model.BookingStatusConfirmed,
	}

	if _, err := svc.GenerateOffer(ctx, "bk1", ""); err != nil {
		t.Fatalf("seed offer: %v", err)
	}

	ids, err := svc.TriggerReady(ctx, "")
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("generated %d offers, want 1 (bk1 already has one)", len(ids))
	}
	if len(f.offers) != 2 {
		t.Fatalf("store has %d offers, want 2", len(f.offers))
	}

	// A second trigger finds nothing left to do.
	ids, err = svc.TriggerReady(ctx, "")
	if err != nil {
		t.Fatalf("second trigger: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("second trigger generated %d offers, want 0", len(ids))
	}
}

func TestListOffersAppliesLazyExpiry(t *testing.T) {
	svc, _, _, now := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.GenerateOffer(ctx, "bk1", ""); err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.SetClock(func() time.Time { return now.Add(48 * time.Hour) })
	offers, err := svc.ListOffers(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 1 || offers[0].Status != model.OfferStatusExpired {
		t.Fatalf("offers = %+v, want one expired offer", offers)
	}
}

// sessionBooking seeds a confirmed studio booking owned by a session
// sandbox rather than the shared global data set.
func sessionBooking(f *fakeStore, id, sessionID string, now time.Time) {
	f.bookings[id] = &model.Booking{
		ID:              id,
		SessionID:       sessionID,
		HostID:          "host1",
		PropID:          "studio",
		ArrivalDate:     now.AddDate(0, 0, 5),
		DepartureDate:   now.AddDate(0, 0, 8),
		Nights:          3,
		GuestName:       "Ana",
		GuestEmail:      "ana@example.com",
		BaseNightlyRate: 100,
		TotalPaid:       300,
		Status:          model.BookingStatusConfirmed,
	}
}

func TestGenerateOfferSessionIsolation(t *testing.T) {
	svc, f, _, now := newTestService(t, nil)
	ctx := context.Background()
	sessionBooking(f, "bk-a", "sess-a", now)

	// Another session and the global scope both see only their own
	// rows; a foreign session booking does not exist for them.
	if _, err := svc.GenerateOffer(ctx, "bk-a", "sess-b"); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("foreign session err = %v, want ErrBookingNotFound", err)
	}
	if _, err := svc.GenerateOffer(ctx, "bk-a", ""); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("global scope err = %v, want ErrBookingNotFound", err)
	}

	offer, err := svc.GenerateOffer(ctx, "bk-a", "sess-a")
	if err != nil {
		t.Fatalf("owning session generate: %v", err)
	}
	if offer.SessionID != "sess-a" {
		t.Fatalf("offer session = %q, want sess-a", offer.SessionID)
	}

	// Global bookings stay visible from inside any session.
	if _, err := svc.GenerateOffer(ctx, "bk1", "sess-a"); err != nil {
		t.Fatalf("global booking under a session: %v", err)
	}
}

func TestOfferReadsScopedBySession(t *testing.T) {
	svc, f, _, now := newTestService(t, nil)
	ctx := context.Background()
	sessionBooking(f, "bk-a", "sess-a", now)

	offer, err := svc.GenerateOffer(ctx, "bk-a", "sess-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.GetOffer(ctx, offer.ID, "sess-b"); !errors.Is(err, repository.ErrOfferNotFound) {
		t.Fatalf("foreign session get err = %v, want ErrOfferNotFound", err)
	}
	if _, err := svc.GetOffer(ctx, offer.ID, ""); !errors.Is(err, repository.ErrOfferNotFound) {
		t.Fatalf("global get err = %v, want ErrOfferNotFound", err)
	}
	if _, err := svc.AcceptOffer(ctx, offer.ID, "villa", "sess-b"); !errors.Is(err, repository.ErrOfferNotFound) {
		t.Fatalf("foreign session accept err = %v, want ErrOfferNotFound", err)
	}

	if offers, err := svc.ListOffers(ctx, "sess-b"); err != nil || len(offers) != 0 {
		t.Fatalf("foreign session list = %+v, %v; want empty", offers, err)
	}
	if offers, err := svc.ListOffers(ctx, "sess-a"); err != nil || len(offers) != 1 {
		t.Fatalf("owning session list = %+v, %v; want one offer", offers, err)
	}

	// Global offers are shared reference data, visible to everyone.
	global, err := svc.GenerateOffer(ctx, "bk1", "")
	if err != nil {
		t.Fatalf("global generate: %v", err)
	}
	if _, err := svc.GetOffer(ctx, global.ID, "sess-b"); err != nil {
		t.Fatalf("global offer under a session: %v", err)
	}
}

func TestSessionSettingsShadowGlobal(t *testing.T) {
	gen := &fakeCopy{}
	svc, f, _, now := newTestService(t, gen)
	ctx := context.Background()

	// The global row keeps ai copy on; sess-a turns it off for itself.
	global := model.DefaultHostSettings("host1")
	f.settings[settingsKey("host1", "")] = &global
	scoped := model.DefaultHostSettings("host1")
	scoped.SessionID = "sess-a"
	scoped.UseAICopy = false
	f.settings[settingsKey("host1", "sess-a")] = &scoped

	sessionBooking(f, "bk-a", "sess-a", now)
	if _, err := svc.GenerateOffer(ctx, "bk-a", "sess-a"); err != nil {
		t.Fatalf("generate under sess-a: %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("sess-a policy must shadow the global row, generator called %d times", gen.calls)
	}

	// A session without its own row falls back to the global policy.
	sessionBooking(f, "bk-b", "sess-b", now)
	if _, err := svc.GenerateOffer(ctx, "bk-b", "sess-b"); err != nil {
		t.Fatalf("generate under sess-b: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("sess-b must fall back to global policy, generator called %d times", gen.calls)
	}
}
