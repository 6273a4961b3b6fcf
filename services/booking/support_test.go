package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	providerRepo "servihub/database/repository/provider"
	"servihub/models"
	"servihub/services/location"
	"servihub/services/settings"

	"go.uber.org/zap"
)

// --- in-memory repository fakes ---

type fakeProviderRepo struct {
	mu           sync.Mutex
	providers    map[string]*models.Provider
	jobsIncr     []string
	directoryErr error
}

func newFakeProviderRepo(providers ...models.Provider) *fakeProviderRepo {
	repo := &fakeProviderRepo{providers: make(map[string]*models.Provider)}
	for i := range providers {
		p := providers[i]
		repo.providers[p.ID] = &p
	}
	return repo
}

func (r *fakeProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = p
	return nil
}

func (r *fakeProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", id)
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProviderRepo) Directory(ctx context.Context, criteria providerRepo.DirectoryCriteria) ([]models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.directoryErr != nil {
		return nil, r.directoryErr
	}
	excluded := make(map[string]bool, len(criteria.ExcludeIDs))
	for _, id := range criteria.ExcludeIDs {
		excluded[id] = true
	}
	var out []models.Provider
	for _, p := range r.providers {
		if p.Town != criteria.Town || excluded[p.ID] {
			continue
		}
		if !p.Active || !p.Available || !p.Verified {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProviderRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[id]; ok {
		p.Available = available
		return nil
	}
	return fmt.Errorf("provider %s not found", id)
}

func (r *fakeProviderRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[id]; ok {
		p.Verified = verified
		return nil
	}
	return fmt.Errorf("provider %s not found", id)
}

func (r *fakeProviderRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[id]; ok {
		p.Active = false
		return nil
	}
	return fmt.Errorf("provider %s not found", id)
}

func (r *fakeProviderRepo) IncrementJobsCompleted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[id]; ok {
		p.TotalJobsCompleted++
		r.jobsIncr = append(r.jobsIncr, id)
		return nil
	}
	return fmt.Errorf("provider %s not found", id)
}

type fakeBookingRepo struct {
	mu           sync.Mutex
	bookings     map[string]*models.Booking
	assignWrites int
	insertErr    error
	// onAssign runs at the top of AssignProvider, letting tests interleave
	// a rival write between the engine's read and its optimistic update.
	onAssign func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", id)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) AssignProvider(ctx context.Context, bookingID, providerID string, deadline time.Time) (bool, error) {
	if r.onAssign != nil {
		hook := r.onAssign
		r.onAssign = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, fmt.Errorf("booking %s not found", bookingID)
	}
	if b.ProviderID != "" {
		return false, nil
	}
	b.ProviderID = providerID
	b.Status = models.StatusAssigned
	b.AssignmentStatus = models.AssignmentAuto
	b.AcceptanceDeadline = deadline
	r.assignWrites++
	return true, nil
}

func (r *fakeBookingRepo) ClearAssignment(ctx context.Context, bookingID, failedProviderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != models.StatusAssigned {
		return fmt.Errorf("booking %s is not in an assigned state", bookingID)
	}
	b.ProviderID = ""
	b.Status = models.StatusPending
	b.AssignmentStatus = models.AssignmentPending
	b.FailedProviderIDs = append(b.FailedProviderIDs, failedProviderID)
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID string, status models.BookingStatus, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	b.Status = status
	if reason != "" {
		b.CancelReason = reason
	}
	return nil
}

func (r *fakeBookingRepo) SetAssignmentStatus(ctx context.Context, bookingID string, status models.AssignmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	b.AssignmentStatus = status
	return nil
}

func (r *fakeBookingRepo) ExpiredAssignments(ctx context.Context, now time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.StatusAssigned && b.AcceptanceDeadline.Before(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ClientID == clientID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeEntitlementRepo struct {
	mu     sync.Mutex
	active *models.ActivePackage
	pkg    *models.SubscriptionPackage
	usage  []models.UsageRecord
}

func (r *fakeEntitlementRepo) ActivePackage(ctx context.Context, clientID string, today time.Time) (*models.ActivePackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil || r.active.ClientID != clientID {
		return nil, nil
	}
	if r.active.Status != "active" || r.active.ExpiryDate.Before(today) {
		return nil, nil
	}
	copied := *r.active
	return &copied, nil
}

func (r *fakeEntitlementRepo) GetPackage(ctx context.Context, packageID string) (*models.SubscriptionPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pkg == nil || r.pkg.ID != packageID {
		return nil, fmt.Errorf("package %s not found", packageID)
	}
	copied := *r.pkg
	return &copied, nil
}

func (r *fakeEntitlementRepo) CountUsageSince(ctx context.Context, clientID, packageID, serviceID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, u := range r.usage {
		if u.ClientID == clientID && u.PackageID == packageID && u.ServiceID == serviceID && !u.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeEntitlementRepo) AppendUsage(ctx context.Context, record *models.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = append(r.usage, *record)
	return nil
}

func (r *fakeEntitlementRepo) RemoveUsage(ctx context.Context, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.usage {
		if u.ID == recordID {
			r.usage = append(r.usage[:i], r.usage[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*models.RecurringSchedule
}

func newFakeScheduleRepo(schedules ...models.RecurringSchedule) *fakeScheduleRepo {
	repo := &fakeScheduleRepo{schedules: make(map[string]*models.RecurringSchedule)}
	for i := range schedules {
		s := schedules[i]
		repo.schedules[s.ID] = &s
	}
	return repo
}

func (r *fakeScheduleRepo) Insert(ctx context.Context, s *models.RecurringSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.schedules[s.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*models.RecurringSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %s not found", id)
	}
	copied := *s
	return &copied, nil
}

func (r *fakeScheduleRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return fmt.Errorf("schedule %s not found", id)
	}
	s.IsActive = false
	return nil
}

func (r *fakeScheduleRepo) AppendGeneratedBookings(ctx context.Context, id string, bookingIDs []string, lastDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return fmt.Errorf("schedule %s not found", id)
	}
	s.GeneratedBookingIDs = append(s.GeneratedBookingIDs, bookingIDs...)
	s.LastGeneratedDate = &lastDate
	return nil
}

func (r *fakeScheduleRepo) Active(ctx context.Context) ([]models.RecurringSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RecurringSchedule
	for _, s := range r.schedules {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeCatalogRepo struct {
	clients  map[string]models.Client
	services map[string]models.Service
}

func (r *fakeCatalogRepo) GetClient(ctx context.Context, id string) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s not found", id)
	}
	return &c, nil
}

func (r *fakeCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s not found", id)
	}
	return &s, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (d *recordingDispatcher) Emit(ctx context.Context, event models.NotificationEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) typesSeen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var types []string
	for _, e := range d.events {
		types = append(types, e.Type)
	}
	return types
}

// --- engine fixture ---

// fixedNow is a Friday in Windhoek; the following day, 2026-01-10, is a
// Saturday for weekend-pricing scenarios.
var fixedNow = time.Date(2026, time.January, 9, 10, 0, 0, 0, time.UTC)

func testSettings() models.PricingSettings {
	return models.PricingSettings{
		StandardCommissionPct:  15,
		EmergencyCommissionPct: 20,
		SubscriptionFlatFee:    25,
		WeekendMarkupPct:       20,
		WeekendBonusAmount:     50,
	}
}

func testGraph() *location.Graph {
	return location.NewGraph([]location.Entry{
		{Town: "Windhoek", SuburbA: "Olympia", SuburbB: "Klein Windhoek", Tier: 1},
		{Town: "Windhoek", SuburbA: "Olympia", SuburbB: "Pionierspark", Tier: 2},
		{Town: "Windhoek", SuburbA: "Olympia", SuburbB: "Katutura", Tier: 4},
	})
}

type engineFixture struct {
	engine     *DefaultEngine
	providers  *fakeProviderRepo
	bookings   *fakeBookingRepo
	ents       *fakeEntitlementRepo
	schedules  *fakeScheduleRepo
	catalog    *fakeCatalogRepo
	dispatcher *recordingDispatcher
}

func newEngineFixture(t *testing.T, providers ...models.Provider) *engineFixture {
	t.Helper()

	provRepo := newFakeProviderRepo(providers...)
	bookRepo := newFakeBookingRepo()
	entRepo := &fakeEntitlementRepo{}
	schedRepo := newFakeScheduleRepo()
	catRepo := &fakeCatalogRepo{
		clients: map[string]models.Client{
			"client-1": {ID: "client-1", Name: "Ndapewa", Town: "Windhoek", Suburb: "Olympia"},
		},
		services: map[string]models.Service{
			"svc-clean": {ID: "svc-clean", Name: "Home Cleaning", PriceOneOff: 100, DurationMinutes: 120, ServiceType: models.ServiceTypeOneOff},
			"svc-gard":  {ID: "svc-gard", Name: "Garden Care", PriceOneOff: 150, DurationMinutes: 90, ServiceType: models.ServiceTypeSubscription},
		},
	}
	dispatcher := &recordingDispatcher{}

	ledger := NewEntitlementLedger(entRepo)
	ledger.Now = func() time.Time { return fixedNow }

	engine := &DefaultEngine{
		Bookings:  bookRepo,
		Providers: provRepo,
		Catalog:   catRepo,
		Schedules: schedRepo,
		Matcher:   &DefaultMatchingService{ProviderRepo: provRepo, Graph: testGraph()},
		Ledger:    ledger,
		Settings:  &settings.StaticSource{Settings: testSettings()},
		Notifier:  dispatcher,
		Logger:    zap.NewNop(),

		TZ:               time.UTC,
		Now:              func() time.Time { return fixedNow },
		AcceptanceWindow: 24 * time.Hour,
		HorizonMonths:    3,
	}

	return &engineFixture{
		engine:     engine,
		providers:  provRepo,
		bookings:   bookRepo,
		ents:       entRepo,
		schedules:  schedRepo,
		catalog:    catRepo,
		dispatcher: dispatcher,
	}
}

func eligibleProvider(id, suburb string, maxTier int) models.Provider {
	return models.Provider{
		ID:              id,
		Name:            "Provider " + id,
		Town:            "Windhoek",
		Suburb:          suburb,
		MaxDistanceTier: maxTier,
		Rating:          4.5,
		Verified:        true,
		Active:          true,
		Available:       true,
	}
}
