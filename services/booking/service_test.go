package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"servihub/models"
)

func hasEventType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func TestCreateBookingWeekendAutoAssigned(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Klein Windhoek", 1))

	result, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-10", // Saturday.
		BookingTime: "09:00",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	b := result.Booking
	if !b.IsWeekend {
		t.Error("weekend flag not frozen on the booking")
	}
	if b.TotalAmount != 120 {
		t.Errorf("total amount = %v, want 120 (weekend markup applied)", b.TotalAmount)
	}
	if want := fixedNow.Add(24 * time.Hour); !b.AcceptanceDeadline.Equal(want) {
		t.Errorf("acceptance deadline = %v, want %v", b.AcceptanceDeadline, want)
	}
	if b.Status != models.StatusAssigned || b.ProviderID != "p-1" {
		t.Errorf("booking = (%s, %s), want assigned to p-1", b.Status, b.ProviderID)
	}
	if result.Assignment == nil || result.Assignment.ProviderID != "p-1" || result.Assignment.Tier != 1 {
		t.Errorf("assignment = %+v, want p-1 at tier 1", result.Assignment)
	}
	if result.Quote.NetPayout != 123.44 {
		t.Errorf("net payout = %v, want 123.44", result.Quote.NetPayout)
	}

	types := fx.dispatcher.typesSeen()
	if !hasEventType(types, models.EventBookingCreated) || !hasEventType(types, models.EventProviderAssigned) {
		t.Errorf("events = %v, want booking_created and provider_assigned", types)
	}

	stored, err := fx.bookings.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ProviderID != "p-1" || stored.Status != models.StatusAssigned {
		t.Errorf("stored booking = (%s, %s), want assigned to p-1", stored.Status, stored.ProviderID)
	}
}

func TestCreateBookingNoProvidersFlagsManual(t *testing.T) {
	fx := newEngineFixture(t) // Empty directory.

	result, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if !result.Assignment.ManualRequired {
		t.Error("assignment result should flag manual assignment")
	}

	stored, err := fx.bookings.GetByID(context.Background(), result.Booking.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
	if stored.AssignmentStatus != models.AssignmentManualRequired {
		t.Errorf("assignment status = %s, want %s", stored.AssignmentStatus, models.AssignmentManualRequired)
	}
	if !hasEventType(fx.dispatcher.typesSeen(), models.EventAssignmentFailed) {
		t.Error("assignment_failed event not emitted")
	}
}

func TestCreateBookingCoveredBySubscription(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Olympia", 0))
	fx.ents.active = &models.ActivePackage{
		ID: "ap-1", ClientID: "client-1", PackageID: "pkg-1", Status: "active",
		StartDate:  fixedNow.AddDate(0, -1, 0),
		ExpiryDate: fixedNow.AddDate(0, 6, 0),
	}
	fx.ents.pkg = &models.SubscriptionPackage{
		ID: "pkg-1",
		Entitlements: []models.PackageEntitlement{
			{ServiceID: "svc-gard", QuantityPerCycle: 4, CycleDays: 30},
		},
	}

	result, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-gard",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if result.Booking.TotalAmount != 0 || !result.Booking.CoveredByPackage {
		t.Errorf("booking = (amount %v, covered %v), want free and covered",
			result.Booking.TotalAmount, result.Booking.CoveredByPackage)
	}
	if result.Entitlement == nil || result.Entitlement.Outcome != EntitlementConsumed {
		t.Fatalf("entitlement = %+v, want consumed", result.Entitlement)
	}
	if result.Entitlement.Remaining != 3 {
		t.Errorf("remaining = %d, want 3", result.Entitlement.Remaining)
	}
	if len(fx.ents.usage) != 1 || fx.ents.usage[0].BookingID != result.Booking.ID {
		t.Errorf("usage = %+v, want one record tagged with the booking id", fx.ents.usage)
	}
}

func TestCreateBookingExhaustedFallsBackToPayPerUse(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Olympia", 0))
	fx.ents.active = &models.ActivePackage{
		ID: "ap-1", ClientID: "client-1", PackageID: "pkg-1", Status: "active",
		StartDate:  fixedNow.AddDate(0, -1, 0),
		ExpiryDate: fixedNow.AddDate(0, 6, 0),
	}
	fx.ents.pkg = &models.SubscriptionPackage{
		ID: "pkg-1",
		Entitlements: []models.PackageEntitlement{
			{ServiceID: "svc-gard", QuantityPerCycle: 1, CycleDays: 30},
		},
	}
	fx.ents.usage = []models.UsageRecord{
		{ID: "u-1", ClientID: "client-1", PackageID: "pkg-1", ServiceID: "svc-gard",
			Timestamp: fixedNow.AddDate(0, 0, -2)},
	}

	result, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-gard",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if result.Entitlement == nil || result.Entitlement.Outcome != EntitlementExhausted {
		t.Fatalf("entitlement = %+v, want exhausted", result.Entitlement)
	}
	if result.Booking.CoveredByPackage {
		t.Error("exhausted booking must not be marked covered")
	}
	if result.Booking.TotalAmount != 150 {
		t.Errorf("total amount = %v, want the full weekday price 150", result.Booking.TotalAmount)
	}
}

func TestAttemptAssignmentIdempotent(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Klein Windhoek", 1))

	result, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if fx.bookings.assignWrites != 1 {
		t.Fatalf("assignment writes = %d, want 1", fx.bookings.assignWrites)
	}

	again, err := fx.engine.AttemptAssignment(context.Background(), result.Booking.ID)
	if err != nil {
		t.Fatalf("AttemptAssignment: %v", err)
	}
	if !again.AlreadyAssigned || again.ProviderID != "p-1" {
		t.Errorf("re-assignment = %+v, want already-assigned to p-1", again)
	}
	if fx.bookings.assignWrites != 1 {
		t.Errorf("assignment writes = %d after re-invoke, want still 1", fx.bookings.assignWrites)
	}
}

func TestAttemptAssignmentLosesRaceToRival(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Klein Windhoek", 1))

	booking := models.Booking{
		ID: "bk-race", ClientID: "client-1", ServiceID: "svc-clean",
		Town: "Windhoek", Suburb: "Olympia",
		Status: models.StatusPending, AssignmentStatus: models.AssignmentPending,
	}
	if err := fx.bookings.Insert(context.Background(), &booking); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// A rival assignment lands between the engine's read and its write; the
	// precondition fails and the re-read resolves to the rival's assignment.
	fx.bookings.onAssign = func() {
		fx.bookings.mu.Lock()
		defer fx.bookings.mu.Unlock()
		b := fx.bookings.bookings["bk-race"]
		b.ProviderID = "p-rival"
		b.Status = models.StatusAssigned
		b.AssignmentStatus = models.AssignmentAssigned
	}

	result, err := fx.engine.AttemptAssignment(context.Background(), "bk-race")
	if err != nil {
		t.Fatalf("AttemptAssignment: %v", err)
	}
	if !result.AlreadyAssigned || result.ProviderID != "p-rival" {
		t.Errorf("result = %+v, want already-assigned to p-rival", result)
	}
	if fx.bookings.assignWrites != 0 {
		t.Errorf("assignment writes = %d, want 0 (precondition must have blocked the write)", fx.bookings.assignWrites)
	}
}

func TestTransitionLifecycleAndJobCount(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Klein Windhoek", 1))
	ctx := context.Background()

	result, err := fx.engine.CreateBooking(ctx, models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	id := result.Booking.ID

	for _, event := range []Event{EventAccept, EventStart} {
		if _, err := fx.engine.Transition(ctx, id, event); err != nil {
			t.Fatalf("Transition(%s): %v", event, err)
		}
	}

	// Work in progress cannot be cancelled.
	if err := fx.engine.CancelBooking(ctx, id, "changed my mind"); err == nil {
		t.Fatal("cancel from in_progress should fail")
	} else {
		var invalid *InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("cancel error %T, want *InvalidTransitionError", err)
		}
	}

	updated, err := fx.engine.Transition(ctx, id, EventComplete)
	if err != nil {
		t.Fatalf("Transition(complete): %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}

	p, err := fx.providers.GetByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.TotalJobsCompleted != 1 {
		t.Errorf("provider jobs completed = %d, want 1", p.TotalJobsCompleted)
	}
}

func TestCancelBookingRecordsReason(t *testing.T) {
	fx := newEngineFixture(t, eligibleProvider("p-1", "Klein Windhoek", 1))
	ctx := context.Background()

	result, err := fx.engine.CreateBooking(ctx, models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := fx.engine.CancelBooking(ctx, result.Booking.ID, "client travelling"); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	stored, err := fx.bookings.GetByID(ctx, result.Booking.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.StatusCancelled || stored.CancelReason != "client travelling" {
		t.Errorf("booking = (%s, %q), want cancelled with the reason", stored.Status, stored.CancelReason)
	}
	if !hasEventType(fx.dispatcher.typesSeen(), models.EventBookingCancelled) {
		t.Error("booking_cancelled event not emitted")
	}
}

func TestReassignExpiredExcludesFailedProvider(t *testing.T) {
	best := eligibleProvider("p-best", "Olympia", 0)
	best.Rating = 5.0
	backup := eligibleProvider("p-backup", "Klein Windhoek", 1)
	fx := newEngineFixture(t, best, backup)
	ctx := context.Background()

	result, err := fx.engine.CreateBooking(ctx, models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if result.Assignment.ProviderID != "p-best" {
		t.Fatalf("initial assignment = %s, want p-best", result.Assignment.ProviderID)
	}

	// Still within the acceptance window: reassignment must refuse.
	if _, err := fx.engine.ReassignExpired(ctx, result.Booking.ID); err == nil {
		t.Fatal("ReassignExpired before the deadline should fail")
	}

	// Push the deadline into the past and retry.
	fx.bookings.mu.Lock()
	fx.bookings.bookings[result.Booking.ID].AcceptanceDeadline = fixedNow.Add(-time.Hour)
	fx.bookings.mu.Unlock()

	reassigned, err := fx.engine.ReassignExpired(ctx, result.Booking.ID)
	if err != nil {
		t.Fatalf("ReassignExpired: %v", err)
	}
	if reassigned.ProviderID != "p-backup" {
		t.Errorf("reassigned to %s, want p-backup (failed provider excluded)", reassigned.ProviderID)
	}

	stored, err := fx.bookings.GetByID(ctx, result.Booking.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ProviderID != "p-backup" || stored.Status != models.StatusAssigned {
		t.Errorf("stored booking = (%s, %s), want assigned to p-backup", stored.Status, stored.ProviderID)
	}
}

func TestReassignExpiredAccumulatesFailuresAndResetsDeadline(t *testing.T) {
	best := eligibleProvider("p-best", "Olympia", 0)
	best.Rating = 5.0
	backup := eligibleProvider("p-backup", "Klein Windhoek", 1)
	fx := newEngineFixture(t, best, backup)
	ctx := context.Background()

	result, err := fx.engine.CreateBooking(ctx, models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-clean",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	id := result.Booking.ID

	expireNow := func() {
		fx.bookings.mu.Lock()
		fx.bookings.bookings[id].AcceptanceDeadline = fixedNow.Add(-time.Hour)
		fx.bookings.mu.Unlock()
	}

	expireNow()
	first, err := fx.engine.ReassignExpired(ctx, id)
	if err != nil {
		t.Fatalf("ReassignExpired: %v", err)
	}
	if first.ProviderID != "p-backup" {
		t.Fatalf("first reassignment = %s, want p-backup", first.ProviderID)
	}

	// The new assignee gets a fresh acceptance window, so the next sweep
	// pass must not pick this booking up again immediately.
	stored, _ := fx.bookings.GetByID(ctx, id)
	if want := fixedNow.Add(24 * time.Hour); !stored.AcceptanceDeadline.Equal(want) {
		t.Errorf("deadline after reassignment = %v, want %v", stored.AcceptanceDeadline, want)
	}
	sweepable, err := fx.bookings.ExpiredAssignments(ctx, fixedNow)
	if err != nil {
		t.Fatalf("ExpiredAssignments: %v", err)
	}
	if len(sweepable) != 0 {
		t.Errorf("freshly reassigned booking is already sweepable: %+v", sweepable)
	}

	// When the backup also fails, the booking must not bounce back to the
	// first failed provider; with every candidate burned it escalates to
	// manual dispatch.
	expireNow()
	second, err := fx.engine.ReassignExpired(ctx, id)
	if err != nil {
		t.Fatalf("second ReassignExpired: %v", err)
	}
	if second.ProviderID == "p-best" || second.ProviderID == "p-backup" {
		t.Fatalf("booking handed back to %s, a provider that already failed", second.ProviderID)
	}
	if !second.ManualRequired {
		t.Errorf("result = %+v, want manual dispatch once all candidates failed", second)
	}

	stored, _ = fx.bookings.GetByID(ctx, id)
	if len(stored.FailedProviderIDs) != 2 {
		t.Errorf("failed providers = %v, want both recorded", stored.FailedProviderIDs)
	}
	if stored.AssignmentStatus != models.AssignmentManualRequired {
		t.Errorf("assignment status = %s, want %s", stored.AssignmentStatus, models.AssignmentManualRequired)
	}
}

func TestCreateBookingInsertFailureReleasesUsage(t *testing.T) {
	fx := newEngineFixture(t)
	fx.ents.active = &models.ActivePackage{
		ID: "ap-1", ClientID: "client-1", PackageID: "pkg-1", Status: "active",
		StartDate:  fixedNow.AddDate(0, -1, 0),
		ExpiryDate: fixedNow.AddDate(0, 6, 0),
	}
	fx.ents.pkg = &models.SubscriptionPackage{
		ID: "pkg-1",
		Entitlements: []models.PackageEntitlement{
			{ServiceID: "svc-gard", QuantityPerCycle: 2, CycleDays: 30},
		},
	}
	fx.bookings.insertErr = errors.New("write concern failure")

	_, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-gard",
		BookingDate: "2026-01-12",
	})
	if err == nil {
		t.Fatal("CreateBooking should fail when the insert fails")
	}
	if len(fx.ents.usage) != 0 {
		t.Errorf("usage records after failed creation = %d, want 0 (quota must not burn with no booking)", len(fx.ents.usage))
	}

	// The released unit is spendable by the retry.
	fx.bookings.insertErr = nil
	result, err := fx.engine.CreateBooking(context.Background(), models.BookingRequest{
		ClientID:    "client-1",
		ServiceID:   "svc-gard",
		BookingDate: "2026-01-12",
	})
	if err != nil {
		t.Fatalf("CreateBooking retry: %v", err)
	}
	if result.Entitlement.Outcome != EntitlementConsumed || result.Entitlement.Remaining != 1 {
		t.Errorf("retry entitlement = %+v, want consumed with 1 remaining", result.Entitlement)
	}
}

func TestTransitionRejectsAssignEvent(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	booking := models.Booking{
		ID: "bk-direct", ClientID: "client-1", ServiceID: "svc-clean",
		Town: "Windhoek", Suburb: "Olympia",
		Status: models.StatusPending, AssignmentStatus: models.AssignmentPending,
	}
	if err := fx.bookings.Insert(ctx, &booking); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_, err := fx.engine.Transition(ctx, "bk-direct", EventAssign)
	if err == nil {
		t.Fatal("raising assign through Transition should fail")
	}
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error %T, want *InvalidTransitionError", err)
	}

	stored, _ := fx.bookings.GetByID(ctx, "bk-direct")
	if stored.Status != models.StatusPending || stored.ProviderID != "" {
		t.Errorf("booking = (%s, %q), must stay pending and unassigned", stored.Status, stored.ProviderID)
	}
}

func TestCreateBookingRejectsUnknownInputs(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	cases := []models.BookingRequest{
		{ClientID: "nobody", ServiceID: "svc-clean", BookingDate: "2026-01-12"},
		{ClientID: "client-1", ServiceID: "svc-nope", BookingDate: "2026-01-12"},
		{ClientID: "client-1", ServiceID: "svc-clean", BookingDate: "12-01-2026"},
	}
	for _, req := range cases {
		if _, err := fx.engine.CreateBooking(ctx, req); err == nil {
			t.Errorf("CreateBooking(%+v) should fail", req)
		}
	}
}
