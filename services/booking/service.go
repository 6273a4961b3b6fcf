package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "servihub/database/repository/booking"
	catalogRepo "servihub/database/repository/catalog"
	providerRepo "servihub/database/repository/provider"
	scheduleRepo "servihub/database/repository/schedule"
	"servihub/models"
	"servihub/services/notification"
	"servihub/services/settings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// DefaultEngine implements Engine.
type DefaultEngine struct {
	Bookings  bookingRepo.BookingRepository
	Providers providerRepo.ProviderRepository
	Catalog   catalogRepo.CatalogRepository
	Schedules scheduleRepo.ScheduleRepository
	Matcher   MatchingService
	Ledger    *EntitlementLedger
	Settings  settings.Source
	Notifier  notification.Dispatcher
	Logger    *zap.Logger

	// TZ fixes the calendar used for weekend detection; deadlines and the
	// recurrence horizon derive from Now so tests can pin the clock.
	TZ               *time.Location
	Now              func() time.Time
	AcceptanceWindow time.Duration
	HorizonMonths    int
}

// CreateBooking prices and persists a new booking, then attempts automatic
// assignment. The booking always lands in a valid persisted state: assigned,
// or pending with manual assignment flagged.
func (e *DefaultEngine) CreateBooking(ctx context.Context, req models.BookingRequest) (*BookingResult, error) {
	client, err := e.Catalog.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("unknown client %s: %w", req.ClientID, err)
	}
	service, err := e.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("unknown service %s: %w", req.ServiceID, err)
	}

	bookingDate, err := time.ParseInLocation(dateLayout, req.BookingDate, e.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid booking date %q: %w", req.BookingDate, err)
	}
	isWeekend := bookingDate.Weekday() == time.Saturday || bookingDate.Weekday() == time.Sunday

	now := e.Now()
	bookingID := uuid.New().String()

	// Entitlement first: a covered booking is priced at zero.
	var entitlement *EntitlementResult
	covered := false
	if service.ServiceType == models.ServiceTypeSubscription {
		result, err := e.Ledger.TryConsume(ctx, client.ID, service.ID, bookingID)
		if err != nil {
			return nil, err
		}
		entitlement = &result
		covered = result.Outcome == EntitlementConsumed
	}

	snapshot, err := e.Settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	quote := ComputeQuote(service.PriceOneOff, covered, req.EmergencyBooking, isWeekend, snapshot)

	booking := models.Booking{
		ID:                  bookingID,
		ClientID:            client.ID,
		ServiceID:           service.ID,
		Town:                client.Town,
		Suburb:              client.Suburb,
		BookingDate:         req.BookingDate,
		BookingTime:         req.BookingTime,
		DurationMinutes:     service.DurationMinutes,
		TotalAmount:         quote.ClientTotal,
		Status:              models.StatusPending,
		AssignmentStatus:    models.AssignmentPending,
		AcceptanceDeadline:  now.Add(e.AcceptanceWindow),
		IsWeekend:           isWeekend,
		EmergencyBooking:    req.EmergencyBooking,
		CoveredByPackage:    covered,
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := e.Bookings.Insert(ctx, &booking); err != nil {
		// Give back the consumed entitlement: an orphaned usage record
		// would burn quota with no booking behind it.
		if covered {
			if rerr := e.Ledger.Release(ctx, entitlement.UsageRecordID); rerr != nil {
				e.Logger.Error("failed to release usage record after insert failure",
					zap.String("usageRecordId", entitlement.UsageRecordID),
					zap.Error(rerr))
			}
		}
		return nil, err
	}

	e.emit(ctx, models.NotificationEvent{
		Type:      models.EventBookingCreated,
		BookingID: booking.ID,
		ClientID:  booking.ClientID,
	})

	assignment, err := e.assign(ctx, &booking, nil)
	if err != nil {
		return nil, err
	}

	return &BookingResult{
		Booking:     booking,
		Quote:       quote,
		Entitlement: entitlement,
		Assignment:  assignment,
	}, nil
}

// AttemptAssignment matches a booking to a provider. Re-invoking it on an
// already-assigned booking is a no-op returning the existing assignment.
func (e *DefaultEngine) AttemptAssignment(ctx context.Context, bookingID string, exclude ...string) (*AssignmentResult, error) {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return e.assign(ctx, booking, exclude)
}

// assign runs filter + selection and applies the optimistic provider write.
// The booking pointer is updated in place on success.
func (e *DefaultEngine) assign(ctx context.Context, booking *models.Booking, exclude []string) (*AssignmentResult, error) {
	if booking.ProviderID != "" {
		return &AssignmentResult{
			BookingID:       booking.ID,
			ProviderID:      booking.ProviderID,
			AlreadyAssigned: true,
		}, nil
	}

	// Providers that already let an assignment on this booking expire stay
	// excluded, on top of whatever the caller excludes.
	exclude = append(append([]string{}, exclude...), booking.FailedProviderIDs...)

	candidates, err := e.Matcher.EligibleCandidates(ctx, booking.Town, booking.Suburb, booking.ServiceID, exclude)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		if err := e.Bookings.SetAssignmentStatus(ctx, booking.ID, models.AssignmentManualRequired); err != nil {
			return nil, err
		}
		booking.AssignmentStatus = models.AssignmentManualRequired
		e.Logger.Info("no eligible provider, flagged for manual assignment",
			zap.String("bookingId", booking.ID),
			zap.String("town", booking.Town),
			zap.String("suburb", booking.Suburb))
		e.emit(ctx, models.NotificationEvent{
			Type:      models.EventAssignmentFailed,
			BookingID: booking.ID,
			ClientID:  booking.ClientID,
		})
		return &AssignmentResult{BookingID: booking.ID, ManualRequired: true}, nil
	}

	best := candidates[0]
	deadline := e.Now().Add(e.AcceptanceWindow)
	ok, err := e.Bookings.AssignProvider(ctx, booking.ID, best.Provider.ID, deadline)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Precondition failed: someone else assigned concurrently. A
		// re-read either yields that assignment (idempotent success)
		// or a genuine lost update.
		current, err := e.Bookings.GetByID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if current.ProviderID != "" {
			*booking = *current
			return &AssignmentResult{
				BookingID:       booking.ID,
				ProviderID:      current.ProviderID,
				AlreadyAssigned: true,
			}, nil
		}
		return nil, ErrConcurrentModification
	}

	booking.ProviderID = best.Provider.ID
	booking.Status = models.StatusAssigned
	booking.AssignmentStatus = models.AssignmentAuto
	booking.AcceptanceDeadline = deadline

	e.Logger.Info("booking auto-assigned",
		zap.String("bookingId", booking.ID),
		zap.String("providerId", best.Provider.ID),
		zap.Int("tier", best.Tier))
	e.emit(ctx, models.NotificationEvent{
		Type:       models.EventProviderAssigned,
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		ProviderID: best.Provider.ID,
	})

	return &AssignmentResult{
		BookingID:  booking.ID,
		ProviderID: best.Provider.ID,
		Tier:       best.Tier,
	}, nil
}

// ConsumeEntitlement exposes the ledger to the surrounding product.
func (e *DefaultEngine) ConsumeEntitlement(ctx context.Context, clientID, serviceID string) (EntitlementResult, error) {
	return e.Ledger.TryConsume(ctx, clientID, serviceID, "")
}

// Transition applies a lifecycle event to a booking.
func (e *DefaultEngine) Transition(ctx context.Context, bookingID string, event Event) (*models.Booking, error) {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Assignment only ever flows through the optimistic matching path;
	// raising the event directly would set assigned with no provider.
	if event == EventAssign {
		return nil, &InvalidTransitionError{BookingID: booking.ID, From: string(booking.Status), Event: string(event)}
	}

	next, err := NextStatus(booking.ID, booking.Status, event)
	if err != nil {
		return nil, err
	}
	// A booking can only be accepted by the provider it was assigned to.
	if event == EventAccept && booking.ProviderID == "" {
		return nil, &InvalidTransitionError{BookingID: booking.ID, From: string(booking.Status), Event: string(event)}
	}

	if err := e.Bookings.UpdateStatus(ctx, booking.ID, next, ""); err != nil {
		return nil, err
	}
	booking.Status = next

	if next == models.StatusCompleted && booking.ProviderID != "" {
		if err := e.Providers.IncrementJobsCompleted(ctx, booking.ProviderID); err != nil {
			e.Logger.Warn("failed to increment provider job count",
				zap.String("providerId", booking.ProviderID), zap.Error(err))
		}
	}
	if next == models.StatusCancelled {
		e.emit(ctx, models.NotificationEvent{
			Type:       models.EventBookingCancelled,
			BookingID:  booking.ID,
			ClientID:   booking.ClientID,
			ProviderID: booking.ProviderID,
		})
	}

	return booking, nil
}

// CancelBooking cancels a booking with a reason. Illegal from in_progress or
// completed, like any other cancel.
func (e *DefaultEngine) CancelBooking(ctx context.Context, bookingID, reason string) error {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	next, err := NextStatus(booking.ID, booking.Status, EventCancel)
	if err != nil {
		return err
	}
	if err := e.Bookings.UpdateStatus(ctx, booking.ID, next, reason); err != nil {
		return err
	}
	e.emit(ctx, models.NotificationEvent{
		Type:       models.EventBookingCancelled,
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		ProviderID: booking.ProviderID,
		Data:       map[string]string{"reason": reason},
	})
	return nil
}

func (e *DefaultEngine) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return e.Bookings.GetByID(ctx, bookingID)
}

// ReassignExpired handles a provider that never responded: the stale
// assignment is released and matching re-runs without that provider.
func (e *DefaultEngine) ReassignExpired(ctx context.Context, bookingID string) (*AssignmentResult, error) {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusAssigned {
		return nil, fmt.Errorf("booking %s is not awaiting provider response", bookingID)
	}
	if e.Now().Before(booking.AcceptanceDeadline) {
		return nil, fmt.Errorf("booking %s has not passed its acceptance deadline", bookingID)
	}

	failed := booking.ProviderID
	if err := e.Bookings.ClearAssignment(ctx, booking.ID, failed); err != nil {
		return nil, err
	}
	booking.ProviderID = ""
	booking.Status = models.StatusPending
	booking.AssignmentStatus = models.AssignmentPending
	booking.FailedProviderIDs = append(booking.FailedProviderIDs, failed)

	e.Logger.Info("assignment expired, re-matching",
		zap.String("bookingId", booking.ID),
		zap.String("failedProviderId", failed),
		zap.Int("failedSoFar", len(booking.FailedProviderIDs)))

	return e.assign(ctx, booking, nil)
}

// emit forwards an event to the dispatcher; delivery failures are logged and
// never fail the booking operation.
func (e *DefaultEngine) emit(ctx context.Context, event models.NotificationEvent) {
	event.OccurredAt = e.Now()
	if err := e.Notifier.Emit(ctx, event); err != nil {
		e.Logger.Warn("failed to emit notification event",
			zap.String("type", event.Type), zap.Error(err))
	}
}
