package bookingRepo

import (
	"context"
	"time"

	"servihub/models"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	Insert(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// AssignProvider writes providerId with an optimistic precondition:
	// the update applies only while the booking has no provider. The
	// acceptance deadline is set alongside, so every assignee gets a full
	// response window. Returns false when the precondition failed (another
	// assignment won).
	AssignProvider(ctx context.Context, bookingID, providerID string, deadline time.Time) (bool, error)
	// ClearAssignment releases an unaccepted assignment so the booking can
	// be re-matched. The released provider joins failedProviderIds and is
	// excluded from every later match on this booking.
	ClearAssignment(ctx context.Context, bookingID, failedProviderID string) error
	UpdateStatus(ctx context.Context, bookingID string, status models.BookingStatus, reason string) error
	SetAssignmentStatus(ctx context.Context, bookingID string, status models.AssignmentStatus) error
	// ExpiredAssignments returns bookings still awaiting provider response
	// past their acceptance deadline.
	ExpiredAssignments(ctx context.Context, now time.Time) ([]models.Booking, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Booking, error)
}
