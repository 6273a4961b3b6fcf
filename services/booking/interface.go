package booking

import (
	"context"

	"servihub/models"
)

// AssignmentResult is the typed outcome of an assignment attempt. An empty
// candidate pool is the ManualRequired branch, not an error.
type AssignmentResult struct {
	BookingID       string `json:"bookingId"`
	ProviderID      string `json:"providerId,omitempty"`
	Tier            int    `json:"tier"`
	AlreadyAssigned bool   `json:"alreadyAssigned"` // Idempotent repeat on an assigned booking.
	ManualRequired  bool   `json:"manualRequired"`  // No eligible provider; human dispatch needed.
}

// BookingResult is returned from booking creation.
type BookingResult struct {
	Booking     models.Booking     `json:"booking"`
	Quote       Quote              `json:"quote"`
	Entitlement *EntitlementResult `json:"entitlement,omitempty"`
	Assignment  *AssignmentResult  `json:"assignment,omitempty"`
}

// Engine is the booking assignment and entitlement engine exposed to the
// surrounding product.
type Engine interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*BookingResult, error)
	AttemptAssignment(ctx context.Context, bookingID string, exclude ...string) (*AssignmentResult, error)
	ConsumeEntitlement(ctx context.Context, clientID, serviceID string) (EntitlementResult, error)
	Transition(ctx context.Context, bookingID string, event Event) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason string) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)

	CreateSchedule(ctx context.Context, schedule *models.RecurringSchedule) error
	ExpandSchedule(ctx context.Context, scheduleID string) ([]string, error)
	DeactivateSchedule(ctx context.Context, scheduleID string) error

	// ReassignExpired releases an assignment whose acceptance deadline
	// passed and re-matches the booking excluding the unresponsive
	// provider. Invoked by the deadline sweep, never by the engine itself.
	ReassignExpired(ctx context.Context, bookingID string) (*AssignmentResult, error)
}
