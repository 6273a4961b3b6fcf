package scheduleRepo

import (
	"context"
	"time"

	"servihub/models"
)

// ScheduleRepository persists recurring schedules and the schedule ->
// generated-bookings tag relation.
type ScheduleRepository interface {
	Insert(ctx context.Context, schedule *models.RecurringSchedule) error
	GetByID(ctx context.Context, id string) (*models.RecurringSchedule, error)
	// Deactivate stops future generation; bookings already generated from
	// the schedule are untouched.
	Deactivate(ctx context.Context, id string) error
	AppendGeneratedBookings(ctx context.Context, id string, bookingIDs []string, lastDate time.Time) error
	Active(ctx context.Context) ([]models.RecurringSchedule, error)
}
