package booking

import (
	"context"
	"fmt"
	"time"

	"servihub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSchedule validates and persists a recurring schedule.
func (e *DefaultEngine) CreateSchedule(ctx context.Context, schedule *models.RecurringSchedule) error {
	switch schedule.Frequency {
	case models.FrequencyWeekly, models.FrequencyBiWeekly, models.FrequencyMonthly:
	default:
		return fmt.Errorf("unknown frequency %q", schedule.Frequency)
	}
	if schedule.DayOfWeek < 0 || schedule.DayOfWeek > 6 {
		return fmt.Errorf("day of week %d out of range", schedule.DayOfWeek)
	}
	if _, err := e.Catalog.GetClient(ctx, schedule.ClientID); err != nil {
		return fmt.Errorf("unknown client %s: %w", schedule.ClientID, err)
	}
	if _, err := e.Catalog.GetService(ctx, schedule.ServiceID); err != nil {
		return fmt.Errorf("unknown service %s: %w", schedule.ServiceID, err)
	}

	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	schedule.IsActive = true
	schedule.CreatedAt = e.Now()
	schedule.UpdatedAt = schedule.CreatedAt
	return e.Schedules.Insert(ctx, schedule)
}

// ExpandSchedule turns a schedule into concrete bookings up to the earlier of
// the schedule's end date and the rolling horizon. Every occurrence goes
// through CreateBooking, so each booking is priced, matched and owned by the
// state machine independently of the schedule that produced it.
func (e *DefaultEngine) ExpandSchedule(ctx context.Context, scheduleID string) ([]string, error) {
	schedule, err := e.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.IsActive {
		return nil, nil
	}

	horizon := e.Now().AddDate(0, e.HorizonMonths, 0)
	end := horizon
	if schedule.EndDate != nil && schedule.EndDate.Before(horizon) {
		end = *schedule.EndDate
	}

	generatedDates := e.occurrenceDates(schedule, end)

	var bookingIDs []string
	var lastDate time.Time
	for _, date := range generatedDates {
		result, err := e.CreateBooking(ctx, models.BookingRequest{
			ClientID:            schedule.ClientID,
			ServiceID:           schedule.ServiceID,
			BookingDate:         date.Format(dateLayout),
			BookingTime:         schedule.BookingTime,
			SpecialInstructions: schedule.SpecialInstructions,
		})
		if err != nil {
			// One failed occurrence must not sink the rest of the series.
			e.Logger.Error("failed to generate recurring booking",
				zap.String("scheduleId", schedule.ID),
				zap.String("date", date.Format(dateLayout)),
				zap.Error(err))
			continue
		}
		bookingIDs = append(bookingIDs, result.Booking.ID)
		lastDate = date
	}

	if len(bookingIDs) > 0 {
		if err := e.Schedules.AppendGeneratedBookings(ctx, schedule.ID, bookingIDs, lastDate); err != nil {
			return bookingIDs, err
		}
	}
	return bookingIDs, nil
}

// DeactivateSchedule stops future generation. Bookings already generated are
// untouched; each is cancellable on its own through the state machine.
func (e *DefaultEngine) DeactivateSchedule(ctx context.Context, scheduleID string) error {
	return e.Schedules.Deactivate(ctx, scheduleID)
}

// occurrenceDates applies the frequency step from the first aligned
// occurrence until the bound (inclusive). Weekly and bi-weekly schedules
// align to the schedule's day of week; monthly schedules keep the start
// date's day of month.
func (e *DefaultEngine) occurrenceDates(schedule *models.RecurringSchedule, until time.Time) []time.Time {
	start := schedule.StartDate.In(e.TZ)
	// Midnight in the booking calendar's zone; truncating the instant would
	// give UTC midnight and shift the past/future boundary by the offset.
	now := e.Now().In(e.TZ)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.TZ)

	current := start
	if schedule.Frequency != models.FrequencyMonthly {
		for int(current.Weekday()) != schedule.DayOfWeek {
			current = current.AddDate(0, 0, 1)
		}
	}

	var dates []time.Time
	for !current.After(until) {
		// Skip past dates and anything an earlier expansion already covered.
		if !current.Before(today) &&
			(schedule.LastGeneratedDate == nil || current.After(*schedule.LastGeneratedDate)) {
			dates = append(dates, current)
		}
		switch schedule.Frequency {
		case models.FrequencyWeekly:
			current = current.AddDate(0, 0, 7)
		case models.FrequencyBiWeekly:
			current = current.AddDate(0, 0, 14)
		case models.FrequencyMonthly:
			current = current.AddDate(0, 1, 0)
		default:
			return dates
		}
	}
	return dates
}
