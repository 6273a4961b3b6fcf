package models

import "time"

// Recurrence frequencies.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiWeekly = "bi-weekly"
	FrequencyMonthly  = "monthly"
)

// RecurringSchedule is a template that expands into concrete bookings.
// Deactivating a schedule stops future generation but never touches bookings
// already generated from it; those are owned by the booking state machine.
type RecurringSchedule struct {
	ID                  string     `bson:"id" json:"id"`
	ClientID            string     `bson:"clientId" json:"clientId"`
	ServiceID           string     `bson:"serviceId" json:"serviceId"`
	Frequency           string     `bson:"frequency" json:"frequency"`
	DayOfWeek           int        `bson:"dayOfWeek" json:"dayOfWeek"` // 0 = Sunday .. 6 = Saturday
	BookingTime         string     `bson:"bookingTime" json:"bookingTime"`
	StartDate           time.Time  `bson:"startDate" json:"startDate"`
	EndDate             *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	SpecialInstructions string     `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
	IsActive            bool       `bson:"isActive" json:"isActive"`
	// GeneratedBookingIDs tags bookings created from this schedule. The
	// relation points schedule -> booking only, so cancelling the schedule
	// cannot cascade into booking lifecycles.
	GeneratedBookingIDs []string `bson:"generatedBookingIds,omitempty" json:"generatedBookingIds,omitempty"`
	// LastGeneratedDate marks how far expansion has progressed, so repeated
	// expansion runs never duplicate occurrences.
	LastGeneratedDate *time.Time `bson:"lastGeneratedDate,omitempty" json:"lastGeneratedDate,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}
