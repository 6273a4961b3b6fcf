package models

import "time"

// Booking lifecycle statuses.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAssigned   BookingStatus = "assigned"
	StatusAccepted   BookingStatus = "accepted"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusDeclined   BookingStatus = "declined"
)

// Assignment bookkeeping statuses.
type AssignmentStatus string

const (
	AssignmentPending        AssignmentStatus = "pending_assignment"
	AssignmentAuto           AssignmentStatus = "auto_assigned"
	AssignmentManualRequired AssignmentStatus = "manual_assignment_required"
	AssignmentAssigned       AssignmentStatus = "assigned"
)

// Booking is a confirmed service request. Bookings are never hard-deleted;
// cancellation is a terminal status, not removal.
type Booking struct {
	ID                  string           `bson:"id" json:"id"`
	ClientID            string           `bson:"clientId" json:"clientId"`
	ServiceID           string           `bson:"serviceId" json:"serviceId"`
	ProviderID          string           `bson:"providerId,omitempty" json:"providerId,omitempty"` // Empty until assigned.
	Town                string           `bson:"town" json:"town"`
	Suburb              string           `bson:"suburb" json:"suburb"`
	BookingDate         string           `bson:"bookingDate" json:"bookingDate"` // "2006-01-02"
	BookingTime         string           `bson:"bookingTime" json:"bookingTime"` // "15:04"
	DurationMinutes     int              `bson:"durationMinutes" json:"durationMinutes"`
	TotalAmount         float64          `bson:"totalAmount" json:"totalAmount"` // 0 when covered by an entitlement.
	Status              BookingStatus    `bson:"status" json:"status"`
	AssignmentStatus    AssignmentStatus `bson:"assignmentStatus" json:"assignmentStatus"`
	AcceptanceDeadline  time.Time        `bson:"acceptanceDeadline" json:"acceptanceDeadline"` // Advanced on each assignment; each provider gets a full window.
	FailedProviderIDs   []string         `bson:"failedProviderIds,omitempty" json:"failedProviderIds,omitempty"`
	IsWeekend           bool             `bson:"isWeekend" json:"isWeekend"`                   // Frozen at creation.
	EmergencyBooking    bool             `bson:"emergencyBooking" json:"emergencyBooking"`
	CoveredByPackage    bool             `bson:"coveredByPackage" json:"coveredByPackage"`
	SpecialInstructions string           `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
	CancelReason        string           `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt           time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// BookingRequest is the input for creating a booking, either from a client
// action or from the recurring schedule expander.
type BookingRequest struct {
	ClientID            string `json:"clientId" binding:"required"`
	ServiceID           string `json:"serviceId" binding:"required"`
	BookingDate         string `json:"bookingDate" binding:"required"` // "2006-01-02"
	BookingTime         string `json:"bookingTime"`
	EmergencyBooking    bool   `json:"emergencyBooking"`
	SpecialInstructions string `json:"specialInstructions"`
}
