package models

import "time"

// Notification event types emitted by the booking engine. Delivery transport
// (push/email/SMS) belongs to the surrounding product; the engine only emits
// these as data.
const (
	EventBookingCreated   = "booking_created"
	EventProviderAssigned = "provider_assigned"
	EventAssignmentFailed = "assignment_failed" // needs manual review
	EventBookingCancelled = "booking_cancelled"
)

// NotificationEvent is a fire-and-forget event payload.
type NotificationEvent struct {
	Type       string            `json:"type"`
	BookingID  string            `json:"bookingId,omitempty"`
	ClientID   string            `json:"clientId,omitempty"`
	ProviderID string            `json:"providerId,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Data       map[string]string `json:"data,omitempty"`
}
