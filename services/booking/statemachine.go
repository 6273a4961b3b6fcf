package booking

import "servihub/models"

// Event is a booking lifecycle event.
type Event string

const (
	EventAssign   Event = "assign"
	EventAccept   Event = "accept"
	EventDecline  Event = "decline"
	EventStart    Event = "start"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// transitions is the full lifecycle table. Anything absent is illegal.
// Once work starts the only forward move is completion; cancel and decline
// are reachable from pending, assigned and accepted only.
var transitions = map[models.BookingStatus]map[Event]models.BookingStatus{
	models.StatusPending: {
		EventAssign:  models.StatusAssigned,
		EventCancel:  models.StatusCancelled,
		EventDecline: models.StatusDeclined,
	},
	models.StatusAssigned: {
		EventAccept:  models.StatusAccepted,
		EventDecline: models.StatusDeclined,
		EventCancel:  models.StatusCancelled,
	},
	models.StatusAccepted: {
		EventStart:   models.StatusInProgress,
		EventDecline: models.StatusDeclined,
		EventCancel:  models.StatusCancelled,
	},
	models.StatusInProgress: {
		EventComplete: models.StatusCompleted,
	},
}

// NextStatus resolves an event against the current status. The returned
// error is always an *InvalidTransitionError.
func NextStatus(bookingID string, current models.BookingStatus, event Event) (models.BookingStatus, error) {
	if allowed, ok := transitions[current]; ok {
		if next, ok := allowed[event]; ok {
			return next, nil
		}
	}
	return "", &InvalidTransitionError{
		BookingID: bookingID,
		From:      string(current),
		Event:     string(event),
	}
}
