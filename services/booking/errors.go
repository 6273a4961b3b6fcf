package booking

import (
	"errors"
	"fmt"
)

// ErrConcurrentModification is returned when an optimistic precondition on
// assignment fails and a re-read cannot resolve the race. Callers should
// retry the whole operation once, then surface it.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// InvalidTransitionError reports an illegal state machine move. It is a
// programming or race error and is never silently swallowed.
type InvalidTransitionError struct {
	BookingID string
	From      string
	Event     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: booking %s cannot %q from status %q", e.BookingID, e.Event, e.From)
}

// MatchError wraps provider matching failures that are real errors (store
// failures, bad input). An empty candidate set is not a MatchError; it is the
// ManualRequired branch of AssignmentResult.
type MatchError struct {
	Code    string
	Message string
	Err     error
}

func (e *MatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

func NewMatchError(msg string, err error) error {
	return &MatchError{
		Code:    "matchError",
		Message: msg,
		Err:     err,
	}
}
