package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and delivery. Wrap with fmt.Errorf("...: %w", err)
// and match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrHostIdentity is returned when the host tries to register as an attendee.
	ErrHostIdentity = errors.New("host identity cannot register")
	// ErrLuckyNumbersExhausted is returned when no unused lucky number could be found.
	ErrLuckyNumbersExhausted = errors.New("lucky numbers exhausted")
	// ErrLuckyNumberTaken is returned by the store when a lucky number is already held by another registrant.
	ErrLuckyNumberTaken = errors.New("lucky number already taken")
	// ErrConfirmationRequired is returned when a destructive host action was not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrDeletePartial means the archive row was written but the active row could not be removed.
	ErrDeletePartial = errors.New("registrant archived but not deleted")
	// ErrNotificationFailed is returned when bulk notification stopped before every message was sent.
	ErrNotificationFailed = errors.New("failed to send notifications")
)

// ValidationError carries field-level messages for a rejected registration form.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	msg := "validation failed"
	for i, m := range e.Messages {
		if i == 0 {
			msg += ": " + m
			continue
		}
		msg += "; " + m
	}
	return msg
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotificationError reports how far a bulk notification got before the relay failed.
type NotificationError struct {
	Sent  int
	Total int
	Err   error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%v (sent %d of %d): %v", ErrNotificationFailed, e.Sent, e.Total, e.Err)
}

// Unwrap matches both ErrNotificationFailed and the relay error.
func (e *NotificationError) Unwrap() []error { return []error{ErrNotificationFailed, e.Err} }
