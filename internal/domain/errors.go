package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeAlreadyPassed means the computed fire time is not in the
	// future; nothing is persisted when this is returned.
	ErrTimeAlreadyPassed = errors.New("reminder time already passed")

	// ErrReminderNotFound is returned when a job references a reminder
	// that no longer exists; such jobs fail without retry.
	ErrReminderNotFound = errors.New("reminder not found")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user already exists with this email")
)

// ValidationError reports missing or malformed request input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SchedulingError means the queue broker rejected the enqueue after the
// reminder row was already written; the row is marked FAILED and the
// error surfaces to the caller.
type SchedulingError struct {
	ReminderID string
	Err        error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to schedule reminder %s: %v", e.ReminderID, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }

// DeliveryError is a failed notification attempt, either a transport
// fault or a refusal reported by the mail provider.
type DeliveryError struct {
	Recipient string
	Message   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %s", e.Recipient, e.Message)
}
