package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with an existing record.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when authentication inputs do not match an account.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when the account exists but is disabled.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when the session's validity window has passed.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when the session was explicitly revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// OccurrenceViolation pins a policy violation to the occurrence that
// triggered it, so a rejected series reports exactly which dates failed.
type OccurrenceViolation struct {
	Start     time.Time
	End       time.Time
	Violation booking.PolicyViolation
}

// PolicyError aggregates the policy violations found for one or more
// requested occurrences. Violations keep the evaluation order of the rules.
type PolicyError struct {
	Violations []OccurrenceViolation
}

// Error implements the error interface.
func (p *PolicyError) Error() string {
	if p == nil || len(p.Violations) == 0 {
		return "policy validation failed"
	}
	return fmt.Sprintf("policy validation failed: %s", p.Violations[0].Violation.Reason)
}

// RoomConflictError reports that the requested interval overlaps existing
// bookings for the room.
type RoomConflictError struct {
	RoomID    string
	Conflicts []Booking
}

// Error implements the error interface.
func (e *RoomConflictError) Error() string {
	return fmt.Sprintf("room %s already booked for the requested time", e.RoomID)
}

// RequesterConflictError reports that the requester already holds an active
// booking overlapping the requested interval, possibly in another room.
type RequesterConflictError struct {
	RequesterID string
	Conflicts   []Booking
}

// Error implements the error interface.
func (e *RequesterConflictError) Error() string {
	return fmt.Sprintf("requester %s already has a booking for the requested time", e.RequesterID)
}

// OccurrenceConflict identifies one occurrence of a recurring series that
// could not be placed.
type OccurrenceConflict struct {
	Start     time.Time
	End       time.Time
	Conflicts []Booking
}

// RecurrenceConflictError rejects an entire recurring series because at
// least one occurrence conflicts. No occurrence is created.
type RecurrenceConflictError struct {
	RoomID   string
	Failures []OccurrenceConflict
}

// Error implements the error interface.
func (e *RecurrenceConflictError) Error() string {
	return fmt.Sprintf("recurring series conflicts on %d occurrence(s)", len(e.Failures))
}

// IllegalTransitionError reports a state machine violation, carrying the
// booking's current status so callers can render the actual state.
type IllegalTransitionError struct {
	BookingID string
	Status    booking.Status
	Event     booking.Event
}

// Error implements the error interface.
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("booking %s in status %s does not permit %s", e.BookingID, e.Status, e.Event)
}
