package booking

import "time"

// Status identifies a booking's position in its lifecycle.
type Status string

const (
	// StatusPending marks a booking awaiting an approval decision.
	StatusPending Status = "PENDING"
	// StatusApproved marks a booking confirmed by an approver.
	StatusApproved Status = "APPROVED"
	// StatusRejected marks a booking declined by an approver or expired undecided.
	StatusRejected Status = "REJECTED"
	// StatusCancelled marks a booking withdrawn by its requester or an admin.
	StatusCancelled Status = "CANCELLED"
	// StatusCompleted marks an approved booking whose end time has passed.
	StatusCompleted Status = "COMPLETED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// NonTerminal reports whether the status counts for conflict detection.
func (s Status) NonTerminal() bool {
	return s == StatusPending || s == StatusApproved
}

// Valid reports whether the status is one of the five lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Interval is a half-open time range [Start, End). The end instant does not
// belong to the interval, so back-to-back bookings share an endpoint without
// overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval constructs an interval from its endpoints.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsZero reports whether both endpoints are unset.
func (i Interval) IsZero() bool {
	return i.Start.IsZero() && i.End.IsZero()
}

// Booking is the central reservation entity. Once approved its interval is
// immutable; changing the time requires cancel-and-recreate.
type Booking struct {
	ID                string
	RoomID            string
	RequesterID       string
	OrganizationID    string
	Purpose           string
	Interval          Interval
	Status            Status
	RecurrenceGroupID *string
	CreatedAt         time.Time
	DecidedAt         *time.Time
	DecidedBy         *string
}

// Role describes the authority an actor holds. Authorization is always an
// explicit capability check on the role and organization scope, never derived
// from token contents.
type Role string

const (
	// RoleMember can request bookings and cancel their own.
	RoleMember Role = "member"
	// RoleOrgAdmin can decide and cancel bookings on rooms owned by their organization.
	RoleOrgAdmin Role = "org_admin"
	// RoleSysAdmin can decide and cancel bookings on any room.
	RoleSysAdmin Role = "sys_admin"
)

// Actor is the identity a transition is evaluated against.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           Role
}

// CanDecide reports whether the actor may approve or reject bookings on rooms
// owned by the given organization.
func (a Actor) CanDecide(roomOrganizationID string) bool {
	switch a.Role {
	case RoleSysAdmin:
		return true
	case RoleOrgAdmin:
		return a.OrganizationID != "" && a.OrganizationID == roomOrganizationID
	}
	return false
}

// CanCancel reports whether the actor may cancel the booking. The original
// requester may always cancel; admins need authority over the room's
// organization.
func (a Actor) CanCancel(b Booking, roomOrganizationID string) bool {
	if a.UserID != "" && a.UserID == b.RequesterID {
		return true
	}
	return a.CanDecide(roomOrganizationID)
}
