package application

import (
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/recurrence"
)

// Role identifies the authority level of an account.
type Role string

const (
	// RoleMember can request bookings and cancel their own.
	RoleMember Role = "member"
	// RoleOrgAdmin can decide bookings for rooms in their organization.
	RoleOrgAdmin Role = "org_admin"
	// RoleSysAdmin can decide bookings for any room and manage accounts.
	RoleSysAdmin Role = "sys_admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleOrgAdmin, RoleSysAdmin:
		return true
	}
	return false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID         string
	OrganizationID string
	Role           Role
}

// actor converts the principal into the domain capability type.
func (p Principal) actor() booking.Actor {
	role := booking.RoleMember
	switch p.Role {
	case RoleOrgAdmin:
		role = booking.RoleOrgAdmin
	case RoleSysAdmin:
		role = booking.RoleSysAdmin
	}
	return booking.Actor{UserID: p.UserID, OrganizationID: p.OrganizationID, Role: role}
}

// Booking is a booking request as exposed by the application services.
type Booking struct {
	ID                string
	RoomID            string
	RequesterID       string
	OrganizationID    string
	Purpose           string
	Start             time.Time
	End               time.Time
	Status            booking.Status
	RecurrenceGroupID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DecidedAt         *time.Time
	DecidedBy         *string
}

// Interval returns the booking's half-open interval.
func (b Booking) Interval() booking.Interval {
	return booking.Interval{Start: b.Start, End: b.End}
}

func (b Booking) domain() booking.Booking {
	return booking.Booking{
		ID:                b.ID,
		RoomID:            b.RoomID,
		RequesterID:       b.RequesterID,
		OrganizationID:    b.OrganizationID,
		Purpose:           b.Purpose,
		Interval:          b.Interval(),
		Status:            b.Status,
		RecurrenceGroupID: b.RecurrenceGroupID,
		CreatedAt:         b.CreatedAt,
		DecidedAt:         b.DecidedAt,
		DecidedBy:         b.DecidedBy,
	}
}

func domainBookings(bookings []Booking) []booking.Booking {
	out := make([]booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.domain())
	}
	return out
}

// RecurrenceInput captures caller provided recurrence fields. Frequency is
// one of weekly, daily, custom.
type RecurrenceInput struct {
	Frequency string
	Weekdays  []time.Weekday
	Until     time.Time
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	RoomID     string
	Purpose    string
	Start      time.Time
	End        time.Time
	Recurrence *RecurrenceInput
}

// SubmitBookingParams wraps the data required to submit a booking request.
type SubmitBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// SubmitBookingResult carries the created booking or series. For recurring
// requests all occurrences share RecurrenceGroupID.
type SubmitBookingResult struct {
	Bookings          []Booking
	RecurrenceGroupID *string
}

// Decision identifies the outcome an approver selects for a pending booking.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecideBookingParams wraps the data required to decide a pending booking.
type DecideBookingParams struct {
	Principal Principal
	BookingID string
	Decision  Decision
}

// CancelBookingParams wraps the data required to cancel a booking.
type CancelBookingParams struct {
	Principal Principal
	BookingID string
}

// ListBookingsParams wraps the data required to list bookings.
type ListBookingsParams struct {
	Principal   Principal
	RoomID      string
	RequesterID string
	Statuses    []booking.Status
	From        *time.Time
	To          *time.Time
}

// AvailabilityParams identifies the room and window for a busy/free query.
type AvailabilityParams struct {
	Principal Principal
	RoomID    string
	From      time.Time
	To        time.Time
}

// RoomAvailability is the busy/free projection for one room over a window.
type RoomAvailability struct {
	RoomID string
	Window booking.Interval
	Busy   []booking.Interval
	Free   []booking.Interval
}

// FreeRoomsParams identifies the window for a rooms-free query.
type FreeRoomsParams struct {
	Principal Principal
	From      time.Time
	To        time.Time
}

// OccupancyParams identifies the room and grid for an occupancy projection.
type OccupancyParams struct {
	Principal Principal
	RoomID    string
	From      time.Time
	To        time.Time
	Slot      time.Duration
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name           string
	Location       string
	Capacity       int
	OrganizationID string
	Facilities     *string
}

// Room represents a catalog entry for a bookable room.
type Room struct {
	ID             string
	Name           string
	Location       string
	Capacity       int
	OrganizationID string
	Facilities     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email          string
	DisplayName    string
	OrganizationID string
	Role           Role
	Password       string
}

// User represents an account exposed by the application services.
type User struct {
	ID             string
	Email          string
	DisplayName    string
	OrganizationID string
	Role           Role
	Disabled       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	User    User
	Session Session
}

// parseRecurrence converts caller recurrence input into a domain pattern.
func parseRecurrence(input RecurrenceInput) (recurrence.Pattern, bool) {
	pattern := recurrence.Pattern{
		Weekdays: input.Weekdays,
		Until:    input.Until,
	}
	switch input.Frequency {
	case "weekly":
		pattern.Frequency = recurrence.FrequencyWeekly
	case "daily":
		pattern.Frequency = recurrence.FrequencyDaily
	case "custom":
		pattern.Frequency = recurrence.FrequencyCustom
	default:
		return recurrence.Pattern{}, false
	}
	return pattern, true
}
