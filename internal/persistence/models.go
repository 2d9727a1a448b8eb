package persistence

import "time"

// User represents an account stored in persistence.
type User struct {
	ID             string
	Email          string
	DisplayName    string
	OrganizationID string
	Role           string
	PasswordHash   string
	Disabled       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Room represents a bookable room catalog entry.
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

// Booking represents a booking request stored in persistence. Start and End
// form a half-open interval; End is exclusive.
type Booking struct {
	ID                string
	RoomID            string
	RequesterID       string
	OrganizationID    string
	Purpose           string
	Start             time.Time
	End               time.Time
	Status            string
	RecurrenceGroupID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DecidedAt         *time.Time
	DecidedBy         *string
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
