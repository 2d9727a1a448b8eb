package persistence

import "context"
import "time"

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Zero-valued fields are ignored.
// StartsBefore and EndsAfter together select bookings whose half-open
// interval intersects a window.
type BookingFilter struct {
	RoomID       string
	RequesterID  string
	Statuses     []string
	StartsBefore *time.Time
	EndsAfter    *time.Time
}

// BookingRepository stores booking requests.
//
// CreateBookings inserts the given bookings atomically: the implementation
// re-checks room overlaps against PENDING and APPROVED rows inside the same
// transaction and returns ErrOverlap without inserting anything if any
// booking would double book its room. UpdateBookingStatus is a
// compare-and-set; it applies the update only while the booking still holds
// expectedStatus and returns ErrStaleStatus otherwise.
type BookingRepository interface {
	CreateBookings(ctx context.Context, bookings []Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id, expectedStatus, newStatus string, decidedAt time.Time, decidedBy string) (Booking, error)
	ListElapsedPending(ctx context.Context, reference time.Time) ([]Booking, error)
	ListElapsedApproved(ctx context.Context, reference time.Time) ([]Booking, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
