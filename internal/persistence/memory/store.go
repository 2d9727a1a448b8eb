// Package memory provides an in-memory implementation of the persistence
// repositories. It backs tests and local runs where no database is
// configured, and honours the same contracts as the SQLite implementation:
// atomic batch inserts with overlap re-checks and compare-and-set status
// updates.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

const (
	statusPending  = "PENDING"
	statusApproved = "APPROVED"
)

// Store holds all records behind a single mutex. Values are copied on the
// way in and out so callers cannot mutate shared state.
type Store struct {
	mu       sync.RWMutex
	users    map[string]persistence.User
	rooms    map[string]persistence.Room
	bookings map[string]persistence.Booking
	sessions map[string]persistence.Session
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]persistence.User),
		rooms:    make(map[string]persistence.Room),
		bookings: make(map[string]persistence.Booking),
		sessions: make(map[string]persistence.Session),
	}
}

var (
	_ persistence.UserRepository    = (*Store)(nil)
	_ persistence.RoomRepository    = (*Store)(nil)
	_ persistence.BookingRepository = (*Store)(nil)
	_ persistence.SessionRepository = (*Store)(nil)
)

// CreateUser stores a new user, enforcing unique IDs and case-insensitive
// unique emails.
func (s *Store) CreateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// CreateRoom stores a new room catalog entry.
func (s *Store) CreateRoom(_ context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (s *Store) UpdateRoom(_ context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (s *Store) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return copyRoom(room), nil
}

func (s *Store) ListRooms(_ context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, copyRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (s *Store) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

// CreateBookings inserts all bookings or none. Each booking is checked for
// room and requester overlap against stored PENDING and APPROVED bookings
// and against the earlier members of the same batch, matching the SQLite
// repository's in-transaction re-check.
func (s *Store) CreateBookings(_ context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range bookings {
		if _, ok := s.bookings[b.ID]; ok {
			return persistence.ErrDuplicate
		}
		if _, ok := s.rooms[b.RoomID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
		if _, ok := s.users[b.RequesterID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
		for _, existing := range s.bookings {
			if overlapsActive(existing, b) {
				return persistence.ErrOverlap
			}
		}
		for _, sibling := range bookings[:i] {
			if overlapsActive(sibling, b) {
				return persistence.ErrOverlap
			}
		}
	}

	for _, b := range bookings {
		s.bookings[b.ID] = copyBooking(b)
	}
	return nil
}

func (s *Store) GetBooking(_ context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *Store) ListBookings(_ context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if !matchesFilter(b, filter) {
			continue
		}
		matched = append(matched, copyBooking(b))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Start.Equal(matched[j].Start) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Start.Before(matched[j].Start)
	})
	if len(matched) == 0 {
		return nil, nil
	}
	return matched, nil
}

// UpdateBookingStatus applies the status change only while the booking still
// holds expectedStatus.
func (s *Store) UpdateBookingStatus(_ context.Context, id, expectedStatus, newStatus string, decidedAt time.Time, decidedBy string) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	if b.Status != expectedStatus {
		return persistence.Booking{}, persistence.ErrStaleStatus
	}

	b.Status = newStatus
	b.UpdatedAt = decidedAt
	b.DecidedAt = &decidedAt
	b.DecidedBy = &decidedBy
	s.bookings[id] = b
	return copyBooking(b), nil
}

// ListElapsedPending returns PENDING bookings whose start has passed.
func (s *Store) ListElapsedPending(_ context.Context, reference time.Time) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if b.Status != statusPending {
			continue
		}
		if !b.Start.Before(reference) {
			continue
		}
		elapsed = append(elapsed, copyBooking(b))
	}
	sort.Slice(elapsed, func(i, j int) bool {
		if elapsed[i].Start.Equal(elapsed[j].Start) {
			return elapsed[i].ID < elapsed[j].ID
		}
		return elapsed[i].Start.Before(elapsed[j].Start)
	})
	if len(elapsed) == 0 {
		return nil, nil
	}
	return elapsed, nil
}

// ListElapsedApproved returns APPROVED bookings whose end has passed.
func (s *Store) ListElapsedApproved(_ context.Context, reference time.Time) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if b.Status != statusApproved {
			continue
		}
		if b.End.After(reference) {
			continue
		}
		elapsed = append(elapsed, copyBooking(b))
	}
	sort.Slice(elapsed, func(i, j int) bool {
		if elapsed[i].End.Equal(elapsed[j].End) {
			return elapsed[i].ID < elapsed[j].ID
		}
		return elapsed[i].End.Before(elapsed[j].End)
	})
	if len(elapsed) == 0 {
		return nil, nil
	}
	return elapsed, nil
}

func (s *Store) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	if _, ok := s.users[session.UserID]; !ok {
		return persistence.Session{}, persistence.ErrForeignKeyViolation
	}
	s.sessions[session.Token] = copySession(session)
	return copySession(session), nil
}

func (s *Store) GetSession(_ context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return copySession(session), nil
}

func (s *Store) RevokeSession(_ context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return copySession(session), nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// overlapsActive reports whether existing blocks candidate: same room or
// same requester, an active status, and intersecting half-open intervals.
func overlapsActive(existing, candidate persistence.Booking) bool {
	if existing.RoomID != candidate.RoomID && existing.RequesterID != candidate.RequesterID {
		return false
	}
	if existing.Status != statusPending && existing.Status != statusApproved {
		return false
	}
	return existing.Start.Before(candidate.End) && candidate.Start.Before(existing.End)
}

func matchesFilter(b persistence.Booking, filter persistence.BookingFilter) bool {
	if filter.RoomID != "" && b.RoomID != filter.RoomID {
		return false
	}
	if filter.RequesterID != "" && b.RequesterID != filter.RequesterID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if b.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.StartsBefore != nil && !b.Start.Before(*filter.StartsBefore) {
		return false
	}
	if filter.EndsAfter != nil && !b.End.After(*filter.EndsAfter) {
		return false
	}
	return true
}

func copyRoom(room persistence.Room) persistence.Room {
	if room.Facilities != nil {
		facilities := *room.Facilities
		room.Facilities = &facilities
	}
	return room
}

func copyBooking(b persistence.Booking) persistence.Booking {
	if b.RecurrenceGroupID != nil {
		group := *b.RecurrenceGroupID
		b.RecurrenceGroupID = &group
	}
	if b.DecidedAt != nil {
		decidedAt := *b.DecidedAt
		b.DecidedAt = &decidedAt
	}
	if b.DecidedBy != nil {
		decidedBy := *b.DecidedBy
		b.DecidedBy = &decidedBy
	}
	return b
}

func copySession(session persistence.Session) persistence.Session {
	if session.RevokedAt != nil {
		revokedAt := *session.RevokedAt
		session.RevokedAt = &revokedAt
	}
	return session
}
