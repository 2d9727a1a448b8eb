// Package adapter implements the application layer's store interfaces on top
// of the persistence repositories, translating between storage records and
// application models.
package adapter

import (
	"context"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/application"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

// BookingStore adapts a persistence.BookingRepository to
// application.BookingStore.
type BookingStore struct {
	repo persistence.BookingRepository
}

// NewBookingStore wraps the repository.
func NewBookingStore(repo persistence.BookingRepository) *BookingStore {
	return &BookingStore{repo: repo}
}

var _ application.BookingStore = (*BookingStore)(nil)

func (s *BookingStore) CreateBookings(ctx context.Context, bookings []application.Booking) error {
	records := make([]persistence.Booking, 0, len(bookings))
	for _, b := range bookings {
		records = append(records, toBookingRecord(b))
	}
	return s.repo.CreateBookings(ctx, records)
}

func (s *BookingStore) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	record, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return fromBookingRecord(record), nil
}

func (s *BookingStore) ListBookings(ctx context.Context, filter application.BookingStoreFilter) ([]application.Booking, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}
	records, err := s.repo.ListBookings(ctx, persistence.BookingFilter{
		RoomID:       filter.RoomID,
		RequesterID:  filter.RequesterID,
		Statuses:     statuses,
		StartsBefore: filter.StartsBefore,
		EndsAfter:    filter.EndsAfter,
	})
	if err != nil {
		return nil, err
	}
	return fromBookingRecords(records), nil
}

func (s *BookingStore) UpdateBookingStatus(ctx context.Context, id string, expected, next booking.Status, decidedAt time.Time, decidedBy string) (application.Booking, error) {
	record, err := s.repo.UpdateBookingStatus(ctx, id, string(expected), string(next), decidedAt, decidedBy)
	if err != nil {
		return application.Booking{}, err
	}
	return fromBookingRecord(record), nil
}

func (s *BookingStore) ListElapsedPending(ctx context.Context, reference time.Time) ([]application.Booking, error) {
	records, err := s.repo.ListElapsedPending(ctx, reference)
	if err != nil {
		return nil, err
	}
	return fromBookingRecords(records), nil
}

func (s *BookingStore) ListElapsedApproved(ctx context.Context, reference time.Time) ([]application.Booking, error) {
	records, err := s.repo.ListElapsedApproved(ctx, reference)
	if err != nil {
		return nil, err
	}
	return fromBookingRecords(records), nil
}

// RoomStore adapts a persistence.RoomRepository to application.RoomStore and
// application.RoomCatalog.
type RoomStore struct {
	repo persistence.RoomRepository
}

// NewRoomStore wraps the repository.
func NewRoomStore(repo persistence.RoomRepository) *RoomStore {
	return &RoomStore{repo: repo}
}

var (
	_ application.RoomStore   = (*RoomStore)(nil)
	_ application.RoomCatalog = (*RoomStore)(nil)
)

func (s *RoomStore) CreateRoom(ctx context.Context, room application.Room) error {
	return s.repo.CreateRoom(ctx, toRoomRecord(room))
}

func (s *RoomStore) UpdateRoom(ctx context.Context, room application.Room) error {
	return s.repo.UpdateRoom(ctx, toRoomRecord(room))
}

func (s *RoomStore) GetRoom(ctx context.Context, id string) (application.Room, error) {
	record, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return fromRoomRecord(record), nil
}

func (s *RoomStore) ListRooms(ctx context.Context) ([]application.Room, error) {
	records, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, fromRoomRecord(record))
	}
	return rooms, nil
}

func (s *RoomStore) DeleteRoom(ctx context.Context, id string) error {
	return s.repo.DeleteRoom(ctx, id)
}

// UserStore adapts a persistence.UserRepository to application.UserStore and
// application.UserDirectory.
type UserStore struct {
	repo persistence.UserRepository
}

// NewUserStore wraps the repository.
func NewUserStore(repo persistence.UserRepository) *UserStore {
	return &UserStore{repo: repo}
}

var (
	_ application.UserStore     = (*UserStore)(nil)
	_ application.UserDirectory = userDirectory{}
)

func (s *UserStore) CreateUser(ctx context.Context, user application.UserCredentials) error {
	return s.repo.CreateUser(ctx, toUserRecord(user))
}

func (s *UserStore) UpdateUser(ctx context.Context, user application.UserCredentials) error {
	return s.repo.UpdateUser(ctx, toUserRecord(user))
}

// GetUser returns the stored credentials for an account. Directory exposes
// the credential-free lookup shape.
func (s *UserStore) GetUser(ctx context.Context, id string) (application.UserCredentials, error) {
	record, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return fromUserRecord(record), nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	record, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return fromUserRecord(record), nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]application.User, error) {
	records, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(records))
	for _, record := range records {
		users = append(users, fromUserRecord(record).User)
	}
	return users, nil
}

// Directory narrows the store to the lookup shape BookingService needs.
func (s *UserStore) Directory() application.UserDirectory {
	return userDirectory{store: s}
}

type userDirectory struct {
	store *UserStore
}

func (d userDirectory) GetUser(ctx context.Context, id string) (application.User, error) {
	record, err := d.store.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return record.User, nil
}

// SessionStore adapts a persistence.SessionRepository to
// application.SessionStore.
type SessionStore struct {
	repo persistence.SessionRepository
}

// NewSessionStore wraps the repository.
func NewSessionStore(repo persistence.SessionRepository) *SessionStore {
	return &SessionStore{repo: repo}
}

var _ application.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	record, err := s.repo.CreateSession(ctx, toSessionRecord(session))
	if err != nil {
		return application.Session{}, err
	}
	return fromSessionRecord(record), nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (application.Session, error) {
	record, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return fromSessionRecord(record), nil
}

func (s *SessionStore) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	record, err := s.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return fromSessionRecord(record), nil
}

func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return s.repo.DeleteExpiredSessions(ctx, reference)
}

func toBookingRecord(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:                b.ID,
		RoomID:            b.RoomID,
		RequesterID:       b.RequesterID,
		OrganizationID:    b.OrganizationID,
		Purpose:           b.Purpose,
		Start:             b.Start,
		End:               b.End,
		Status:            string(b.Status),
		RecurrenceGroupID: b.RecurrenceGroupID,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		DecidedAt:         b.DecidedAt,
		DecidedBy:         b.DecidedBy,
	}
}

func fromBookingRecord(record persistence.Booking) application.Booking {
	return application.Booking{
		ID:                record.ID,
		RoomID:            record.RoomID,
		RequesterID:       record.RequesterID,
		OrganizationID:    record.OrganizationID,
		Purpose:           record.Purpose,
		Start:             record.Start,
		End:               record.End,
		Status:            booking.Status(record.Status),
		RecurrenceGroupID: record.RecurrenceGroupID,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
		DecidedAt:         record.DecidedAt,
		DecidedBy:         record.DecidedBy,
	}
}

func fromBookingRecords(records []persistence.Booking) []application.Booking {
	if len(records) == 0 {
		return nil
	}
	out := make([]application.Booking, 0, len(records))
	for _, record := range records {
		out = append(out, fromBookingRecord(record))
	}
	return out
}

func toRoomRecord(room application.Room) persistence.Room {
	return persistence.Room{
		ID:             room.ID,
		Name:           room.Name,
		Location:       room.Location,
		Capacity:       room.Capacity,
		OrganizationID: room.OrganizationID,
		Facilities:     room.Facilities,
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}
}

func fromRoomRecord(record persistence.Room) application.Room {
	return application.Room{
		ID:             record.ID,
		Name:           record.Name,
		Location:       record.Location,
		Capacity:       record.Capacity,
		OrganizationID: record.OrganizationID,
		Facilities:     record.Facilities,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func toUserRecord(user application.UserCredentials) persistence.User {
	return persistence.User{
		ID:             user.User.ID,
		Email:          user.User.Email,
		DisplayName:    user.User.DisplayName,
		OrganizationID: user.User.OrganizationID,
		Role:           string(user.User.Role),
		PasswordHash:   user.PasswordHash,
		Disabled:       user.Disabled || user.User.Disabled,
		CreatedAt:      user.User.CreatedAt,
		UpdatedAt:      user.User.UpdatedAt,
	}
}

func fromUserRecord(record persistence.User) application.UserCredentials {
	return application.UserCredentials{
		User: application.User{
			ID:             record.ID,
			Email:          record.Email,
			DisplayName:    record.DisplayName,
			OrganizationID: record.OrganizationID,
			Role:           application.Role(record.Role),
			Disabled:       record.Disabled,
			CreatedAt:      record.CreatedAt,
			UpdatedAt:      record.UpdatedAt,
		},
		PasswordHash: record.PasswordHash,
		Disabled:     record.Disabled,
	}
}

func toSessionRecord(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func fromSessionRecord(record persistence.Session) application.Session {
	return application.Session{
		ID:        record.ID,
		UserID:    record.UserID,
		Token:     record.Token,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		RevokedAt: record.RevokedAt,
	}
}
