package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/recurrence"
)

// referenceNow is a Monday morning inside the business window.
var referenceNow = time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]Booking)}
}

func (f *fakeBookingStore) CreateBookings(_ context.Context, bookings []Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range bookings {
		for _, existing := range f.bookings {
			if (existing.RoomID == b.RoomID || existing.RequesterID == b.RequesterID) &&
				!existing.Status.Terminal() &&
				existing.Start.Before(b.End) && b.Start.Before(existing.End) {
				return persistence.ErrOverlap
			}
		}
		for _, sibling := range bookings[:i] {
			if (sibling.RoomID == b.RoomID || sibling.RequesterID == b.RequesterID) &&
				sibling.Start.Before(b.End) && b.Start.Before(sibling.End) {
				return persistence.ErrOverlap
			}
		}
	}
	for _, b := range bookings {
		f.bookings[b.ID] = b
	}
	return nil
}

func (f *fakeBookingStore) GetBooking(_ context.Context, id string) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookingStore) ListBookings(_ context.Context, filter BookingStoreFilter) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.RequesterID != "" && b.RequesterID != filter.RequesterID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if b.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if filter.StartsBefore != nil && !b.Start.Before(*filter.StartsBefore) {
			continue
		}
		if filter.EndsAfter != nil && !b.End.After(*filter.EndsAfter) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateBookingStatus(_ context.Context, id string, expected, next booking.Status, decidedAt time.Time, decidedBy string) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	if b.Status != expected {
		return Booking{}, persistence.ErrStaleStatus
	}
	b.Status = next
	b.DecidedAt = &decidedAt
	b.DecidedBy = &decidedBy
	b.UpdatedAt = decidedAt
	f.bookings[id] = b
	return b, nil
}

func (f *fakeBookingStore) ListElapsedPending(_ context.Context, reference time.Time) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.Status == booking.StatusPending && b.Start.Before(reference) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListElapsedApproved(_ context.Context, reference time.Time) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.Status == booking.StatusApproved && !b.End.After(reference) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

func (f *fakeBookingStore) put(b Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
}

type fakeRoomCatalog struct {
	rooms map[string]Room
}

func (f *fakeRoomCatalog) GetRoom(_ context.Context, id string) (Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (f *fakeRoomCatalog) ListRooms(_ context.Context) ([]Room, error) {
	out := make([]Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		out = append(out, room)
	}
	return out, nil
}

type fakeUserDirectory struct {
	users map[string]User
}

func (f *fakeUserDirectory) GetUser(_ context.Context, id string) (User, error) {
	user, ok := f.users[id]
	if !ok {
		return User{}, persistence.ErrNotFound
	}
	return user, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, event BookingEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type bookingFixture struct {
	service   *BookingService
	store     *fakeBookingStore
	publisher *recordingPublisher
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	store := newFakeBookingStore()
	publisher := &recordingPublisher{}
	rooms := &fakeRoomCatalog{rooms: map[string]Room{
		"room-1": {ID: "room-1", Name: "Boardroom", Capacity: 8, OrganizationID: "org-1"},
		"room-2": {ID: "room-2", Name: "Huddle", Capacity: 4, OrganizationID: "org-1"},
	}}
	users := &fakeUserDirectory{users: map[string]User{
		"user-1":  {ID: "user-1", OrganizationID: "org-1", Role: RoleMember},
		"user-2":  {ID: "user-2", OrganizationID: "org-1", Role: RoleMember},
		"admin-1": {ID: "admin-1", OrganizationID: "org-1", Role: RoleOrgAdmin},
	}}

	sequence := 0
	idGenerator := func() string {
		sequence++
		return fmt.Sprintf("id-%d", sequence)
	}
	now := func() time.Time { return referenceNow }

	validator := booking.NewValidator(booking.DefaultOptions())
	expander := recurrence.NewExpander(time.UTC)
	service := NewBookingService(store, rooms, users, validator, expander, publisher, idGenerator, now)
	return &bookingFixture{service: service, store: store, publisher: publisher}
}

func member(userID string) Principal {
	return Principal{UserID: userID, OrganizationID: "org-1", Role: RoleMember}
}

func orgAdmin() Principal {
	return Principal{UserID: "admin-1", OrganizationID: "org-1", Role: RoleOrgAdmin}
}

// tuesday returns an interval on Tuesday 2025-06-03, inside business hours.
func tuesday(startHour, endHour int) (time.Time, time.Time) {
	day := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(startHour) * time.Hour), day.Add(time.Duration(endHour) * time.Hour)
}

func TestBookingService_SubmitSingle(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)

	result, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-1", Purpose: "planning", Start: start, End: end},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(result.Bookings) != 1 {
		t.Fatalf("Submit() created %d bookings, want 1", len(result.Bookings))
	}

	created := result.Bookings[0]
	if created.Status != booking.StatusPending {
		t.Errorf("status = %s, want %s", created.Status, booking.StatusPending)
	}
	if created.ID == "" {
		t.Error("created booking has empty ID")
	}
	if created.RecurrenceGroupID != nil {
		t.Error("single booking should not carry a recurrence group")
	}
	if created.OrganizationID != "org-1" {
		t.Errorf("organization = %q, want org-1", created.OrganizationID)
	}
	if fx.publisher.count() != 1 {
		t.Errorf("published %d events, want 1", fx.publisher.count())
	}
}

func TestBookingService_SubmitValidation(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)

	tests := []struct {
		name  string
		input BookingInput
		field string
	}{
		{"missing room", BookingInput{Purpose: "x", Start: start, End: end}, "room_id"},
		{"missing purpose", BookingInput{RoomID: "room-1", Start: start, End: end}, "purpose"},
		{"inverted interval", BookingInput{RoomID: "room-1", Purpose: "x", Start: end, End: start}, "time"},
		{"unknown room", BookingInput{RoomID: "room-missing", Purpose: "x", Start: start, End: end}, "room_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
				Principal: member("user-1"),
				Input:     tc.input,
			})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Submit() error = %v, want ValidationError", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Errorf("missing field error for %q, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestBookingService_SubmitPolicyViolation(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	// 06:00 start is before the business window opens.
	start, end := tuesday(6, 8)

	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-1", Purpose: "early", Start: start, End: end},
	})
	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("Submit() error = %v, want PolicyError", err)
	}
	if len(pErr.Violations) != 1 || pErr.Violations[0].Violation.Reason != booking.ReasonOutsideBusinessHours {
		t.Errorf("violations = %+v, want single outside_business_hours", pErr.Violations)
	}
	if len(pErr.Violations) == 1 && !pErr.Violations[0].Start.Equal(start) {
		t.Errorf("violation start = %v, want %v", pErr.Violations[0].Start, start)
	}
	if fx.store.count() != 0 {
		t.Error("rejected submission must not persist bookings")
	}
}

func TestBookingService_SubmitRoomConflict(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "existing", RoomID: "room-1", RequesterID: "user-2",
		Start: start, End: end, Status: booking.StatusApproved,
	})

	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-1", Purpose: "clash", Start: start.Add(30 * time.Minute), End: end.Add(30 * time.Minute)},
	})
	var cErr *RoomConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("Submit() error = %v, want RoomConflictError", err)
	}
	if cErr.RoomID != "room-1" {
		t.Errorf("RoomID = %q, want room-1", cErr.RoomID)
	}
	if len(cErr.Conflicts) != 1 || cErr.Conflicts[0].ID != "existing" {
		t.Errorf("conflicts = %+v, want the existing booking", cErr.Conflicts)
	}
}

func TestBookingService_SubmitTouchingBookingsAccepted(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "existing", RoomID: "room-1", RequesterID: "user-2",
		Start: start, End: end, Status: booking.StatusApproved,
	})

	// New booking starts exactly where the existing one ends.
	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-1", Purpose: "follow-up", Start: end, End: end.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v, want touching booking accepted", err)
	}
}

func TestBookingService_SubmitRequesterConflictAcrossRooms(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "mine", RoomID: "room-2", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusPending,
	})

	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-1", Purpose: "double", Start: start, End: end},
	})
	var rErr *RequesterConflictError
	if !errors.As(err, &rErr) {
		t.Fatalf("Submit() error = %v, want RequesterConflictError", err)
	}
	if len(rErr.Conflicts) != 1 || rErr.Conflicts[0].ID != "mine" {
		t.Errorf("conflicts = %+v, want the requester's other booking", rErr.Conflicts)
	}
}

// staleListStore returns no rows for its first list calls, modelling a
// reader whose snapshot predates a concurrent writer's commit.
type staleListStore struct {
	*fakeBookingStore
	mu    sync.Mutex
	stale int
}

func (s *staleListStore) ListBookings(ctx context.Context, filter BookingStoreFilter) ([]Booking, error) {
	s.mu.Lock()
	if s.stale > 0 {
		s.stale--
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()
	return s.fakeBookingStore.ListBookings(ctx, filter)
}

// Two overlapping submissions by the same requester to different rooms,
// where the second one's conflict scan ran before the first one's insert
// became visible. The store's in-transaction re-check must still reject
// the second submission as a requester conflict.
func TestBookingService_SubmitRequesterOverlapCaughtAtInsert(t *testing.T) {
	t.Parallel()
	inner := newFakeBookingStore()
	store := &staleListStore{fakeBookingStore: inner, stale: 4}
	publisher := &recordingPublisher{}
	rooms := &fakeRoomCatalog{rooms: map[string]Room{
		"room-1": {ID: "room-1", Name: "Boardroom", Capacity: 8, OrganizationID: "org-1"},
		"room-2": {ID: "room-2", Name: "Huddle", Capacity: 4, OrganizationID: "org-1"},
	}}
	users := &fakeUserDirectory{users: map[string]User{
		"user-1": {ID: "user-1", OrganizationID: "org-1", Role: RoleMember},
	}}
	sequence := 0
	idGenerator := func() string {
		sequence++
		return fmt.Sprintf("id-%d", sequence)
	}
	service := NewBookingService(store, rooms, users,
		booking.NewValidator(booking.DefaultOptions()), recurrence.NewExpander(time.UTC),
		publisher, idGenerator, func() time.Time { return referenceNow })

	start, end := tuesday(9, 10)
	if _, err := service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-1", Purpose: "sync", Start: start, End: end},
	}); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	_, err := service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input:     BookingInput{RoomID: "room-2", Purpose: "double", Start: start.Add(30 * time.Minute), End: end.Add(30 * time.Minute)},
	})
	var rErr *RequesterConflictError
	if !errors.As(err, &rErr) {
		t.Fatalf("second Submit() error = %v, want RequesterConflictError", err)
	}
	if rErr.RequesterID != "user-1" {
		t.Errorf("RequesterID = %q, want user-1", rErr.RequesterID)
	}
	if inner.count() != 1 {
		t.Errorf("stored bookings = %d, want only the first submission", inner.count())
	}
}

func TestBookingService_GetBookingScope(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1", OrganizationID: "org-1",
		Start: start, End: end, Status: booking.StatusPending,
	})

	if _, err := fx.service.GetBooking(context.Background(), member("user-1"), "b-1"); err != nil {
		t.Errorf("requester GetBooking() error = %v", err)
	}
	if _, err := fx.service.GetBooking(context.Background(), orgAdmin(), "b-1"); err != nil {
		t.Errorf("admin GetBooking() error = %v", err)
	}
	if _, err := fx.service.GetBooking(context.Background(), member("user-2"), "b-1"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("foreign member GetBooking() error = %v, want ErrUnauthorized", err)
	}
}

func TestBookingService_SubmitSeriesPolicyDates(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)

	// Five weekly occurrences; the last one starts past the advance limit.
	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input: BookingInput{
			RoomID: "room-1", Purpose: "standup", Start: start, End: end,
			Recurrence: &RecurrenceInput{Frequency: "weekly", Until: start.AddDate(0, 0, 28)},
		},
	})
	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("Submit() error = %v, want PolicyError", err)
	}
	if len(pErr.Violations) != 1 {
		t.Fatalf("violations = %+v, want the single late occurrence", pErr.Violations)
	}
	v := pErr.Violations[0]
	if v.Violation.Reason != booking.ReasonTooFarInAdvance {
		t.Errorf("reason = %s, want %s", v.Violation.Reason, booking.ReasonTooFarInAdvance)
	}
	if !v.Start.Equal(start.AddDate(0, 0, 28)) {
		t.Errorf("violation start = %v, want %v", v.Start, start.AddDate(0, 0, 28))
	}
	if fx.store.count() != 0 {
		t.Error("rejected series must not persist bookings")
	}
}

func TestBookingService_SubmitWeeklySeries(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)

	result, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input: BookingInput{
			RoomID: "room-1", Purpose: "standup", Start: start, End: end,
			Recurrence: &RecurrenceInput{Frequency: "weekly", Until: start.AddDate(0, 0, 14)},
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(result.Bookings) != 3 {
		t.Fatalf("created %d occurrences, want 3", len(result.Bookings))
	}
	if result.RecurrenceGroupID == nil {
		t.Fatal("series must carry a recurrence group ID")
	}
	for i, b := range result.Bookings {
		if b.RecurrenceGroupID == nil || *b.RecurrenceGroupID != *result.RecurrenceGroupID {
			t.Errorf("occurrence %d does not share the group ID", i)
		}
		wantStart := start.AddDate(0, 0, 7*i)
		if !b.Start.Equal(wantStart) {
			t.Errorf("occurrence %d start = %v, want %v", i, b.Start, wantStart)
		}
	}
	if fx.publisher.count() != 3 {
		t.Errorf("published %d events, want 3", fx.publisher.count())
	}
}

func TestBookingService_SubmitSeriesAllOrNothing(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	// Block the third week only.
	fx.store.put(Booking{
		ID: "blocker", RoomID: "room-1", RequesterID: "user-2",
		Start: start.AddDate(0, 0, 14), End: end.AddDate(0, 0, 14),
		Status: booking.StatusApproved,
	})

	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input: BookingInput{
			RoomID: "room-1", Purpose: "standup", Start: start, End: end,
			Recurrence: &RecurrenceInput{Frequency: "weekly", Until: start.AddDate(0, 0, 14)},
		},
	})
	var sErr *RecurrenceConflictError
	if !errors.As(err, &sErr) {
		t.Fatalf("Submit() error = %v, want RecurrenceConflictError", err)
	}
	if len(sErr.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(sErr.Failures))
	}
	if !sErr.Failures[0].Start.Equal(start.AddDate(0, 0, 14)) {
		t.Errorf("failing occurrence start = %v, want week three", sErr.Failures[0].Start)
	}
	if fx.store.count() != 1 {
		t.Error("no occurrence of a conflicting series may be created")
	}
}

func TestBookingService_SubmitSeriesMissingUntil(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)

	_, err := fx.service.Submit(context.Background(), SubmitBookingParams{
		Principal: member("user-1"),
		Input: BookingInput{
			RoomID: "room-1", Purpose: "standup", Start: start, End: end,
			Recurrence: &RecurrenceInput{Frequency: "weekly"},
		},
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}
	if _, ok := vErr.FieldErrors["recurrence.until"]; !ok {
		t.Errorf("missing recurrence.until error, got %v", vErr.FieldErrors)
	}
}

func TestBookingService_Decide(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusPending,
	})

	decided, err := fx.service.Decide(context.Background(), DecideBookingParams{
		Principal: orgAdmin(),
		BookingID: "b-1",
		Decision:  DecisionApprove,
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decided.Status != booking.StatusApproved {
		t.Errorf("status = %s, want %s", decided.Status, booking.StatusApproved)
	}
	if decided.DecidedBy == nil || *decided.DecidedBy != "admin-1" {
		t.Errorf("DecidedBy = %v, want admin-1", decided.DecidedBy)
	}
	if decided.DecidedAt == nil || !decided.DecidedAt.Equal(referenceNow) {
		t.Errorf("DecidedAt = %v, want %v", decided.DecidedAt, referenceNow)
	}
}

func TestBookingService_DecideUnauthorized(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusPending,
	})

	_, err := fx.service.Decide(context.Background(), DecideBookingParams{
		Principal: member("user-2"),
		BookingID: "b-1",
		Decision:  DecisionApprove,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Decide() error = %v, want ErrUnauthorized", err)
	}

	// Admins of another organization cannot decide either.
	_, err = fx.service.Decide(context.Background(), DecideBookingParams{
		Principal: Principal{UserID: "other-admin", OrganizationID: "org-2", Role: RoleOrgAdmin},
		BookingID: "b-1",
		Decision:  DecisionApprove,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Decide() foreign org error = %v, want ErrUnauthorized", err)
	}
}

func TestBookingService_DecideIllegalTransition(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusApproved,
	})

	_, err := fx.service.Decide(context.Background(), DecideBookingParams{
		Principal: orgAdmin(),
		BookingID: "b-1",
		Decision:  DecisionApprove,
	})
	var tErr *IllegalTransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("Decide() error = %v, want IllegalTransitionError", err)
	}
	if tErr.Status != booking.StatusApproved {
		t.Errorf("Status = %s, want the booking's current status", tErr.Status)
	}
}

func TestBookingService_DecideStaleStatus(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusPending,
	})

	// Another actor cancels between the service's read and its update.
	if _, err := fx.store.UpdateBookingStatus(context.Background(), "b-1", booking.StatusPending, booking.StatusCancelled, referenceNow, "user-1"); err != nil {
		t.Fatalf("seeding concurrent cancel: %v", err)
	}
	staleCopy := Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusPending,
	}
	_, err := fx.service.transition(context.Background(), staleCopy, booking.EventApprove, "admin-1")
	var tErr *IllegalTransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("transition error = %v, want IllegalTransitionError", err)
	}
	if tErr.Status != booking.StatusCancelled {
		t.Errorf("Status = %s, want the fresh status after the race", tErr.Status)
	}
}

func TestBookingService_Cancel(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusApproved,
	})

	cancelled, err := fx.service.Cancel(context.Background(), CancelBookingParams{
		Principal: member("user-1"),
		BookingID: "b-1",
	})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != booking.StatusCancelled {
		t.Errorf("status = %s, want %s", cancelled.Status, booking.StatusCancelled)
	}

	// Other members cannot cancel someone else's booking.
	fx.store.put(Booking{
		ID: "b-2", RoomID: "room-1", RequesterID: "user-1",
		Start: start.Add(2 * time.Hour), End: end.Add(2 * time.Hour), Status: booking.StatusPending,
	})
	_, err = fx.service.Cancel(context.Background(), CancelBookingParams{
		Principal: member("user-2"),
		BookingID: "b-2",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Cancel() by stranger error = %v, want ErrUnauthorized", err)
	}
}

func TestBookingService_SweepElapsed(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)

	// One pending booking whose start already passed, one still upcoming,
	// and an approved booking that already ended.
	past := referenceNow.Add(-2 * time.Hour)
	fx.store.put(Booking{
		ID: "elapsed", RoomID: "room-1", RequesterID: "user-1",
		Start: past, End: past.Add(time.Hour), Status: booking.StatusPending,
	})
	future := referenceNow.Add(2 * time.Hour)
	fx.store.put(Booking{
		ID: "upcoming", RoomID: "room-1", RequesterID: "user-1",
		Start: future, End: future.Add(time.Hour), Status: booking.StatusPending,
	})
	fx.store.put(Booking{
		ID: "finished", RoomID: "room-2", RequesterID: "user-1",
		Start: past.Add(-time.Hour), End: past, Status: booking.StatusApproved,
	})

	result, err := fx.service.SweepElapsed(context.Background())
	if err != nil {
		t.Fatalf("SweepElapsed() error = %v", err)
	}
	if result.Expired != 1 {
		t.Fatalf("expired = %d, want 1", result.Expired)
	}
	if result.Completed != 1 {
		t.Fatalf("completed = %d, want 1", result.Completed)
	}

	swept, err := fx.store.GetBooking(context.Background(), "elapsed")
	if err != nil {
		t.Fatal(err)
	}
	if swept.Status != booking.StatusRejected {
		t.Errorf("status = %s, want %s", swept.Status, booking.StatusRejected)
	}
	if swept.DecidedBy == nil || *swept.DecidedBy != SystemActorID {
		t.Errorf("DecidedBy = %v, want %q", swept.DecidedBy, SystemActorID)
	}

	completed, err := fx.store.GetBooking(context.Background(), "finished")
	if err != nil {
		t.Fatal(err)
	}
	if completed.Status != booking.StatusCompleted {
		t.Errorf("status = %s, want %s", completed.Status, booking.StatusCompleted)
	}

	untouched, err := fx.store.GetBooking(context.Background(), "upcoming")
	if err != nil {
		t.Fatal(err)
	}
	if untouched.Status != booking.StatusPending {
		t.Errorf("upcoming booking status = %s, want untouched", untouched.Status)
	}
}

func TestBookingService_ListBookingsMemberScope(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{ID: "mine", RoomID: "room-1", RequesterID: "user-1", Start: start, End: end, Status: booking.StatusPending})
	fx.store.put(Booking{ID: "theirs", RoomID: "room-2", RequesterID: "user-2", Start: start, End: end, Status: booking.StatusPending})

	// Without a room filter a member sees only their own bookings.
	bookings, err := fx.service.ListBookings(context.Background(), ListBookingsParams{Principal: member("user-1")})
	if err != nil {
		t.Fatalf("ListBookings() error = %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != "mine" {
		t.Errorf("bookings = %+v, want only the member's own", bookings)
	}

	// Asking for another member's bookings is refused.
	_, err = fx.service.ListBookings(context.Background(), ListBookingsParams{Principal: member("user-1"), RequesterID: "user-2"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ListBookings() error = %v, want ErrUnauthorized", err)
	}

	// A room calendar is open to any member.
	bookings, err = fx.service.ListBookings(context.Background(), ListBookingsParams{Principal: member("user-1"), RoomID: "room-2"})
	if err != nil {
		t.Fatalf("ListBookings() room calendar error = %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != "theirs" {
		t.Errorf("room calendar = %+v, want the other member's booking", bookings)
	}
}

func TestBookingService_RoomAvailability(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusApproved,
	})

	windowStart, windowEnd := tuesday(8, 12)
	result, err := fx.service.RoomAvailability(context.Background(), AvailabilityParams{
		Principal: member("user-2"),
		RoomID:    "room-1",
		From:      windowStart,
		To:        windowEnd,
	})
	if err != nil {
		t.Fatalf("RoomAvailability() error = %v", err)
	}
	if len(result.Busy) != 1 || !result.Busy[0].Start.Equal(start) || !result.Busy[0].End.Equal(end) {
		t.Errorf("busy = %+v, want [09:00,10:00)", result.Busy)
	}
	if len(result.Free) != 2 {
		t.Fatalf("free = %+v, want two gaps", result.Free)
	}
	if !result.Free[0].End.Equal(start) || !result.Free[1].Start.Equal(end) {
		t.Errorf("free gaps = %+v, want around the busy hour", result.Free)
	}

	if _, err := fx.service.RoomAvailability(context.Background(), AvailabilityParams{
		Principal: member("user-2"),
		RoomID:    "room-missing",
		From:      windowStart,
		To:        windowEnd,
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room error = %v, want ErrNotFound", err)
	}
}

func TestBookingService_FreeRooms(t *testing.T) {
	t.Parallel()
	fx := newBookingFixture(t)
	start, end := tuesday(9, 10)
	fx.store.put(Booking{
		ID: "b-1", RoomID: "room-1", RequesterID: "user-1",
		Start: start, End: end, Status: booking.StatusPending,
	})

	free, err := fx.service.FreeRooms(context.Background(), FreeRoomsParams{
		Principal: member("user-2"),
		From:      start,
		To:        end,
	})
	if err != nil {
		t.Fatalf("FreeRooms() error = %v", err)
	}
	if len(free) != 1 || free[0].ID != "room-2" {
		t.Errorf("free = %+v, want only room-2", free)
	}
}
