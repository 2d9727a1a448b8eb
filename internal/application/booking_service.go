package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/availability"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/recurrence"
)

// BookingStoreFilter narrows queries issued to the booking store.
type BookingStoreFilter struct {
	RoomID       string
	RequesterID  string
	Statuses     []booking.Status
	StartsBefore *time.Time
	EndsAfter    *time.Time
}

// BookingStore captures the persistence interactions needed by the service.
// CreateBookings is atomic across the batch and re-checks room overlaps
// inside its transaction; UpdateBookingStatus is a compare-and-set.
type BookingStore interface {
	CreateBookings(ctx context.Context, bookings []Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingStoreFilter) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, expected, next booking.Status, decidedAt time.Time, decidedBy string) (Booking, error)
	ListElapsedPending(ctx context.Context, reference time.Time) ([]Booking, error)
	ListElapsedApproved(ctx context.Context, reference time.Time) ([]Booking, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// UserDirectory exposes user lookup operations.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

var activeStatuses = []booking.Status{booking.StatusPending, booking.StatusApproved}

// SystemActorID marks decisions made by the scheduler itself rather than a
// person, such as expiring undecided bookings.
const SystemActorID = "system"

// BookingService orchestrates validation, policy checks, conflict detection,
// and lifecycle transitions for booking requests.
type BookingService struct {
	store       BookingStore
	rooms       RoomCatalog
	users       UserDirectory
	validator   *booking.Validator
	expander    *recurrence.Expander
	publisher   EventPublisher
	cache       *availabilityCache
	locks       *roomLocks
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(store BookingStore, rooms RoomCatalog, users UserDirectory, validator *booking.Validator, expander *recurrence.Expander, publisher EventPublisher, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(store, rooms, users, validator, expander, publisher, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(store BookingStore, rooms RoomCatalog, users UserDirectory, validator *booking.Validator, expander *recurrence.Expander, publisher EventPublisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if validator == nil {
		validator = booking.NewValidator(booking.DefaultOptions())
	}
	if expander == nil {
		expander = recurrence.NewExpander(validator.Options().Location)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		store:       store,
		rooms:       rooms,
		users:       users,
		validator:   validator,
		expander:    expander,
		publisher:   publisher,
		cache:       newAvailabilityCache(0, 0, now),
		locks:       newRoomLocks(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Submit validates a booking request, expands its recurrence if present,
// runs policy and conflict checks for every occurrence, and persists the
// whole request atomically. A recurring series is all or nothing: if any
// occurrence fails policy or conflicts, nothing is created.
func (s *BookingService) Submit(ctx context.Context, params SubmitBookingParams) (result SubmitBookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	principal := params.Principal
	input := params.Input

	logger := s.loggerWith(ctx, "Submit",
		"requester_id", principal.UserID,
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking submission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(result.Bookings)).InfoContext(ctx, "booking submitted")
	}()

	vErr := &ValidationError{}
	validateBookingCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var room Room
	room, err = s.getRoom(ctx, input.RoomID)
	if err != nil {
		return
	}

	// A principal whose account no longer exists cannot hold bookings.
	if s.users != nil {
		if _, lookupErr := s.users.GetUser(ctx, principal.UserID); lookupErr != nil {
			if isNotFoundError(lookupErr) {
				err = ErrUnauthorized
				return
			}
			err = lookupErr
			return
		}
	}

	seed := booking.Interval{Start: input.Start, End: input.End}
	occurrences := []booking.Interval{seed}
	var groupID *string
	if input.Recurrence != nil {
		occurrences, err = s.expandRecurrence(seed, *input.Recurrence)
		if err != nil {
			return
		}
		id := s.idGenerator()
		groupID = &id
	}

	now := s.now()
	if err = s.checkPolicy(occurrences, now); err != nil {
		return
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()

	if err = s.checkConflicts(ctx, room.ID, principal.UserID, occurrences, input.Recurrence != nil); err != nil {
		return
	}

	bookings := make([]Booking, 0, len(occurrences))
	for _, occ := range occurrences {
		bookings = append(bookings, Booking{
			ID:                s.idGenerator(),
			RoomID:            room.ID,
			RequesterID:       principal.UserID,
			OrganizationID:    room.OrganizationID,
			Purpose:           strings.TrimSpace(input.Purpose),
			Start:             occ.Start,
			End:               occ.End,
			Status:            booking.StatusPending,
			RecurrenceGroupID: groupID,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	if err = s.store.CreateBookings(ctx, bookings); err != nil {
		err = s.mapCreateError(ctx, err, room.ID, principal.UserID, occurrences, input.Recurrence != nil)
		return
	}

	s.cache.InvalidateRoom(room.ID)
	publishAll(ctx, s.publisher, bookings, principal.UserID, now)

	result = SubmitBookingResult{Bookings: bookings, RecurrenceGroupID: groupID}
	return
}

// Decide approves or rejects a pending booking on behalf of an approver.
func (s *BookingService) Decide(ctx context.Context, params DecideBookingParams) (decided Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Decide",
		"booking_id", params.BookingID,
		"decision", string(params.Decision),
		"actor_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking decision failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(decided.Status)).InfoContext(ctx, "booking decided")
	}()

	var event booking.Event
	switch params.Decision {
	case DecisionApprove:
		event = booking.EventApprove
	case DecisionReject:
		event = booking.EventReject
	default:
		vErr := &ValidationError{}
		vErr.add("decision", "decision must be approve or reject")
		err = vErr
		return
	}

	var current Booking
	current, err = s.store.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	var room Room
	room, err = s.getRoom(ctx, current.RoomID)
	if err != nil {
		return
	}

	if !params.Principal.actor().CanDecide(room.OrganizationID) {
		err = ErrUnauthorized
		return
	}

	decided, err = s.transition(ctx, current, event, params.Principal.UserID)
	return
}

// Cancel cancels a booking on behalf of its requester or an administrator.
// Approved bookings may be cancelled even after their start.
func (s *BookingService) Cancel(ctx context.Context, params CancelBookingParams) (cancelled Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Cancel",
		"booking_id", params.BookingID,
		"actor_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking cancellation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	var current Booking
	current, err = s.store.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	var room Room
	room, err = s.getRoom(ctx, current.RoomID)
	if err != nil {
		return
	}

	if !params.Principal.actor().CanCancel(current.domain(), room.OrganizationID) {
		err = ErrUnauthorized
		return
	}

	cancelled, err = s.transition(ctx, current, booking.EventCancel, params.Principal.UserID)
	return
}

// GetBooking returns a single booking by ID. Members may only read their
// own bookings; administrators may read any booking in an organization
// they decide for.
func (s *BookingService) GetBooking(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	if s == nil || s.store == nil {
		return Booking{}, fmt.Errorf("booking store not configured")
	}
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	if b.RequesterID != principal.UserID && !principal.actor().CanDecide(b.OrganizationID) {
		return Booking{}, ErrUnauthorized
	}
	return b, nil
}

// ListBookings enumerates bookings matching the filter. Members may only
// enumerate their own bookings or a specific room's calendar.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("booking store not configured")
	}

	requesterID := params.RequesterID
	if params.Principal.Role == RoleMember && params.RoomID == "" {
		if requesterID != "" && requesterID != params.Principal.UserID {
			return nil, ErrUnauthorized
		}
		requesterID = params.Principal.UserID
	}

	bookings, err := s.store.ListBookings(ctx, BookingStoreFilter{
		RoomID:       params.RoomID,
		RequesterID:  requesterID,
		Statuses:     params.Statuses,
		StartsBefore: params.To,
		EndsAfter:    params.From,
	})
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookings, nil
}

// SweepResult reports what a lifecycle sweep changed.
type SweepResult struct {
	// Expired counts PENDING bookings rejected because their start passed
	// without a decision.
	Expired int
	// Completed counts APPROVED bookings marked COMPLETED because their end
	// passed.
	Completed int
}

// SweepElapsed applies the system lifecycle transitions: PENDING bookings
// whose start has passed are rejected as expired, and APPROVED bookings whose
// end has passed are completed. The system is recorded as the deciding actor.
// Bookings decided concurrently are skipped.
func (s *BookingService) SweepElapsed(ctx context.Context) (result SweepResult, err error) {
	if s == nil || s.store == nil {
		return SweepResult{}, fmt.Errorf("booking store not configured")
	}

	now := s.now()
	logger := s.loggerWith(ctx, "SweepElapsed")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "sweep failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if result.Expired > 0 || result.Completed > 0 {
			logger.With("expired", result.Expired, "completed", result.Completed).InfoContext(ctx, "swept elapsed bookings")
		}
	}()

	var pending []Booking
	pending, err = s.store.ListElapsedPending(ctx, now)
	if err != nil {
		return
	}
	for _, b := range pending {
		applied, sweepErr := s.sweepTransition(ctx, b.ID, booking.StatusPending, booking.StatusRejected, now)
		if sweepErr != nil {
			err = sweepErr
			return
		}
		if applied {
			result.Expired++
		}
	}

	var approved []Booking
	approved, err = s.store.ListElapsedApproved(ctx, now)
	if err != nil {
		return
	}
	for _, b := range approved {
		applied, sweepErr := s.sweepTransition(ctx, b.ID, booking.StatusApproved, booking.StatusCompleted, now)
		if sweepErr != nil {
			err = sweepErr
			return
		}
		if applied {
			result.Completed++
		}
	}
	return
}

// sweepTransition applies one system transition, tolerating bookings decided
// concurrently or deleted since the listing.
func (s *BookingService) sweepTransition(ctx context.Context, id string, from, to booking.Status, now time.Time) (bool, error) {
	updated, err := s.store.UpdateBookingStatus(ctx, id, from, to, now, SystemActorID)
	if err != nil {
		if errors.Is(err, persistence.ErrStaleStatus) || errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.cache.InvalidateRoom(updated.RoomID)
	if s.publisher != nil {
		s.publisher.PublishBookingEvent(ctx, BookingEvent{
			BookingID:         updated.ID,
			RoomID:            updated.RoomID,
			RequesterID:       updated.RequesterID,
			RecurrenceGroupID: updated.RecurrenceGroupID,
			From:              from,
			To:                to,
			ActorID:           SystemActorID,
			At:                now,
		})
	}
	return true, nil
}

// RoomAvailability computes the busy and free intervals for one room over a
// window. Results are served from a short-lived cache invalidated on writes.
func (s *BookingService) RoomAvailability(ctx context.Context, params AvailabilityParams) (RoomAvailability, error) {
	if s == nil || s.store == nil {
		return RoomAvailability{}, fmt.Errorf("booking store not configured")
	}

	window, err := validateWindow(params.From, params.To)
	if err != nil {
		return RoomAvailability{}, err
	}

	room, err := s.getRoomStrict(ctx, params.RoomID)
	if err != nil {
		return RoomAvailability{}, err
	}

	key := buildAvailabilityCacheKey(room.ID, window)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	active, err := s.listActive(ctx, BookingStoreFilter{RoomID: room.ID}, window)
	if err != nil {
		return RoomAvailability{}, err
	}

	busy := availability.BusyIntervals(domainBookings(active), room.ID, window)
	result := RoomAvailability{
		RoomID: room.ID,
		Window: window,
		Busy:   busy,
		Free:   availability.FreeIntervals(busy, window),
	}
	s.cache.Store(key, result)
	return result, nil
}

// FreeRooms returns the rooms with no active booking intersecting the
// window.
func (s *BookingService) FreeRooms(ctx context.Context, params FreeRoomsParams) ([]Room, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("booking store not configured")
	}
	if s.rooms == nil {
		return nil, fmt.Errorf("room catalog not configured")
	}

	window, err := validateWindow(params.From, params.To)
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.listActive(ctx, BookingStoreFilter{}, window)
	if err != nil {
		return nil, err
	}

	roomIDs := make([]string, 0, len(rooms))
	byID := make(map[string]Room, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
		byID[room.ID] = room
	}

	freeIDs := availability.RoomsFree(roomIDs, domainBookings(active), window)
	free := make([]Room, 0, len(freeIDs))
	for _, id := range freeIDs {
		free = append(free, byID[id])
	}
	if len(free) == 0 {
		return nil, nil
	}
	return free, nil
}

// HourlyOccupancy projects a room's bookings onto fixed slots for calendar
// rendering. The projection is advisory; it never feeds conflict decisions.
func (s *BookingService) HourlyOccupancy(ctx context.Context, params OccupancyParams) ([]availability.HourSlot, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("booking store not configured")
	}

	window, err := validateWindow(params.From, params.To)
	if err != nil {
		return nil, err
	}

	room, err := s.getRoomStrict(ctx, params.RoomID)
	if err != nil {
		return nil, err
	}

	active, err := s.listActive(ctx, BookingStoreFilter{RoomID: room.ID}, window)
	if err != nil {
		return nil, err
	}

	busy := availability.BusyIntervals(domainBookings(active), room.ID, window)
	return availability.HourlyOccupancy(busy, window.Start, window.End, params.Slot), nil
}

// transition runs the state machine and applies the change via
// compare-and-set. Losing the race yields an IllegalTransitionError built
// from the booking's fresh status.
func (s *BookingService) transition(ctx context.Context, current Booking, event booking.Event, actorID string) (Booking, error) {
	next, err := booking.Next(current.Status, event)
	if err != nil {
		var tErr *booking.TransitionError
		if errors.As(err, &tErr) {
			return Booking{}, &IllegalTransitionError{BookingID: current.ID, Status: tErr.From, Event: tErr.Event}
		}
		return Booking{}, err
	}

	now := s.now()
	updated, err := s.store.UpdateBookingStatus(ctx, current.ID, current.Status, next, now, actorID)
	if err != nil {
		if errors.Is(err, persistence.ErrStaleStatus) {
			fresh, readErr := s.store.GetBooking(ctx, current.ID)
			if readErr != nil {
				return Booking{}, mapBookingRepoError(readErr)
			}
			return Booking{}, &IllegalTransitionError{BookingID: fresh.ID, Status: fresh.Status, Event: event}
		}
		return Booking{}, mapBookingRepoError(err)
	}

	s.cache.InvalidateRoom(updated.RoomID)
	if s.publisher != nil {
		s.publisher.PublishBookingEvent(ctx, BookingEvent{
			BookingID:         updated.ID,
			RoomID:            updated.RoomID,
			RequesterID:       updated.RequesterID,
			RecurrenceGroupID: updated.RecurrenceGroupID,
			From:              current.Status,
			To:                updated.Status,
			ActorID:           actorID,
			At:                now,
		})
	}
	return updated, nil
}

func (s *BookingService) expandRecurrence(seed booking.Interval, input RecurrenceInput) ([]booking.Interval, error) {
	vErr := &ValidationError{}

	pattern, ok := parseRecurrence(input)
	if !ok {
		vErr.add("recurrence.frequency", "frequency must be weekly, daily, or custom")
		return nil, vErr
	}

	occurrences, err := s.expander.Expand(seed, pattern)
	if err != nil {
		switch {
		case errors.Is(err, recurrence.ErrMissingUntil):
			vErr.add("recurrence.until", "until date is required")
		case errors.Is(err, recurrence.ErrMissingWeekdays):
			vErr.add("recurrence.weekdays", "custom recurrence requires at least one weekday")
		case errors.Is(err, recurrence.ErrInvalidSeed):
			vErr.add("time", "start must be before end")
		default:
			return nil, err
		}
		return nil, vErr
	}
	if len(occurrences) == 0 {
		vErr.add("recurrence", "pattern produces no occurrences")
		return nil, vErr
	}
	return occurrences, nil
}

func (s *BookingService) checkPolicy(occurrences []booking.Interval, now time.Time) error {
	var violations []OccurrenceViolation
	for _, occ := range occurrences {
		if err := s.validator.Validate(occ, now); err != nil {
			var pv *booking.PolicyViolation
			if errors.As(err, &pv) {
				violations = append(violations, OccurrenceViolation{
					Start:     occ.Start,
					End:       occ.End,
					Violation: *pv,
				})
				continue
			}
			return err
		}
	}
	if len(violations) > 0 {
		return &PolicyError{Violations: violations}
	}
	return nil
}

// checkConflicts scans the room's and the requester's active bookings for
// every occurrence. For a series, room conflicts are gathered per
// occurrence so the caller can see exactly which dates fail.
func (s *BookingService) checkConflicts(ctx context.Context, roomID, requesterID string, occurrences []booking.Interval, series bool) error {
	window := spanOf(occurrences)

	roomActive, err := s.listActive(ctx, BookingStoreFilter{RoomID: roomID}, window)
	if err != nil {
		return err
	}
	requesterActive, err := s.listActive(ctx, BookingStoreFilter{RequesterID: requesterID}, window)
	if err != nil {
		return err
	}

	roomDomain := domainBookings(roomActive)
	byID := indexBookings(roomActive)

	var failures []OccurrenceConflict
	for _, occ := range occurrences {
		conflicts := booking.FindRoomConflicts(roomDomain, roomID, occ, "")
		if len(conflicts) == 0 {
			continue
		}
		failures = append(failures, OccurrenceConflict{
			Start:     occ.Start,
			End:       occ.End,
			Conflicts: resolveBookings(conflicts, byID),
		})
	}
	if len(failures) > 0 {
		if series {
			return &RecurrenceConflictError{RoomID: roomID, Failures: failures}
		}
		return &RoomConflictError{RoomID: roomID, Conflicts: failures[0].Conflicts}
	}

	requesterDomain := domainBookings(requesterActive)
	requesterByID := indexBookings(requesterActive)
	for _, occ := range occurrences {
		conflicts := booking.FindRequesterConflicts(requesterDomain, requesterID, occ, "")
		if len(conflicts) == 0 {
			continue
		}
		return &RequesterConflictError{RequesterID: requesterID, Conflicts: resolveBookings(conflicts, requesterByID)}
	}

	return nil
}

// mapCreateError resolves a persistence overlap raced in by another writer
// into the same conflict errors the pre-check produces.
func (s *BookingService) mapCreateError(ctx context.Context, err error, roomID, requesterID string, occurrences []booking.Interval, series bool) error {
	if errors.Is(err, persistence.ErrOverlap) {
		if conflictErr := s.checkConflicts(ctx, roomID, requesterID, occurrences, series); conflictErr != nil {
			return conflictErr
		}
		return &RoomConflictError{RoomID: roomID}
	}
	return mapBookingRepoError(err)
}

func (s *BookingService) getRoom(ctx context.Context, roomID string) (Room, error) {
	if s.rooms == nil {
		return Room{ID: roomID}, nil
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if isNotFoundError(err) {
			vErr := &ValidationError{}
			vErr.add("room_id", "room does not exist")
			return Room{}, vErr
		}
		return Room{}, err
	}
	return room, nil
}

// getRoomStrict is getRoom for read paths, where an unknown room is a 404
// rather than a validation failure.
func (s *BookingService) getRoomStrict(ctx context.Context, roomID string) (Room, error) {
	if roomID == "" {
		return Room{}, ErrNotFound
	}
	if s.rooms == nil {
		return Room{ID: roomID}, nil
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, mapBookingRepoError(err)
	}
	return room, nil
}

func (s *BookingService) listActive(ctx context.Context, filter BookingStoreFilter, window booking.Interval) ([]Booking, error) {
	filter.Statuses = activeStatuses
	filter.StartsBefore = &window.End
	filter.EndsAfter = &window.Start
	bookings, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return bookings, nil
}

func validateBookingCore(input BookingInput, vErr *ValidationError) {
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if strings.TrimSpace(input.Purpose) == "" {
		vErr.add("purpose", "purpose is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("time", "start must be before end")
	}
}

func validateWindow(from, to time.Time) (booking.Interval, error) {
	vErr := &ValidationError{}
	if from.IsZero() {
		vErr.add("from", "from is required")
	}
	if to.IsZero() {
		vErr.add("to", "to is required")
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		vErr.add("window", "from must be before to")
	}
	if vErr.HasErrors() {
		return booking.Interval{}, vErr
	}
	return booking.Interval{Start: from, End: to}, nil
}

func spanOf(occurrences []booking.Interval) booking.Interval {
	span := occurrences[0]
	for _, occ := range occurrences[1:] {
		if occ.Start.Before(span.Start) {
			span.Start = occ.Start
		}
		if occ.End.After(span.End) {
			span.End = occ.End
		}
	}
	return span
}

func indexBookings(bookings []Booking) map[string]Booking {
	byID := make(map[string]Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}
	return byID
}

func resolveBookings(conflicts []booking.Booking, byID map[string]Booking) []Booking {
	out := make([]Booking, 0, len(conflicts))
	for _, c := range conflicts {
		if b, ok := byID[c.ID]; ok {
			out = append(out, b)
		}
	}
	return out
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "related records are missing")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
