package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

// RoomStore captures the persistence interactions needed by RoomService.
type RoomStore interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ErrRoomInUse is returned when a room cannot be deleted because bookings
// reference it.
var ErrRoomInUse = errors.New("application: room has bookings")

// RoomService manages the catalog of bookable rooms. Catalog writes are
// restricted to administrators; reads are open to any authenticated user.
type RoomService struct {
	store       RoomStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService wires dependencies for room catalog operations.
func NewRoomService(store RoomStore, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(store, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a RoomService with a specified logger.
func NewRoomServiceWithLogger(store RoomStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// canManageRoom reports whether the principal may administer a room owned by
// the given organization. Org admins are limited to their own organization.
func canManageRoom(principal Principal, organizationID string) bool {
	switch principal.Role {
	case RoleSysAdmin:
		return true
	case RoleOrgAdmin:
		return principal.OrganizationID != "" && principal.OrganizationID == organizationID
	}
	return false
}

// CreateRoom adds a room to the catalog.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (created Room, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"actor_id", params.Principal.UserID,
		"name", params.Input.Name,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", created.ID).InfoContext(ctx, "room created")
	}()

	input := params.Input
	if input.OrganizationID == "" && params.Principal.Role == RoleOrgAdmin {
		input.OrganizationID = params.Principal.OrganizationID
	}

	if !canManageRoom(params.Principal, input.OrganizationID) {
		err = ErrUnauthorized
		return
	}

	if err = validateRoomInput(input); err != nil {
		return
	}

	now := s.now()
	created = Room{
		ID:             s.idGenerator(),
		Name:           strings.TrimSpace(input.Name),
		Location:       strings.TrimSpace(input.Location),
		Capacity:       input.Capacity,
		OrganizationID: input.OrganizationID,
		Facilities:     input.Facilities,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = s.store.CreateRoom(ctx, created); err != nil {
		created = Room{}
		err = mapRoomRepoError(err)
		return
	}
	return
}

// UpdateRoom replaces a room's mutable attributes.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (updated Room, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"actor_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.store.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if !canManageRoom(params.Principal, existing.OrganizationID) {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if input.OrganizationID == "" {
		input.OrganizationID = existing.OrganizationID
	}
	if input.OrganizationID != existing.OrganizationID && params.Principal.Role != RoleSysAdmin {
		err = ErrUnauthorized
		return
	}
	if err = validateRoomInput(input); err != nil {
		return
	}

	updated = existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Location = strings.TrimSpace(input.Location)
	updated.Capacity = input.Capacity
	updated.OrganizationID = input.OrganizationID
	updated.Facilities = input.Facilities
	updated.UpdatedAt = s.now()

	if err = s.store.UpdateRoom(ctx, updated); err != nil {
		updated = Room{}
		err = mapRoomRepoError(err)
		return
	}
	return
}

// DeleteRoom removes a room from the catalog. Rooms with bookings on record
// cannot be deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) (err error) {
	if s == nil || s.store == nil {
		return fmt.Errorf("room store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"actor_id", principal.UserID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room deleted")
	}()

	var existing Room
	existing, err = s.store.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if !canManageRoom(principal, existing.OrganizationID) {
		err = ErrUnauthorized
		return
	}

	if err = s.store.DeleteRoom(ctx, roomID); err != nil {
		err = mapRoomRepoError(err)
		return
	}
	return
}

// GetRoom returns a room by ID.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (Room, error) {
	if s == nil || s.store == nil {
		return Room{}, fmt.Errorf("room store not configured")
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// ListRooms returns the full catalog.
func (s *RoomService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("room store not configured")
	}
	return s.store.ListRooms(ctx)
}

func validateRoomInput(input RoomInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if strings.TrimSpace(input.OrganizationID) == "" {
		vErr.add("organization_id", "organization is required")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrRoomInUse
	}
	return err
}
