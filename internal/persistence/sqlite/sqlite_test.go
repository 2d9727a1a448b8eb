package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

func TestUserRepository_CRUD(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	repo := NewUserRepository(pool)
	user := persistence.User{
		ID:             "user-1",
		Email:          "alice@example.com",
		DisplayName:    "Alice",
		OrganizationID: "org-1",
		Role:           "org_admin",
		PasswordHash:   "hash",
		CreatedAt:      base,
		UpdatedAt:      base,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dupe := user
	dupe.ID = "user-2"
	dupe.Email = "ALICE@EXAMPLE.COM"
	if err := repo.CreateUser(ctx, dupe); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected case-insensitive duplicate email, got %v", err)
	}

	fetched, err := repo.GetUserByEmail(ctx, "Alice@Example.Com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if fetched.ID != "user-1" || fetched.Role != "org_admin" {
		t.Fatalf("unexpected user: %#v", fetched)
	}

	user.DisplayName = "Alice Updated"
	user.Disabled = true
	user.UpdatedAt = base.Add(time.Hour)
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	fetched, err = repo.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if fetched.DisplayName != "Alice Updated" || !fetched.Disabled {
		t.Fatalf("unexpected updated user: %#v", fetched)
	}

	if err := repo.DeleteUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := repo.DeleteUser(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_RejectsUnknownRole(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	repo := NewUserRepository(pool)
	err := repo.CreateUser(ctx, persistence.User{
		ID:             "user-1",
		Email:          "alice@example.com",
		DisplayName:    "Alice",
		OrganizationID: "org-1",
		Role:           "superuser",
		PasswordHash:   "hash",
		CreatedAt:      base,
		UpdatedAt:      base,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestRoomRepository_CRUDAndOrdering(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	repo := NewRoomRepository(pool)
	facilities := "projector,whiteboard"
	rooms := []persistence.Room{
		{ID: "room-2", Name: "Sakura", OrganizationID: "org-1", Capacity: 4, CreatedAt: base, UpdatedAt: base},
		{ID: "room-1", Name: "Boardroom", OrganizationID: "org-1", Capacity: 12, Facilities: &facilities, CreatedAt: base, UpdatedAt: base},
	}
	for _, room := range rooms {
		if err := repo.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom(%s) failed: %v", room.ID, err)
		}
	}

	listed, err := repo.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(listed) != 2 || listed[0].Name != "Boardroom" {
		t.Fatalf("expected name ordering, got %#v", listed)
	}
	if listed[0].Facilities == nil || *listed[0].Facilities != facilities {
		t.Fatalf("expected facilities to round-trip, got %#v", listed[0].Facilities)
	}

	if err := repo.DeleteRoom(ctx, "room-2"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}
	if _, err := repo.GetRoom(ctx, "room-2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	seedRoomAndUser(t, pool, base)

	repo := NewSessionRepository(pool)
	session := persistence.Session{
		ID:        "session-1",
		UserID:    "user-1",
		Token:     "token-1",
		ExpiresAt: base.Add(8 * time.Hour),
		CreatedAt: base,
		UpdatedAt: base,
	}
	if _, err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	fetched, err := repo.GetSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched.UserID != "user-1" || fetched.RevokedAt != nil {
		t.Fatalf("unexpected session: %#v", fetched)
	}

	revoked, err := repo.RevokeSession(ctx, "token-1", base.Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected revoked_at to be set, got %#v", revoked.RevokedAt)
	}

	if err := repo.DeleteExpiredSessions(ctx, base.Add(9*time.Hour)); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if _, err := repo.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}
