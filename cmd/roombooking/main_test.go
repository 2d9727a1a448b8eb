package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/application"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/config"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence/adapter"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence/memory"
)

func TestSeedInitialAdmin(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	t.Run("creates the administrator when missing", func(t *testing.T) {
		t.Parallel()
		users := adapter.NewUserStore(memory.NewStore())
		cfg := config.Config{
			AdminEmail:        "admin@example.com",
			AdminPassword:     "initial-password",
			AdminOrganization: "head-office",
		}

		if err := seedInitialAdmin(ctx, users, cfg, now, logger); err != nil {
			t.Fatalf("seedInitialAdmin returned error: %v", err)
		}

		stored, err := users.GetUserByEmail(ctx, "admin@example.com")
		if err != nil {
			t.Fatalf("administrator was not created: %v", err)
		}
		if stored.User.Role != application.RoleSysAdmin {
			t.Errorf("role = %s, want %s", stored.User.Role, application.RoleSysAdmin)
		}
		if stored.User.OrganizationID != "head-office" {
			t.Errorf("organization = %s, want head-office", stored.User.OrganizationID)
		}
		if err := application.VerifyPassword(stored.PasswordHash, "initial-password"); err != nil {
			t.Errorf("seeded password does not verify: %v", err)
		}
	})

	t.Run("leaves an existing account untouched", func(t *testing.T) {
		t.Parallel()
		users := adapter.NewUserStore(memory.NewStore())
		cfg := config.Config{AdminEmail: "admin@example.com", AdminPassword: "first"}

		if err := seedInitialAdmin(ctx, users, cfg, now, logger); err != nil {
			t.Fatalf("first seed failed: %v", err)
		}
		before, err := users.GetUserByEmail(ctx, "admin@example.com")
		if err != nil {
			t.Fatal(err)
		}

		cfg.AdminPassword = "second"
		if err := seedInitialAdmin(ctx, users, cfg, now, logger); err != nil {
			t.Fatalf("second seed failed: %v", err)
		}
		after, err := users.GetUserByEmail(ctx, "admin@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if after.PasswordHash != before.PasswordHash {
			t.Error("second seed replaced the existing credentials")
		}
	})

	t.Run("does nothing when no admin is configured", func(t *testing.T) {
		t.Parallel()
		users := adapter.NewUserStore(memory.NewStore())

		if err := seedInitialAdmin(ctx, users, config.Config{}, now, logger); err != nil {
			t.Fatalf("seedInitialAdmin returned error: %v", err)
		}
		listed, err := users.ListUsers(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(listed) != 0 {
			t.Fatalf("expected no users, got %d", len(listed))
		}
	})
}
