package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/application"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/config"
	httptransport "github.com/IshimwePatience/conferenceroomrbc-sub000/internal/http"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/logging"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence/adapter"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence/sqlite"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence/sqlite/migration"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/recurrence"
)

func main() {
	logger := logging.New(os.Stdout, "info")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.LogLevel)

	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	bookingStore := adapter.NewBookingStore(sqlite.NewBookingRepository(pool))
	roomStore := adapter.NewRoomStore(sqlite.NewRoomRepository(pool))
	userStore := adapter.NewUserStore(sqlite.NewUserRepository(pool))
	sessionStore := adapter.NewSessionStore(sqlite.NewSessionRepository(pool))

	now := time.Now
	validator := booking.NewValidator(cfg.PolicyOptions())
	expander := recurrence.NewExpander(validator.Options().Location)
	publisher := application.NewLogPublisher(logger)

	bookingService := application.NewBookingServiceWithLogger(bookingStore, roomStore, userStore.Directory(), validator, expander, publisher, uuid.NewString, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomStore, uuid.NewString, now, logger)
	userService := application.NewUserServiceWithLogger(userStore, uuid.NewString, now, logger)
	authService := application.NewAuthServiceWithLogger(userStore, sessionStore, cfg.SessionTTL, uuid.NewString, now, logger)

	if err := seedInitialAdmin(context.Background(), userStore, cfg, now, logger); err != nil {
		logger.Error("failed to seed initial administrator", "error", err)
		os.Exit(1)
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every "+cfg.SweepInterval.String(), func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := bookingService.SweepElapsed(sweepCtx); err != nil {
			logger.Error("lifecycle sweep failed", "error", err)
		}
		if err := authService.PurgeExpiredSessions(sweepCtx); err != nil {
			logger.Error("session purge failed", "error", err)
		}
	}); err != nil {
		logger.Error("failed to schedule lifecycle sweep", "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Availability: httptransport.NewAvailabilityHandler(bookingService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireSession(authService, logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// seedInitialAdmin creates the bootstrap system administrator when the
// configured account does not exist yet. Without it a fresh database has no
// account able to sign in.
func seedInitialAdmin(ctx context.Context, users application.UserStore, cfg config.Config, now func() time.Time, logger *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetUserByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	hash, err := application.CreatePasswordHash(cfg.AdminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return err
	}

	created := now().UTC()
	if err := users.CreateUser(ctx, application.UserCredentials{
		User: application.User{
			ID:             uuid.NewString(),
			Email:          cfg.AdminEmail,
			DisplayName:    "Administrator",
			OrganizationID: cfg.AdminOrganization,
			Role:           application.RoleSysAdmin,
			CreatedAt:      created,
			UpdatedAt:      created,
		},
		PasswordHash: hash,
	}); err != nil {
		return err
	}

	logger.Info("seeded initial administrator", "email", cfg.AdminEmail)
	return nil
}
