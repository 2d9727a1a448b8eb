package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

// DefaultSessionTTL bounds how long an issued session stays valid without
// re-authentication.
const DefaultSessionTTL = 12 * time.Hour

const sessionTokenBytes = 32

// SessionStore captures the persistence interactions needed by AuthService.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService authenticates users and manages their sessions. Validation
// resolves a session token back to a Principal carrying the user's role and
// organization for authorization decisions downstream.
type AuthService struct {
	users          UserStore
	sessions       SessionStore
	sessionTTL     time.Duration
	idGenerator    func() string
	tokenGenerator func() (string, error)
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication operations.
func NewAuthService(users UserStore, sessions SessionStore, sessionTTL time.Duration, idGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, sessionTTL, idGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users UserStore, sessions SessionStore, sessionTTL time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		sessionTTL:     sessionTTL,
		idGenerator:    idGenerator,
		tokenGenerator: generateSessionToken,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate verifies credentials and issues a session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil || s.users == nil || s.sessions == nil {
		err = fmt.Errorf("auth stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate", "email", params.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "user authenticated")
	}()

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var record UserCredentials
	record, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if isNotFoundError(err) {
			err = ErrInvalidCredentials
		}
		return
	}
	if record.Disabled || record.User.Disabled {
		err = ErrAccountDisabled
		return
	}

	if err = VerifyPassword(record.PasswordHash, params.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return
		}
		err = fmt.Errorf("verifying password: %w", err)
		return
	}

	var token string
	token, err = s.tokenGenerator()
	if err != nil {
		err = fmt.Errorf("generating session token: %w", err)
		return
	}

	now := s.now()
	session := Session{
		ID:        s.idGenerator(),
		UserID:    record.User.ID,
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}

	result = AuthenticateResult{User: record.User, Session: session}
	return
}

// ValidateSession resolves a session token to the authenticated principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.users == nil || s.sessions == nil {
		return Principal{}, fmt.Errorf("auth stores not configured")
	}
	if token == "" {
		return Principal{}, ErrInvalidCredentials
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if isNotFoundError(err) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	record, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if isNotFoundError(err) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	if record.Disabled || record.User.Disabled {
		return Principal{}, ErrAccountDisabled
	}

	return Principal{
		UserID:         record.User.ID,
		OrganizationID: record.User.OrganizationID,
		Role:           record.User.Role,
	}, nil
}

// RevokeSession invalidates the session identified by token. Revoking an
// already revoked session is a no-op.
func (s *AuthService) RevokeSession(ctx context.Context, token string) (err error) {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth stores not configured")
	}

	logger := s.loggerWith(ctx, "RevokeSession")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session revocation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session revoked")
	}()

	if token == "" {
		err = ErrInvalidCredentials
		return
	}
	if _, err = s.sessions.RevokeSession(ctx, token, s.now()); err != nil {
		if isNotFoundError(err) || errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}
	return
}

// PurgeExpiredSessions deletes sessions past their expiry. Intended to run
// on the background maintenance schedule.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth stores not configured")
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

func generateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
