package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/persistence"
)

type fakeSessionStore struct {
	sessions map[string]Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]Session)}
}

func (f *fakeSessionStore) CreateSession(_ context.Context, session Session) (Session, error) {
	f.sessions[session.Token] = session
	return session, nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, token string) (Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) RevokeSession(_ context.Context, token string, revokedAt time.Time) (Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	if session.RevokedAt == nil {
		session.RevokedAt = &revokedAt
		session.UpdatedAt = revokedAt
		f.sessions[token] = session
	}
	return session, nil
}

func (f *fakeSessionStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	for token, session := range f.sessions {
		if !reference.Before(session.ExpiresAt) {
			delete(f.sessions, token)
		}
	}
	return nil
}

type authFixture struct {
	service  *AuthService
	users    *fakeUserStore
	sessions *fakeSessionStore
	now      time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserStore()
	sessions := newFakeSessionStore()

	hash, err := CreatePasswordHash("correct horse battery", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("hashing fixture password: %v", err)
	}
	users.users["user-1"] = UserCredentials{
		User: User{
			ID:             "user-1",
			Email:          "alice@example.com",
			DisplayName:    "Alice",
			OrganizationID: "org-1",
			Role:           RoleMember,
		},
		PasswordHash: hash,
	}

	fx := &authFixture{users: users, sessions: sessions, now: referenceNow}
	idGenerator := func() string { return "session-1" }
	now := func() time.Time { return fx.now }
	fx.service = NewAuthService(users, sessions, time.Hour, idGenerator, now)
	return fx
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "Alice@Example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result.User.ID != "user-1" {
		t.Errorf("user = %+v, want user-1", result.User)
	}
	if result.Session.Token == "" {
		t.Error("session token is empty")
	}
	if !result.Session.ExpiresAt.Equal(referenceNow.Add(time.Hour)) {
		t.Errorf("expiry = %v, want now+TTL", result.Session.ExpiresAt)
	}
}

func TestAuthService_AuthenticateFailures(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "nobody@example.com", "whatever", ErrInvalidCredentials},
		{"wrong password", "alice@example.com", "wrong", ErrInvalidCredentials},
		{"empty password", "alice@example.com", "", ErrInvalidCredentials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.service.Authenticate(context.Background(), AuthenticateParams{Email: tc.email, Password: tc.password})
			if !errors.Is(err, tc.want) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAuthService_AuthenticateDisabledAccount(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)
	record := fx.users.users["user-1"]
	record.Disabled = true
	fx.users.users["user-1"] = record

	_, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("Authenticate() error = %v, want ErrAccountDisabled", err)
	}
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatal(err)
	}

	principal, err := fx.service.ValidateSession(context.Background(), result.Session.Token)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	want := Principal{UserID: "user-1", OrganizationID: "org-1", Role: RoleMember}
	if principal != want {
		t.Errorf("principal = %+v, want %+v", principal, want)
	}

	if _, err := fx.service.ValidateSession(context.Background(), "bogus"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown token error = %v, want ErrInvalidCredentials", err)
	}

	// Past expiry the token stops validating.
	fx.now = referenceNow.Add(2 * time.Hour)
	if _, err := fx.service.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expired token error = %v, want ErrSessionExpired", err)
	}
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := fx.service.RevokeSession(context.Background(), result.Session.Token); err != nil {
		t.Fatalf("RevokeSession() error = %v", err)
	}
	if _, err := fx.service.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("revoked token error = %v, want ErrSessionRevoked", err)
	}
}

func TestAuthService_ValidateSessionDisabledAccount(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatal(err)
	}

	record := fx.users.users["user-1"]
	record.Disabled = true
	fx.users.users["user-1"] = record

	if _, err := fx.service.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("disabled account token error = %v, want ErrAccountDisabled", err)
	}
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatal(err)
	}

	fx.now = referenceNow.Add(2 * time.Hour)
	if err := fx.service.PurgeExpiredSessions(context.Background()); err != nil {
		t.Fatalf("PurgeExpiredSessions() error = %v", err)
	}
	if _, ok := fx.sessions.sessions[result.Session.Token]; ok {
		t.Error("expired session still present after purge")
	}
}
