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

const minPasswordLength = 8

// UserStore captures the persistence interactions needed by UserService and
// AuthService. Records carry the password hash alongside the account.
type UserStore interface {
	CreateUser(ctx context.Context, user UserCredentials) error
	UpdateUser(ctx context.Context, user UserCredentials) error
	GetUser(ctx context.Context, id string) (UserCredentials, error)
	GetUserByEmail(ctx context.Context, email string) (UserCredentials, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// UserService manages user accounts. Account writes are restricted to
// administrators; org admins are limited to member accounts in their own
// organization.
type UserService struct {
	store       UserStore
	hashParams  Argon2idParams
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for account management.
func NewUserService(store UserStore, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(store, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(store UserStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		store:       store,
		hashParams:  DefaultArgon2idParams,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// canManageUser reports whether the principal may administer an account with
// the given organization and role.
func canManageUser(principal Principal, organizationID string, role Role) bool {
	switch principal.Role {
	case RoleSysAdmin:
		return true
	case RoleOrgAdmin:
		return role == RoleMember && principal.OrganizationID != "" && principal.OrganizationID == organizationID
	}
	return false
}

// CreateUser provisions a new account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (created User, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser",
		"actor_id", params.Principal.UserID,
		"email", params.Input.Email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", created.ID).InfoContext(ctx, "user created")
	}()

	input := params.Input
	if input.OrganizationID == "" && params.Principal.Role == RoleOrgAdmin {
		input.OrganizationID = params.Principal.OrganizationID
	}
	if input.Role == "" {
		input.Role = RoleMember
	}

	if !canManageUser(params.Principal, input.OrganizationID, input.Role) {
		err = ErrUnauthorized
		return
	}

	if err = validateUserInput(input, true); err != nil {
		return
	}

	var hash string
	hash, err = CreatePasswordHash(input.Password, s.hashParams)
	if err != nil {
		return
	}

	now := s.now()
	created = User{
		ID:             s.idGenerator(),
		Email:          strings.TrimSpace(strings.ToLower(input.Email)),
		DisplayName:    strings.TrimSpace(input.DisplayName),
		OrganizationID: input.OrganizationID,
		Role:           input.Role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = s.store.CreateUser(ctx, UserCredentials{User: created, PasswordHash: hash}); err != nil {
		created = User{}
		err = mapUserRepoError(err)
		return
	}
	return
}

// UpdateUser replaces an account's mutable attributes. An empty password
// leaves the stored hash unchanged.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (updated User, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser",
		"actor_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	var existing UserCredentials
	existing, err = s.store.GetUser(ctx, params.UserID)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	if !canManageUser(params.Principal, existing.User.OrganizationID, existing.User.Role) {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if input.OrganizationID == "" {
		input.OrganizationID = existing.User.OrganizationID
	}
	if input.Role == "" {
		input.Role = existing.User.Role
	}
	if !canManageUser(params.Principal, input.OrganizationID, input.Role) {
		err = ErrUnauthorized
		return
	}
	if err = validateUserInput(input, input.Password != ""); err != nil {
		return
	}

	record := existing
	record.User.Email = strings.TrimSpace(strings.ToLower(input.Email))
	record.User.DisplayName = strings.TrimSpace(input.DisplayName)
	record.User.OrganizationID = input.OrganizationID
	record.User.Role = input.Role
	record.User.UpdatedAt = s.now()
	if input.Password != "" {
		record.PasswordHash, err = CreatePasswordHash(input.Password, s.hashParams)
		if err != nil {
			return
		}
	}

	if err = s.store.UpdateUser(ctx, record); err != nil {
		err = mapUserRepoError(err)
		return
	}
	updated = record.User
	return
}

// SetUserDisabled toggles an account's disabled flag. Disabled accounts
// cannot authenticate and their existing sessions stop validating.
func (s *UserService) SetUserDisabled(ctx context.Context, principal Principal, userID string, disabled bool) (err error) {
	if s == nil || s.store == nil {
		return fmt.Errorf("user store not configured")
	}

	logger := s.loggerWith(ctx, "SetUserDisabled",
		"actor_id", principal.UserID,
		"user_id", userID,
		"disabled", disabled,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user disable toggle failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user disable toggled")
	}()

	var existing UserCredentials
	existing, err = s.store.GetUser(ctx, userID)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	if !canManageUser(principal, existing.User.OrganizationID, existing.User.Role) {
		err = ErrUnauthorized
		return
	}

	existing.Disabled = disabled
	existing.User.Disabled = disabled
	existing.User.UpdatedAt = s.now()
	if err = s.store.UpdateUser(ctx, existing); err != nil {
		err = mapUserRepoError(err)
		return
	}
	return
}

// GetUser returns an account by ID. Members may only read their own account.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil || s.store == nil {
		return User{}, fmt.Errorf("user store not configured")
	}
	if principal.Role == RoleMember && principal.UserID != userID {
		return User{}, ErrUnauthorized
	}
	record, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return record.User, nil
}

// ListUsers enumerates accounts. Restricted to administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("user store not configured")
	}
	switch principal.Role {
	case RoleSysAdmin:
		return s.store.ListUsers(ctx)
	case RoleOrgAdmin:
		users, err := s.store.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		scoped := make([]User, 0, len(users))
		for _, u := range users {
			if u.OrganizationID == principal.OrganizationID {
				scoped = append(scoped, u)
			}
		}
		if len(scoped) == 0 {
			return nil, nil
		}
		return scoped, nil
	}
	return nil, ErrUnauthorized
}

func validateUserInput(input UserInput, requirePassword bool) error {
	vErr := &ValidationError{}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must contain @")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if !input.Role.Valid() {
		vErr.add("role", "role must be member, org_admin, or sys_admin")
	}
	if strings.TrimSpace(input.OrganizationID) == "" {
		vErr.add("organization_id", "organization is required")
	}
	if requirePassword && len(input.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
