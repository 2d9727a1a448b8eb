package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountDisabled):
		return "account_disabled"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var pErr *PolicyError
	if errors.As(err, &pErr) {
		return "policy_violation"
	}
	var roomErr *RoomConflictError
	if errors.As(err, &roomErr) {
		return "room_conflict"
	}
	var reqErr *RequesterConflictError
	if errors.As(err, &reqErr) {
		return "requester_conflict"
	}
	var recErr *RecurrenceConflictError
	if errors.As(err, &recErr) {
		return "recurrence_conflict"
	}
	var transErr *IllegalTransitionError
	if errors.As(err, &transErr) {
		return "illegal_transition"
	}
	var pvErr *booking.PolicyViolation
	if errors.As(err, &pvErr) {
		return "policy_violation"
	}

	return "unexpected"
}
