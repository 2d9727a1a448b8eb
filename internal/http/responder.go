package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/application"
)

var (
	errBadRequestBody      = errors.New("request body is not valid JSON")
	errInvalidBookingID    = errors.New("a booking ID is required")
	errInvalidRoomID       = errors.New("a room ID is required")
	errInvalidUserID       = errors.New("a user ID is required")
	errMissingSessionToken = errors.New("a session token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application errors to HTTP statuses:
// validation and policy failures map to 422, conflicts and stale transitions
// to 409, authorization failures to 403, auth failures to 401.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "you are not allowed to perform this operation",
		})
		return
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
		return
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "a resource with the same identity already exists"})
		return
	case errors.Is(err, application.ErrRoomInUse):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "the room still has bookings on record"})
		return
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked),
		errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_UNAUTHORIZED",
			Message:   "authentication is required",
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid fields",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	var pErr *application.PolicyError
	if errors.As(err, &pErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode:  "POLICY_VIOLATION",
			Message:    "the booking request violates a booking policy",
			Violations: toViolationDTOs(pErr),
		})
		return
	}

	var roomErr *application.RoomConflictError
	if errors.As(err, &roomErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ROOM_CONFLICT",
			Message:   roomErr.Error(),
			Conflicts: toConflictDTOs(roomErr.Conflicts),
		})
		return
	}

	var reqErr *application.RequesterConflictError
	if errors.As(err, &reqErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "REQUESTER_CONFLICT",
			Message:   reqErr.Error(),
			Conflicts: toConflictDTOs(reqErr.Conflicts),
		})
		return
	}

	var recErr *application.RecurrenceConflictError
	if errors.As(err, &recErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "RECURRENCE_CONFLICT",
			Message:   recErr.Error(),
			Failures:  toFailureDTOs(recErr.Failures),
		})
		return
	}

	var transErr *application.IllegalTransitionError
	if errors.As(err, &transErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ILLEGAL_TRANSITION",
			Message:   transErr.Error(),
			Status:    string(transErr.Status),
		})
		return
	}

	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "an internal error occurred"})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode  string            `json:"error_code,omitempty"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
	Violations []violationDTO    `json:"violations,omitempty"`
	Conflicts  []conflictDTO     `json:"conflicts,omitempty"`
	Failures   []failureDTO      `json:"failures,omitempty"`
	Status     string            `json:"status,omitempty"`
}

type violationDTO struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type conflictDTO struct {
	BookingID      string `json:"booking_id"`
	RoomID         string `json:"room_id"`
	RequesterID    string `json:"requester_id"`
	OrganizationID string `json:"organization_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Status         string `json:"status"`
}

type failureDTO struct {
	Start     string        `json:"start"`
	End       string        `json:"end"`
	Conflicts []conflictDTO `json:"conflicts,omitempty"`
}

func toViolationDTOs(pErr *application.PolicyError) []violationDTO {
	if pErr == nil || len(pErr.Violations) == 0 {
		return nil
	}
	out := make([]violationDTO, 0, len(pErr.Violations))
	for _, violation := range pErr.Violations {
		out = append(out, violationDTO{
			Reason: string(violation.Violation.Reason),
			Detail: violation.Violation.Detail,
			Start:  violation.Start.UTC().Format(time.RFC3339Nano),
			End:    violation.End.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func toConflictDTOs(conflicts []application.Booking) []conflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, conflictDTO{
			BookingID:      conflict.ID,
			RoomID:         conflict.RoomID,
			RequesterID:    conflict.RequesterID,
			OrganizationID: conflict.OrganizationID,
			Start:          conflict.Start.UTC().Format(time.RFC3339Nano),
			End:            conflict.End.UTC().Format(time.RFC3339Nano),
			Status:         string(conflict.Status),
		})
	}
	return out
}

func toFailureDTOs(failures []application.OccurrenceConflict) []failureDTO {
	if len(failures) == 0 {
		return nil
	}
	out := make([]failureDTO, 0, len(failures))
	for _, failure := range failures {
		out = append(out, failureDTO{
			Start:     failure.Start.UTC().Format(time.RFC3339Nano),
			End:       failure.End.UTC().Format(time.RFC3339Nano),
			Conflicts: toConflictDTOs(failure.Conflicts),
		})
	}
	return out
}
