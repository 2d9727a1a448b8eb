package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/application"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

type bookingService interface {
	Submit(ctx context.Context, params application.SubmitBookingParams) (application.SubmitBookingResult, error)
	Decide(ctx context.Context, params application.DecideBookingParams) (application.Booking, error)
	Cancel(ctx context.Context, params application.CancelBookingParams) (application.Booking, error)
	GetBooking(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.Submit(r.Context(), application.SubmitBookingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, submitResponse{
		Bookings:          toBookingDTOs(result.Bookings),
		RecurrenceGroupID: result.RecurrenceGroupID,
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.GetBooking(r.Context(), principal, bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(result)})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := buildBookingListParams(r.URL.Query(), principal)

	bookings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Decide", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode decision request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.Decide(r.Context(), application.DecideBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Decision:  application.Decision(strings.TrimSpace(strings.ToLower(req.Decision))),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(result)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.Cancel(r.Context(), application.CancelBookingParams{
		Principal: principal,
		BookingID: bookingID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(result)})
}

type bookingRequest struct {
	RoomID     string             `json:"room_id"`
	Purpose    string             `json:"purpose"`
	Start      string             `json:"start"`
	End        string             `json:"end"`
	Recurrence *recurrenceRequest `json:"recurrence,omitempty"`
}

type recurrenceRequest struct {
	Frequency string   `json:"frequency"`
	Weekdays  []string `json:"weekdays,omitempty"`
	Until     string   `json:"until"`
}

func (r bookingRequest) toInput() application.BookingInput {
	input := application.BookingInput{
		RoomID:  strings.TrimSpace(r.RoomID),
		Purpose: strings.TrimSpace(r.Purpose),
		Start:   parseTime(r.Start),
		End:     parseTime(r.End),
	}
	if r.Recurrence != nil {
		input.Recurrence = &application.RecurrenceInput{
			Frequency: strings.TrimSpace(strings.ToLower(r.Recurrence.Frequency)),
			Weekdays:  parseWeekdays(r.Recurrence.Weekdays),
			Until:     parseDateOrTime(r.Recurrence.Until),
		}
	}
	return input
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

type submitResponse struct {
	Bookings          []bookingDTO `json:"bookings"`
	RecurrenceGroupID *string      `json:"recurrence_group_id,omitempty"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID                string  `json:"id"`
	RoomID            string  `json:"room_id"`
	RequesterID       string  `json:"requester_id"`
	OrganizationID    string  `json:"organization_id,omitempty"`
	Purpose           string  `json:"purpose"`
	Start             string  `json:"start"`
	End               string  `json:"end"`
	Status            string  `json:"status"`
	RecurrenceGroupID *string `json:"recurrence_group_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	DecidedAt         *string `json:"decided_at,omitempty"`
	DecidedBy         *string `json:"decided_by,omitempty"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:                b.ID,
		RoomID:            b.RoomID,
		RequesterID:       b.RequesterID,
		OrganizationID:    b.OrganizationID,
		Purpose:           b.Purpose,
		Start:             b.Start.UTC().Format(time.RFC3339Nano),
		End:               b.End.UTC().Format(time.RFC3339Nano),
		Status:            string(b.Status),
		RecurrenceGroupID: b.RecurrenceGroupID,
		CreatedAt:         b.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:         b.UpdatedAt.UTC().Format(time.RFC3339Nano),
		DecidedBy:         b.DecidedBy,
	}
	if b.DecidedAt != nil {
		decidedAt := b.DecidedAt.UTC().Format(time.RFC3339Nano)
		dto.DecidedAt = &decidedAt
	}
	return dto
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out
}

func buildBookingListParams(values url.Values, principal application.Principal) application.ListBookingsParams {
	params := application.ListBookingsParams{Principal: principal}

	params.RoomID = strings.TrimSpace(values.Get("room_id"))
	params.RequesterID = strings.TrimSpace(values.Get("requester_id"))

	if statuses := strings.TrimSpace(values.Get("status")); statuses != "" {
		for _, status := range parseCSV(statuses) {
			params.Statuses = append(params.Statuses, booking.Status(strings.ToUpper(status)))
		}
	}

	if from := parseTime(values.Get("from")); !from.IsZero() {
		params.From = &from
	}
	if to := parseTime(values.Get("to")); !to.IsZero() {
		params.To = &to
	}

	return params
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

// parseDateOrTime accepts a bare date for boundaries such as the recurrence
// until field, falling back to the timestamp formats.
func parseDateOrTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts
	}
	return parseTime(value)
}

func parseWeekdays(values []string) []time.Weekday {
	if len(values) == 0 {
		return nil
	}
	names := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	out := make([]time.Weekday, 0, len(values))
	for _, value := range values {
		if day, ok := names[strings.ToLower(strings.TrimSpace(value))]; ok {
			out = append(out, day)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
