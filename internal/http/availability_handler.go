package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/application"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/availability"
	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

type availabilityService interface {
	RoomAvailability(ctx context.Context, params application.AvailabilityParams) (application.RoomAvailability, error)
	FreeRooms(ctx context.Context, params application.FreeRoomsParams) ([]application.Room, error)
	HourlyOccupancy(ctx context.Context, params application.OccupancyParams) ([]availability.HourSlot, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

// RoomAvailability serves the busy/free projection for one room.
func (h *AvailabilityHandler) RoomAvailability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.RoomAvailability(r.Context(), application.AvailabilityParams{
		Principal: principal,
		RoomID:    roomID,
		From:      parseTime(r.URL.Query().Get("from")),
		To:        parseTime(r.URL.Query().Get("to")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		RoomID: result.RoomID,
		From:   result.Window.Start.UTC().Format(time.RFC3339Nano),
		To:     result.Window.End.UTC().Format(time.RFC3339Nano),
		Busy:   toIntervalDTOs(result.Busy),
		Free:   toIntervalDTOs(result.Free),
	})
}

// FreeRooms serves the rooms with no active booking over a window.
func (h *AvailabilityHandler) FreeRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	rooms, err := h.service.FreeRooms(r.Context(), application.FreeRoomsParams{
		Principal: principal,
		From:      parseTime(r.URL.Query().Get("from")),
		To:        parseTime(r.URL.Query().Get("to")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, freeRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

// Occupancy serves the slot grid projection for calendar rendering.
func (h *AvailabilityHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	var slot time.Duration
	if raw := strings.TrimSpace(r.URL.Query().Get("slot")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			slot = parsed
		}
	}

	principal, _ := PrincipalFromContext(r.Context())
	slots, err := h.service.HourlyOccupancy(r.Context(), application.OccupancyParams{
		Principal: principal,
		RoomID:    roomID,
		From:      parseTime(r.URL.Query().Get("from")),
		To:        parseTime(r.URL.Query().Get("to")),
		Slot:      slot,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupancyResponse{
		RoomID: roomID,
		Slots:  toSlotDTOs(slots),
	})
}

type availabilityResponse struct {
	RoomID string        `json:"room_id"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Busy   []intervalDTO `json:"busy"`
	Free   []intervalDTO `json:"free"`
}

type freeRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type occupancyResponse struct {
	RoomID string    `json:"room_id"`
	Slots  []slotDTO `json:"slots"`
}

type intervalDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type slotDTO struct {
	Start    string `json:"start"`
	Occupied bool   `json:"occupied"`
}

func toIntervalDTOs(intervals []booking.Interval) []intervalDTO {
	if len(intervals) == 0 {
		return nil
	}
	out := make([]intervalDTO, 0, len(intervals))
	for _, interval := range intervals {
		out = append(out, intervalDTO{
			Start: interval.Start.UTC().Format(time.RFC3339Nano),
			End:   interval.End.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func toSlotDTOs(slots []availability.HourSlot) []slotDTO {
	if len(slots) == 0 {
		return nil
	}
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{
			Start:    slot.Start.UTC().Format(time.RFC3339Nano),
			Occupied: slot.Occupied,
		})
	}
	return out
}
