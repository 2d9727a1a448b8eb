package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

// BookingEvent describes a lifecycle transition of a single booking. From is
// the zero Status for creation into PENDING.
type BookingEvent struct {
	BookingID         string
	RoomID            string
	RequesterID       string
	RecurrenceGroupID *string
	From              booking.Status
	To                booking.Status
	ActorID           string
	At                time.Time
}

// EventPublisher receives booking lifecycle events. Implementations must not
// block the calling service; delivery is best effort and failures are the
// publisher's concern.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent)
}

// LogPublisher emits lifecycle events to the structured log. It stands in
// for a real notification channel in single-node deployments.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: defaultLogger(logger)}
}

// PublishBookingEvent logs the event with stable attribute names.
func (p *LogPublisher) PublishBookingEvent(ctx context.Context, event BookingEvent) {
	if p == nil {
		return
	}
	logger := serviceLogger(ctx, p.logger, "LogPublisher", "PublishBookingEvent")
	attrs := []any{
		"booking_id", event.BookingID,
		"room_id", event.RoomID,
		"requester_id", event.RequesterID,
		"to", string(event.To),
		"actor_id", event.ActorID,
		"at", event.At,
	}
	if event.From != "" {
		attrs = append(attrs, "from", string(event.From))
	}
	if event.RecurrenceGroupID != nil {
		attrs = append(attrs, "recurrence_group_id", *event.RecurrenceGroupID)
	}
	logger.InfoContext(ctx, "booking lifecycle event", attrs...)
}

// publishAll sends one event per booking; used for series creation.
func publishAll(ctx context.Context, publisher EventPublisher, bookings []Booking, actorID string, at time.Time) {
	if publisher == nil {
		return
	}
	for _, b := range bookings {
		publisher.PublishBookingEvent(ctx, BookingEvent{
			BookingID:         b.ID,
			RoomID:            b.RoomID,
			RequesterID:       b.RequesterID,
			RecurrenceGroupID: b.RecurrenceGroupID,
			To:                b.Status,
			ActorID:           actorID,
			At:                at,
		})
	}
}
