package booking

import (
	"fmt"
	"time"
)

// Event names a lifecycle transition request.
type Event string

const (
	// EventApprove confirms a pending booking. Requires approval capability.
	EventApprove Event = "approve"
	// EventReject declines a pending booking. Requires approval capability.
	EventReject Event = "reject"
	// EventCancel withdraws a pending or approved booking.
	EventCancel Event = "cancel"
	// EventComplete is system-triggered once an approved booking's end has passed.
	EventComplete Event = "complete"
	// EventExpire is system-triggered when a pending booking's start passes
	// without a decision; the booking is treated as rejected, never completed.
	EventExpire Event = "expire"
)

var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventApprove: StatusApproved,
		EventReject:  StatusRejected,
		EventCancel:  StatusCancelled,
		EventExpire:  StatusRejected,
	},
	StatusApproved: {
		EventCancel:   StatusCancelled,
		EventComplete: StatusCompleted,
	},
}

// TransitionError reports an event that is not legal from the current status.
type TransitionError struct {
	From  Status
	Event Event
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("illegal transition: %s from %s", e.Event, e.From)
}

// Next returns the status the event leads to from the current one, or a
// *TransitionError when the event is not legal. Terminal states have no
// outgoing transitions.
func Next(current Status, event Event) (Status, error) {
	if outgoing, ok := transitions[current]; ok {
		if next, ok := outgoing[event]; ok {
			return next, nil
		}
	}
	return "", &TransitionError{From: current, Event: event}
}

// LifecycleEvent records a successful transition for the notification
// collaborator. The state machine performs no notification I/O itself.
// A zero From marks initial creation into PENDING.
type LifecycleEvent struct {
	BookingID string
	From      Status
	To        Status
	Actor     string
	At        time.Time
}
