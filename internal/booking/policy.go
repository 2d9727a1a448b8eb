package booking

import (
	"fmt"
	"time"
)

// Reason identifies which policy rule rejected a candidate interval. The
// values are stable codes that callers branch on; the human message lives in
// PolicyViolation.Detail.
type Reason string

const (
	ReasonStartInPast          Reason = "start_in_past"
	ReasonNonPositiveDuration  Reason = "non_positive_duration"
	ReasonWeekendBooking       Reason = "weekend_booking"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonSameDayClosed        Reason = "same_day_booking_closed"
	ReasonTooShort             Reason = "too_short"
	ReasonTooLong              Reason = "too_long"
	ReasonInsufficientLeadTime Reason = "insufficient_lead_time"
	ReasonTooFarInAdvance      Reason = "too_far_in_advance"
)

// PolicyViolation reports the first rule a candidate interval failed.
type PolicyViolation struct {
	Reason Reason
	Detail string
}

// Error implements the error interface.
func (e *PolicyViolation) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Options carries the configurable thresholds the validator enforces.
// BusinessStart and BusinessEnd are offsets from local midnight.
type Options struct {
	BusinessStart    time.Duration
	BusinessEnd      time.Duration
	MinDuration      time.Duration
	MaxDuration      time.Duration
	LeadTime         time.Duration
	MaxAdvance       time.Duration
	AllowedWeekdays  []time.Weekday
	Location         *time.Location
}

// DefaultOptions returns the policy thresholds used when none are configured:
// 07:00-17:00 business window, 30 minute minimum, 8 hour maximum, 5 minute
// approval lead time, 28 day advance horizon, Monday through Friday.
func DefaultOptions() Options {
	return Options{
		BusinessStart:   7 * time.Hour,
		BusinessEnd:     17 * time.Hour,
		MinDuration:     30 * time.Minute,
		MaxDuration:     8 * time.Hour,
		LeadTime:        5 * time.Minute,
		MaxAdvance:      28 * 24 * time.Hour,
		AllowedWeekdays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Location:        time.UTC,
	}
}

// Validator enforces the booking policy rules on candidate intervals.
type Validator struct {
	opts     Options
	weekdays map[time.Weekday]struct{}
}

// NewValidator constructs a validator, filling unset options from
// DefaultOptions.
func NewValidator(opts Options) *Validator {
	defaults := DefaultOptions()
	if opts.BusinessStart == 0 && opts.BusinessEnd == 0 {
		opts.BusinessStart = defaults.BusinessStart
		opts.BusinessEnd = defaults.BusinessEnd
	}
	if opts.MinDuration <= 0 {
		opts.MinDuration = defaults.MinDuration
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = defaults.MaxDuration
	}
	if opts.LeadTime <= 0 {
		opts.LeadTime = defaults.LeadTime
	}
	if opts.MaxAdvance <= 0 {
		opts.MaxAdvance = defaults.MaxAdvance
	}
	if len(opts.AllowedWeekdays) == 0 {
		opts.AllowedWeekdays = defaults.AllowedWeekdays
	}
	if opts.Location == nil {
		opts.Location = defaults.Location
	}

	weekdays := make(map[time.Weekday]struct{}, len(opts.AllowedWeekdays))
	for _, day := range opts.AllowedWeekdays {
		weekdays[day] = struct{}{}
	}

	return &Validator{opts: opts, weekdays: weekdays}
}

// Options returns the thresholds the validator enforces.
func (v *Validator) Options() Options {
	return v.opts
}

// Validate checks the candidate interval against the policy rules in order
// and returns a *PolicyViolation naming the first rule that failed, or nil
// when the interval is acceptable.
func (v *Validator) Validate(candidate Interval, now time.Time) error {
	loc := v.opts.Location
	start := candidate.Start.In(loc)
	end := candidate.End.In(loc)
	now = now.In(loc)

	if start.Before(now) {
		return &PolicyViolation{Reason: ReasonStartInPast, Detail: "booking cannot start in the past"}
	}

	if !end.After(start) {
		return &PolicyViolation{Reason: ReasonNonPositiveDuration, Detail: "end must be after start"}
	}

	if !v.weekdayAllowed(start.Weekday()) || !v.weekdayAllowed(end.Weekday()) {
		return &PolicyViolation{Reason: ReasonWeekendBooking, Detail: "bookings are limited to working days"}
	}

	if !v.withinBusinessWindow(start) || !v.withinBusinessWindowEnd(end) {
		return &PolicyViolation{
			Reason: ReasonOutsideBusinessHours,
			Detail: fmt.Sprintf("bookings must fall within %s-%s", formatOffset(v.opts.BusinessStart), formatOffset(v.opts.BusinessEnd)),
		}
	}

	if sameDate(start, now) && offsetFromMidnight(now) > v.opts.BusinessEnd {
		return &PolicyViolation{Reason: ReasonSameDayClosed, Detail: "same-day bookings are closed for today"}
	}

	duration := end.Sub(start)
	if duration < v.opts.MinDuration {
		return &PolicyViolation{Reason: ReasonTooShort, Detail: fmt.Sprintf("booking must last at least %s", v.opts.MinDuration)}
	}

	if duration > v.opts.MaxDuration {
		return &PolicyViolation{Reason: ReasonTooLong, Detail: fmt.Sprintf("booking may last at most %s", v.opts.MaxDuration)}
	}

	if start.Before(now.Add(v.opts.LeadTime)) {
		return &PolicyViolation{Reason: ReasonInsufficientLeadTime, Detail: fmt.Sprintf("booking must start at least %s from now to allow approval", v.opts.LeadTime)}
	}

	if start.After(now.Add(v.opts.MaxAdvance)) {
		return &PolicyViolation{Reason: ReasonTooFarInAdvance, Detail: fmt.Sprintf("booking may start at most %s ahead", v.opts.MaxAdvance)}
	}

	return nil
}

func (v *Validator) weekdayAllowed(day time.Weekday) bool {
	_, ok := v.weekdays[day]
	return ok
}

// withinBusinessWindow accepts starts in [open, close); a booking may not
// begin at the moment the window closes.
func (v *Validator) withinBusinessWindow(t time.Time) bool {
	offset := offsetFromMidnight(t)
	return offset >= v.opts.BusinessStart && offset < v.opts.BusinessEnd
}

// withinBusinessWindowEnd accepts ends in (open, close]; an end landing
// exactly on the window close is acceptable.
func (v *Validator) withinBusinessWindowEnd(t time.Time) bool {
	offset := offsetFromMidnight(t)
	return offset > v.opts.BusinessStart && offset <= v.opts.BusinessEnd
}

func offsetFromMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatOffset(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
