package recurrence

import (
	"errors"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

// Frequency represents supported recurrence shapes.
type Frequency int

const (
	// FrequencyUnspecified indicates the pattern frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyWeekly repeats on the seed occurrence's weekday, one week apart.
	FrequencyWeekly
	// FrequencyDaily repeats every working day, Monday through Friday.
	FrequencyDaily
	// FrequencyCustom repeats on an explicit set of weekdays.
	FrequencyCustom
)

// Pattern describes how a seed interval repeats. Until is an inclusive date
// boundary; expansion is always finite.
type Pattern struct {
	Frequency Frequency
	Weekdays  []time.Weekday
	Until     time.Time
}

// MaxOccurrences bounds a single expansion. A pattern whose window would
// produce more occurrences is truncated at this count so a misconfigured
// until date cannot generate a pathological series.
const MaxOccurrences = 52

var (
	// ErrInvalidFrequency indicates the pattern frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	// ErrMissingUntil indicates the pattern has no end boundary.
	ErrMissingUntil = errors.New("recurrence: until boundary is required")
	// ErrMissingWeekdays indicates a custom pattern carries no weekdays.
	ErrMissingWeekdays = errors.New("recurrence: custom pattern requires at least one weekday")
	// ErrInvalidSeed indicates the seed interval duration is not positive.
	ErrInvalidSeed = errors.New("recurrence: seed duration must be positive")
)

// Expander turns recurrence patterns into concrete occurrence intervals.
type Expander struct {
	location *time.Location
}

// NewExpander constructs an Expander that evaluates weekday membership in the
// provided location. If loc is nil, UTC is used.
func NewExpander(loc *time.Location) *Expander {
	if loc == nil {
		loc = time.UTC
	}
	return &Expander{location: loc}
}

// Expand produces the ordered occurrences generated from the seed interval.
//
// The first candidate day is the seed's own date; evaluation then steps
// forward one day at a time through the inclusive until boundary. A day is
// included when its weekday matches the pattern: the seed's weekday for
// weekly patterns, Monday through Friday for daily patterns, and the explicit
// set for custom patterns. Every occurrence carries the seed's time of day
// and duration. Expansion is stateless and deterministic; calling it twice
// with identical inputs yields identical sequences.
func (e *Expander) Expand(seed booking.Interval, pattern Pattern) ([]booking.Interval, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	start := seed.Start.In(loc)
	end := seed.End.In(loc)
	if !end.After(start) {
		return nil, ErrInvalidSeed
	}
	duration := end.Sub(start)

	if pattern.Until.IsZero() {
		return nil, ErrMissingUntil
	}

	weekdaySet, err := weekdaysFor(pattern, start.Weekday())
	if err != nil {
		return nil, err
	}

	// The until boundary is a date; occurrences starting any time on that
	// day are included.
	untilDay := pattern.Until.In(loc)
	boundary := time.Date(untilDay.Year(), untilDay.Month(), untilDay.Day(), 23, 59, 59, 0, loc)

	occurrences := make([]booking.Interval, 0)
	step := 1
	if pattern.Frequency == FrequencyWeekly {
		step = 7
	}

	for current := start; !current.After(boundary); current = addDays(current, step, loc) {
		if _, ok := weekdaySet[current.Weekday()]; !ok {
			continue
		}
		occurrences = append(occurrences, booking.Interval{Start: current, End: current.Add(duration)})
		if len(occurrences) >= MaxOccurrences {
			break
		}
	}

	return occurrences, nil
}

func weekdaysFor(pattern Pattern, seedDay time.Weekday) (map[time.Weekday]struct{}, error) {
	switch pattern.Frequency {
	case FrequencyWeekly:
		return map[time.Weekday]struct{}{seedDay: {}}, nil
	case FrequencyDaily:
		return map[time.Weekday]struct{}{
			time.Monday:    {},
			time.Tuesday:   {},
			time.Wednesday: {},
			time.Thursday:  {},
			time.Friday:    {},
		}, nil
	case FrequencyCustom:
		if len(pattern.Weekdays) == 0 {
			return nil, ErrMissingWeekdays
		}
		set := make(map[time.Weekday]struct{}, len(pattern.Weekdays))
		for _, day := range pattern.Weekdays {
			set[day] = struct{}{}
		}
		return set, nil
	default:
		return nil, ErrInvalidFrequency
	}
}

// addDays advances by whole calendar days, re-anchoring the time of day so a
// DST shift in the location cannot drift occurrence times.
func addDays(t time.Time, days int, loc *time.Location) time.Time {
	shifted := t.AddDate(0, 0, days)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
