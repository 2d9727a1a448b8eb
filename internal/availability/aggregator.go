// Package availability derives read-only free/busy projections from booking
// state. Its outputs drive calendar views and are advisory; conflict
// decisions always run against exact intervals elsewhere.
package availability

import (
	"sort"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

// BusyIntervals merges the room's non-terminal bookings intersecting the
// window into an ordered, non-overlapping list. Adjacent and overlapping
// entries are coalesced: even though conflict detection should prevent
// overlaps, any that exist are merged rather than double counted.
func BusyIntervals(bookings []booking.Booking, roomID string, window booking.Interval) []booking.Interval {
	busy := make([]booking.Interval, 0)
	for _, b := range bookings {
		if b.RoomID != roomID {
			continue
		}
		if !b.Status.NonTerminal() {
			continue
		}
		if !b.Interval.Overlaps(window) {
			continue
		}
		busy = append(busy, b.Interval)
	}

	return Merge(busy)
}

// Merge sorts intervals by start and coalesces overlapping or touching
// neighbours.
func Merge(intervals []booking.Interval) []booking.Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]booking.Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]booking.Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if !next.Start.After(current.End) {
			if next.End.After(current.End) {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged
}

// FreeIntervals returns the gaps within the window not covered by the busy
// list. The busy list is merged first, so callers may pass raw intervals.
func FreeIntervals(busy []booking.Interval, window booking.Interval) []booking.Interval {
	merged := Merge(busy)
	free := make([]booking.Interval, 0, len(merged)+1)

	cursor := window.Start
	for _, b := range merged {
		if !b.Overlaps(window) {
			continue
		}
		start := b.Start
		if start.Before(window.Start) {
			start = window.Start
		}
		if cursor.Before(start) {
			free = append(free, booking.Interval{Start: cursor, End: start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, booking.Interval{Start: cursor, End: window.End})
	}

	if len(free) == 0 {
		return nil
	}
	return free
}

// RoomsFree returns the subset of roomIDs with no non-terminal booking
// intersecting any instant of the window. A room with a single pending
// booking anywhere in the range does not qualify.
func RoomsFree(roomIDs []string, bookings []booking.Booking, window booking.Interval) []string {
	occupied := make(map[string]struct{})
	for _, b := range bookings {
		if !b.Status.NonTerminal() {
			continue
		}
		if b.Interval.Overlaps(window) {
			occupied[b.RoomID] = struct{}{}
		}
	}

	free := make([]string, 0, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := occupied[id]; !ok {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		return nil
	}
	return free
}

// HourSlot is one fixed-width cell of an occupancy grid.
type HourSlot struct {
	Start    time.Time
	Occupied bool
}

// HourlyOccupancy projects the busy list onto fixed-width slots between
// gridStart and gridEnd. A slot is occupied iff any busy interval intersects
// it. The projection is for display only and must not feed conflict checks.
func HourlyOccupancy(busy []booking.Interval, gridStart, gridEnd time.Time, slot time.Duration) []HourSlot {
	if slot <= 0 {
		slot = time.Hour
	}
	merged := Merge(busy)

	slots := make([]HourSlot, 0)
	for cursor := gridStart; cursor.Before(gridEnd); cursor = cursor.Add(slot) {
		cell := booking.Interval{Start: cursor, End: cursor.Add(slot)}
		occupied := false
		for _, b := range merged {
			if b.Overlaps(cell) {
				occupied = true
				break
			}
		}
		slots = append(slots, HourSlot{Start: cursor, Occupied: occupied})
	}
	if len(slots) == 0 {
		return nil
	}
	return slots
}
