package booking

import "sort"

// FindRoomConflicts returns every non-terminal booking on the room whose
// interval overlaps the candidate, ordered by start time so the earliest
// conflict can be surfaced as the canonical one. Terminal bookings never
// conflict. excludeID skips a booking being re-evaluated against itself.
func FindRoomConflicts(existing []Booking, roomID string, candidate Interval, excludeID string) []Booking {
	conflicts := make([]Booking, 0)
	for _, b := range existing {
		if b.RoomID != roomID {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Status.NonTerminal() {
			continue
		}
		if b.Interval.Overlaps(candidate) {
			conflicts = append(conflicts, b)
		}
	}
	sortByStart(conflicts)
	if len(conflicts) == 0 {
		return nil
	}
	return conflicts
}

// FindRequesterConflicts returns the requester's own non-terminal bookings
// overlapping the candidate interval, across every room. A requester may not
// hold two overlapping reservations regardless of room.
func FindRequesterConflicts(existing []Booking, requesterID string, candidate Interval, excludeID string) []Booking {
	conflicts := make([]Booking, 0)
	for _, b := range existing {
		if b.RequesterID != requesterID {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Status.NonTerminal() {
			continue
		}
		if b.Interval.Overlaps(candidate) {
			conflicts = append(conflicts, b)
		}
	}
	sortByStart(conflicts)
	if len(conflicts) == 0 {
		return nil
	}
	return conflicts
}

func sortByStart(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Interval.Start.Equal(bookings[j].Interval.Start) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].Interval.Start.Before(bookings[j].Interval.Start)
	})
}
