package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

func at(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2025, 6, 3, hour, min, 0, 0, time.UTC)
}

func span(t *testing.T, startHour, startMin, endHour, endMin int) booking.Interval {
	t.Helper()
	return booking.Interval{Start: at(t, startHour, startMin), End: at(t, endHour, endMin)}
}

func TestBusyIntervals_MergesOverlapAndTouch(t *testing.T) {
	t.Parallel()

	window := span(t, 8, 0, 18, 0)
	bookings := []booking.Booking{
		{ID: "b-1", RoomID: "room-1", Interval: span(t, 9, 0, 10, 0), Status: booking.StatusApproved},
		{ID: "b-2", RoomID: "room-1", Interval: span(t, 10, 0, 11, 0), Status: booking.StatusPending},
		{ID: "b-3", RoomID: "room-1", Interval: span(t, 10, 30, 11, 30), Status: booking.StatusApproved},
		{ID: "b-4", RoomID: "room-1", Interval: span(t, 14, 0, 15, 0), Status: booking.StatusApproved},
	}

	busy := BusyIntervals(bookings, "room-1", window)
	require.Len(t, busy, 2)
	assert.Equal(t, span(t, 9, 0, 11, 30), busy[0])
	assert.Equal(t, span(t, 14, 0, 15, 0), busy[1])
}

func TestBusyIntervals_FiltersRoomStatusAndWindow(t *testing.T) {
	t.Parallel()

	window := span(t, 8, 0, 12, 0)
	bookings := []booking.Booking{
		{ID: "b-1", RoomID: "room-2", Interval: span(t, 9, 0, 10, 0), Status: booking.StatusApproved},
		{ID: "b-2", RoomID: "room-1", Interval: span(t, 9, 0, 10, 0), Status: booking.StatusCancelled},
		{ID: "b-3", RoomID: "room-1", Interval: span(t, 13, 0, 14, 0), Status: booking.StatusApproved},
	}

	assert.Nil(t, BusyIntervals(bookings, "room-1", window))
}

func TestMerge_OrdersByStart(t *testing.T) {
	t.Parallel()

	merged := Merge([]booking.Interval{
		span(t, 15, 0, 16, 0),
		span(t, 9, 0, 10, 0),
		span(t, 12, 0, 13, 0),
	})

	require.Len(t, merged, 3)
	assert.True(t, merged[0].Start.Before(merged[1].Start))
	assert.True(t, merged[1].Start.Before(merged[2].Start))
}

func TestMerge_ContainedIntervalDisappears(t *testing.T) {
	t.Parallel()

	merged := Merge([]booking.Interval{
		span(t, 9, 0, 12, 0),
		span(t, 10, 0, 11, 0),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, span(t, 9, 0, 12, 0), merged[0])
}

func TestFreeIntervals_GapsWithinWindow(t *testing.T) {
	t.Parallel()

	window := span(t, 8, 0, 18, 0)
	busy := []booking.Interval{
		span(t, 9, 0, 10, 0),
		span(t, 14, 0, 15, 30),
	}

	free := FreeIntervals(busy, window)
	require.Len(t, free, 3)
	assert.Equal(t, span(t, 8, 0, 9, 0), free[0])
	assert.Equal(t, span(t, 10, 0, 14, 0), free[1])
	assert.Equal(t, span(t, 15, 30, 18, 0), free[2])
}

func TestFreeIntervals_BusySpillsPastWindowEdges(t *testing.T) {
	t.Parallel()

	window := span(t, 9, 0, 17, 0)
	busy := []booking.Interval{
		span(t, 8, 0, 10, 0),
		span(t, 16, 0, 18, 0),
	}

	free := FreeIntervals(busy, window)
	require.Len(t, free, 1)
	assert.Equal(t, span(t, 10, 0, 16, 0), free[0])
}

func TestFreeIntervals_FullyBookedWindow(t *testing.T) {
	t.Parallel()

	window := span(t, 9, 0, 17, 0)
	assert.Nil(t, FreeIntervals([]booking.Interval{window}, window))
}

func TestRoomsFree_PendingBookingOccupiesRoom(t *testing.T) {
	t.Parallel()

	window := span(t, 10, 0, 11, 0)
	rooms := []string{"room-1", "room-2", "room-3"}
	bookings := []booking.Booking{
		{ID: "b-1", RoomID: "room-1", Interval: span(t, 10, 30, 11, 30), Status: booking.StatusPending},
		{ID: "b-2", RoomID: "room-2", Interval: span(t, 10, 0, 11, 0), Status: booking.StatusRejected},
	}

	free := RoomsFree(rooms, bookings, window)
	assert.Equal(t, []string{"room-2", "room-3"}, free)
}

func TestRoomsFree_TouchingBookingDoesNotOccupy(t *testing.T) {
	t.Parallel()

	window := span(t, 10, 0, 11, 0)
	bookings := []booking.Booking{
		{ID: "b-1", RoomID: "room-1", Interval: span(t, 9, 0, 10, 0), Status: booking.StatusApproved},
		{ID: "b-2", RoomID: "room-1", Interval: span(t, 11, 0, 12, 0), Status: booking.StatusApproved},
	}

	assert.Equal(t, []string{"room-1"}, RoomsFree([]string{"room-1"}, bookings, window))
}

func TestHourlyOccupancy_MarksIntersectedSlots(t *testing.T) {
	t.Parallel()

	busy := []booking.Interval{span(t, 9, 30, 10, 15)}
	slots := HourlyOccupancy(busy, at(t, 8, 0), at(t, 12, 0), time.Hour)
	require.Len(t, slots, 4)

	assert.False(t, slots[0].Occupied, "08:00 slot")
	assert.True(t, slots[1].Occupied, "09:00 slot")
	assert.True(t, slots[2].Occupied, "10:00 slot")
	assert.False(t, slots[3].Occupied, "11:00 slot")
}

func TestHourlyOccupancy_BookingEndingOnBoundary(t *testing.T) {
	t.Parallel()

	busy := []booking.Interval{span(t, 9, 0, 10, 0)}
	slots := HourlyOccupancy(busy, at(t, 9, 0), at(t, 11, 0), time.Hour)
	require.Len(t, slots, 2)

	assert.True(t, slots[0].Occupied)
	assert.False(t, slots[1].Occupied, "half-open end must not mark the next slot")
}
