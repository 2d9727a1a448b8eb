package application

import (
	"strings"
	"sync"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

// availabilityCache stores recently computed busy/free projections to avoid
// re-scanning bookings for identical availability queries while booking
// state remains unchanged. Any write to a room invalidates its entries.
type availabilityCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]availabilityCacheEntry
}

type availabilityCacheEntry struct {
	roomID    string
	result    RoomAvailability
	expiresAt time.Time
}

func newAvailabilityCache(ttl time.Duration, maxEntries int, now func() time.Time) *availabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &availabilityCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]availabilityCacheEntry),
	}
}

func (c *availabilityCache) Get(key string) (RoomAvailability, bool) {
	if c == nil {
		return RoomAvailability{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return RoomAvailability{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return RoomAvailability{}, false
	}
	return cloneAvailability(entry.result), true
}

func (c *availabilityCache) Store(key string, result RoomAvailability) {
	if c == nil {
		return
	}
	cloned := cloneAvailability(result)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = availabilityCacheEntry{roomID: result.RoomID, result: cloned, expiresAt: expiry}
}

// InvalidateRoom drops all cached projections for a room. Called after any
// booking write touching the room.
func (c *availabilityCache) InvalidateRoom(roomID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	for key, entry := range c.entries {
		if entry.roomID == roomID {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *availabilityCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *availabilityCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneAvailability(result RoomAvailability) RoomAvailability {
	out := result
	if len(result.Busy) > 0 {
		out.Busy = make([]booking.Interval, len(result.Busy))
		copy(out.Busy, result.Busy)
	}
	if len(result.Free) > 0 {
		out.Free = make([]booking.Interval, len(result.Free))
		copy(out.Free, result.Free)
	}
	return out
}

func buildAvailabilityCacheKey(roomID string, window booking.Interval) string {
	builder := strings.Builder{}
	builder.WriteString(roomID)
	builder.WriteString("|")
	builder.WriteString(window.Start.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(window.End.UTC().Format(time.RFC3339Nano))
	return builder.String()
}
