package application

import "sync"

// roomLocks serializes booking writes per room so the check-then-insert
// sequence in Submit cannot interleave for the same room within this
// process. The repository's in-transaction overlap re-check remains the
// final guard for writes arriving from elsewhere.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for roomID and returns its unlock function.
func (r *roomLocks) Lock(roomID string) func() {
	r.mu.Lock()
	lock, ok := r.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[roomID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
