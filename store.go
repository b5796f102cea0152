package jsbridge

import (
	"sync"
)

// PendingStore holds payloads staged for pull based retrieval, keyed by a
// monotonically increasing id. Each entry may be fetched at most once.
type PendingStore struct {
	entries map[int64]string
	lastID  int64
	mu      sync.Mutex
}

// NewPendingStore returns an empty PendingStore. The first staged id is 1.
func NewPendingStore() *PendingStore {
	return &PendingStore{entries: make(map[int64]string)}
}

// Stage stores payload under a fresh id, which is strictly greater than
// every id previously returned by this store.
func (x *PendingStore) Stage(payload string) int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.lastID++
	x.entries[x.lastID] = payload
	return x.lastID
}

// Fetch returns and removes the payload staged under id. It returns false if
// id is unknown, including if it has already been fetched.
func (x *PendingStore) Fetch(id int64) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	payload, ok := x.entries[id]
	if ok {
		delete(x.entries, id)
	}
	return payload, ok
}

// Discard removes id without returning it.
func (x *PendingStore) Discard(id int64) {
	x.mu.Lock()
	delete(x.entries, id)
	x.mu.Unlock()
}

// Len returns the number of staged entries.
func (x *PendingStore) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}

// LastID returns the most recently issued id, or 0.
func (x *PendingStore) LastID() int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.lastID
}

// reset drops all entries. The counter is retained, ids are never reused.
func (x *PendingStore) reset() {
	x.mu.Lock()
	x.entries = make(map[int64]string)
	x.mu.Unlock()
}
