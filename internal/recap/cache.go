package recap

import (
	"sync"
	"time"
)

// snapshotCache keeps the last fetched snapshot for a limited time.
type snapshotCache struct {
	expiry   time.Time
	now      func() time.Time
	snapshot *Snapshot
	ttl      time.Duration
	mu       sync.RWMutex
}

// newSnapshotCache creates a cache with the specified TTL. A zero TTL
// disables caching.
func newSnapshotCache(ttl time.Duration, now func() time.Time) *snapshotCache {
	return &snapshotCache{
		ttl: ttl,
		now: now,
	}
}

// get returns the cached snapshot if it exists and hasn't expired.
func (c *snapshotCache) get() (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil || !c.now().Before(c.expiry) {
		return nil, false
	}
	return c.snapshot, true
}

// set stores a snapshot.
func (c *snapshotCache) set(s *Snapshot) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = s
	c.expiry = c.now().Add(c.ttl)
}

// clear drops the cached snapshot.
func (c *snapshotCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
