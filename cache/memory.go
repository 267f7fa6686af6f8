package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value  string
	stored time.Time
}

// MemoryCache is a process-local cache with an optional TTL.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty cache. A ttl of zero or less disables expiry.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) expired(e memoryEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.stored) > c.ttl
}

// Get returns the cached translation for key. Expired entries are evicted on read.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.expired(e, c.now()) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.stored.Equal(e.stored) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *MemoryCache) Set(key, value string) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, stored: c.now()}
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len counts stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune evicts expired entries and returns how many were removed.
func (c *MemoryCache) Prune() int {
	if c.ttl == 0 {
		return 0
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Entries returns a copy of the live entries.
func (c *MemoryCache) Entries() (map[string]string, error) {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.entries))
	for k, e := range c.entries {
		if c.expired(e, now) {
			continue
		}
		out[k] = e.value
	}
	return out, nil
}

// Close is a no-op; it lets MemoryCache satisfy Cache.
func (c *MemoryCache) Close() error { return nil }

var (
	_ Cache      = (*MemoryCache)(nil)
	_ Enumerable = (*MemoryCache)(nil)
)
