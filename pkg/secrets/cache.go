package secrets

import (
	"sync"
	"time"
)

// DefaultTTL is how long a resolved secret is trusted.
const DefaultTTL = time.Hour

// Cache holds resolved secret values keyed by name. One Cache is meant to be
// shared by every client in the process.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

// NewCache builds a cache; ttl <= 0 selects DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value while it is still fresh. Stale entries are
// left in place until the next Put for the same name.
func (c *Cache) Get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.ResolvedAt) >= c.ttl {
		return "", false
	}
	return entry.Value, true
}

// Put stores value under name and resets its resolution time.
func (c *Cache) Put(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = Entry{
		Name:       name,
		Value:      value,
		ResolvedAt: c.now(),
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Len counts entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot copies every entry for diagnostics.
func (c *Cache) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry)
	}
	return out
}
