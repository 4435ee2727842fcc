// Package cache provides a thread-safe in-memory TTL cache for provider
// match listings, so rebuilding the /today menu does not burn through the
// football-data rate limit on every tap.
package cache

import (
	"sync"
	"time"

	"github.com/kxbet/matchwatch/internal/footballdata"
)

type entry struct {
	snapshots []footballdata.Snapshot
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache keyed by competition+date.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	enabled bool
}

// New creates a cache with the given TTL. Pass enabled=false for a no-op
// cache.
func New(ttl time.Duration, enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		enabled: enabled,
	}
	if enabled {
		go c.evictLoop()
	}
	return c
}

// Get retrieves a cached listing and whether it was found and fresh.
func (c *Cache) Get(key string) ([]footballdata.Snapshot, bool) {
	if !c.enabled {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.snapshots, true
}

// Set stores a listing under the cache TTL.
func (c *Cache) Set(key string, snapshots []footballdata.Snapshot) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		snapshots: snapshots,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Stats returns cache statistics for the health endpoint.
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]interface{}{
		"enabled":      c.enabled,
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

// evictLoop periodically removes expired entries.
func (c *Cache) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.evict()
	}
}

func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
