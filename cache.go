package main

import (
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned when a driver image is not in the cache
var ErrCacheMiss = errors.New("cache miss")

// cacheEntry is one resolved driver image. A zero expiresAt never expires.
type cacheEntry struct {
	imageURL  string
	expiresAt time.Time
}

// imageCache maps driver ids to resolved image URLs for the life of the process.
type imageCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newImageCache() *imageCache {
	return &imageCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// get gets a driver image from the cache
func (c *imageCache) get(driverID string) (cacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[driverID]
	expired := ok && !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt)
	c.mu.RUnlock()

	if !ok {
		return cacheEntry{}, ErrCacheMiss
	}

	if expired {
		c.deleteExpired(driverID)
		return cacheEntry{}, ErrCacheMiss
	}

	return entry, nil
}

// set stores a driver image in the cache. ttl <= 0 keeps it forever.
func (c *imageCache) set(driverID, imageURL string, ttl time.Duration) {
	entry := cacheEntry{imageURL: imageURL}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[driverID] = entry
	c.mu.Unlock()
}

// deleteExpired removes driverID only if its entry is still expired, so a
// fresh set that landed after the read is kept.
func (c *imageCache) deleteExpired(driverID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[driverID]
	if ok && !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		delete(c.entries, driverID)
	}
}

// invalidate removes a driver image from the cache
func (c *imageCache) invalidate(driverID string) bool {
	c.mu.Lock()
	_, ok := c.entries[driverID]
	delete(c.entries, driverID)
	c.mu.Unlock()
	return ok
}

func (c *imageCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
