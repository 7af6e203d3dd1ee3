package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageCacheMiss(t *testing.T) {
	c := newImageCache()
	_, err := c.get("nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestImageCacheNeverExpiresWithoutTTL(t *testing.T) {
	now := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	c := newImageCache()
	c.now = func() time.Time { return now }

	c.set("hamilton", hamiltonURL, 0)
	now = now.Add(24 * 365 * time.Hour)

	entry, err := c.get("hamilton")
	require.NoError(t, err)
	assert.Equal(t, hamiltonURL, entry.imageURL)
}

func TestImageCacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	c := newImageCache()
	c.now = func() time.Time { return now }

	c.set("norris", "data:image/svg+xml;base64,xx", time.Hour)

	now = now.Add(59 * time.Minute)
	_, err := c.get("norris")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.get("norris")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.len())
}

func TestImageCacheInvalidate(t *testing.T) {
	c := newImageCache()
	c.set("hamilton", hamiltonURL, 0)

	assert.True(t, c.invalidate("hamilton"))
	assert.False(t, c.invalidate("hamilton"))
	_, err := c.get("hamilton")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestResolverPlaceholderTTL(t *testing.T) {
	now := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	cache := newImageCache()
	cache.now = func() time.Time { return now }
	src := &fakeSource{}
	r := newImageResolver(src, cache, withPlaceholderTTL(time.Hour))

	_, err := r.Resolve(t.Context(), "bearman", "Oliver Bearman")
	require.NoError(t, err)
	require.Equal(t, 3, src.callCount())

	now = now.Add(2 * time.Hour)
	_, err = r.Resolve(t.Context(), "bearman", "Oliver Bearman")
	require.NoError(t, err)
	assert.Equal(t, 6, src.callCount())
}

func TestImageCacheDeleteExpiredKeepsFreshEntry(t *testing.T) {
	now := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	c := newImageCache()
	c.now = func() time.Time { return now }

	c.set("norris", "data:image/svg+xml;base64,old", time.Hour)
	now = now.Add(2 * time.Hour)

	// a set lands between get's expiry check and its delete
	c.set("norris", "https://img/norris.jpg", 0)
	c.deleteExpired("norris")

	entry, err := c.get("norris")
	require.NoError(t, err)
	assert.Equal(t, "https://img/norris.jpg", entry.imageURL)

	c.set("norris", "data:image/svg+xml;base64,old", time.Minute)
	now = now.Add(2 * time.Minute)
	c.deleteExpired("norris")
	assert.Equal(t, 0, c.len())
}
