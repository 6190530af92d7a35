package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/ruteri/ccip-read-gateway/interfaces"
)

var _ interfaces.ResolutionCache = (*MemoryCache)(nil)

// MemoryCache is a process-local resolution cache.
type MemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex

	now func() time.Time
}

type memoryEntry struct {
	value  []byte
	expiry time.Time
}

// NewMemoryCache creates an empty in-memory cache using the wall clock.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates an empty in-memory cache that reads time from now.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get returns a copy of the live entry under key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, _, ok := c.GetWithExpiry(ctx, key)
	return value, ok
}

func (c *MemoryCache) GetWithExpiry(_ context.Context, key string) ([]byte, time.Time, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiry) {
		return nil, time.Time{}, false
	}
	return bytes.Clone(entry.value), entry.expiry, true
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	stored := bytes.Clone(value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		value:  stored,
		expiry: c.now().Add(ttl),
	}
}

// Len reports the number of stored entries, live or expired.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	return nil
}
