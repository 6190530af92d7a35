package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

var _ interfaces.ResolutionCache = (*BigCache)(nil)

// BigCache is a size-bounded in-process cache backed by allegro/bigcache.
// bigcache evicts by its own life window, so each stored envelope also carries
// the wall-clock expiry derived from the ttl passed to Put.
type BigCache struct {
	cache *bigcache.BigCache
	log   *slog.Logger
	now   func() time.Time
}

type bigcacheEntry struct {
	Data      []byte `json:"data"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewBigCache creates a bigcache-backed cache bounded to sizeMB megabytes.
// lifeWindow must be at least as long as the longest ttl passed to Put.
func NewBigCache(sizeMB int, lifeWindow time.Duration, log *slog.Logger) (*BigCache, error) {
	config := bigcache.DefaultConfig(lifeWindow)
	config.Shards = 64
	config.MaxEntriesInWindow = 10000
	config.MaxEntrySize = 512
	config.HardMaxCacheSize = sizeMB
	config.Verbose = false

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigcache: %w", err)
	}

	return &BigCache{
		cache: cache,
		log:   log,
		now:   time.Now,
	}, nil
}

func (c *BigCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, _, ok := c.GetWithExpiry(ctx, key)
	return value, ok
}

func (c *BigCache) GetWithExpiry(_ context.Context, key string) ([]byte, time.Time, bool) {
	data, err := c.cache.Get(key)
	if err != nil {
		return nil, time.Time{}, false
	}

	var entry bigcacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Warn("Failed to decode bigcache entry", "key", key, "err", err)
		_ = c.cache.Delete(key)
		return nil, time.Time{}, false
	}

	if c.now().UnixNano() >= entry.ExpiresAt {
		return nil, time.Time{}, false
	}
	return entry.Data, time.Unix(0, entry.ExpiresAt), true
}

func (c *BigCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	data, err := json.Marshal(bigcacheEntry{
		Data:      value,
		ExpiresAt: c.now().Add(ttl).UnixNano(),
	})
	if err != nil {
		c.log.Error("Failed to encode bigcache entry", "key", key, "err", err)
		return
	}

	if err := c.cache.Set(key, data); err != nil {
		c.log.Warn("Failed to store bigcache entry", "key", key, "err", err)
	}
}

func (c *BigCache) Close() error {
	return c.cache.Close()
}
