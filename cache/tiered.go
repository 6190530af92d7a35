package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ruteri/ccip-read-gateway/interfaces"
)

var _ interfaces.ResolutionCache = (*TieredCache)(nil)

// TieredCache layers several caches, typically a process-local tier in front
// of a shared one. Reads try each tier in order; writes go to every tier.
type TieredCache struct {
	tiers       []interfaces.ResolutionCache
	backfillTTL time.Duration
	log         *slog.Logger

	now func() time.Time
}

// NewTieredCache creates a tiered cache. A hit in a lower tier is copied into
// the tiers above it for at most backfillTTL, and never past the expiry the
// lower tier reports. A backfillTTL of zero disables backfilling.
func NewTieredCache(tiers []interfaces.ResolutionCache, backfillTTL time.Duration, log *slog.Logger) *TieredCache {
	return NewTieredCacheWithClock(tiers, backfillTTL, time.Now, log)
}

// NewTieredCacheWithClock is NewTieredCache reading time from now.
func NewTieredCacheWithClock(tiers []interfaces.ResolutionCache, backfillTTL time.Duration, now func() time.Time, log *slog.Logger) *TieredCache {
	if log == nil {
		log = slog.Default()
	}
	return &TieredCache{
		tiers:       tiers,
		backfillTTL: backfillTTL,
		log:         log,
		now:         now,
	}
}

func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, _, ok := t.GetWithExpiry(ctx, key)
	return value, ok
}

func (t *TieredCache) GetWithExpiry(ctx context.Context, key string) ([]byte, time.Time, bool) {
	for i, tier := range t.tiers {
		value, expiry, ok := tier.GetWithExpiry(ctx, key)
		if !ok {
			continue
		}

		if i > 0 {
			t.backfill(ctx, t.tiers[:i], key, value, expiry)
		}
		return value, expiry, true
	}
	return nil, time.Time{}, false
}

// backfill copies a lower-tier hit into upper for the shorter of backfillTTL
// and the entry's remaining life. Entries without a known expiry are skipped.
func (t *TieredCache) backfill(ctx context.Context, upper []interfaces.ResolutionCache, key string, value []byte, expiry time.Time) {
	if t.backfillTTL <= 0 {
		return
	}
	if expiry.IsZero() {
		t.log.Debug("Skipped backfill of entry without expiry", "key", key)
		return
	}

	ttl := expiry.Sub(t.now())
	if ttl > t.backfillTTL {
		ttl = t.backfillTTL
	}
	if ttl <= 0 {
		return
	}

	for _, tier := range upper {
		tier.Put(ctx, key, value, ttl)
	}
	t.log.Debug("Backfilled cache entry", "key", key, "tiers", len(upper), "ttl", ttl)
}

func (t *TieredCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	for _, tier := range t.tiers {
		tier.Put(ctx, key, value, ttl)
	}
}

func (t *TieredCache) Close() error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
