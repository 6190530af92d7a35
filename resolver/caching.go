package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/ruteri/ccip-read-gateway/cache"
	"github.com/ruteri/ccip-read-gateway/interfaces"
	"github.com/ruteri/ccip-read-gateway/metrics"
)

// DefaultCacheTTL is how long a successful upstream result is served from cache.
const DefaultCacheTTL = 5 * time.Minute

var _ interfaces.AuthoritativeReader = (*CachingReader)(nil)

// CachingReader serves repeated (name, call) lookups from a ResolutionCache.
type CachingReader struct {
	upstream interfaces.AuthoritativeReader
	cache    interfaces.ResolutionCache
	ttl      time.Duration
	log      *slog.Logger
}

// NewCachingReader wraps upstream with resolutionCache.
// A zero ttl selects DefaultCacheTTL.
func NewCachingReader(upstream interfaces.AuthoritativeReader, resolutionCache interfaces.ResolutionCache, ttl time.Duration, log *slog.Logger) *CachingReader {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	return &CachingReader{
		upstream: upstream,
		cache:    resolutionCache,
		ttl:      ttl,
		log:      log,
	}
}

// Resolve returns the cached result for (encodedName, resolverCall) while it is
// live, otherwise fetches it upstream and caches it. Errors are returned as-is
// and never cached.
func (r *CachingReader) Resolve(ctx context.Context, encodedName []byte, resolverCall []byte) ([]byte, error) {
	key := cache.Key(encodedName, resolverCall)

	if result, ok := r.cache.Get(ctx, key); ok {
		metrics.RecordCacheLookup(true)
		r.log.Debug("Resolution cache hit", "key", key)
		return result, nil
	}
	metrics.RecordCacheLookup(false)

	start := time.Now()
	result, err := r.upstream.Resolve(ctx, encodedName, resolverCall)
	metrics.ObserveUpstream(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.cache.Put(ctx, key, result, r.ttl)
	r.log.Debug("Resolution cached", "key", key, "ttl", r.ttl, "duration", time.Since(start))

	return result, nil
}
