package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// DefaultBackfillTTL bounds how long a lower-tier hit is copied into the upper tiers.
const DefaultBackfillTTL = 30 * time.Second

// Factory creates resolution caches from URI strings.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a cache factory logging through logger.
func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{log: logger}
}

// CacheFor creates a single cache backend from a URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params].
//
// Supported schemes:
//   - memory:// - in-process map
//   - bigcache:// - size-bounded in-process cache
//   - redis:// - shared Redis or KeyDB cache
//   - noop:// - caching disabled
func (f *Factory) CacheFor(uri string) (interfaces.ResolutionCache, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("invalid cache URI %q: %w", uri, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		f.log.Debug("Creating memory cache", slog.String("uri", u.String()))
		return NewMemoryCache(), nil
	case "bigcache":
		return f.createBigCache(u)
	case "redis":
		f.log.Debug("Creating redis cache", slog.String("uri", u.Redacted()))
		return DialRedis(u, f.log)
	case "noop", "none":
		f.log.Debug("Caching disabled")
		return NoopCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache scheme: %q", u.Scheme)
	}
}

// FromURIs creates a cache from a comma-separated list of URIs.
// A single URI yields that backend; several yield a TieredCache in list order
// whose backfill is bounded by DefaultBackfillTTL and by ttl when it is shorter.
func (f *Factory) FromURIs(uris string, ttl time.Duration) (interfaces.ResolutionCache, error) {
	parts := strings.Split(uris, ",")
	if len(parts) == 1 {
		return f.CacheFor(parts[0])
	}

	tiers := make([]interfaces.ResolutionCache, 0, len(parts))
	for _, part := range parts {
		tier, err := f.CacheFor(part)
		if err != nil {
			for _, created := range tiers {
				_ = created.Close()
			}
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	backfillTTL := DefaultBackfillTTL
	if ttl > 0 && ttl < backfillTTL {
		backfillTTL = ttl
	}
	return NewTieredCache(tiers, backfillTTL, f.log), nil
}

// createBigCache parses bigcache://?size=64&life=10m.
// size is in megabytes (0 means unbounded), life is the bigcache eviction window.
func (f *Factory) createBigCache(u *url.URL) (interfaces.ResolutionCache, error) {
	f.log.Debug("Creating bigcache cache", slog.String("uri", u.String()))

	query := u.Query()

	size := 64
	if raw := query.Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid bigcache size %q", raw)
		}
		size = parsed
	}

	life := 10 * time.Minute
	if raw := query.Get("life"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid bigcache life window %q", raw)
		}
		life = parsed
	}

	return NewBigCache(size, life, f.log)
}
