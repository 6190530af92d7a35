package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

var _ interfaces.ResolutionCache = (*RedisCache)(nil)

// RedisClient is the subset of *redis.Client used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisCache stores resolution results in Redis (or KeyDB) so that several
// gateway replicas share one cache. Expiry is enforced by the server.
type RedisCache struct {
	client  RedisClient
	prefix  string
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// NewRedisCache wraps an existing client. Keys are stored under prefix and
// every operation is bounded by timeout.
func NewRedisCache(client RedisClient, prefix string, timeout time.Duration, log *slog.Logger) *RedisCache {
	if timeout == 0 {
		timeout = 500 * time.Millisecond
	}
	return &RedisCache{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// DialRedis connects to the server described by u and verifies the connection.
// URI format: redis://[:password@]host[:port][/db][?prefix=ccip:&timeout=500ms]
func DialRedis(u *url.URL, log *slog.Logger) (*RedisCache, error) {
	port := u.Port()
	if port == "" {
		port = "6379"
	}

	query := u.Query()
	timeout := 500 * time.Millisecond
	if raw := query.Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid redis timeout %q: %w", raw, err)
		}
		timeout = parsed
	}

	prefix := query.Get("prefix")
	if prefix == "" {
		prefix = "ccip:"
	}

	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", u.Hostname(), port),
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			opts.Password = password
		}
	}
	if len(u.Path) > 1 {
		db, err := strconv.Atoi(u.Path[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid redis database %q: %w", u.Path[1:], err)
		}
		opts.DB = db
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	log.Info("Connected to redis", "address", opts.Addr, "db", opts.DB)
	return NewRedisCache(client, prefix, timeout, log), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Redis cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return value, true
}

// GetWithExpiry reads the entry and then its remaining server-side ttl.
// If the ttl cannot be read the value is still returned with a zero expiry.
func (c *RedisCache) GetWithExpiry(ctx context.Context, key string) ([]byte, time.Time, bool) {
	value, ok := c.Get(ctx, key)
	if !ok {
		return nil, time.Time{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	remaining, err := c.client.PTTL(ctx, c.prefix+key).Result()
	switch {
	case err != nil:
		c.log.Warn("Redis cache pttl failed", "key", key, "err", err)
		return value, time.Time{}, true
	case remaining > 0:
		return value, c.now().Add(remaining), true
	case remaining == -1:
		// key has no expiry set
		return value, time.Time{}, true
	default:
		// expired between the two reads
		return nil, time.Time{}, false
	}
}

func (c *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.log.Warn("Redis cache set failed", "key", key, "err", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
