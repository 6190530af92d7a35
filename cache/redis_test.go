package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient mocks the RedisClient interface
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) PTTL(ctx context.Context, key string) *redis.DurationCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.DurationCmd)
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	args := m.Called(ctx)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestRedisCache_Hit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := new(MockRedisClient)
	client.On("Get", mock.Anything, "ccip:k").Return(redis.NewStringResult("\xcc\xdd", nil))

	c := NewRedisCache(client, "ccip:", time.Second, logger)
	value, ok := c.Get(context.Background(), "k")

	require.True(t, ok)
	assert.Equal(t, []byte{0xcc, 0xdd}, value)
	client.AssertExpectations(t)
}

func TestRedisCache_Miss(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := new(MockRedisClient)
	client.On("Get", mock.Anything, "ccip:absent").Return(redis.NewStringResult("", redis.Nil))
	client.On("Get", mock.Anything, "ccip:broken").Return(redis.NewStringResult("", errors.New("connection reset")))

	c := NewRedisCache(client, "ccip:", time.Second, logger)

	_, ok := c.Get(context.Background(), "absent")
	assert.False(t, ok)

	_, ok = c.Get(context.Background(), "broken")
	assert.False(t, ok, "backend errors degrade to a miss")

	client.AssertExpectations(t)
}

func TestRedisCache_GetWithExpiry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Unix(1_700_000_000, 0)

	client := new(MockRedisClient)
	client.On("Get", mock.Anything, mock.Anything).Return(redis.NewStringResult("v", nil))
	client.On("PTTL", mock.Anything, "ccip:live").Return(redis.NewDurationResult(1500*time.Millisecond, nil))
	client.On("PTTL", mock.Anything, "ccip:persistent").Return(redis.NewDurationResult(-1, nil))
	client.On("PTTL", mock.Anything, "ccip:gone").Return(redis.NewDurationResult(-2, nil))
	client.On("PTTL", mock.Anything, "ccip:broken").Return(redis.NewDurationResult(0, errors.New("connection reset")))

	c := NewRedisCache(client, "ccip:", time.Second, logger)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	value, expiry, ok := c.GetWithExpiry(ctx, "live")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
	assert.Equal(t, now.Add(1500*time.Millisecond), expiry)

	_, expiry, ok = c.GetWithExpiry(ctx, "persistent")
	require.True(t, ok)
	assert.True(t, expiry.IsZero())

	_, _, ok = c.GetWithExpiry(ctx, "gone")
	assert.False(t, ok, "key expired between the two reads")

	_, expiry, ok = c.GetWithExpiry(ctx, "broken")
	require.True(t, ok)
	assert.True(t, expiry.IsZero())

	client.AssertExpectations(t)
}

func TestRedisCache_PutUsesServerExpiry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := new(MockRedisClient)
	client.On("Set", mock.Anything, "ccip:k", []byte{0x01}, 5*time.Minute).Return(redis.NewStatusResult("OK", nil))

	c := NewRedisCache(client, "ccip:", time.Second, logger)
	c.Put(context.Background(), "k", []byte{0x01}, 5*time.Minute)

	// A non-positive ttl never reaches the server
	c.Put(context.Background(), "k", []byte{0x02}, 0)

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "Set", 1)
}

func TestRedisCache_Close(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := new(MockRedisClient)
	client.On("Close").Return(nil)

	c := NewRedisCache(client, "ccip:", 0, logger)
	assert.NoError(t, c.Close())
	client.AssertExpectations(t)
}
