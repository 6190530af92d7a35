package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigCache_GetPutExpiry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := newFakeClock()

	c, err := NewBigCache(8, 10*time.Minute, logger)
	require.NoError(t, err)
	defer c.Close()
	c.now = clock.Now

	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Put(ctx, "k", []byte{0xcc, 0xdd}, 5*time.Minute)
	value, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte{0xcc, 0xdd}, value)

	_, expiry, ok := c.GetWithExpiry(ctx, "k")
	require.True(t, ok)
	assert.True(t, clock.Now().Add(5*time.Minute).Equal(expiry))

	clock.Advance(5 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	c.Put(ctx, "k", []byte{0xee}, 5*time.Minute)
	value, ok = c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte{0xee}, value)
}

func TestBigCache_CorruptEntryIsDropped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewBigCache(8, time.Minute, logger)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.cache.Set("k", []byte("not json")))

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)

	_, err = c.cache.Get("k")
	assert.Error(t, err, "corrupt entry should have been deleted")
}
