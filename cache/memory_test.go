package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestKey(t *testing.T) {
	key := Key([]byte("\x03foo\x03eth\x00"), []byte{0x3b, 0x3b, 0x57, 0xde})

	// 0x + 64 hex chars, a dash, 0x + 64 hex chars
	require.Len(t, key, 66+1+66)
	assert.Equal(t, byte('-'), key[66])
	assert.Equal(t, key, Key([]byte("\x03foo\x03eth\x00"), []byte{0x3b, 0x3b, 0x57, 0xde}))
	assert.NotEqual(t, key, Key([]byte("\x03bar\x03eth\x00"), []byte{0x3b, 0x3b, 0x57, 0xde}))
	assert.NotEqual(t, key, Key([]byte("\x03foo\x03eth\x00"), []byte{0x59, 0xd1, 0xd4, 0x3c}))
}

func TestMemoryCache_GetPut(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Put(ctx, "k", []byte("value"), time.Minute)
	value, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), value)
}

func TestMemoryCache_LazyExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	c.Put(ctx, "k", []byte("value"), time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok, "entry should be live before expiry")

	clock.Advance(time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry must be absent once now reaches expiry")

	// Expired entries stay in the map until overwritten
	assert.Equal(t, 1, c.Len())

	c.Put(ctx, "k", []byte("fresh"), time.Minute)
	value, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), value)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_PutCopiesValue(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	value := []byte("value")
	c.Put(ctx, "k", value, time.Minute)
	value[0] = 'X'

	stored, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), stored)
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	c.Put(ctx, "k", []byte("value"), time.Minute)

	first, ok := c.Get(ctx, "k")
	require.True(t, ok)
	first[0] = 'X'

	second, expiry, ok := c.GetWithExpiry(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), second)
	assert.Equal(t, clock.Now().Add(time.Minute), expiry)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 100; j++ {
				c.Put(ctx, key, []byte(key), time.Minute)
				if value, ok := c.Get(ctx, key); ok {
					assert.Equal(t, []byte(key), value)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}

func TestNoopCache(t *testing.T) {
	c := NoopCache{}
	c.Put(context.Background(), "k", []byte("v"), time.Minute)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	_, _, ok = c.GetWithExpiry(context.Background(), "k")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}
