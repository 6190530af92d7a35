package cache

import (
	"context"
	"time"

	"github.com/ruteri/ccip-read-gateway/interfaces"
)

var _ interfaces.ResolutionCache = NoopCache{}

// NoopCache never stores anything. Every lookup is a miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NoopCache) GetWithExpiry(context.Context, string) ([]byte, time.Time, bool) {
	return nil, time.Time{}, false
}

func (NoopCache) Put(context.Context, string, []byte, time.Duration) {}

func (NoopCache) Close() error { return nil }
