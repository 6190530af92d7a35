// Package cache provides the resolution cache backends used by the
// authoritative-chain reader.
//
// Every backend implements interfaces.ResolutionCache and expires entries
// lazily: an entry past its expiry is treated as absent on the next read and
// is overwritten by the next write. There is no background sweep owned by this
// package.
//
// Backends are created from URIs by Factory:
//
//   - memory:// - process-local map guarded by a RWMutex
//   - bigcache://?size=64&life=10m - bounded in-process cache (allegro/bigcache)
//   - redis://[:password@]host:port/db?prefix=ccip:&timeout=500ms - shared cache across replicas
//   - noop:// - caching disabled
//
// A comma-separated list of URIs creates a TieredCache that reads the tiers in
// order and writes to all of them.
package cache
