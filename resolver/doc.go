// Package resolver reads resolution results from the authoritative chain.
//
// ChainReader performs the resolve(bytes name, bytes data) view call on the
// configured resolver contract. CachingReader wraps any reader with a
// ResolutionCache so that each distinct (name, call) pair reaches the chain at
// most once per cache TTL. Failures are never cached.
package resolver
