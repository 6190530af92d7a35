package interfaces

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CCIPReadRequest is a parsed inbound CCIP-Read request.
// Data is the ABI-encoded call to resolve(bytes name, bytes data) issued by Sender.
type CCIPReadRequest struct {
	Sender common.Address
	Data   []byte
}

// ResolutionCache stores authoritative results for a bounded time.
// Implementations must be safe for concurrent use.
type ResolutionCache interface {
	// Get returns the stored value only while its entry is live.
	Get(ctx context.Context, key string) ([]byte, bool)

	// GetWithExpiry is Get that also reports when the entry stops being live.
	// The zero time means the backend cannot tell.
	GetWithExpiry(ctx context.Context, key string) ([]byte, time.Time, bool)

	// Put stores value under key for ttl, replacing any previous entry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Close releases resources held by the cache.
	Close() error
}

// AuthoritativeReader resolves an encoded name and resolver call against the authoritative chain.
type AuthoritativeReader interface {
	Resolve(ctx context.Context, encodedName []byte, resolverCall []byte) ([]byte, error)
}

// ResponseSigner signs a resolution result for the verifying contract at sender.
type ResponseSigner interface {
	// Sign returns the ABI-encoded (bytes result, uint64 expires, bytes signature) tuple.
	Sign(sender common.Address, request []byte, result []byte) ([]byte, error)

	// Address returns the address the signatures recover to.
	Address() common.Address
}
