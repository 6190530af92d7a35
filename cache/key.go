package cache

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Key derives the cache key for an encoded name and resolver call:
// keccak256(name) and keccak256(call), hex encoded and joined by "-".
func Key(encodedName, resolverCall []byte) string {
	return hexutil.Encode(crypto.Keccak256(encodedName)) + "-" + hexutil.Encode(crypto.Keccak256(resolverCall))
}
