package dnsname

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameHash computes the ENS namehash of a dot-separated name.
// The empty name hashes to the zero node.
func NameHash(name string) common.Hash {
	var node common.Hash
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}
