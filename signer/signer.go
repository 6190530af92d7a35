package signer

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// DefaultTTL is how long a signed response stays valid.
const DefaultTTL = 300 * time.Second

var _ interfaces.ResponseSigner = (*Signer)(nil)

// Signer signs resolution results with the gateway key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	ttl     time.Duration

	now func() time.Time
}

// New creates a signer for key whose signatures expire ttl after signing.
// It fails with ErrSigningConfiguration when the key is missing or ttl is under one second.
func New(key *ecdsa.PrivateKey, ttl time.Duration) (*Signer, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: no private key configured", interfaces.ErrSigningConfiguration)
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("%w: signature ttl %s is shorter than one second", interfaces.ErrSigningConfiguration, ttl)
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Address returns the address that signatures recover to.
func (s *Signer) Address() common.Address {
	return s.address
}

// TTL returns the validity window of produced signatures.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign signs result for the verifying contract at sender, binding it to the
// original request data, and returns the encoded response.
func (s *Signer) Sign(sender common.Address, request []byte, result []byte) ([]byte, error) {
	validUntil := uint64(s.now().Add(s.ttl).Unix())
	return s.SignWithExpiry(sender, validUntil, request, result)
}

// SignWithExpiry is Sign with an explicit expiry timestamp.
func (s *Signer) SignWithExpiry(sender common.Address, validUntil uint64, request []byte, result []byte) ([]byte, error) {
	hash := MessageHash(sender, validUntil, request, result)

	sig, err := crypto.Sign(hash.Bytes(), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign response: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return EncodeResponse(result, validUntil, sig)
}
