package signer

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrSignatureExpired = errors.New("signature expired")
	ErrSignerMismatch   = errors.New("signature recovers to an unexpected signer")
	ErrInvalidSignature = errors.New("invalid signature")
)

// RecoverSigner returns the address that produced sig over the message hash
// of the given fields. v may be 0/1 or 27/28.
func RecoverSigner(sender common.Address, expires uint64, request []byte, result []byte, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}

	normalized := bytes.Clone(sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	hash := MessageHash(sender, expires, request, result)
	pubkey, err := crypto.SigToPub(hash.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// Verify checks an encoded response the way the on-chain verifier does: the
// signature must recover to expectedSigner and expires must not be before now.
// It returns the verified result.
func Verify(encoded []byte, sender common.Address, request []byte, expectedSigner common.Address, now time.Time) ([]byte, error) {
	result, expires, sig, err := DecodeResponse(encoded)
	if err != nil {
		return nil, err
	}

	signer, err := RecoverSigner(sender, expires, request, result, sig)
	if err != nil {
		return nil, err
	}
	if signer != expectedSigner {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrSignerMismatch, signer.Hex(), expectedSigner.Hex())
	}

	if uint64(now.Unix()) > expires {
		return nil, fmt.Errorf("%w: expired at %d", ErrSignatureExpired, expires)
	}

	return result, nil
}
