package signer

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MessagePrefix is the EIP-191 version 0x00 prefix expected by the verifier.
var MessagePrefix = [2]byte{0x19, 0x00}

var responseArgs abi.Arguments

func init() {
	bytesTy, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	uint64Ty, err := abi.NewType("uint64", "", nil)
	if err != nil {
		panic(err)
	}

	responseArgs = abi.Arguments{
		{Name: "result", Type: bytesTy},
		{Name: "expires", Type: uint64Ty},
		{Name: "sig", Type: bytesTy},
	}
}

// MessageHash computes the digest the gateway signs for sender.
func MessageHash(sender common.Address, validUntil uint64, request []byte, result []byte) common.Hash {
	var expires [8]byte
	binary.BigEndian.PutUint64(expires[:], validUntil)

	return crypto.Keccak256Hash(
		MessagePrefix[:],
		sender.Bytes(),
		expires[:],
		crypto.Keccak256(request),
		crypto.Keccak256(result),
	)
}

// EncodeResponse ABI-encodes the (result, expires, sig) tuple.
func EncodeResponse(result []byte, expires uint64, sig []byte) ([]byte, error) {
	return responseArgs.Pack(result, expires, sig)
}

// DecodeResponse splits an encoded response into its three fields.
func DecodeResponse(encoded []byte) (result []byte, expires uint64, sig []byte, err error) {
	values, err := responseArgs.Unpack(encoded)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result = *abi.ConvertType(values[0], new([]byte)).(*[]byte)
	expires = *abi.ConvertType(values[1], new(uint64)).(*uint64)
	sig = *abi.ConvertType(values[2], new([]byte)).(*[]byte)
	return result, expires, sig, nil
}
