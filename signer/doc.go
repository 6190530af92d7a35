// Package signer produces and verifies the signed responses returned by the
// gateway.
//
// The message hash is fixed by the on-chain SignatureVerifier:
//
//	keccak256(0x1900 || sender || uint64(expires) || keccak256(request) || keccak256(result))
//
// where sender is the 20-byte address of the verifying contract and expires is
// encoded as 8 big-endian bytes. The response body is the ABI encoding of
// (bytes result, uint64 expires, bytes signature), with the signature laid out
// as r || s || v and v in {27, 28}.
package signer
