// Package interfaces defines the core types, errors and component contracts of
// the CCIP-Read gateway, separating interface definitions from implementations.
//
// # Component Interfaces
//
// ResolutionCache: short-lived storage for authoritative resolution results,
// keyed by the hash of the encoded name and the resolver call.
//
// AuthoritativeReader: fetches the raw result of a resolver call from the
// authoritative chain.
//
// ResponseSigner: produces the signed (result, expires, signature) tuple that
// the on-chain verifier accepts.
//
// # Errors
//
// The error taxonomy (ErrInvalidRequest, ErrMalformedEncoding, ErrUpstreamCall,
// ErrSigningConfiguration) is shared by every layer. Components wrap these
// sentinels and the HTTP layer classifies them with errors.Is to pick a status code.
package interfaces
