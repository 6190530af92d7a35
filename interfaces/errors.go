package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned for malformed sender or data parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMalformedEncoding is returned when a DNS-wire name or a nested ABI call cannot be decoded.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrUpstreamCall is returned when the authoritative chain call fails or reverts.
	ErrUpstreamCall = errors.New("upstream call failed")

	// ErrSigningConfiguration is returned when the signing key is missing or unusable.
	ErrSigningConfiguration = errors.New("signing configuration error")
)

// ValidationError describes which request field failed validation and why.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", ErrInvalidRequest, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}
