package gateway

import (
	"errors"

	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// State is a step of the per-request resolution pipeline.
type State int

const (
	StateReceived State = iota
	StateValidated
	StateNameDecoded
	StateUpstreamFetched
	StateSigned
	StateResponded
	StateErrored
)

var stateNames = map[State]string{
	StateReceived:        "RECEIVED",
	StateValidated:       "VALIDATED",
	StateNameDecoded:     "NAME_DECODED",
	StateUpstreamFetched: "UPSTREAM_FETCHED",
	StateSigned:          "SIGNED",
	StateResponded:       "RESPONDED",
	StateErrored:         "ERRORED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Outcome classifies a pipeline error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, interfaces.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, interfaces.ErrMalformedEncoding):
		return "malformed_encoding"
	case errors.Is(err, interfaces.ErrUpstreamCall):
		return "upstream_error"
	case errors.Is(err, interfaces.ErrSigningConfiguration):
		return "signing_error"
	default:
		return "internal_error"
	}
}
