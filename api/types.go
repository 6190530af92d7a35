package api

// ResolveRequest is the EIP-3668 POST body: the sender contract and the
// hex-encoded calldata it reverted with.
type ResolveRequest struct {
	Sender string `json:"sender"`
	Data   string `json:"data"`
}

// ResolveResponse carries the hex-encoded, ABI-encoded
// (bytes result, uint64 expires, bytes signature) tuple.
type ResolveResponse struct {
	Data string `json:"data"`
}

// ErrorResponse is returned with every non-200 status.
type ErrorResponse struct {
	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Error is the structured detail. For validation failures it names the offending field.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail identifies the failure class and, for invalid input, the field.
type ErrorDetail struct {
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse is served at the root route.
type HealthResponse struct {
	OK bool `json:"ok"`
}
