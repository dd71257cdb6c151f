package domain

import "errors"

// Sentinel errors shared across the service. Callers match them with
// errors.Is after any number of fmt.Errorf("...: %w", err) wraps.
var (
	// ErrInvalidInput marks a caller-supplied request that is missing
	// required fields. Surfaced as a client error, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedResponse marks model output that could not be normalized
	// into structured data. The pipelines recover from it internally.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrUpstreamUnavailable marks a model endpoint that is unreachable or
	// timed out after the configured retries.
	ErrUpstreamUnavailable = errors.New("model endpoint unavailable")

	// ErrSessionNotFound marks an operation that requires an existing chat
	// session. History retrieval treats it as "empty history" instead.
	ErrSessionNotFound = errors.New("session not found")
)
