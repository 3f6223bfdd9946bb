package chroma

import "errors"

var (
	// ErrInvalidConfig indicates a missing base URL or collection name.
	ErrInvalidConfig = errors.New("invalid chroma configuration")

	// ErrRequestFailed indicates a transport failure or a non-2xx response.
	ErrRequestFailed = errors.New("chroma request failed")

	// ErrServiceError indicates the service answered with an error field set.
	ErrServiceError = errors.New("chroma service error")

	// ErrMalformedResponse indicates a response body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed chroma response")

	// ErrCircuitOpen indicates the circuit breaker rejected the call.
	ErrCircuitOpen = errors.New("chroma circuit breaker open")
)
