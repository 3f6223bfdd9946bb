package loader

import "errors"

var (
	// ErrMalformedPayload indicates a source answered with data that could not be parsed.
	ErrMalformedPayload = errors.New("malformed loader payload")

	// ErrSourceUnavailable indicates the source could not be reached or refused the request.
	ErrSourceUnavailable = errors.New("concept source unavailable")

	// ErrInvalidConfig indicates a loader constructed with unusable settings.
	ErrInvalidConfig = errors.New("invalid loader configuration")
)
