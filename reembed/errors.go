package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbeddingMismatch is returned when the embedder answers with a
	// different number of vectors than texts.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")

	// ErrIndexFailed is returned when a batch could not be upserted.
	ErrIndexFailed = errors.New("vector index upsert failed")
)
