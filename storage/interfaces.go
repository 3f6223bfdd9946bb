package storage

import (
	"context"

	"github.com/poiesic/conceptrank/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ConceptRepository stores the raw facts of every known concept, grouped by URI.
type ConceptRepository interface {
	Repository
	// AddFacts merges facts into the records of their URIs.
	// A fact already present on a record is not duplicated.
	// Returns the number of distinct URIs touched.
	AddFacts(ctx context.Context, facts ...core.ConceptFact) (int, error)

	// GetFacts returns the stored record for a URI.
	// Returns ErrNotFound if the URI is unknown.
	GetFacts(ctx context.Context, uri string) (*core.ConceptRecord, error)

	// DeleteConcept removes every fact of a URI.
	// Returns ErrNotFound if the URI is unknown.
	DeleteConcept(ctx context.Context, uri string) error

	// AllFacts returns every stored fact, grouped by record in key order.
	AllFacts(ctx context.Context) ([]core.ConceptFact, error)

	// CountConcepts returns the number of stored records.
	CountConcepts(ctx context.Context) (int, error)
}

// SimilarLabel is a stored label vector scored against a query vector.
type SimilarLabel struct {
	Vector     core.LabelVector
	Similarity float32
}

// VectorRepository stores label embeddings and searches them by similarity.
type VectorRepository interface {
	Repository
	// UpsertVectors stores vectors, replacing any vector already stored for
	// the same (uri, text, locale).
	UpsertVectors(ctx context.Context, vectors ...core.LabelVector) error

	// FindSimilar returns the best scoring label of each URI whose similarity
	// is at least minSimilarity, highest first, up to limit results.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]SimilarLabel, error)

	// CountVectors returns the number of stored vectors.
	CountVectors(ctx context.Context) (int, error)
}

// CheckpointRepository persists the progress of background processors.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for its processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)
}
