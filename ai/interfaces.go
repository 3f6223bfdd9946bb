package ai

import (
	"context"

	"github.com/poiesic/conceptrank/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorMatch is one result of a similarity search.
type VectorMatch struct {
	URI   string
	Label string // label text whose vector matched, if the index knows it
	// Similarity is in [0, 1]; higher is closer.
	Similarity float64
}

// VectorIndex stores label vectors and answers nearest-neighbour queries.
// Implementations must be thread-safe for concurrent use.
type VectorIndex interface {
	// Search returns up to limit matches for vector, closest first.
	Search(ctx context.Context, vector []float32, limit int) ([]VectorMatch, error)

	// Upsert stores or replaces label vectors.
	Upsert(ctx context.Context, vectors []core.LabelVector) error
}

// AIProvider aggregates the embedding service with its lifecycle.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
