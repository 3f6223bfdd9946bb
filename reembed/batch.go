package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
)

// BatchProcessor embeds batches of labels and upserts them into a vector index.
type BatchProcessor struct {
	index          ai.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding and upsert call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(index ai.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the label texts of a batch and stores the normalized vectors.
// It returns the number of vectors written. Labels whose embedding is a zero
// vector are not written.
func (bp *BatchProcessor) Process(ctx context.Context, items []LabelItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Label.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(items) {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(items), len(embeddings))
	}

	vectors := make([]core.LabelVector, 0, len(items))
	for i, item := range items {
		vector := NormalizeVector(embeddings[i])
		if isZero(vector) {
			continue
		}
		vectors = append(vectors, core.LabelVector{
			URI:    item.URI,
			Text:   item.Label.Text,
			Locale: item.Label.Locale,
			Vector: vector,
		})
	}
	if len(vectors) == 0 {
		return 0, nil
	}

	err = RetryWithBackoff(ctx, func() error {
		return bp.index.Upsert(ctx, vectors)
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIndexFailed, err)
	}

	return len(vectors), nil
}
