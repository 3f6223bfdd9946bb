package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
// It also serves as an ai.VectorIndex for the embedding channel.
//
// Vectors are expected to be L2 normalized, so the dot product is the
// cosine similarity. All stored vectors share one dimension, fixed by the
// first upsert.
type VectorRepository struct {
	backend *Backend
}

var (
	_ storage.VectorRepository = (*VectorRepository)(nil)
	_ ai.VectorIndex           = (*VectorRepository)(nil)
)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	return &VectorRepository{
		backend: backend,
	}, nil
}

// Close releases resources. VectorRepository has no resources to release.
func (r *VectorRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *VectorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertVectors stores vectors keyed by (uri, locale, text).
func (r *VectorRepository) UpsertVectors(ctx context.Context, vectors ...core.LabelVector) error {
	if len(vectors) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx)
		if err != nil {
			return err
		}
		for i := range vectors {
			v := &vectors[i]
			if v.URI == "" {
				return fmt.Errorf("%w: %w", core.ErrInvalidFact, core.ErrEmptyURI)
			}
			if len(v.Vector) == 0 {
				return fmt.Errorf("%w: empty vector for %q", storage.ErrInvalidQuery, v.Text)
			}
			if dim == 0 {
				dim = len(v.Vector)
				if err := tx.Set([]byte(labelVectorDimKey), storage.MarshalID(core.ID(dim))); err != nil {
					return err
				}
			}
			if len(v.Vector) != dim {
				return fmt.Errorf("%w: got %d, store holds %d", storage.ErrDimensionMismatch, len(v.Vector), dim)
			}
			if err := tx.Set(makeVectorKey(v), storage.MarshalLabelVector(v)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilar scans every stored vector and keeps the best label per URI.
// Ties are ordered by URI.
func (r *VectorRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]storage.SimilarLabel, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}

	best := make(map[string]storage.SimilarLabel)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(ctx, tx, prefixOf(labelVectorPrefix), func(val []byte) error {
			stored, err := storage.UnmarshalLabelVector(val)
			if err != nil {
				return err
			}
			similarity := dotProduct(vector, stored.Vector)
			if similarity < minSimilarity {
				return nil
			}
			current, ok := best[stored.URI]
			if !ok || similarity > current.Similarity ||
				(similarity == current.Similarity && stored.Text < current.Vector.Text) {
				best[stored.URI] = storage.SimilarLabel{Vector: *stored, Similarity: similarity}
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	results := make([]storage.SimilarLabel, 0, len(best))
	for _, s := range best {
		results = append(results, s)
	}
	slices.SortFunc(results, func(a, b storage.SimilarLabel) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Vector.URI, b.Vector.URI)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CountVectors returns the number of stored vectors.
func (r *VectorRepository) CountVectors(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, prefixOf(labelVectorPrefix))
		return nil
	}, false)
	return count, err
}

// Search implements ai.VectorIndex.
func (r *VectorRepository) Search(ctx context.Context, vector []float32, limit int) ([]ai.VectorMatch, error) {
	similar, err := r.FindSimilar(ctx, vector, -1, limit)
	if err != nil {
		return nil, err
	}
	matches := make([]ai.VectorMatch, 0, len(similar))
	for _, s := range similar {
		matches = append(matches, ai.VectorMatch{
			URI:        s.Vector.URI,
			Label:      s.Vector.Text,
			Similarity: float64(s.Similarity),
		})
	}
	return matches, nil
}

// Upsert implements ai.VectorIndex.
func (r *VectorRepository) Upsert(ctx context.Context, vectors []core.LabelVector) error {
	return r.UpsertVectors(ctx, vectors...)
}

// readDimension returns the stored vector dimension, or 0 if none is stored.
func readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(labelVectorDimKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var dim core.ID
	err = item.Value(func(val []byte) error {
		var err error
		dim, err = storage.UnmarshalID(val)
		return err
	})
	if dim > math.MaxInt32 {
		return 0, fmt.Errorf("%w: dimension %d", storage.ErrSerializationFailed, dim)
	}
	return int(dim), err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
