// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.VectorIndex
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without external services and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder().
//	    WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
//	        return []float32{0.1, 0.2, 0.3}, nil
//	    })
//
//	index := mock.NewMockVectorIndex().
//	    WithSearchFunc(func(ctx context.Context, v []float32, limit int) ([]ai.VectorMatch, error) {
//	        return []ai.VectorMatch{{URI: "U1", Similarity: 0.9}}, nil
//	    })
//
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic unit vectors based on a text hash
//   - MockVectorIndex: finds nothing and records upserted vectors
//   - MockProvider: wraps a mock embedder
package mock
