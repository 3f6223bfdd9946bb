package mock

import (
	"context"
	"sync"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
)

// MockVectorIndex is a test double for ai.VectorIndex.
// By default Search returns nothing and Upsert records the vectors.
type MockVectorIndex struct {
	// SearchFunc is called by Search if set.
	SearchFunc func(ctx context.Context, vector []float32, limit int) ([]ai.VectorMatch, error)

	// UpsertFunc is called by Upsert if set.
	UpsertFunc func(ctx context.Context, vectors []core.LabelVector) error

	mu          sync.Mutex
	searchCalls int
	upserted    []core.LabelVector
}

// NewMockVectorIndex creates an empty mock index.
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{}
}

// WithSearchFunc sets SearchFunc and returns the mock.
func (m *MockVectorIndex) WithSearchFunc(fn func(ctx context.Context, vector []float32, limit int) ([]ai.VectorMatch, error)) *MockVectorIndex {
	m.SearchFunc = fn
	return m
}

// Search calls SearchFunc or returns no matches.
func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, limit int) ([]ai.VectorMatch, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vector, limit)
	}
	return nil, nil
}

// Upsert calls UpsertFunc, or records the vectors.
func (m *MockVectorIndex) Upsert(ctx context.Context, vectors []core.LabelVector) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, vectors)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, vectors...)
	return nil
}

// SearchCalls returns how many times Search was called.
func (m *MockVectorIndex) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// Upserted returns a copy of every vector recorded by Upsert.
func (m *MockVectorIndex) Upserted() []core.LabelVector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.LabelVector(nil), m.upserted...)
}
