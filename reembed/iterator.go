package reembed

import (
	"context"

	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
)

const (
	// DefaultBatchSize is the default number of labels embedded per call
	DefaultBatchSize = 100
)

// LabelItem is one label to index.
type LabelItem struct {
	URI   string
	Label core.ConceptLabel
}

// LabelIterator walks every label of a dictionary in URI order, then in
// the load order of each entry.
type LabelIterator struct {
	dict      *dictionary.Dictionary
	batchSize int
}

// NewLabelIterator creates a new label iterator.
// batchSize: number of labels per batch (<= 0 uses DefaultBatchSize)
func NewLabelIterator(dict *dictionary.Dictionary, batchSize int) *LabelIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &LabelIterator{
		dict:      dict,
		batchSize: batchSize,
	}
}

// Count returns the number of labels the iterator yields.
func (it *LabelIterator) Count() int {
	total := 0
	for entry := range it.dict.All() {
		total += len(entry.Labels)
	}
	return total
}

// ForEach calls fn for each batch of labels.
// Iteration stops on first error from fn or when all labels are processed.
// Context cancellation is checked between batches.
func (it *LabelIterator) ForEach(ctx context.Context, fn func([]LabelItem) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]LabelItem, 0, it.batchSize)
	for entry := range it.dict.All() {
		for _, label := range entry.Labels {
			batch = append(batch, LabelItem{URI: entry.URI, Label: label})
			if len(batch) < it.batchSize {
				continue
			}
			if err := fn(batch); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			batch = make([]LabelItem, 0, it.batchSize)
		}
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
