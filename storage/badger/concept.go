package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/storage"
)

// ConceptRepository implements storage.ConceptRepository for BadgerDB.
// Each URI is stored as one ConceptRecord holding all of its facts.
type ConceptRepository struct {
	backend *Backend
}

var _ storage.ConceptRepository = (*ConceptRepository)(nil)

// NewConceptRepository creates a new ConceptRepository.
func NewConceptRepository(backend *Backend) (*ConceptRepository, error) {
	return &ConceptRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ConceptRepository has no resources to release.
func (r *ConceptRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ConceptRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFacts merges facts into the records of their URIs.
// All facts are validated before anything is written.
func (r *ConceptRepository) AddFacts(ctx context.Context, facts ...core.ConceptFact) (int, error) {
	for i := range facts {
		if err := core.ValidateFact(&facts[i]); err != nil {
			return 0, err
		}
	}

	// Group by URI, keeping first-seen order within each record
	byURI := make(map[string][]core.ConceptFact)
	var order []string
	for _, fact := range facts {
		if _, ok := byURI[fact.URI]; !ok {
			order = append(order, fact.URI)
		}
		byURI[fact.URI] = append(byURI[fact.URI], fact)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, uri := range order {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeConceptKey(uri)
			record, err := readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				record = &core.ConceptRecord{URI: uri}
			}
			record.Facts = mergeFacts(record.Facts, byURI[uri])
			record.UpdatedAt = now
			if err := tx.Set(key, storage.MarshalConceptRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(order), nil
}

// GetFacts retrieves the record of a single URI.
func (r *ConceptRepository) GetFacts(ctx context.Context, uri string) (*core.ConceptRecord, error) {
	var result *core.ConceptRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeConceptKey(uri))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// DeleteConcept removes the record of a URI.
func (r *ConceptRepository) DeleteConcept(ctx context.Context, uri string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConceptKey(uri)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AllFacts returns every stored fact.
func (r *ConceptRepository) AllFacts(ctx context.Context) ([]core.ConceptFact, error) {
	var results []core.ConceptFact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(ctx, tx, prefixOf(conceptRecordPrefix), func(val []byte) error {
			record, err := storage.UnmarshalConceptRecord(val)
			if err != nil {
				return err
			}
			results = append(results, record.Facts...)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CountConcepts returns the number of stored records.
func (r *ConceptRepository) CountConcepts(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, prefixOf(conceptRecordPrefix))
		return nil
	}, false)
	return count, err
}

// Helper methods

// mergeFacts appends the facts of incoming that are not already present.
func mergeFacts(existing, incoming []core.ConceptFact) []core.ConceptFact {
	seen := make(map[core.ConceptFact]bool, len(existing)+len(incoming))
	for _, f := range existing {
		seen[f] = true
	}
	for _, f := range incoming {
		if seen[f] {
			continue
		}
		seen[f] = true
		existing = append(existing, f)
	}
	return existing
}

// readRecord reads a concept record from the transaction.
// Returns nil, nil when the key does not exist.
func readRecord(tx *badger.Txn, key []byte) (*core.ConceptRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ConceptRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalConceptRecord(val)
		return err
	})
	return record, err
}
