package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/storage"
)

// RepositoryLoader reads every fact held by a concept repository.
type RepositoryLoader struct {
	repo   storage.ConceptRepository
	logger *slog.Logger
}

var _ Loader = (*RepositoryLoader)(nil)

// NewRepositoryLoader creates a loader over repo.
func NewRepositoryLoader(repo storage.ConceptRepository, opts ...Option) (*RepositoryLoader, error) {
	if repo == nil {
		return nil, fmt.Errorf("%w: nil repository", ErrInvalidConfig)
	}
	o, err := applyOptions("repository-loader", opts)
	if err != nil {
		return nil, err
	}
	return &RepositoryLoader{repo: repo, logger: o.logger}, nil
}

// Load returns every stored fact.
func (l *RepositoryLoader) Load(ctx context.Context) ([]core.ConceptFact, error) {
	facts, err := l.repo.AllFacts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	l.logger.Debug("loaded facts", "facts", len(facts))
	return facts, nil
}
