package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
	"github.com/poiesic/conceptrank/tokenize"
)

// DefaultPoolSize is the embedding worker count of a matcher that owns its pool.
const DefaultPoolSize = 8

// Matcher resolves query text to ranked concepts against the dictionary
// snapshot it was created with. It is safe for concurrent use.
type Matcher struct {
	dict    *dictionary.Dictionary
	scorer  *Scorer
	maxHits int
	monitor SearchMonitor
	logger  *slog.Logger

	poolSize  int
	ownedPool bool
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithEmbedder sets the embedder of the embedding channel.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(m *Matcher) error {
		m.scorer.embedder = embedder
		return nil
	}
}

// WithVectorIndex sets the vector index of the embedding channel.
func WithVectorIndex(index ai.VectorIndex) Option {
	return func(m *Matcher) error {
		m.scorer.index = index
		return nil
	}
}

// WithEmbeddingResults sets the neighbour count requested per token.
// Default is DefaultEmbeddingResults.
func WithEmbeddingResults(n int) Option {
	return func(m *Matcher) error {
		if n < 1 {
			return fmt.Errorf("%w: embedding results must be positive, got %d", ErrInvalidOption, n)
		}
		m.scorer.resultLimit = n
		return nil
	}
}

// WithMaxHits sets the maximum number of hits per call.
// Default is DefaultMaxHits.
func WithMaxHits(n int) Option {
	return func(m *Matcher) error {
		if n < 1 {
			return fmt.Errorf("%w: max hits must be positive, got %d", ErrInvalidOption, n)
		}
		m.maxHits = n
		return nil
	}
}

// WithPool shares an existing worker pool for embedding calls.
// The matcher does not release a shared pool.
func WithPool(pool *ants.Pool) Option {
	return func(m *Matcher) error {
		m.scorer.pool = pool
		return nil
	}
}

// WithPoolSize sets the size of the pool the matcher creates when no pool
// is shared. Default is DefaultPoolSize.
func WithPoolSize(size int) Option {
	return func(m *Matcher) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidOption, size)
		}
		m.poolSize = size
		return nil
	}
}

// WithMonitor sets the monitor used by MatchConcepts.
func WithMonitor(monitor SearchMonitor) Option {
	return func(m *Matcher) error {
		m.monitor = monitor
		return nil
	}
}

// NewMatcher creates a matcher bound to dict.
// Without both an embedder and a vector index the embedding channel is off.
func NewMatcher(dict *dictionary.Dictionary, opts ...Option) (*Matcher, error) {
	if dict == nil {
		return nil, ErrDictionaryRequired
	}

	m := &Matcher{
		dict: dict,
		scorer: &Scorer{
			dict:        dict,
			resultLimit: DefaultEmbeddingResults,
		},
		maxHits:  DefaultMaxHits,
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
		poolSize: DefaultPoolSize,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.monitor == nil {
		m.monitor = &noopMonitor{}
	}

	m.logger = m.logger.With("component", "matcher")
	m.scorer.logger = m.logger

	if m.scorer.EmbeddingEnabled() && m.scorer.pool == nil {
		pool, err := ants.NewPool(m.poolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding pool: %w", err)
		}
		m.scorer.pool = pool
		m.ownedPool = true
	}

	return m, nil
}

// Close releases the worker pool if the matcher created it.
func (m *Matcher) Close() error {
	if m.ownedPool && m.scorer.pool != nil {
		m.scorer.pool.Release()
	}
	return nil
}

// Dictionary returns the snapshot the matcher is bound to.
func (m *Matcher) Dictionary() *dictionary.Dictionary {
	return m.dict
}

// LookupByURI returns the entry for uri without scoring.
func (m *Matcher) LookupByURI(uri string) (*core.ConceptEntry, bool) {
	return m.dict.Lookup(uri)
}

// MatchConcepts returns the best matching concepts for text, highest score
// first. Text without tokens yields an empty result and no error.
func (m *Matcher) MatchConcepts(ctx context.Context, text string) ([]core.ConceptHit, error) {
	return m.MatchConceptsWithMonitor(ctx, text, m.monitor)
}

// MatchConceptsWithMonitor is MatchConcepts with a per-call monitor.
func (m *Matcher) MatchConceptsWithMonitor(ctx context.Context, text string, monitor SearchMonitor) ([]core.ConceptHit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(text)

	// 1. Tokenize
	locale, tokens := tokenize.Tokenize(text)
	monitor.AfterTokenize(locale, tokens)
	if len(tokens) == 0 {
		hits := []core.ConceptHit{}
		monitor.Finish(hits)
		return hits, nil
	}

	// 2. Score through every channel
	exact := m.scorer.Exact(tokens, locale)
	monitor.AfterChannel(core.ChannelExact, exact)

	partial := m.scorer.Partial(tokens, locale)
	monitor.AfterChannel(core.ChannelPartial, partial)

	embedded, failures, err := m.scorer.Embedding(ctx, tokens)
	if err != nil {
		m.logger.Error("match abandoned", "query", text, "err", err)
		return nil, err
	}
	for _, f := range failures {
		monitor.EmbeddingFailed(f.token, f.err)
	}
	monitor.AfterChannel(core.ChannelEmbedding, embedded)

	candidates := make([]core.UriMatch, 0, len(exact)+len(partial)+len(embedded))
	candidates = append(candidates, exact...)
	candidates = append(candidates, partial...)
	candidates = append(candidates, embedded...)

	// 3. Rank. Rank over every group so a dropped URI does not shorten the
	// result below maxHits when more concepts matched.
	ranked := Rank(candidates, 0)

	// 4. Resolve entries and canonical labels
	hits := make([]core.ConceptHit, 0, min(len(ranked), m.maxHits))
	for _, r := range ranked {
		if len(hits) == m.maxHits {
			break
		}
		entry, ok := m.dict.Lookup(r.URI)
		if !ok {
			m.logger.Error("dropping ranked uri", "uri", r.URI, "err", ErrInconsistentSnapshot)
			monitor.InconsistentURI(r.URI)
			continue
		}
		hits = append(hits, core.ConceptHit{
			URI:            r.URI,
			CanonicalLabel: entry.LabelFor(locale),
			MatchedLabel:   r.Label,
			Locale:         locale,
			Score:          r.Score,
			Entry:          entry,
		})
	}

	m.logger.Debug("matched concepts",
		"query", text, "locale", locale, "tokens", len(tokens),
		"candidates", len(candidates), "hits", len(hits))
	monitor.Finish(hits)
	return hits, nil
}
