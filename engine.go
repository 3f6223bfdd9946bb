// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package conceptrank

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
	"github.com/poiesic/conceptrank/loader"
	"github.com/poiesic/conceptrank/search"
	"github.com/poiesic/conceptrank/storage"
)

// CheckpointProcessor names the reload checkpoint.
const CheckpointProcessor = "engine-reload"

// Engine serves concept queries against the most recently loaded
// dictionary. It is safe for concurrent use.
type Engine struct {
	loader      loader.Loader
	embedder    ai.Embedder
	provider    ai.AIProvider
	index       ai.VectorIndex
	checkpoints storage.CheckpointRepository
	monitor     search.SearchMonitor
	base        *slog.Logger
	logger      *slog.Logger

	maxHits          int
	poolSize         int
	embeddingResults int

	holder   dictionary.Holder
	state    atomic.Pointer[engineState]
	pool     *ants.Pool
	reloadMu sync.Mutex
}

// engineState pairs a snapshot with the matcher bound to its dictionary.
// Both are published together so a query never mixes generations.
type engineState struct {
	snapshot *dictionary.Snapshot
	matcher  *search.Matcher
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.base = logger
		return nil
	}
}

// WithEmbedder sets the embedder of the embedding channel.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithProvider uses the provider's embedder. The engine closes the
// provider on Close.
func WithProvider(provider ai.AIProvider) Option {
	return func(e *Engine) error {
		e.provider = provider
		if provider != nil {
			e.embedder = provider.Embedder()
		}
		return nil
	}
}

// WithVectorIndex sets the label vector index of the embedding channel.
func WithVectorIndex(index ai.VectorIndex) Option {
	return func(e *Engine) error {
		e.index = index
		return nil
	}
}

// WithMaxHits sets the maximum number of hits per query.
// Default is search.DefaultMaxHits.
func WithMaxHits(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("%w: max hits must be positive, got %d", ErrInvalidOption, n)
		}
		e.maxHits = n
		return nil
	}
}

// WithPoolSize sets the number of concurrent embedding calls.
// Default is search.DefaultPoolSize.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidOption, size)
		}
		e.poolSize = size
		return nil
	}
}

// WithEmbeddingResults sets the neighbour count requested per token.
// Default is search.DefaultEmbeddingResults.
func WithEmbeddingResults(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("%w: embedding results must be positive, got %d", ErrInvalidOption, n)
		}
		e.embeddingResults = n
		return nil
	}
}

// WithCheckpoints records a checkpoint after every successful reload.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(e *Engine) error {
		e.checkpoints = repo
		return nil
	}
}

// WithMonitor sets the monitor passed to every query.
func WithMonitor(monitor search.SearchMonitor) Option {
	return func(e *Engine) error {
		e.monitor = monitor
		return nil
	}
}

// NewEngine creates an engine that loads concepts from src.
// The engine serves no queries until Reload succeeds once.
func NewEngine(src loader.Loader, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, ErrLoaderRequired
	}

	e := &Engine{
		loader:           src,
		base:             slog.Default(),
		maxHits:          search.DefaultMaxHits,
		poolSize:         search.DefaultPoolSize,
		embeddingResults: search.DefaultEmbeddingResults,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.base.With("component", "engine")

	if e.EmbeddingEnabled() {
		pool, err := ants.NewPool(e.poolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding pool: %w", err)
		}
		e.pool = pool
	} else if e.embedder != nil || e.index != nil {
		e.logger.Warn("embedding channel disabled, both an embedder and a vector index are required")
	}

	return e, nil
}

// Close releases the embedding worker pool and the provider.
func (e *Engine) Close() error {
	if e.pool != nil {
		e.pool.Release()
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			return err
		}
	}
	return nil
}

// EmbeddingEnabled reports whether queries use the embedding channel.
func (e *Engine) EmbeddingEnabled() bool {
	return e.embedder != nil && e.index != nil
}

// Reload fetches every fact from the loader and publishes a new snapshot.
//
// A loader failure is returned wrapped in ErrLoadFailed and the current
// snapshot keeps serving. Facts that fail validation are skipped and
// listed in the report. Concurrent reloads run one at a time.
func (e *Engine) Reload(ctx context.Context) (dictionary.Report, error) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	start := time.Now()
	facts, err := e.loader.Load(ctx)
	if err != nil {
		e.logger.Error("concept load failed, keeping current snapshot", "err", err)
		return dictionary.Report{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	dict, report, err := dictionary.Build(facts, dictionary.WithLogger(e.base))
	if err != nil {
		return dictionary.Report{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	matcher, err := e.newMatcher(dict)
	if err != nil {
		return dictionary.Report{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	e.holder.Swap(dict)
	snap := e.holder.Load()
	e.state.Store(&engineState{snapshot: snap, matcher: matcher})
	e.logger.Info("concept dictionary loaded",
		"generation", snap.Generation, "concepts", report.Concepts,
		"facts", report.Accepted, "skipped", len(report.Skipped), "elapsed", time.Since(start))

	if e.checkpoints != nil {
		checkpoint := &core.Checkpoint{ProcessorType: CheckpointProcessor, Count: uint64(report.Concepts)}
		if err := e.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
			e.logger.Warn("failed to save reload checkpoint", "err", err)
		}
	}
	return report, nil
}

// Snapshot returns the snapshot currently serving, or nil before the
// first successful Reload.
func (e *Engine) Snapshot() *dictionary.Snapshot {
	if st := e.state.Load(); st != nil {
		return st.snapshot
	}
	return nil
}

// MatchConcepts returns the best matching concepts for text, highest score
// first. All channels of one call see the same snapshot.
func (e *Engine) MatchConcepts(ctx context.Context, text string) ([]core.ConceptHit, error) {
	st := e.state.Load()
	if st == nil {
		return nil, ErrNotLoaded
	}
	return st.matcher.MatchConcepts(ctx, text)
}

// LookupByURI returns the entry for uri in the current snapshot.
func (e *Engine) LookupByURI(uri string) (*core.ConceptEntry, bool) {
	st := e.state.Load()
	if st == nil {
		return nil, false
	}
	return st.matcher.LookupByURI(uri)
}

// newMatcher builds the matcher for one snapshot. Matchers share the
// engine's pool, so a replaced matcher needs no Close.
func (e *Engine) newMatcher(dict *dictionary.Dictionary) (*search.Matcher, error) {
	opts := []search.Option{
		search.WithLogger(e.base),
		search.WithMaxHits(e.maxHits),
		search.WithEmbeddingResults(e.embeddingResults),
		search.WithMonitor(e.monitor),
	}
	if e.EmbeddingEnabled() {
		opts = append(opts,
			search.WithEmbedder(e.embedder),
			search.WithVectorIndex(e.index),
			search.WithPool(e.pool),
		)
	}
	return search.NewMatcher(dict, opts...)
}
