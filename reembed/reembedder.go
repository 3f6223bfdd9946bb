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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
	"github.com/poiesic/conceptrank/storage"
)

// CheckpointProcessor is the processor type of label indexing checkpoints.
const CheckpointProcessor = "label-index"

// Config holds configuration for the indexing operation.
type Config struct {
	// BatchSize is the number of labels embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of labels)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Option configures a Reembedder.
type Option func(*Reembedder)

// WithCheckpoints saves a checkpoint after every successful run.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(r *Reembedder) { r.checkpoints = repo }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// Result summarizes one run.
type Result struct {
	Labels  int // labels visited
	Indexed int // vectors written
	Elapsed time.Duration
}

// Reembedder embeds every label of a dictionary into a vector index.
type Reembedder struct {
	dict        *dictionary.Dictionary
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *LabelIterator
	checkpoints storage.CheckpointRepository
	logger      *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(dict *dictionary.Dictionary, embedder ai.Embedder, index ai.VectorIndex, config *Config, progress io.Writer, opts ...Option) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	r := &Reembedder{
		dict:      dict,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(index, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewLabelIterator(dict, config.BatchSize),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reembed")
	return r
}

// Run indexes every label of the dictionary.
// A failed batch stops the run; labels of earlier batches stay indexed and
// no checkpoint is saved.
func (r *Reembedder) Run(ctx context.Context) (Result, error) {
	total := r.iterator.Count()
	if total == 0 {
		fmt.Fprintf(r.progress, "No labels found in dictionary (0 labels)\n")
		return Result{}, nil
	}

	fmt.Fprintf(r.progress, "Starting indexing of %d labels from %d concepts (batch size: %d)\n",
		total, r.dict.Len(), r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	var result Result
	err := r.iterator.ForEach(ctx, func(items []LabelItem) error {
		written, err := r.processor.Process(ctx, items)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		result.Labels += len(items)
		result.Indexed += written
		if skipped := len(items) - written; skipped > 0 {
			r.logger.Warn("labels produced zero vectors and were not indexed", "count", skipped)
		}
		tracker.Update(result.Labels)
		return nil
	})
	if err != nil {
		return result, err
	}

	tracker.Finish()
	result.Elapsed = tracker.Elapsed()

	if r.checkpoints != nil {
		checkpoint := &core.Checkpoint{ProcessorType: CheckpointProcessor, Count: uint64(result.Indexed)}
		if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
			return result, fmt.Errorf("failed to save checkpoint: %w", err)
		}
	}

	fmt.Fprintf(r.progress, "Indexing complete. Indexed %d of %d labels in %v\n",
		result.Indexed, result.Labels, result.Elapsed.Round(time.Millisecond))
	r.logger.Info("label indexing complete", "labels", result.Labels, "indexed", result.Indexed, "elapsed", result.Elapsed)

	return result, nil
}
