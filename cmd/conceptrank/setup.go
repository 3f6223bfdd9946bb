package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/conceptrank"
	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/ai/hashing"
	"github.com/poiesic/conceptrank/ai/openai"
	"github.com/poiesic/conceptrank/loader"
	"github.com/poiesic/conceptrank/storage/badger"
	"github.com/poiesic/conceptrank/vectorstore/chroma"
)

const (
	sourceFile   = "file"
	sourceSPARQL = "sparql"
	sourceNeo4j  = "neo4j"
	sourceStore  = "store"

	embedderNone    = "none"
	embedderOpenAI  = ai.ProviderOpenAI
	embedderHashing = ai.ProviderHashing

	indexNone   = "none"
	indexBadger = "badger"
	indexChroma = "chroma"
)

// resources owns everything a command opens. The badger store is opened at
// most once so that a command can read facts from it and write vectors to
// it at the same time.
type resources struct {
	dbPath  string
	backend *badger.Backend
	closers []func() error
}

func newResources(c *cli.Context) *resources {
	return &resources{dbPath: c.String("db")}
}

func (r *resources) store() (*badger.Backend, error) {
	if r.backend != nil {
		return r.backend, nil
	}
	if r.dbPath == "" {
		return nil, errors.New("database path is required (--db)")
	}
	backend, err := badger.OpenBackend(r.dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.backend = backend
	return backend, nil
}

func (r *resources) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// Close runs the registered closers in reverse order, then closes the store.
func (r *resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if r.backend != nil {
		if err := r.backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newLoader(c *cli.Context, res *resources) (loader.Loader, error) {
	kind := strings.ToLower(c.String("source-type"))
	source := c.String("source")
	if source == "" && kind != sourceStore {
		return nil, errors.New("concept source is required (--source)")
	}

	opts := []loader.Option{loader.WithLogger(slog.Default())}
	if user := c.String("source-user"); user != "" {
		opts = append(opts, loader.WithBasicAuth(user, c.String("source-password")))
	}

	switch kind {
	case sourceFile:
		return loader.NewFileLoader(source, opts...)
	case sourceSPARQL:
		return loader.NewSPARQLLoader(source, opts...)
	case sourceNeo4j:
		if db := c.String("source-database"); db != "" {
			opts = append(opts, loader.WithDatabase(db))
		}
		l, err := loader.NewNeo4jLoader(source, opts...)
		if err != nil {
			return nil, err
		}
		res.onClose(func() error { return l.Close(context.Background()) })
		return l, nil
	case sourceStore:
		backend, err := res.store()
		if err != nil {
			return nil, err
		}
		repo, err := badger.NewConceptRepository(backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create concept repository: %w", err)
		}
		return loader.NewRepositoryLoader(repo, opts...)
	default:
		return nil, fmt.Errorf("unknown source type %q: must be one of file, sparql, neo4j, store", kind)
	}
}

// newEmbedder returns nil when no embedder is selected. Provider
// resources are released with res.
func newEmbedder(c *cli.Context, res *resources) (ai.Embedder, error) {
	kind := strings.ToLower(c.String("embedder"))
	if kind == embedderNone || kind == "" {
		return nil, nil
	}

	config := ai.NewConfig(
		ai.WithProvider(kind),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("embedding-token")),
		ai.WithDimensions(c.Int("dimensions")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	switch config.Provider {
	case embedderOpenAI:
		provider, err := openai.NewProvider(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		res.onClose(provider.Close)
		return provider.Embedder(), nil
	case embedderHashing:
		return hashing.NewEmbedderFromConfig(config)
	}
	return nil, fmt.Errorf("unknown embedder %q", kind)
}

// newIndex returns nil when no index is selected.
func newIndex(c *cli.Context, res *resources) (ai.VectorIndex, error) {
	kind := strings.ToLower(c.String("index"))
	switch kind {
	case indexNone, "":
		return nil, nil
	case indexBadger:
		backend, err := res.store()
		if err != nil {
			return nil, err
		}
		repo, err := badger.NewVectorRepository(backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create vector repository: %w", err)
		}
		return repo, nil
	case indexChroma:
		client, err := chroma.NewClient(c.String("chroma-url"), c.String("chroma-collection"),
			chroma.WithLogger(slog.Default()))
		if err != nil {
			return nil, err
		}
		if err := client.EnsureCollection(c.Context); err != nil {
			return nil, fmt.Errorf("failed to prepare chroma collection: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown index %q: must be one of none, badger, chroma", kind)
	}
}

// newEngine wires an engine from the command flags. Commands that answer
// queries pass query=true to configure the scoring and embedding options.
func newEngine(c *cli.Context, res *resources, query bool) (*conceptrank.Engine, error) {
	src, err := newLoader(c, res)
	if err != nil {
		return nil, err
	}

	opts := []conceptrank.Option{conceptrank.WithLogger(slog.Default())}
	if query {
		queryOpts, err := queryOptions(c, res)
		if err != nil {
			return nil, err
		}
		opts = append(opts, queryOpts...)
	}
	if res.backend != nil {
		opts = append(opts, conceptrank.WithCheckpoints(badger.NewCheckpointRepository(res.backend)))
	}

	engine, err := conceptrank.NewEngine(src, opts...)
	if err != nil {
		return nil, err
	}
	res.onClose(engine.Close)
	return engine, nil
}

func queryOptions(c *cli.Context, res *resources) ([]conceptrank.Option, error) {
	opts := []conceptrank.Option{
		conceptrank.WithMaxHits(c.Int("max-hits")),
		conceptrank.WithEmbeddingResults(c.Int("embedding-results")),
		conceptrank.WithPoolSize(c.Int("pool-size")),
	}

	embedder, err := newEmbedder(c, res)
	if err != nil {
		return nil, err
	}
	index, err := newIndex(c, res)
	if err != nil {
		return nil, err
	}
	if embedder != nil {
		opts = append(opts, conceptrank.WithEmbedder(embedder))
	}
	if index != nil {
		opts = append(opts, conceptrank.WithVectorIndex(index))
	}
	return opts, nil
}
