package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/conceptrank"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
	"github.com/poiesic/conceptrank/loader"
	"github.com/poiesic/conceptrank/reembed"
	"github.com/poiesic/conceptrank/storage/badger"
	"github.com/poiesic/conceptrank/watch"
)

func importCommand(c *cli.Context) error {
	ctx := c.Context
	if strings.ToLower(c.String("source-type")) == sourceStore {
		return errors.New("import needs a source other than the store itself")
	}

	res := newResources(c)
	defer res.Close()

	src, err := newLoader(c, res)
	if err != nil {
		return err
	}
	backend, err := res.store()
	if err != nil {
		return err
	}
	repo, err := badger.NewConceptRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create concept repository: %w", err)
	}

	facts, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load concepts: %w", err)
	}
	written, err := repo.AddFacts(ctx, facts...)
	if err != nil {
		return fmt.Errorf("failed to store concepts: %w", err)
	}
	total, err := repo.CountConcepts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count concepts: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Imported %d facts into %d concepts (%d concepts in store)\n", len(facts), written, total)
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := c.Context

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	res := newResources(c)
	defer res.Close()

	embedder, err := newEmbedder(c, res)
	if err != nil {
		return err
	}
	if embedder == nil {
		return errors.New("index needs an embedder (--embedder openai or hashing)")
	}
	index, err := newIndex(c, res)
	if err != nil {
		return err
	}
	if index == nil {
		return errors.New("index needs a label index (--index badger or chroma)")
	}

	src, err := newLoader(c, res)
	if err != nil {
		return err
	}
	facts, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load concepts: %w", err)
	}
	dict, report, err := dictionary.Build(facts)
	if err != nil {
		return err
	}
	if len(report.Skipped) > 0 {
		slog.Warn("some concept facts were skipped", "count", len(report.Skipped))
	}

	opts := []reembed.Option{reembed.WithLogger(slog.Default())}
	if res.backend != nil {
		opts = append(opts, reembed.WithCheckpoints(badger.NewCheckpointRepository(res.backend)))
	}
	reembedder := reembed.NewReembedder(dict, embedder, index, config, c.App.ErrWriter, opts...)

	fmt.Fprintf(c.App.ErrWriter, "Source: %s (%s)\n", c.String("source"), c.String("source-type"))
	fmt.Fprintf(c.App.ErrWriter, "Embedder: %s\n", c.String("embedder"))
	fmt.Fprintf(c.App.ErrWriter, "Index: %s\n", c.String("index"))
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("label indexing failed: %w", err)
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	ctx := c.Context
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("query text is required")
	}

	res := newResources(c)
	defer res.Close()

	engine, err := newEngine(c, res, true)
	if err != nil {
		return err
	}
	if _, err := engine.Reload(ctx); err != nil {
		return err
	}

	hits, err := engine.MatchConcepts(ctx, query)
	if err != nil {
		return err
	}
	printHits(c.App.Writer, hits)
	return nil
}

func lookupCommand(c *cli.Context) error {
	uri := c.Args().First()
	if uri == "" {
		return errors.New("concept uri is required")
	}

	res := newResources(c)
	defer res.Close()

	engine, err := newEngine(c, res, false)
	if err != nil {
		return err
	}
	if _, err := engine.Reload(c.Context); err != nil {
		return err
	}

	entry, ok := engine.LookupByURI(uri)
	if !ok {
		return fmt.Errorf("concept %q not found", uri)
	}
	return printEntries(c.App.Writer, entry)
}

func labelsCommand(c *cli.Context) error {
	var locale core.Locale
	if tag := c.String("locale"); tag != "" {
		parsed, err := core.ParseLocale(tag)
		if err != nil {
			return err
		}
		locale = parsed
	}

	res := newResources(c)
	defer res.Close()

	engine, err := newEngine(c, res, false)
	if err != nil {
		return err
	}
	if _, err := engine.Reload(c.Context); err != nil {
		return err
	}

	dict := engine.Snapshot().Dictionary
	if locale != "" {
		dict = dict.FilterByLocale(locale)
	}
	for _, entry := range dict.Entries() {
		label := entry.CanonicalLabel()
		if locale != "" {
			label = entry.LabelFor(locale)
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", entry.URI, label)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	if strings.ToLower(c.String("source-type")) != sourceFile {
		return errors.New("watch needs a file source (--source-type file)")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := newResources(c)
	defer res.Close()

	engine, err := newEngine(c, res, true)
	if err != nil {
		return err
	}
	if _, err := engine.Reload(ctx); err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(c.String("source"),
		watch.WithDebounce(c.Duration("debounce")),
		watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Watch(func(path string) {
		// A failed reload keeps the previous snapshot serving
		if _, err := engine.Reload(ctx); err == nil {
			fmt.Fprintf(c.App.ErrWriter, "Reloaded %s (generation %d)\n", path, engine.Snapshot().Generation)
		}
	}); err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Watching %s; enter queries, one per line\n", watcher.Path())
	return answerQueries(ctx, engine, c.App.Reader, c.App.Writer)
}

// answerQueries matches every non-empty input line until the input ends
// or ctx is cancelled.
func answerQueries(ctx context.Context, engine *conceptrank.Engine, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			query := strings.TrimSpace(line)
			if query == "" {
				continue
			}
			hits, err := engine.MatchConcepts(ctx, query)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			printHits(out, hits)
		}
	}
}

func printHits(w io.Writer, hits []core.ConceptHit) {
	fmt.Fprintf(w, "Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Fprintf(w, "%d: %s <%s> matched %q [%0.3f]\n", i+1, hit.CanonicalLabel, hit.URI, hit.MatchedLabel, hit.Score)
	}
}

func printEntries(w io.Writer, entries ...*core.ConceptEntry) error {
	doc := loader.Document{Concepts: make([]loader.DocumentConcept, 0, len(entries))}
	for _, entry := range entries {
		doc.Concepts = append(doc.Concepts, loader.DocumentConceptFromEntry(entry))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	return enc.Close()
}
