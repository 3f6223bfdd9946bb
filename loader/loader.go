// Package loader supplies the raw concept facts a dictionary is built from.
//
// A Loader is run once per load cycle. Loaders only fetch and decode: they
// do not validate language tags or drop facts, which is the dictionary
// builder's job. A failing source fails the whole load.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/conceptrank/core"
)

// Loader produces every fact known to a concept source.
type Loader interface {
	Load(ctx context.Context) ([]core.ConceptFact, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context) ([]core.ConceptFact, error)

// Load calls f.
func (f Func) Load(ctx context.Context) ([]core.ConceptFact, error) {
	return f(ctx)
}

// Static is a Loader that always returns the same facts.
type Static []core.ConceptFact

// Load returns a copy of the facts.
func (s Static) Load(ctx context.Context) ([]core.ConceptFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]core.ConceptFact, len(s))
	copy(out, s)
	return out, nil
}

// FromPairs converts (uri, label) pairs into a Static loader.
func FromPairs(pairs ...core.LabelPair) Static {
	facts := make(Static, 0, len(pairs))
	for _, p := range pairs {
		facts = append(facts, p.Fact())
	}
	return facts
}

// Option configures the loaders in this package. Loaders ignore options
// that do not apply to them.
type Option func(*options) error

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
	query      string
	predicates map[string]Predicate
	username   string
	password   string
	database   string
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithQuery replaces the default SPARQL or Cypher query.
func WithQuery(query string) Option {
	return func(o *options) error {
		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("%w: empty query", ErrInvalidConfig)
		}
		o.query = query
		return nil
	}
}

// WithPredicates replaces the SPARQL predicate map.
func WithPredicates(predicates map[string]Predicate) Option {
	return func(o *options) error {
		if len(predicates) == 0 {
			return fmt.Errorf("%w: predicate map is empty", ErrInvalidConfig)
		}
		o.predicates = predicates
		return nil
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		if c == nil {
			return fmt.Errorf("%w: nil http client", ErrInvalidConfig)
		}
		o.httpClient = c
		return nil
	}
}

// WithBasicAuth sets the credentials sent to the source.
func WithBasicAuth(username, password string) Option {
	return func(o *options) error {
		o.username = username
		o.password = password
		return nil
	}
}

// WithDatabase selects the Neo4j database.
func WithDatabase(name string) Option {
	return func(o *options) error {
		o.database = name
		return nil
	}
}

func applyOptions(component string, opts []Option) (*options, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", component)
	return o, nil
}
