package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/poiesic/conceptrank/core"
)

// DefaultCypherQuery reads facts stored as (:Concept)-[:HAS_FACT]->(:Fact) nodes.
const DefaultCypherQuery = `
MATCH (c:Concept)-[:HAS_FACT]->(f:Fact)
RETURN c.uri AS uri, f.kind AS kind, f.text AS text, f.lang AS lang,
       coalesce(f.preferred, false) AS preferred, f.source AS source
ORDER BY uri`

// Neo4jLoader reads concept facts with a Cypher query. The query must
// return the columns uri, kind and text; lang, preferred and source are
// optional. kind holds a fact kind name such as "label" or "parent".
type Neo4jLoader struct {
	driver   neo4j.DriverWithContext
	owned    bool
	database string
	query    string
	logger   *slog.Logger
}

var _ Loader = (*Neo4jLoader)(nil)

// NewNeo4jLoader connects to the Neo4j server at target.
// Credentials come from WithBasicAuth; without them no auth is sent.
func NewNeo4jLoader(target string, opts ...Option) (*Neo4jLoader, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: neo4j target is required", ErrInvalidConfig)
	}
	o, err := applyOptions("neo4j-loader", opts)
	if err != nil {
		return nil, err
	}
	auth := neo4j.NoAuth()
	if o.username != "" {
		auth = neo4j.BasicAuth(o.username, o.password, "")
	}
	driver, err := neo4j.NewDriverWithContext(target, auth)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create neo4j driver: %w", ErrInvalidConfig, err)
	}
	l := newNeo4jLoader(driver, o)
	l.owned = true
	return l, nil
}

// NewNeo4jLoaderWithDriver reads through an existing driver. The caller
// keeps ownership of the driver.
func NewNeo4jLoaderWithDriver(driver neo4j.DriverWithContext, opts ...Option) (*Neo4jLoader, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: nil neo4j driver", ErrInvalidConfig)
	}
	o, err := applyOptions("neo4j-loader", opts)
	if err != nil {
		return nil, err
	}
	return newNeo4jLoader(driver, o), nil
}

func newNeo4jLoader(driver neo4j.DriverWithContext, o *options) *Neo4jLoader {
	l := &Neo4jLoader{
		driver:   driver,
		database: o.database,
		query:    o.query,
		logger:   o.logger,
	}
	if l.database == "" {
		l.database = "neo4j"
	}
	if l.query == "" {
		l.query = DefaultCypherQuery
	}
	return l
}

// Close closes the driver if the loader created it.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	if !l.owned {
		return nil
	}
	return l.driver.Close(ctx)
}

// Load runs the query in a read transaction.
func (l *Neo4jLoader) Load(ctx context.Context) ([]core.ConceptFact, error) {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: l.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, l.query, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type %T", ErrMalformedPayload, result)
	}
	facts, err := factsFromRecords(records)
	if err != nil {
		return nil, err
	}
	l.logger.Info("loaded facts", "facts", len(facts), "database", l.database)
	return facts, nil
}

// factsFromRecords converts query rows into facts.
func factsFromRecords(records []*neo4j.Record) ([]core.ConceptFact, error) {
	facts := make([]core.ConceptFact, 0, len(records))
	for i, record := range records {
		uri, err := requiredString(record, "uri")
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedPayload, i, err)
		}
		kindName, err := requiredString(record, "kind")
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedPayload, i, err)
		}
		kind, ok := core.ParseFactKind(kindName)
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unknown fact kind %q", ErrMalformedPayload, i, kindName)
		}
		text, err := requiredString(record, "text")
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedPayload, i, err)
		}

		fact := core.ConceptFact{URI: uri, Kind: kind, Text: text}
		if fact.Lang, err = optionalString(record, "lang"); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedPayload, i, err)
		}
		if fact.Source, err = optionalString(record, "source"); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedPayload, i, err)
		}
		if v, found := record.Get("preferred"); found && v != nil {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: row %d: preferred is %T", ErrMalformedPayload, i, v)
			}
			fact.Preferred = b
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func requiredString(record *neo4j.Record, key string) (string, error) {
	v, found := record.Get(key)
	if !found || v == nil {
		return "", fmt.Errorf("missing column %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %q is %T", key, v)
	}
	return s, nil
}

func optionalString(record *neo4j.Record, key string) (string, error) {
	v, found := record.Get(key)
	if !found || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %q is %T", key, v)
	}
	return s, nil
}
