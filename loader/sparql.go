package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/conceptrank/core"
)

// Well-known vocabulary namespaces.
const (
	NamespaceSKOS = "http://www.w3.org/2004/02/skos/core#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceDCT  = "http://purl.org/dc/terms/"
)

// DefaultSPARQLTimeout bounds one query round trip.
const DefaultSPARQLTimeout = 30 * time.Second

// Predicate describes how triples with one predicate IRI become facts.
type Predicate struct {
	Kind      core.FactKind
	Preferred bool
	// Name is recorded as the fact source.
	Name string
}

// DefaultPredicates maps the SKOS, RDFS and Dublin Core predicates used for
// concept schemes onto fact kinds.
func DefaultPredicates() map[string]Predicate {
	return map[string]Predicate{
		NamespaceSKOS + "prefLabel":  {Kind: core.FactLabel, Preferred: true, Name: "skos:prefLabel"},
		NamespaceSKOS + "altLabel":   {Kind: core.FactLabel, Name: "skos:altLabel"},
		NamespaceRDFS + "label":      {Kind: core.FactLabel, Name: "rdfs:label"},
		NamespaceSKOS + "definition": {Kind: core.FactDefinition, Name: "skos:definition"},
		NamespaceSKOS + "scopeNote":  {Kind: core.FactRemark, Name: "skos:scopeNote"},
		NamespaceSKOS + "broader":    {Kind: core.FactParent, Name: "skos:broader"},
		NamespaceSKOS + "narrower":   {Kind: core.FactChild, Name: "skos:narrower"},
		NamespaceSKOS + "related":    {Kind: core.FactRelated, Name: "skos:related"},
		NamespaceDCT + "subject":     {Kind: core.FactCategory, Name: "dct:subject"},
	}
}

// DefaultSPARQLQuery selects every (?uri ?p ?text) triple whose predicate
// appears in predicates.
func DefaultSPARQLQuery(predicates map[string]Predicate) string {
	iris := make([]string, 0, len(predicates))
	for iri := range predicates {
		iris = append(iris, "<"+iri+">")
	}
	slices.Sort(iris)
	return "SELECT ?uri ?p ?text WHERE {\n" +
		"  ?uri ?p ?text .\n" +
		"  FILTER(?p IN (" + strings.Join(iris, ", ") + "))\n" +
		"}"
}

// SPARQLLoader reads concepts from a SPARQL 1.1 endpoint.
// The query must bind ?uri, ?p and ?text.
type SPARQLLoader struct {
	endpoint   string
	query      string
	predicates map[string]Predicate
	http       *http.Client
	username   string
	password   string
	logger     *slog.Logger
}

var _ Loader = (*SPARQLLoader)(nil)

// NewSPARQLLoader creates a loader for the endpoint.
func NewSPARQLLoader(endpoint string, opts ...Option) (*SPARQLLoader, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%w: SPARQL endpoint is required", ErrInvalidConfig)
	}
	o, err := applyOptions("sparql-loader", opts)
	if err != nil {
		return nil, err
	}
	l := &SPARQLLoader{
		endpoint:   endpoint,
		query:      o.query,
		predicates: o.predicates,
		http:       o.httpClient,
		username:   o.username,
		password:   o.password,
		logger:     o.logger.With("endpoint", endpoint),
	}
	if l.predicates == nil {
		l.predicates = DefaultPredicates()
	}
	if l.query == "" {
		l.query = DefaultSPARQLQuery(l.predicates)
	}
	if l.http == nil {
		l.http = &http.Client{Timeout: DefaultSPARQLTimeout}
	}
	return l, nil
}

// sparqlTerm is one RDF term of a result binding.
type sparqlTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

type sparqlResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]sparqlTerm `json:"bindings"`
	} `json:"results"`
}

// Load runs the query and converts each binding into a fact.
// Bindings with a predicate outside the predicate map are ignored.
func (l *SPARQLLoader) Load(ctx context.Context) ([]core.ConceptFact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, strings.NewReader(l.query))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "application/sparql-results+json")
	if l.username != "" {
		req.SetBasicAuth(l.username, l.password)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var results sparqlResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if results.Results == nil {
		return nil, fmt.Errorf("%w: response has no results member", ErrMalformedPayload)
	}

	facts := make([]core.ConceptFact, 0, len(results.Results.Bindings))
	ignored := 0
	for i, binding := range results.Results.Bindings {
		uri, okURI := binding["uri"]
		pred, okPred := binding["p"]
		text, okText := binding["text"]
		if !okURI || !okPred || !okText {
			return nil, fmt.Errorf("%w: binding %d lacks ?uri, ?p or ?text", ErrMalformedPayload, i)
		}
		p, ok := l.predicates[pred.Value]
		if !ok {
			ignored++
			continue
		}
		facts = append(facts, core.ConceptFact{
			URI:       uri.Value,
			Kind:      p.Kind,
			Text:      text.Value,
			Lang:      text.Lang,
			Source:    p.Name,
			Preferred: p.Preferred,
		})
	}
	if ignored > 0 {
		l.logger.Debug("ignored bindings with unmapped predicates", "count", ignored)
	}
	l.logger.Info("loaded facts", "facts", len(facts))
	return facts, nil
}
