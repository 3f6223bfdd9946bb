package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/conceptrank/core"
)

// FileLoader reads concepts from a YAML document.
//
//	concepts:
//	  - uri: http://example.org/c/1
//	    labels:
//	      - {text: SimpleObject, lang: en, preferred: true}
//	      - {text: 単純なオブジェクト, lang: ja}
//	    display_labels: {en: Simple object}
//	    definitions: {en: An object without parts.}
//	    remarks: {en: Used in examples.}
//	    categories: [examples]
//	    synonyms: [plain object]
//	    related: [http://example.org/c/2]
//	    parents: [http://example.org/c/0]
//	    children: []
type FileLoader struct {
	path   string
	logger *slog.Logger
}

var _ Loader = (*FileLoader)(nil)

// Document is the YAML layout read by FileLoader.
type Document struct {
	Concepts []DocumentConcept `yaml:"concepts"`
}

// DocumentConcept is one concept in a Document.
type DocumentConcept struct {
	URI           string            `yaml:"uri"`
	Labels        []DocumentLabel   `yaml:"labels"`
	DisplayLabels map[string]string `yaml:"display_labels,omitempty"`
	Definitions   map[string]string `yaml:"definitions,omitempty"`
	Remarks       map[string]string `yaml:"remarks,omitempty"`
	Categories    []string          `yaml:"categories,omitempty"`
	Synonyms      []string          `yaml:"synonyms,omitempty"`
	Related       []string          `yaml:"related,omitempty"`
	Parents       []string          `yaml:"parents,omitempty"`
	Children      []string          `yaml:"children,omitempty"`
}

// DocumentConceptFromEntry converts a built entry back into its document
// form. Loading the result yields an equal entry.
func DocumentConceptFromEntry(entry *core.ConceptEntry) DocumentConcept {
	doc := DocumentConcept{
		URI:           entry.URI,
		Labels:        make([]DocumentLabel, 0, len(entry.Labels)),
		DisplayLabels: localeMap(entry.PreferredLabels),
		Definitions:   localeMap(entry.Definitions),
		Remarks:       localeMap(entry.Remarks),
		Categories:    slices.Clone(entry.Categories),
		Synonyms:      slices.Clone(entry.Synonyms),
		Related:       slices.Clone(entry.Related),
		Parents:       slices.Clone(entry.Parents),
		Children:      slices.Clone(entry.Children),
	}
	for _, label := range entry.Labels {
		doc.Labels = append(doc.Labels, DocumentLabel{
			Text:      label.Text,
			Lang:      label.Locale.String(),
			Preferred: label.Preferred,
			Source:    label.Source,
		})
	}
	return doc
}

func localeMap(in map[core.Locale]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for locale, text := range in {
		out[locale.String()] = text
	}
	return out
}

// DocumentLabel is one label of a DocumentConcept.
type DocumentLabel struct {
	Text      string `yaml:"text"`
	Lang      string `yaml:"lang"`
	Preferred bool   `yaml:"preferred,omitempty"`
	Source    string `yaml:"source,omitempty"`
}

// NewFileLoader creates a loader for the YAML file at path.
func NewFileLoader(path string, opts ...Option) (*FileLoader, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrInvalidConfig)
	}
	o, err := applyOptions("file-loader", opts)
	if err != nil {
		return nil, err
	}
	return &FileLoader{path: path, logger: o.logger.With("path", path)}, nil
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads and decodes the file.
func (l *FileLoader) Load(ctx context.Context) ([]core.ConceptFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	facts, err := ParseDocument(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded facts", "facts", len(facts))
	return facts, nil
}

// ParseDocument decodes a YAML Document and flattens it into facts.
// Unknown fields are rejected. An empty document yields no facts.
func ParseDocument(r io.Reader) ([]core.ConceptFact, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return doc.Facts(), nil
}

// Facts flattens the document. Facts of a concept are emitted labels first,
// then localized texts in language order, then relations.
func (d *Document) Facts() []core.ConceptFact {
	var facts []core.ConceptFact
	for _, c := range d.Concepts {
		for _, l := range c.Labels {
			facts = append(facts, core.ConceptFact{
				URI:       c.URI,
				Kind:      core.FactLabel,
				Text:      l.Text,
				Lang:      l.Lang,
				Source:    l.Source,
				Preferred: l.Preferred,
			})
		}
		facts = appendLocalized(facts, c.URI, core.FactDisplayLabel, c.DisplayLabels)
		facts = appendLocalized(facts, c.URI, core.FactDefinition, c.Definitions)
		facts = appendLocalized(facts, c.URI, core.FactRemark, c.Remarks)
		facts = appendValues(facts, c.URI, core.FactCategory, c.Categories)
		facts = appendValues(facts, c.URI, core.FactSynonym, c.Synonyms)
		facts = appendValues(facts, c.URI, core.FactRelated, c.Related)
		facts = appendValues(facts, c.URI, core.FactParent, c.Parents)
		facts = appendValues(facts, c.URI, core.FactChild, c.Children)
	}
	return facts
}

func appendLocalized(facts []core.ConceptFact, uri string, kind core.FactKind, values map[string]string) []core.ConceptFact {
	langs := make([]string, 0, len(values))
	for lang := range values {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		facts = append(facts, core.ConceptFact{URI: uri, Kind: kind, Text: values[lang], Lang: lang})
	}
	return facts
}

func appendValues(facts []core.ConceptFact, uri string, kind core.FactKind, values []string) []core.ConceptFact {
	for _, v := range values {
		facts = append(facts, core.ConceptFact{URI: uri, Kind: kind, Text: v})
	}
	return facts
}
