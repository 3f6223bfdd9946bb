package dictionary

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/tokenize"
)

// Skip describes one fact left out of a dictionary.
type Skip struct {
	Fact   core.ConceptFact
	Reason error
}

// Report summarizes a dictionary build.
type Report struct {
	Accepted int
	Concepts int
	Skipped  []Skip
}

type config struct {
	logger *slog.Logger
}

// Option configures Build.
type Option func(*config) error

// WithLogger sets the logger used to report skipped facts.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// Build groups facts by URI into a new Dictionary.
//
// Facts that fail validation or carry an unparseable language tag are
// skipped, logged and listed in the report; they never abort the build. A
// localized fact without a language tag is assigned Japanese when its text
// contains Han, Hiragana or Katakana and English otherwise.
//
// The returned error is only non-nil when an option fails.
func Build(facts []core.ConceptFact, opts ...Option) (*Dictionary, Report, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, Report{}, err
		}
	}
	logger := cfg.logger.With("component", "dictionary")

	var report Report
	builders := make(map[string]*core.EntryBuilder)
	locales := make(map[string]core.Locale)

	for i := range facts {
		fact := facts[i]
		if err := apply(builders, locales, fact); err != nil {
			logger.Warn("skipping concept fact",
				"uri", fact.URI, "kind", fact.Kind.String(), "lang", fact.Lang, "err", err)
			report.Skipped = append(report.Skipped, Skip{Fact: fact, Reason: err})
			continue
		}
		report.Accepted++
	}

	entries := make(map[string]*core.ConceptEntry, len(builders))
	for uri, b := range builders {
		entries[uri] = b.Build()
	}
	report.Concepts = len(entries)

	logger.Debug("dictionary built",
		"concepts", report.Concepts, "accepted", report.Accepted, "skipped", len(report.Skipped))
	return newDictionary(entries), report, nil
}

// BuildFromPairs builds a dictionary from (uri, label) pairs.
func BuildFromPairs(pairs []core.LabelPair, opts ...Option) (*Dictionary, Report, error) {
	facts := make([]core.ConceptFact, 0, len(pairs))
	for _, p := range pairs {
		facts = append(facts, p.Fact())
	}
	return Build(facts, opts...)
}

func apply(builders map[string]*core.EntryBuilder, cache map[string]core.Locale, fact core.ConceptFact) error {
	if err := core.ValidateFact(&fact); err != nil {
		return err
	}

	var locale core.Locale
	if fact.Kind.Localized() {
		var err error
		if locale, err = resolveLocale(cache, fact); err != nil {
			return err
		}
	}

	b, ok := builders[fact.URI]
	if !ok {
		b = core.NewEntryBuilder(fact.URI)
		builders[fact.URI] = b
	}

	switch fact.Kind {
	case core.FactLabel:
		b.AddLabel(core.ConceptLabel{
			Text:      fact.Text,
			Locale:    locale,
			Source:    fact.Source,
			Preferred: fact.Preferred,
		})
	case core.FactDisplayLabel, core.FactDefinition, core.FactRemark:
		b.AddLocalized(fact.Kind, locale, fact.Text)
	default:
		b.AddRelation(fact.Kind, fact.Text)
	}
	return nil
}

func resolveLocale(cache map[string]core.Locale, fact core.ConceptFact) (core.Locale, error) {
	if fact.Lang == "" {
		if tokenize.ContainsJapanese(fact.Text) {
			return core.LocaleJapanese, nil
		}
		return core.LocaleEnglish, nil
	}
	if locale, ok := cache[fact.Lang]; ok {
		return locale, nil
	}
	locale, err := core.ParseLocale(fact.Lang)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrInvalidFact, err)
	}
	cache[fact.Lang] = locale
	return locale, nil
}
