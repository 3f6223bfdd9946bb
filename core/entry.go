package core

import (
	"slices"
	"strings"
)

// ConceptEntry aggregates every label, definition, remark and relation known
// for one concept URI. Entries are built once per load cycle and are
// read-only afterwards; a reload builds new entries instead of patching.
type ConceptEntry struct {
	URI string

	// Labels are kept in load order without structural duplicates.
	Labels []ConceptLabel

	// LocaleLabels groups Labels by locale. It is a view over Labels.
	LocaleLabels map[Locale][]ConceptLabel

	// PreferredLabels holds explicit per-locale display overrides.
	PreferredLabels map[Locale]string

	Definitions map[Locale]string
	Remarks     map[Locale]string

	// Relation sets are sorted and deduplicated.
	Categories []string
	Synonyms   []string
	Related    []string
	Parents    []string
	Children   []string
}

// LabelFor resolves the canonical label of the concept for a locale.
//
// Resolution order, first hit wins:
//  1. explicit override in PreferredLabels
//  2. a preferred label in the locale
//  3. any label in the locale
//  4. a definition (locale, then English, then Japanese, then any)
//  5. a remark with the same fallback
//  6. CanonicalLabel
//
// LabelFor never returns an empty string for an entry with a URI.
func (e *ConceptEntry) LabelFor(locale Locale) string {
	if text, ok := e.PreferredLabels[locale]; ok && text != "" {
		return text
	}

	localeLabels := e.LocaleLabels[locale]
	for _, label := range localeLabels {
		if label.Preferred {
			return label.Text
		}
	}
	if len(localeLabels) > 0 {
		return localeLabels[0].Text
	}

	if text, ok := resolveLocalized(e.Definitions, locale); ok {
		return text
	}
	if text, ok := resolveLocalized(e.Remarks, locale); ok {
		return text
	}

	return e.CanonicalLabel()
}

// CanonicalLabel returns the first preferred label in any locale, then the
// first label at all, then the URI itself.
func (e *ConceptEntry) CanonicalLabel() string {
	for _, label := range e.Labels {
		if label.Preferred {
			return label.Text
		}
	}
	if len(e.Labels) > 0 {
		return e.Labels[0].Text
	}
	return e.URI
}

// FindLabel returns the label whose text equals text case-insensitively.
// An exact-case match is preferred, then a preferred label, then load order.
func (e *ConceptEntry) FindLabel(text string) (ConceptLabel, bool) {
	var (
		found     ConceptLabel
		haveFound bool
	)
	for _, label := range e.Labels {
		if label.Text == text {
			return label, true
		}
		if !strings.EqualFold(label.Text, text) {
			continue
		}
		if !haveFound || (label.Preferred && !found.Preferred) {
			found = label
			haveFound = true
		}
	}
	return found, haveFound
}

// HasLocale reports whether at least one label is in the locale.
func (e *ConceptEntry) HasLocale(locale Locale) bool {
	return len(e.LocaleLabels[locale]) > 0
}

// resolveLocalized picks a value for locale, falling back to English, then
// Japanese, then the value with the smallest locale key.
func resolveLocalized(values map[Locale]string, locale Locale) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	for _, candidate := range []Locale{locale, LocaleEnglish, LocaleJapanese} {
		if text, ok := values[candidate]; ok && text != "" {
			return text, true
		}
	}
	keys := make([]Locale, 0, len(values))
	for k, v := range values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	slices.Sort(keys)
	return values[keys[0]], true
}

// EntryBuilder accumulates the pieces of one ConceptEntry.
// It is not safe for concurrent use.
type EntryBuilder struct {
	entry  *ConceptEntry
	seen   map[ConceptLabel]bool
	sets   map[FactKind]map[string]bool
	closed bool
}

// NewEntryBuilder starts an entry for uri.
func NewEntryBuilder(uri string) *EntryBuilder {
	return &EntryBuilder{
		entry: &ConceptEntry{
			URI:             uri,
			LocaleLabels:    make(map[Locale][]ConceptLabel),
			PreferredLabels: make(map[Locale]string),
			Definitions:     make(map[Locale]string),
			Remarks:         make(map[Locale]string),
		},
		seen: make(map[ConceptLabel]bool),
		sets: make(map[FactKind]map[string]bool),
	}
}

// AddLabel appends a label unless a structurally equal one is present.
func (b *EntryBuilder) AddLabel(label ConceptLabel) {
	if b.seen[label] {
		return
	}
	b.seen[label] = true
	b.entry.Labels = append(b.entry.Labels, label)
	b.entry.LocaleLabels[label.Locale] = append(b.entry.LocaleLabels[label.Locale], label)
}

// AddLocalized records a display override, definition or remark.
// The first value seen for a locale wins.
func (b *EntryBuilder) AddLocalized(kind FactKind, locale Locale, text string) {
	var target map[Locale]string
	switch kind {
	case FactDisplayLabel:
		target = b.entry.PreferredLabels
	case FactDefinition:
		target = b.entry.Definitions
	case FactRemark:
		target = b.entry.Remarks
	default:
		return
	}
	if _, exists := target[locale]; !exists {
		target[locale] = text
	}
}

// AddRelation records a category, synonym or related/parent/child URI.
func (b *EntryBuilder) AddRelation(kind FactKind, value string) {
	switch kind {
	case FactCategory, FactSynonym, FactRelated, FactParent, FactChild:
	default:
		return
	}
	set, ok := b.sets[kind]
	if !ok {
		set = make(map[string]bool)
		b.sets[kind] = set
	}
	set[value] = true
}

// Build finalizes and returns the entry. The builder must not be used afterwards.
func (b *EntryBuilder) Build() *ConceptEntry {
	if b.closed {
		panic("core: EntryBuilder.Build called twice")
	}
	b.closed = true

	b.entry.Categories = sortedSet(b.sets[FactCategory])
	b.entry.Synonyms = sortedSet(b.sets[FactSynonym])
	b.entry.Related = sortedSet(b.sets[FactRelated])
	b.entry.Parents = sortedSet(b.sets[FactParent])
	b.entry.Children = sortedSet(b.sets[FactChild])
	return b.entry
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
