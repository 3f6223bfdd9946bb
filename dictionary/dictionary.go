// Package dictionary builds immutable concept dictionaries from loader facts
// and derives the flat lookup views the matcher scores against.
package dictionary

import (
	"iter"
	"maps"
	"slices"

	"golang.org/x/text/cases"

	"github.com/poiesic/conceptrank/core"
)

// MatcherLabel is one row of the flat matcher view.
type MatcherLabel struct {
	Text   string
	Folded string // Text under Unicode case folding
	URI    string
}

// Dictionary is an immutable snapshot of concept entries keyed by URI.
// Both derived views are computed from the same entries when the dictionary
// is created, so every URI a view returns is present in the entry map.
type Dictionary struct {
	entries map[string]*core.ConceptEntry
	uris    []string

	labelTexts []string
	matcher    map[string]string
	labels     []MatcherLabel // sorted by Text
}

type labelOwner struct {
	uri       string
	preferred bool
}

// loses reports whether candidate takes a shared label text away from
// current: a preferred label beats a non-preferred one, then the smallest
// URI wins.
func (current labelOwner) loses(candidate labelOwner) bool {
	if candidate.preferred != current.preferred {
		return candidate.preferred
	}
	return candidate.uri < current.uri
}

func newDictionary(entries map[string]*core.ConceptEntry) *Dictionary {
	d := &Dictionary{
		entries: entries,
		uris:    slices.Sorted(maps.Keys(entries)),
	}

	owners := make(map[string]labelOwner)
	for _, uri := range d.uris {
		for _, label := range entries[uri].Labels {
			candidate := labelOwner{uri: uri, preferred: label.Preferred}
			current, ok := owners[label.Text]
			if !ok || current.loses(candidate) {
				owners[label.Text] = candidate
			}
		}
	}

	d.matcher = make(map[string]string, len(owners))
	for text, owner := range owners {
		d.matcher[text] = owner.uri
	}
	d.labelTexts = slices.Sorted(maps.Keys(d.matcher))

	fold := cases.Fold()
	d.labels = make([]MatcherLabel, 0, len(d.labelTexts))
	for _, text := range d.labelTexts {
		d.labels = append(d.labels, MatcherLabel{
			Text:   text,
			Folded: fold.String(text),
			URI:    d.matcher[text],
		})
	}
	return d
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Lookup returns the entry for uri.
func (d *Dictionary) Lookup(uri string) (*core.ConceptEntry, bool) {
	entry, ok := d.entries[uri]
	return entry, ok
}

// URIs returns every URI in ascending order.
func (d *Dictionary) URIs() []string {
	return slices.Clone(d.uris)
}

// Entries returns every entry ordered by URI.
func (d *Dictionary) Entries() []*core.ConceptEntry {
	out := make([]*core.ConceptEntry, 0, len(d.uris))
	for _, uri := range d.uris {
		out = append(out, d.entries[uri])
	}
	return out
}

// All iterates entries ordered by URI.
func (d *Dictionary) All() iter.Seq[*core.ConceptEntry] {
	return func(yield func(*core.ConceptEntry) bool) {
		for _, uri := range d.uris {
			if !yield(d.entries[uri]) {
				return
			}
		}
	}
}

// AllLabelTexts returns the sorted set of every label text in the dictionary.
func (d *Dictionary) AllLabelTexts() []string {
	return slices.Clone(d.labelTexts)
}

// MatcherDictionary returns a copy of the flat label text to URI view.
func (d *Dictionary) MatcherDictionary() map[string]string {
	return maps.Clone(d.matcher)
}

// ExactURI returns the URI owning a label text. Lookup is case-sensitive.
func (d *Dictionary) ExactURI(text string) (string, bool) {
	uri, ok := d.matcher[text]
	return uri, ok
}

// MatcherLabels iterates the matcher view in label text order.
func (d *Dictionary) MatcherLabels() iter.Seq[MatcherLabel] {
	return func(yield func(MatcherLabel) bool) {
		for _, label := range d.labels {
			if !yield(label) {
				return
			}
		}
	}
}

// FilterByLocale returns a dictionary of the entries that have at least one
// label in locale. Kept entries are shared, not trimmed.
func (d *Dictionary) FilterByLocale(locale core.Locale) *Dictionary {
	kept := make(map[string]*core.ConceptEntry)
	for uri, entry := range d.entries {
		if entry.HasLocale(locale) {
			kept[uri] = entry
		}
	}
	return newDictionary(kept)
}
