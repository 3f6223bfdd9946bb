package core

import (
	"testing"
)

var localeFrench = MustParseLocale("fr")

func buildEntry(uri string, labels []ConceptLabel, localized map[FactKind]map[Locale]string) *ConceptEntry {
	b := NewEntryBuilder(uri)
	for _, l := range labels {
		b.AddLabel(l)
	}
	for kind, values := range localized {
		for locale, text := range values {
			b.AddLocalized(kind, locale, text)
		}
	}
	return b.Build()
}

func TestLabelFor_FallbackChain(t *testing.T) {
	tests := []struct {
		name      string
		labels    []ConceptLabel
		localized map[FactKind]map[Locale]string
		locale    Locale
		want      string
	}{
		{
			name: "explicit override outranks preferred label object",
			labels: []ConceptLabel{
				{Text: "Objet", Locale: localeFrench, Preferred: true},
			},
			localized: map[FactKind]map[Locale]string{
				FactDisplayLabel: {localeFrench: "X"},
			},
			locale: localeFrench,
			want:   "X",
		},
		{
			name: "preferred label in locale beats earlier non-preferred",
			labels: []ConceptLabel{
				{Text: "alt", Locale: LocaleEnglish},
				{Text: "pref", Locale: LocaleEnglish, Preferred: true},
			},
			locale: LocaleEnglish,
			want:   "pref",
		},
		{
			name: "any label in locale",
			labels: []ConceptLabel{
				{Text: "pref-en", Locale: LocaleEnglish, Preferred: true},
				{Text: "別名", Locale: LocaleJapanese},
			},
			locale: LocaleJapanese,
			want:   "別名",
		},
		{
			name: "definition outranks canonical label",
			labels: []ConceptLabel{
				{Text: "pref-en", Locale: LocaleEnglish, Preferred: true},
			},
			localized: map[FactKind]map[Locale]string{
				FactDefinition: {LocaleJapanese: "定義"},
			},
			locale: LocaleJapanese,
			want:   "定義",
		},
		{
			name: "definition falls back to english",
			localized: map[FactKind]map[Locale]string{
				FactDefinition: {LocaleEnglish: "a definition", LocaleJapanese: "定義"},
			},
			locale: localeFrench,
			want:   "a definition",
		},
		{
			name: "definition falls back to japanese",
			localized: map[FactKind]map[Locale]string{
				FactDefinition: {LocaleJapanese: "定義", MustParseLocale("de"): "Definition"},
			},
			locale: localeFrench,
			want:   "定義",
		},
		{
			name: "definition falls back to smallest locale key",
			localized: map[FactKind]map[Locale]string{
				FactDefinition: {MustParseLocale("es"): "definición", MustParseLocale("de"): "Definition"},
			},
			locale: localeFrench,
			want:   "Definition",
		},
		{
			name: "remark used when no definitions",
			labels: []ConceptLabel{
				{Text: "only-en", Locale: LocaleEnglish},
			},
			localized: map[FactKind]map[Locale]string{
				FactRemark: {LocaleEnglish: "a remark"},
			},
			locale: LocaleJapanese,
			want:   "a remark",
		},
		{
			name: "english preferred label used for japanese request",
			labels: []ConceptLabel{
				{Text: "SimpleObject", Locale: LocaleEnglish, Preferred: true},
			},
			locale: LocaleJapanese,
			want:   "SimpleObject",
		},
		{
			name: "first label when none preferred",
			labels: []ConceptLabel{
				{Text: "first", Locale: LocaleEnglish},
				{Text: "second", Locale: LocaleEnglish},
			},
			locale: LocaleJapanese,
			want:   "first",
		},
		{
			name:   "uri when nothing else",
			locale: LocaleEnglish,
			want:   "http://example.org/c/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := buildEntry("http://example.org/c/1", tt.labels, tt.localized)
			if got := entry.LabelFor(tt.locale); got != tt.want {
				t.Errorf("LabelFor(%s) = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}
}

func TestEntryBuilder_DeduplicatesLabels(t *testing.T) {
	b := NewEntryBuilder("U1")
	label := ConceptLabel{Text: "same", Locale: LocaleEnglish}
	b.AddLabel(label)
	b.AddLabel(label)
	b.AddLabel(ConceptLabel{Text: "same", Locale: LocaleEnglish, Preferred: true})
	entry := b.Build()

	if len(entry.Labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(entry.Labels))
	}
	if len(entry.LocaleLabels[LocaleEnglish]) != 2 {
		t.Fatalf("expected locale view to mirror labels, got %d", len(entry.LocaleLabels[LocaleEnglish]))
	}
	for locale, labels := range entry.LocaleLabels {
		for _, l := range labels {
			if l.Locale != locale {
				t.Errorf("label %q grouped under %s but has locale %s", l.Text, locale, l.Locale)
			}
		}
	}
}

func TestEntryBuilder_Relations(t *testing.T) {
	b := NewEntryBuilder("U1")
	b.AddRelation(FactParent, "P2")
	b.AddRelation(FactParent, "P1")
	b.AddRelation(FactParent, "P2")
	b.AddRelation(FactSynonym, "syn")
	b.AddRelation(FactLabel, "ignored")
	b.AddLocalized(FactDefinition, LocaleEnglish, "first")
	b.AddLocalized(FactDefinition, LocaleEnglish, "second")
	entry := b.Build()

	if len(entry.Parents) != 2 || entry.Parents[0] != "P1" || entry.Parents[1] != "P2" {
		t.Errorf("Parents = %v, want [P1 P2]", entry.Parents)
	}
	if len(entry.Synonyms) != 1 {
		t.Errorf("Synonyms = %v", entry.Synonyms)
	}
	if entry.Children != nil {
		t.Errorf("Children should be nil, got %v", entry.Children)
	}
	if entry.Definitions[LocaleEnglish] != "first" {
		t.Errorf("first definition should win, got %q", entry.Definitions[LocaleEnglish])
	}
}

func TestFindLabel(t *testing.T) {
	entry := buildEntry("U1", []ConceptLabel{
		{Text: "apple", Locale: LocaleEnglish},
		{Text: "APPLE", Locale: LocaleEnglish, Preferred: true},
		{Text: "Apple", Locale: LocaleEnglish},
	}, nil)

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{query: "Apple", want: "Apple", found: true},
		{query: "aPPle", want: "APPLE", found: true},
		{query: "pear", found: false},
	}
	for _, tt := range tests {
		got, ok := entry.FindLabel(tt.query)
		if ok != tt.found {
			t.Errorf("FindLabel(%q) found = %v, want %v", tt.query, ok, tt.found)
			continue
		}
		if ok && got.Text != tt.want {
			t.Errorf("FindLabel(%q) = %q, want %q", tt.query, got.Text, tt.want)
		}
	}
}

func TestHasLocale(t *testing.T) {
	entry := buildEntry("U1", []ConceptLabel{{Text: "a", Locale: LocaleEnglish}}, nil)
	if !entry.HasLocale(LocaleEnglish) {
		t.Errorf("expected english locale")
	}
	if entry.HasLocale(LocaleJapanese) {
		t.Errorf("did not expect japanese locale")
	}
}
