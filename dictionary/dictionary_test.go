package dictionary

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/conceptrank/core"
)

func label(text string, locale core.Locale, preferred bool) core.ConceptLabel {
	return core.ConceptLabel{Text: text, Locale: locale, Preferred: preferred}
}

func mustBuildPairs(t *testing.T, pairs ...core.LabelPair) *Dictionary {
	t.Helper()
	dict, report, err := BuildFromPairs(pairs)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)
	return dict
}

func TestBuildFromPairs_RoundTrip(t *testing.T) {
	dict := mustBuildPairs(t,
		core.LabelPair{URI: "u1", Label: label("L1", core.LocaleEnglish, true)},
		core.LabelPair{URI: "u1", Label: label("L2", core.LocaleEnglish, false)},
		core.LabelPair{URI: "u2", Label: label("L3", core.LocaleJapanese, false)},
	)

	assert.Equal(t, 2, dict.Len())
	assert.Equal(t, map[string]string{"L1": "u1", "L2": "u1", "L3": "u2"}, dict.MatcherDictionary())
	assert.Equal(t, []string{"L1", "L2", "L3"}, dict.AllLabelTexts())
	assert.Equal(t, []string{"u1", "u2"}, dict.URIs())

	entry, ok := dict.Lookup("u1")
	require.True(t, ok)
	assert.Len(t, entry.Labels, 2)
	assert.Equal(t, "L1", entry.Labels[0].Text, "labels keep load order")
}

func TestMatcherDictionary_TieBreak(t *testing.T) {
	t.Run("preferred label wins", func(t *testing.T) {
		dict := mustBuildPairs(t,
			core.LabelPair{URI: "a", Label: label("Shared", core.LocaleEnglish, false)},
			core.LabelPair{URI: "b", Label: label("Shared", core.LocaleEnglish, true)},
		)
		uri, ok := dict.ExactURI("Shared")
		require.True(t, ok)
		assert.Equal(t, "b", uri)
	})

	t.Run("smallest uri wins among equals", func(t *testing.T) {
		dict := mustBuildPairs(t,
			core.LabelPair{URI: "c", Label: label("Shared", core.LocaleEnglish, true)},
			core.LabelPair{URI: "a", Label: label("Shared", core.LocaleEnglish, true)},
			core.LabelPair{URI: "b", Label: label("Shared", core.LocaleEnglish, true)},
		)
		uri, _ := dict.ExactURI("Shared")
		assert.Equal(t, "a", uri)
	})

	t.Run("independent of input order", func(t *testing.T) {
		pairs := []core.LabelPair{
			{URI: "z", Label: label("Shared", core.LocaleEnglish, false)},
			{URI: "m", Label: label("Shared", core.LocaleJapanese, false)},
			{URI: "q", Label: label("Shared", core.LocaleEnglish, true)},
		}
		for i := 0; i < 3; i++ {
			dict := mustBuildPairs(t, pairs...)
			uri, _ := dict.ExactURI("Shared")
			assert.Equal(t, "q", uri)
			slices.Reverse(pairs)
		}
	})
}

func TestExactURI_CaseSensitive(t *testing.T) {
	dict := mustBuildPairs(t, core.LabelPair{URI: "u1", Label: label("SimpleObject", core.LocaleEnglish, true)})
	_, ok := dict.ExactURI("simpleobject")
	assert.False(t, ok)
	_, ok = dict.ExactURI("SimpleObject")
	assert.True(t, ok)
}

func TestMatcherLabels_FoldedAndSorted(t *testing.T) {
	dict := mustBuildPairs(t,
		core.LabelPair{URI: "u2", Label: label("ÄPFEL", core.LocaleEnglish, false)},
		core.LabelPair{URI: "u1", Label: label("Apple", core.LocaleEnglish, false)},
	)
	var got []MatcherLabel
	for l := range dict.MatcherLabels() {
		got = append(got, l)
	}
	require.Len(t, got, 2)
	assert.Equal(t, MatcherLabel{Text: "Apple", Folded: "apple", URI: "u1"}, got[0])
	assert.Equal(t, "ÄPFEL", got[1].Text)
	assert.Equal(t, "äpfel", got[1].Folded)
}

func TestFilterByLocale(t *testing.T) {
	dict := mustBuildPairs(t,
		core.LabelPair{URI: "u1", Label: label("apple", core.LocaleEnglish, true)},
		core.LabelPair{URI: "u1", Label: label("りんご", core.LocaleJapanese, false)},
		core.LabelPair{URI: "u2", Label: label("pear", core.LocaleEnglish, true)},
		core.LabelPair{URI: "u3", Label: label("柿", core.LocaleJapanese, true)},
	)

	ja := dict.FilterByLocale(core.LocaleJapanese)
	assert.Equal(t, []string{"u1", "u3"}, ja.URIs())

	entry, ok := ja.Lookup("u1")
	require.True(t, ok)
	assert.Len(t, entry.Labels, 2, "labels of kept entries are not trimmed")

	for _, uri := range ja.MatcherDictionary() {
		_, ok := ja.Lookup(uri)
		assert.True(t, ok, "matcher view must only reference kept entries")
	}

	assert.Zero(t, dict.FilterByLocale(core.MustParseLocale("fr")).Len())
}

func TestBuild_SkipsMalformedFacts(t *testing.T) {
	facts := []core.ConceptFact{
		{URI: "u1", Kind: core.FactLabel, Text: "good", Lang: "en", Preferred: true},
		{URI: "u1", Kind: core.FactLabel, Text: "bad tag", Lang: "not a tag!"},
		{URI: "", Kind: core.FactLabel, Text: "orphan", Lang: "en"},
		{URI: "u2", Kind: core.FactLabel, Text: "", Lang: "en"},
		{URI: "u3", Kind: core.FactDefinition, Text: "a definition", Lang: "en"},
	}

	dict, report, err := Build(facts)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 2, report.Concepts)
	require.Len(t, report.Skipped, 3)
	assert.ErrorIs(t, report.Skipped[0].Reason, core.ErrMalformedLocale)
	assert.ErrorIs(t, report.Skipped[1].Reason, core.ErrEmptyURI)
	assert.ErrorIs(t, report.Skipped[2].Reason, core.ErrEmptyText)

	_, ok := dict.Lookup("u2")
	assert.False(t, ok, "uri with no accepted facts has no entry")

	entry, ok := dict.Lookup("u3")
	require.True(t, ok)
	assert.Equal(t, "a definition", entry.LabelFor(core.LocaleEnglish))
}

func TestBuild_InfersMissingLocale(t *testing.T) {
	facts := []core.ConceptFact{
		{URI: "u1", Kind: core.FactLabel, Text: "オブジェクト"},
		{URI: "u1", Kind: core.FactLabel, Text: "object"},
		{URI: "u1", Kind: core.FactDefinition, Text: "ひらがな"},
	}
	dict, report, err := Build(facts)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)

	entry, ok := dict.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, core.LocaleJapanese, entry.Labels[0].Locale)
	assert.Equal(t, core.LocaleEnglish, entry.Labels[1].Locale)
	assert.Equal(t, "ひらがな", entry.Definitions[core.LocaleJapanese])
}

func TestBuild_FullEntry(t *testing.T) {
	facts := []core.ConceptFact{
		{URI: "u1", Kind: core.FactLabel, Text: "Objet", Lang: "fr", Preferred: true},
		{URI: "u1", Kind: core.FactDisplayLabel, Text: "X", Lang: "fr"},
		{URI: "u1", Kind: core.FactParent, Text: "u0"},
		{URI: "u1", Kind: core.FactChild, Text: "u2"},
		{URI: "u1", Kind: core.FactCategory, Text: "things"},
	}
	dict, _, err := Build(facts)
	require.NoError(t, err)

	entry, ok := dict.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "X", entry.LabelFor(core.MustParseLocale("fr")))
	assert.Equal(t, []string{"u0"}, entry.Parents)
	assert.Equal(t, []string{"u2"}, entry.Children)
	assert.Equal(t, []string{"things"}, entry.Categories)
	assert.Equal(t, []string{"Objet"}, dict.AllLabelTexts(), "display overrides are not matcher labels")
}

func TestBuild_EmptyInput(t *testing.T) {
	dict, report, err := Build(nil)
	require.NoError(t, err)
	assert.Zero(t, dict.Len())
	assert.Zero(t, report.Accepted)
	assert.Empty(t, dict.AllLabelTexts())
	assert.Empty(t, dict.Entries())
}

func TestHolder_Swap(t *testing.T) {
	var h Holder
	assert.Nil(t, h.Load())

	first := mustBuildPairs(t, core.LabelPair{URI: "u1", Label: label("one", core.LocaleEnglish, true)})
	old := h.Swap(first)
	assert.Nil(t, old)
	snap := h.Load()
	require.NotNil(t, snap)
	assert.Same(t, first, snap.Dictionary)
	assert.Equal(t, uint64(1), snap.Generation)

	second := mustBuildPairs(t, core.LabelPair{URI: "u2", Label: label("two", core.LocaleEnglish, true)})
	old = h.Swap(second)
	require.NotNil(t, old)
	assert.Same(t, first, old.Dictionary)
	assert.Equal(t, uint64(2), h.Load().Generation)
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	var h Holder
	dicts := []*Dictionary{
		mustBuildPairs(t, core.LabelPair{URI: "a", Label: label("a", core.LocaleEnglish, true)}),
		mustBuildPairs(t, core.LabelPair{URI: "b", Label: label("b", core.LocaleEnglish, true)}),
	}
	h.Swap(dicts[0])

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := h.Load()
				// A snapshot is either fully old or fully new.
				for _, uri := range snap.Dictionary.MatcherDictionary() {
					_, ok := snap.Dictionary.Lookup(uri)
					assert.True(t, ok)
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		h.Swap(dicts[j%2])
	}
	wg.Wait()
}
