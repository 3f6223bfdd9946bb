package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/ai/mock"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
)

func pair(uri, text string, locale core.Locale, preferred bool) core.LabelPair {
	return core.LabelPair{URI: uri, Label: core.ConceptLabel{Text: text, Locale: locale, Preferred: preferred}}
}

func buildDict(t *testing.T, pairs ...core.LabelPair) *dictionary.Dictionary {
	t.Helper()
	dict, report, err := dictionary.BuildFromPairs(pairs)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)
	return dict
}

func newMatcher(t *testing.T, dict *dictionary.Dictionary, opts ...Option) *Matcher {
	t.Helper()
	m, err := NewMatcher(dict, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	mu           sync.Mutex
	started      string
	tokens       []string
	locale       core.Locale
	channels     map[core.Channel]int
	failedTokens []string
	inconsistent []string
	finished     []core.ConceptHit
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{channels: make(map[core.Channel]int)}
}

func (r *recordingMonitor) Start(query string) { r.started = query }
func (r *recordingMonitor) AfterTokenize(locale core.Locale, tokens []string) {
	r.locale, r.tokens = locale, tokens
}
func (r *recordingMonitor) AfterChannel(channel core.Channel, candidates []core.UriMatch) {
	r.channels[channel] = len(candidates)
}
func (r *recordingMonitor) EmbeddingFailed(token string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedTokens = append(r.failedTokens, token)
}
func (r *recordingMonitor) InconsistentURI(uri string)     { r.inconsistent = append(r.inconsistent, uri) }
func (r *recordingMonitor) Finish(hits []core.ConceptHit) { r.finished = hits }

func TestNewMatcher(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))

	t.Run("valid configuration", func(t *testing.T) {
		m, err := NewMatcher(dict)
		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.NoError(t, m.Close())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		m, err := NewMatcher(dict, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("nil dictionary", func(t *testing.T) {
		_, err := NewMatcher(nil)
		assert.Equal(t, ErrDictionaryRequired, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		for _, opt := range []Option{WithMaxHits(0), WithPoolSize(0), WithEmbeddingResults(-1)} {
			_, err := NewMatcher(dict, opt)
			assert.ErrorIs(t, err, ErrInvalidOption)
		}
	})

	t.Run("owns pool only when embedding is enabled", func(t *testing.T) {
		m := newMatcher(t, dict)
		assert.False(t, m.ownedPool)

		m = newMatcher(t, dict, WithEmbedder(mock.NewMockEmbedder()), WithVectorIndex(mock.NewMockVectorIndex()))
		assert.True(t, m.ownedPool)
	})
}

func TestMatchConcepts_WorkedScenario(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	m := newMatcher(t, dict,
		WithEmbedder(mock.NewMockEmbedder()),
		WithVectorIndex(mock.NewMockVectorIndex()),
	)

	hits, err := m.MatchConcepts(context.Background(), "SimpleObject")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hit := hits[0]
	assert.Equal(t, "U1", hit.URI)
	assert.Equal(t, 150.0+50+30+40+40+30, hit.Score)
	assert.Equal(t, 340.0, hit.Score)
	assert.Equal(t, "SimpleObject", hit.CanonicalLabel)
	assert.Equal(t, "SimpleObject", hit.MatchedLabel)
	assert.Equal(t, core.LocaleEnglish, hit.Locale)
	require.NotNil(t, hit.Entry)
	assert.Equal(t, "U1", hit.Entry.URI)
}

func TestMatchConcepts_EmptyInput(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	index := mock.NewMockVectorIndex()
	m := newMatcher(t, dict, WithEmbedder(mock.NewMockEmbedder()), WithVectorIndex(index))

	for _, text := range []string{"", "   ", "!!!"} {
		hits, err := m.MatchConcepts(context.Background(), text)
		require.NoError(t, err)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	}
	assert.Zero(t, index.SearchCalls())
}

func TestMatchConcepts_NeverMoreThanMaxHits(t *testing.T) {
	var pairs []core.LabelPair
	for i := 0; i < 20; i++ {
		pairs = append(pairs, pair(fmt.Sprintf("U%02d", i), fmt.Sprintf("alpha%d", i), core.LocaleEnglish, i%2 == 0))
	}
	dict := buildDict(t, pairs...)

	m := newMatcher(t, dict)
	hits, err := m.MatchConcepts(context.Background(), "alpha beta alpha3")
	require.NoError(t, err)
	assert.Len(t, hits, DefaultMaxHits)
	assert.Equal(t, "U03", hits[0].URI, "exact hit outranks partial hits")
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}

	m = newMatcher(t, dict, WithMaxHits(5))
	hits, err = m.MatchConcepts(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}

func TestMatchConcepts_ScoreAdjustments(t *testing.T) {
	fr := core.MustParseLocale("fr")
	tests := []struct {
		name  string
		pairs []core.LabelPair
		query string
		want  float64
	}{
		{
			name:  "non preferred label is penalized",
			pairs: []core.LabelPair{pair("U1", "apple", core.LocaleEnglish, false)},
			query: "apple",
			want:  (150 - 10 + 30) + (40 - 10 + 30),
		},
		{
			name:  "no locale bonus on locale mismatch",
			pairs: []core.LabelPair{pair("U1", "Apple", fr, true)},
			query: "Apple",
			want:  (150 + 50) + (40 + 40),
		},
		{
			name:  "partial only is case insensitive",
			pairs: []core.LabelPair{pair("U1", "SimpleObject", core.LocaleEnglish, true)},
			query: "simple",
			want:  40 + 40 + 30,
		},
		{
			name:  "short token only matches exactly",
			pairs: []core.LabelPair{pair("U1", "SimpleObject", core.LocaleEnglish, true)},
			query: "Si",
			want:  0,
		},
		{
			name:  "japanese exact match",
			pairs: []core.LabelPair{pair("U1", "林檎", core.LocaleJapanese, true)},
			query: "林檎",
			want:  150 + 50 + 30,
		},
		{
			name:  "japanese partial matches per segment",
			pairs: []core.LabelPair{pair("U1", "単純なオブジェクト", core.LocaleJapanese, true)},
			query: "単純なオブジェクト",
			want:  2 * (40 + 40 + 30),
		},
		{
			name:  "repeated token counts twice",
			pairs: []core.LabelPair{pair("U1", "SimpleObject", core.LocaleEnglish, true)},
			query: "SimpleObject SimpleObject",
			want:  2 * 340,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMatcher(t, buildDict(t, tt.pairs...))
			hits, err := m.MatchConcepts(context.Background(), tt.query)
			require.NoError(t, err)
			if tt.want == 0 {
				assert.Empty(t, hits)
				return
			}
			require.Len(t, hits, 1)
			assert.Equal(t, tt.want, hits[0].Score)
		})
	}
}

func TestMatchConcepts_CanonicalLabelForQueryLocale(t *testing.T) {
	dict, _, err := dictionary.Build([]core.ConceptFact{
		{URI: "U1", Kind: core.FactLabel, Text: "Apple", Lang: "en", Preferred: true},
		{URI: "U1", Kind: core.FactLabel, Text: "林檎", Lang: "ja"},
		{URI: "U1", Kind: core.FactDisplayLabel, Text: "りんご", Lang: "ja"},
	})
	require.NoError(t, err)
	m := newMatcher(t, dict)

	hits, err := m.MatchConcepts(context.Background(), "林檎")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, core.LocaleJapanese, hits[0].Locale)
	assert.Equal(t, "りんご", hits[0].CanonicalLabel)
	assert.Equal(t, "林檎", hits[0].MatchedLabel)
	assert.Equal(t, 150.0-10+30, hits[0].Score)

	hits, err = m.MatchConcepts(context.Background(), "Apple")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Apple", hits[0].CanonicalLabel)
}

func TestMatchConcepts_EmbeddingChannel(t *testing.T) {
	dict := buildDict(t,
		pair("U1", "SimpleObject", core.LocaleEnglish, true),
		pair("U2", "ComplexObject", core.LocaleEnglish, true),
	)
	index := mock.NewMockVectorIndex().WithSearchFunc(
		func(_ context.Context, _ []float32, limit int) ([]ai.VectorMatch, error) {
			assert.Equal(t, 7, limit)
			return []ai.VectorMatch{
				{URI: "U2", Label: "ComplexObject", Similarity: 0.5},
				{URI: "U1", Similarity: 1.7},
			}, nil
		})
	embedder := mock.NewMockEmbedder()
	m := newMatcher(t, dict, WithEmbedder(embedder), WithVectorIndex(index), WithEmbeddingResults(7))

	hits, err := m.MatchConcepts(context.Background(), "unrelated words")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// two tokens, each contributing once per neighbour
	assert.Equal(t, "U1", hits[0].URI)
	assert.Equal(t, 2*1.0*EmbeddingWeight, hits[0].Score, "similarity is clamped to 1")
	assert.Equal(t, "U2", hits[1].URI)
	assert.Equal(t, 2*0.5*EmbeddingWeight, hits[1].Score)
	assert.Equal(t, "ComplexObject", hits[1].MatchedLabel)
	assert.Equal(t, 2, embedder.CallCount())
	assert.Equal(t, 2, index.SearchCalls())
}

func TestMatchConcepts_EmbeddingFailureDegrades(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(
		func(_ context.Context, text string) ([]float32, error) {
			if text == "SimpleObject" {
				return nil, errors.New("embedding service unavailable")
			}
			return []float32{1, 0}, nil
		})
	index := mock.NewMockVectorIndex().WithSearchFunc(
		func(_ context.Context, _ []float32, _ int) ([]ai.VectorMatch, error) {
			return []ai.VectorMatch{{URI: "U1", Similarity: 0.5}}, nil
		})
	monitor := newRecordingMonitor()
	m := newMatcher(t, dict, WithEmbedder(embedder), WithVectorIndex(index), WithMonitor(monitor))

	hits, err := m.MatchConcepts(context.Background(), "SimpleObject other")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	// dictionary channels for the failed token plus the embedding hit of "other"
	assert.Equal(t, 340.0+5, hits[0].Score)
	assert.Equal(t, []string{"SimpleObject"}, monitor.failedTokens)
}

func TestMatchConcepts_SearchFailureDegrades(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	index := mock.NewMockVectorIndex().WithSearchFunc(
		func(_ context.Context, _ []float32, _ int) ([]ai.VectorMatch, error) {
			return nil, errors.New("index offline")
		})
	m := newMatcher(t, dict, WithEmbedder(mock.NewMockEmbedder()), WithVectorIndex(index))

	hits, err := m.MatchConcepts(context.Background(), "SimpleObject")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 340.0, hits[0].Score)
}

func TestMatchConcepts_CancellationFailsWholeCall(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(
		func(ctx context.Context, _ string) ([]float32, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		})
	m := newMatcher(t, dict, WithEmbedder(embedder), WithVectorIndex(mock.NewMockVectorIndex()))

	hits, err := m.MatchConcepts(ctx, "SimpleObject")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, hits)
}

func TestMatchConcepts_CancelledBeforeStart(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	embedder := mock.NewMockEmbedder()
	m := newMatcher(t, dict, WithEmbedder(embedder), WithVectorIndex(mock.NewMockVectorIndex()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.MatchConcepts(ctx, "SimpleObject")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, embedder.CallCount())
}

func TestMatchConcepts_DeadlineDoesNotWaitForSlowEmbedder(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	// ignores ctx, so only the deadline can end the call early
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(
		func(context.Context, string) ([]float32, error) {
			time.Sleep(1500 * time.Millisecond)
			return []float32{1, 0}, nil
		})
	m := newMatcher(t, dict, WithEmbedder(embedder), WithVectorIndex(mock.NewMockVectorIndex()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	hits, err := m.MatchConcepts(ctx, "SimpleObject")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, hits)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestMatchConcepts_DropsURIsMissingFromSnapshot(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	index := mock.NewMockVectorIndex().WithSearchFunc(
		func(_ context.Context, _ []float32, _ int) ([]ai.VectorMatch, error) {
			return []ai.VectorMatch{{URI: "ghost", Similarity: 1}}, nil
		})
	monitor := newRecordingMonitor()
	m := newMatcher(t, dict, WithEmbedder(mock.NewMockEmbedder()), WithVectorIndex(index))

	hits, err := m.MatchConceptsWithMonitor(context.Background(), "unknown", monitor)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, []string{"ghost"}, monitor.inconsistent)
}

func TestMatchConcepts_Monitor(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	monitor := newRecordingMonitor()
	m := newMatcher(t, dict)

	hits, err := m.MatchConceptsWithMonitor(context.Background(), "SimpleObject!", monitor)
	require.NoError(t, err)

	assert.Equal(t, "SimpleObject!", monitor.started)
	assert.Equal(t, core.LocaleEnglish, monitor.locale)
	assert.Equal(t, []string{"SimpleObject"}, monitor.tokens)
	assert.Equal(t, 1, monitor.channels[core.ChannelExact])
	assert.Equal(t, 1, monitor.channels[core.ChannelPartial])
	assert.Equal(t, 0, monitor.channels[core.ChannelEmbedding])
	assert.Equal(t, hits, monitor.finished)
}

func TestMatchConcepts_SharedPoolConcurrentCalls(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	dict := buildDict(t,
		pair("U1", "SimpleObject", core.LocaleEnglish, true),
		pair("U2", "単純なオブジェクト", core.LocaleJapanese, true),
	)
	index := mock.NewMockVectorIndex().WithSearchFunc(
		func(_ context.Context, _ []float32, _ int) ([]ai.VectorMatch, error) {
			return []ai.VectorMatch{{URI: "U2", Similarity: 0.1}}, nil
		})
	m := newMatcher(t, dict,
		WithPool(pool),
		WithEmbedder(mock.NewMockEmbedder()),
		WithVectorIndex(index),
		WithLogger(slog.Default()),
	)
	assert.False(t, m.ownedPool)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, err := m.MatchConcepts(context.Background(), "SimpleObject and more tokens")
			assert.NoError(t, err)
			if assert.NotEmpty(t, hits) {
				assert.Equal(t, "U1", hits[0].URI)
			}
		}()
	}
	wg.Wait()
}

func TestLookupByURI(t *testing.T) {
	dict := buildDict(t, pair("U1", "SimpleObject", core.LocaleEnglish, true))
	m := newMatcher(t, dict)

	entry, ok := m.LookupByURI("U1")
	require.True(t, ok)
	assert.Equal(t, "SimpleObject", entry.CanonicalLabel())

	_, ok = m.LookupByURI("U2")
	assert.False(t, ok)
	assert.Same(t, dict, m.Dictionary())
}
