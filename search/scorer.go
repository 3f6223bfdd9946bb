package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
	"github.com/poiesic/conceptrank/dictionary"
)

// Channel scores and adjustments.
const (
	ExactScore   = 150.0
	PartialScore = 40.0

	// EmbeddingWeight multiplies a similarity in [0, 1].
	EmbeddingWeight = 10.0

	ExactPreferredBonus   = 50.0
	PartialPreferredBonus = 40.0
	LocaleBonus           = 30.0
	NonPreferredPenalty   = 10.0

	// DefaultEmbeddingResults is the neighbour count requested per token.
	DefaultEmbeddingResults = 5
)

// Scorer produces candidate matches for tokens against one dictionary.
// It is safe for concurrent use.
type Scorer struct {
	dict        *dictionary.Dictionary
	embedder    ai.Embedder
	index       ai.VectorIndex
	pool        *ants.Pool
	resultLimit int
	logger      *slog.Logger
}

// tokenFailure is one token whose embedding contribution was skipped.
type tokenFailure struct {
	token string
	err   error
}

// Exact emits a candidate for every token that equals a label text.
func (s *Scorer) Exact(tokens []string, locale core.Locale) []core.UriMatch {
	var out []core.UriMatch
	for _, token := range tokens {
		uri, ok := s.dict.ExactURI(token)
		if !ok {
			continue
		}
		out = append(out, core.UriMatch{
			URI:     uri,
			Label:   token,
			Score:   s.adjust(uri, token, locale, ExactScore, ExactPreferredBonus),
			Channel: core.ChannelExact,
		})
	}
	return out
}

// Partial emits a candidate for every label that contains a token of at
// least MinPartialTokenRunes runes, ignoring case.
func (s *Scorer) Partial(tokens []string, locale core.Locale) []core.UriMatch {
	folded := partialTokens(tokens)
	if len(folded) == 0 {
		return nil
	}
	var out []core.UriMatch
	for _, token := range folded {
		for label := range s.dict.MatcherLabels() {
			if !strings.Contains(label.Folded, token) {
				continue
			}
			out = append(out, core.UriMatch{
				URI:     label.URI,
				Label:   label.Text,
				Score:   s.adjust(label.URI, label.Text, locale, PartialScore, PartialPreferredBonus),
				Channel: core.ChannelPartial,
			})
		}
	}
	return out
}

// adjust applies the label bonuses to a base score. The matched label is
// resolved on the entry by case-insensitive text equality; when it cannot
// be resolved the base score stands alone.
func (s *Scorer) adjust(uri, text string, locale core.Locale, base, preferredBonus float64) float64 {
	entry, ok := s.dict.Lookup(uri)
	if !ok {
		return base
	}
	label, ok := entry.FindLabel(text)
	if !ok {
		return base
	}
	score := base
	if label.Preferred {
		score += preferredBonus
	} else {
		score -= NonPreferredPenalty
	}
	if label.Locale == locale {
		score += LocaleBonus
	}
	return score
}

// EmbeddingEnabled reports whether the embedding channel can run.
func (s *Scorer) EmbeddingEnabled() bool {
	return s.embedder != nil && s.index != nil
}

// Embedding embeds every token concurrently and emits one candidate per
// returned neighbour. A token whose embed or search fails is skipped and
// reported in failures. If ctx ends before all tokens finish, Embedding
// returns the context error and no candidates.
func (s *Scorer) Embedding(ctx context.Context, tokens []string) (matches []core.UriMatch, failures []tokenFailure, err error) {
	if !s.EmbeddingEnabled() || len(tokens) == 0 {
		return nil, nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	perToken := make([][]core.UriMatch, len(tokens))
	perTokenErr := make([]error, len(tokens))

	// Tasks write only to their own slot, so stragglers left behind by a
	// cancelled call never race with the caller.
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			perToken[i], perTokenErr[i] = s.embedToken(ctx, token)
		}
		if err := s.pool.Submit(task); err != nil {
			s.logger.Debug("pool rejected embedding task, running unpooled", "token", token, "err", err)
			go task()
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	for i, token := range tokens {
		if perTokenErr[i] != nil {
			s.logger.Warn("skipping embedding contribution for token", "token", token, "err", perTokenErr[i])
			failures = append(failures, tokenFailure{token: token, err: perTokenErr[i]})
			continue
		}
		matches = append(matches, perToken[i]...)
	}
	return matches, failures, nil
}

func (s *Scorer) embedToken(ctx context.Context, token string) ([]core.UriMatch, error) {
	vector, err := s.embedder.EmbedText(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: embed %q: %w", ErrEmbeddingFailed, token, err)
	}
	if len(vector) == 0 {
		return nil, nil
	}
	neighbours, err := s.index.Search(ctx, vector, s.resultLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", ErrEmbeddingFailed, token, err)
	}

	out := make([]core.UriMatch, 0, len(neighbours))
	for _, n := range neighbours {
		if n.URI == "" {
			continue
		}
		label := n.Label
		if label == "" {
			label = token
		}
		out = append(out, core.UriMatch{
			URI:     n.URI,
			Label:   label,
			Score:   clampSimilarity(n.Similarity) * EmbeddingWeight,
			Channel: core.ChannelEmbedding,
		})
	}
	return out, nil
}
