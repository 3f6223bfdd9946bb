package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/conceptrank/core"
)

// DefaultMaxHits is the number of concepts a match call returns at most.
const DefaultMaxHits = 3

// Rank groups candidates by URI and returns at most maxHits groups ordered
// by summed score, highest first. Equal scores are ordered by URI.
//
// Every candidate counts toward its URI's score. The label of a group is
// the label of its highest scoring candidate, the smallest such label on a
// tie. A non-positive maxHits returns every group.
func Rank(candidates []core.UriMatch, maxHits int) []core.UriMatch {
	if len(candidates) == 0 {
		return []core.UriMatch{}
	}

	type group struct {
		total float64
		best  core.UriMatch
	}
	groups := make(map[string]*group)
	for _, c := range candidates {
		g, ok := groups[c.URI]
		if !ok {
			groups[c.URI] = &group{total: c.Score, best: c}
			continue
		}
		g.total += c.Score
		if c.Score > g.best.Score || (c.Score == g.best.Score && c.Label < g.best.Label) {
			g.best = c
		}
	}

	ranked := make([]core.UriMatch, 0, len(groups))
	for uri, g := range groups {
		ranked = append(ranked, core.UriMatch{
			URI:     uri,
			Label:   g.best.Label,
			Score:   g.total,
			Channel: g.best.Channel,
		})
	}

	slices.SortFunc(ranked, func(a, b core.UriMatch) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.URI, b.URI)
	})

	if maxHits > 0 && len(ranked) > maxHits {
		ranked = ranked[:maxHits]
	}
	return ranked
}
