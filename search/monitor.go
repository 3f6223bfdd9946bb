package search

import (
	"github.com/poiesic/conceptrank/core"
)

// SearchMonitor provides hooks to observe a match call.
// Implement this interface to trace intermediate steps and results.
// Hooks may be called from the goroutine that runs the match call only.
type SearchMonitor interface {
	Start(query string)
	AfterTokenize(locale core.Locale, tokens []string)
	AfterChannel(channel core.Channel, candidates []core.UriMatch)
	EmbeddingFailed(token string, err error)
	InconsistentURI(uri string)
	Finish(hits []core.ConceptHit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterTokenize(_ core.Locale, _ []string)        {}
func (n *noopMonitor) AfterChannel(_ core.Channel, _ []core.UriMatch) {}
func (n *noopMonitor) EmbeddingFailed(_ string, _ error)              {}
func (n *noopMonitor) InconsistentURI(_ string)                       {}
func (n *noopMonitor) Finish(_ []core.ConceptHit)                     {}
