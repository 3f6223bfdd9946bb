package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is derived from content with BLAKE2b so identical content yields identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromURI generates the storage ID for a concept URI.
func IDFromURI(uri string) ID {
	return IDFromContent("uri:" + uri)
}

// ConceptLabel is one human-readable label of a concept.
// It is a value type and is never mutated after creation.
type ConceptLabel struct {
	Text      string
	Locale    Locale
	Source    string // Optional provenance (e.g. the predicate it was loaded from)
	Preferred bool
}

// FactKind identifies what a ConceptFact contributes to its concept.
type FactKind uint8

const (
	// FactLabel is a (uri, label) pair.
	FactLabel FactKind = iota
	// FactDisplayLabel is an explicit per-locale label override.
	FactDisplayLabel
	// FactDefinition is a per-locale definition text.
	FactDefinition
	// FactRemark is a per-locale remark or scope note.
	FactRemark
	// FactCategory names a category the concept belongs to.
	FactCategory
	// FactSynonym names a synonym of the concept.
	FactSynonym
	// FactRelated names a related concept URI.
	FactRelated
	// FactParent names a broader concept URI.
	FactParent
	// FactChild names a narrower concept URI.
	FactChild
)

var factKindNames = [...]string{
	FactLabel:        "label",
	FactDisplayLabel: "display_label",
	FactDefinition:   "definition",
	FactRemark:       "remark",
	FactCategory:     "category",
	FactSynonym:      "synonym",
	FactRelated:      "related",
	FactParent:       "parent",
	FactChild:        "child",
}

// String returns the wire name of the kind.
func (k FactKind) String() string {
	if int(k) < len(factKindNames) {
		return factKindNames[k]
	}
	return "unknown"
}

// ParseFactKind maps a wire name back to a FactKind.
func ParseFactKind(s string) (FactKind, bool) {
	for i, name := range factKindNames {
		if name == s {
			return FactKind(i), true
		}
	}
	return 0, false
}

// Localized reports whether facts of this kind carry a language tag.
func (k FactKind) Localized() bool {
	switch k {
	case FactLabel, FactDisplayLabel, FactDefinition, FactRemark:
		return true
	}
	return false
}

// ConceptFact is a single raw statement about a concept as produced by a loader.
// Lang is an unparsed language tag; it is validated when the dictionary is built.
type ConceptFact struct {
	URI       string
	Kind      FactKind
	Text      string
	Lang      string
	Source    string
	Preferred bool
}

// LabelPair is a (uri, label) pair.
type LabelPair struct {
	URI   string
	Label ConceptLabel
}

// Fact converts the pair into a label fact.
func (p LabelPair) Fact() ConceptFact {
	return ConceptFact{
		URI:       p.URI,
		Kind:      FactLabel,
		Text:      p.Label.Text,
		Lang:      string(p.Label.Locale),
		Source:    p.Label.Source,
		Preferred: p.Label.Preferred,
	}
}

// ConceptRecord is the stored form of every fact known for one URI.
type ConceptRecord struct {
	URI       string
	Facts     []ConceptFact
	UpdatedAt time.Time
}

// LabelVector is the embedding of a single label text.
type LabelVector struct {
	URI    string
	Text   string
	Locale Locale
	Vector []float32
}

// Channel identifies the scoring strategy that produced a candidate.
type Channel uint8

const (
	ChannelExact Channel = iota + 1
	ChannelPartial
	ChannelEmbedding
)

// String returns a short name for the channel.
func (c Channel) String() string {
	switch c {
	case ChannelExact:
		return "exact"
	case ChannelPartial:
		return "partial"
	case ChannelEmbedding:
		return "embedding"
	default:
		return "unknown"
	}
}

// UriMatch is a scored candidate produced by one channel for one URI.
// It only lives for the duration of a single match call.
type UriMatch struct {
	URI     string
	Label   string
	Score   float64
	Channel Channel
}

// ConceptHit is one ranked concept returned by a match call.
type ConceptHit struct {
	URI            string
	CanonicalLabel string
	MatchedLabel   string
	Locale         Locale
	Score          float64
	Entry          *ConceptEntry
}

// Checkpoint records the last completed run of a background processor.
type Checkpoint struct {
	ProcessorType string
	Count         uint64
	UpdatedAt     time.Time
}
