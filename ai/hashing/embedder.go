// Package hashing provides a local, deterministic embedder that needs no
// model server. Every whitespace separated token is hashed with SHA-256
// into a fixed number of dimensions and the summed vector is L2 normalized.
//
// Vectors only capture token identity, not meaning, so two texts are close
// when they share tokens.
package hashing

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/poiesic/conceptrank/ai"
)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 128

// Embedder implements ai.Embedder with token hashing.
type Embedder struct {
	dim    int
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a hashing embedder producing vectors of dim dimensions.
// A non-positive dim selects DefaultDimensions.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &Embedder{
		dim:    dim,
		logger: slog.Default().With("component", "hashing-embedder"),
	}
}

// NewEmbedderFromConfig creates a hashing embedder from an ai.Config.
func NewEmbedderFromConfig(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderHashing {
		return nil, fmt.Errorf("hashing embedder: provider %q is not %q", config.Provider, ai.ProviderHashing)
	}
	return NewEmbedder(config.Dimensions), nil
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int {
	return e.dim
}

// EmbedText embeds a single text. Text without tokens yields a zero vector.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, e.dim)
	for _, token := range strings.Fields(text) {
		e.addToken(vec, token)
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dim)
	for i, v := range vec {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedTexts embeds each text in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("hashing texts", "count", len(texts))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// addToken adds the byte values of the token's digest stream, scaled to
// [0, 1], to vec. The stream is SHA-256(token) followed by
// SHA-256(token || counter) blocks until dim bytes are available.
func (e *Embedder) addToken(vec []float64, token string) {
	digest := sha256.Sum256([]byte(token))
	var counter [4]byte
	for i := range vec {
		offset := i % sha256.Size
		if i > 0 && offset == 0 {
			binary.BigEndian.PutUint32(counter[:], uint32(i/sha256.Size))
			h := sha256.New()
			h.Write([]byte(token))
			h.Write(counter[:])
			h.Sum(digest[:0])
		}
		vec[i] += float64(digest[offset]) / 255.0
	}
}
