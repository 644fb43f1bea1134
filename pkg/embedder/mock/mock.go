// Package mock provides a deterministic embedder for tests and examples.
package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/auxo-ai/knowbase-go/pkg/embedder"
)

// Embedder generates deterministic embeddings from a text hash. Identical
// inputs always produce identical vectors, so similarity-based assertions
// are stable across runs.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with the default dimension.
func New() *Embedder {
	return NewWithDimensions(embedder.DefaultDimensions)
}

// NewWithDimensions creates a mock embedder producing vectors of the given
// dimension.
func NewWithDimensions(dimensions int) *Embedder {
	return &Embedder{dimensions: dimensions}
}

// Embed creates a deterministic unit vector from the text.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float64, m.dimensions)
	for i := range vec {
		// LCG keeps the sequence reproducible from the hash seed.
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(int64(seed)) / float64(math.MaxInt64)
	}

	return normalize(vec), nil
}

// EmbedBatch embeds each text independently.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}

// Close implements embedder.Provider.
func (m *Embedder) Close() error {
	return nil
}

func normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
