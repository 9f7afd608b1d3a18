// Package mock provides a deterministic, offline embedder. It stands in for
// an embeddings API in tests and in development runs without credentials.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// DefaultDimensions matches the text-embedding-3-small vector size so the
// mock can share a persisted index with the real embedder's configuration.
const DefaultDimensions = 1536

// Embedder derives unit vectors from a hash of the input text. The same text
// always embeds to the same vector; different texts almost never collide.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder. A non-positive dimensions value uses
// DefaultDimensions.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Embed expands an FNV hash of the text into a normalized vector using a
// linear congruential sequence seeded by the hash.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	normalize(vec)
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func normalize(vec []float32) {
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(float64(sum)))
	for i := range vec {
		vec[i] /= norm
	}
}
