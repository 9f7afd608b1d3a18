// Package cache wraps any embedder with an in-process read-through cache,
// so repeated embeddings of the same text skip the backing call.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/recall-ai/recall-go/memory"
)

// DefaultMaxEntries bounds the cache. Each entry costs 1, so the limit is an
// entry count rather than a byte size.
const DefaultMaxEntries = 10_000

// Embedder decorates a backing embedder with a ristretto cache keyed by the
// exact input text.
type Embedder struct {
	backing memory.Embedder
	cache   *ristretto.Cache
}

// New wraps the backing embedder. A non-positive maxEntries uses
// DefaultMaxEntries.
func New(backing memory.Embedder, maxEntries int64) (*Embedder, error) {
	if backing == nil {
		return nil, fmt.Errorf("backing embedder is required")
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{backing: backing, cache: cache}, nil
}

// Embed returns the cached vector when present, otherwise delegates and
// caches the result. Errors from the backing embedder are never cached.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, found := e.cache.Get(text); found {
		if vec, ok := cached.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := e.backing.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vec, 1)
	return vec, nil
}

// Dimensions reports the backing embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.backing.Dimensions()
}

// Close releases cache resources.
func (e *Embedder) Close() {
	e.cache.Close()
}
