package memory

import (
	"context"

	"github.com/recall-ai/recall-go/metrics"
)

// Document is the unit handed to the vector index: one text chunk with its
// metadata and embedding.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Hit is a nearest-neighbor match without distance information.
type Hit struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// DistanceHit is a nearest-neighbor match with a cosine-style distance in
// [0, 2], where 0 means identical.
type DistanceHit struct {
	Hit
	Distance float64
}

// MemoryList is a bulk listing of stored chunks.
type MemoryList struct {
	IDs       []string            `json:"ids"`
	Documents []string            `json:"documents"`
	Metadatas []map[string]string `json:"metadatas"`
}

// RetrievalResult is one scored retrieval match. Results are derived per
// query and never persisted.
//
// Distance is the raw index distance; Confidence is the normalized [0,1]
// score clamp(1 - distance/2, 0, 1). WithDistance is false when the index
// only supported the distance-less fallback search, in which case Confidence
// holds the neutral default.
type RetrievalResult struct {
	Content      string
	Metadata     map[string]string
	Distance     float64
	Confidence   float64
	WithDistance bool
}

// SaveResult is the tagged outcome of a Save call. Save never propagates
// errors; failures are captured in Err with OK false.
type SaveResult struct {
	OK     bool
	Chunks int
	Err    error
}

// Embedder converts text to vector embeddings.
// Implementations: embedder/openai (API), embedder/mock (tests),
// embedder/cache (read-through decorator).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Index is the vector storage backend. Implementations persist under a
// configured directory and survive process restarts.
type Index interface {
	// Upsert stores documents by id, replacing existing entries.
	Upsert(ctx context.Context, docs []Document) error

	// Search returns up to k nearest matches without distances.
	Search(ctx context.Context, embedding []float32, k int) ([]Hit, error)

	// Delete removes documents by id.
	Delete(ctx context.Context, ids []string) error

	// List returns up to limit stored documents. A non-positive limit
	// means no limit.
	List(ctx context.Context, limit int) (*MemoryList, error)
}

// DistanceIndex is the optional distance-reporting search capability.
// The Store prefers it when the index implements it and falls back to plain
// Search with a neutral confidence otherwise.
type DistanceIndex interface {
	SearchWithDistance(ctx context.Context, embedding []float32, k int) ([]DistanceHit, error)
}

// Recorder receives retrieval metric events from the Store. Satisfied by
// *metrics.Aggregator.
type Recorder interface {
	LogRetrieval(ev metrics.RetrievalEvent)
}

// NeutralConfidence is assigned when the index cannot report distances.
const NeutralConfidence = 0.5

// ConfidenceFromDistance normalizes a cosine-style distance in [0, 2] to a
// confidence score in [0, 1]. The formula clamp(1 - distance/2, 0, 1) is a
// hard contract: scores must stay comparable across implementations.
func ConfidenceFromDistance(distance float64) float64 {
	c := 1 - distance/2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
