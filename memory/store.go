package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recall-ai/recall-go/metrics"
)

// DefaultRetrievalK is the number of results returned when a retrieval does
// not specify k.
const DefaultRetrievalK = 5

// Store is the long-term memory store. It is stateless between calls except
// for the durable index it delegates to.
type Store struct {
	embedder Embedder
	index    Index
	splitter *Splitter
	recorder Recorder
	logger   *slog.Logger
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// ChunkSize and ChunkOverlap control content splitting, in characters.
	// Zero values use DefaultChunkSize / DefaultChunkOverlap.
	ChunkSize    int
	ChunkOverlap int

	// Recorder receives one retrieval metric event per Retrieve call.
	// Required: downstream dashboards assume one event per call.
	Recorder Recorder

	Logger *slog.Logger
}

// NewStore creates a Store over the given embedding and index capabilities.
func NewStore(embedder Embedder, index Index, cfg StoreConfig) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if cfg.Recorder == nil {
		return nil, fmt.Errorf("metrics recorder is required")
	}
	size := cfg.ChunkSize
	if size == 0 {
		size = DefaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap == 0 && cfg.ChunkSize == 0 {
		overlap = DefaultChunkOverlap
	}
	splitter, err := NewSplitter(size, overlap)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		embedder: embedder,
		index:    index,
		splitter: splitter,
		recorder: cfg.Recorder,
		logger:   logger.With("component", "memory_store"),
	}, nil
}

// Save splits content into overlapping fragments, embeds each, and upserts
// the batch into the index. The metadata defaults timestamp (RFC3339) and
// type=memory are stamped first; caller-supplied metadata overrides and
// extends them. Failures are captured in the returned SaveResult and never
// propagate.
func (s *Store) Save(ctx context.Context, content string, metadata map[string]string) SaveResult {
	meta := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
		"type":      "memory",
	}
	for k, v := range metadata {
		meta[k] = v
	}

	chunks := s.splitter.Split(content)
	if len(chunks) == 0 {
		return SaveResult{OK: false, Err: fmt.Errorf("empty content")}
	}

	docs := make([]Document, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			s.logger.Error("embed chunk failed", "error", err)
			return SaveResult{OK: false, Err: fmt.Errorf("embed chunk: %w", err)}
		}
		chunkMeta := make(map[string]string, len(meta))
		for k, v := range meta {
			chunkMeta[k] = v
		}
		docs = append(docs, Document{
			ID:        uuid.New().String(),
			Content:   chunk,
			Metadata:  chunkMeta,
			Embedding: embedding,
		})
	}

	if err := s.index.Upsert(ctx, docs); err != nil {
		s.logger.Error("upsert failed", "chunks", len(docs), "error", err)
		return SaveResult{OK: false, Err: fmt.Errorf("upsert: %w", err)}
	}

	s.logger.Info("saved memory", "chunks", len(docs), "category", meta["category"])
	return SaveResult{OK: true, Chunks: len(docs)}
}

// Retrieve returns up to k scored matches for the query. Failures are
// swallowed: the caller sees an empty list. Every call emits exactly one
// retrieval metric event, whether it succeeds, comes back empty, or fails.
func (s *Store) Retrieve(ctx context.Context, query string, k int) []RetrievalResult {
	if k <= 0 {
		k = DefaultRetrievalK
	}

	start := time.Now()
	var results []RetrievalResult
	defer func() {
		s.recordRetrieval(results, time.Since(start), query)
	}()

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Error("embed query failed", "error", err)
		return nil
	}

	if di, ok := s.index.(DistanceIndex); ok {
		hits, err := di.SearchWithDistance(ctx, embedding, k)
		if err != nil {
			s.logger.Error("search failed", "error", err)
			return nil
		}
		for _, h := range hits {
			results = append(results, RetrievalResult{
				Content:      h.Content,
				Metadata:     h.Metadata,
				Distance:     h.Distance,
				Confidence:   ConfidenceFromDistance(h.Distance),
				WithDistance: true,
			})
		}
		return results
	}

	// Index cannot report distances: plain search with neutral confidence.
	hits, err := s.index.Search(ctx, embedding, k)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		return nil
	}
	for _, h := range hits {
		results = append(results, RetrievalResult{
			Content:    h.Content,
			Metadata:   h.Metadata,
			Confidence: NeutralConfidence,
		})
	}
	return results
}

// recordRetrieval emits the one-per-call retrieval metric event.
func (s *Store) recordRetrieval(results []RetrievalResult, elapsed time.Duration, query string) {
	confidences := make([]float64, 0, len(results))
	for _, r := range results {
		confidences = append(confidences, r.Confidence)
	}
	s.recorder.LogRetrieval(metrics.RetrievalEvent{
		ConfidenceScores: confidences,
		ChunksRetrieved:  len(results),
		SourceDiversity:  SourceDiversity(results),
		Latency:          elapsed.Seconds(),
		Metadata:         map[string]interface{}{"query_length": len(query)},
	})
}

// SourceDiversity counts distinct non-empty category values in a result set.
func SourceDiversity(results []RetrievalResult) int {
	seen := map[string]struct{}{}
	for _, r := range results {
		if cat := r.Metadata["category"]; cat != "" {
			seen[cat] = struct{}{}
		}
	}
	return len(seen)
}

// Delete removes chunks by id. Returns false on failure instead of an error.
func (s *Store) Delete(ctx context.Context, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	if err := s.index.Delete(ctx, ids); err != nil {
		s.logger.Error("delete failed", "ids", len(ids), "error", err)
		return false
	}
	return true
}

// ListAll returns up to limit stored chunks. Failures yield empty
// collections rather than an error.
func (s *Store) ListAll(ctx context.Context, limit int) *MemoryList {
	if limit <= 0 {
		limit = 100
	}
	list, err := s.index.List(ctx, limit)
	if err != nil || list == nil {
		if err != nil {
			s.logger.Error("list failed", "error", err)
		}
		return &MemoryList{IDs: []string{}, Documents: []string{}, Metadatas: []map[string]string{}}
	}
	return list
}

// ClearAll lists every stored id and deletes them. True only when the full
// round-trip succeeds.
func (s *Store) ClearAll(ctx context.Context) bool {
	list, err := s.index.List(ctx, 0)
	if err != nil {
		s.logger.Error("clear: list failed", "error", err)
		return false
	}
	if len(list.IDs) == 0 {
		return true
	}
	return s.Delete(ctx, list.IDs)
}
