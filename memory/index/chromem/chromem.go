// Package chromem adapts chromem-go, a pure Go embedded vector database, to
// the memory.Index interface. Documents persist under a configured directory
// and survive process restarts.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/recall-ai/recall-go/memory"
)

const (
	collectionName = "memories"
	manifestFile   = "manifest.json"
)

// Index is a persistent vector index. All embeddings are precomputed by the
// caller; chromem never calls out to an embedding provider.
//
// chromem-go has no document enumeration API, so the Index keeps a sidecar
// manifest of stored ids in insertion order and resolves listings through
// GetByID.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *slog.Logger

	mu       sync.Mutex
	manifest []string
	path     string
}

// New opens (or creates) a persistent index under dir.
func New(dir string, logger *slog.Logger) (*Index, error) {
	if dir == "" {
		return nil, fmt.Errorf("index directory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	// Embeddings are always supplied up front; this func must never run.
	rejectEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("index does not embed; precompute embeddings")
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, rejectEmbed)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	idx := &Index{
		db:         db,
		collection: col,
		logger:     logger.With("component", "chromem_index"),
		path:       filepath.Join(dir, manifestFile),
	}
	if err := idx.loadManifest(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Upsert stores documents by id, replacing existing entries.
func (x *Index) Upsert(ctx context.Context, docs []memory.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document id is required")
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", d.ID)
		}
		batch = append(batch, chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
		})
	}
	if err := x.collection.AddDocuments(ctx, batch, 1); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	known := make(map[string]struct{}, len(x.manifest))
	for _, id := range x.manifest {
		known[id] = struct{}{}
	}
	for _, d := range docs {
		if _, ok := known[d.ID]; !ok {
			x.manifest = append(x.manifest, d.ID)
		}
	}
	return x.saveManifestLocked()
}

// Search returns up to k nearest matches without distances.
func (x *Index) Search(ctx context.Context, embedding []float32, k int) ([]memory.Hit, error) {
	withDistance, err := x.SearchWithDistance(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	hits := make([]memory.Hit, 0, len(withDistance))
	for _, h := range withDistance {
		hits = append(hits, h.Hit)
	}
	return hits, nil
}

// SearchWithDistance returns up to k nearest matches with cosine distances
// in [0, 2]. chromem reports similarity; distance is 1 - similarity.
func (x *Index) SearchWithDistance(ctx context.Context, embedding []float32, k int) ([]memory.DistanceHit, error) {
	// chromem rejects nResults larger than the collection.
	if count := x.collection.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := x.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	hits := make([]memory.DistanceHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, memory.DistanceHit{
			Hit: memory.Hit{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Distance: float64(1 - r.Similarity),
		})
	}
	return hits, nil
}

// Delete removes documents by id. Unknown ids are ignored.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Only pass ids the collection actually holds; chromem errors on
	// unknown ids.
	known := make(map[string]struct{}, len(x.manifest))
	for _, id := range x.manifest {
		known[id] = struct{}{}
	}
	present := make([]string, 0, len(ids))
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		if _, ok := known[id]; ok {
			present = append(present, id)
		}
	}
	if len(present) > 0 {
		if err := x.collection.Delete(ctx, nil, nil, present...); err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
	}

	kept := x.manifest[:0]
	for _, id := range x.manifest {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	x.manifest = kept
	return x.saveManifestLocked()
}

// List returns up to limit stored documents in insertion order. A
// non-positive limit returns everything.
func (x *Index) List(ctx context.Context, limit int) (*memory.MemoryList, error) {
	x.mu.Lock()
	ids := make([]string, len(x.manifest))
	copy(ids, x.manifest)
	x.mu.Unlock()

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	list := &memory.MemoryList{
		IDs:       []string{},
		Documents: []string{},
		Metadatas: []map[string]string{},
	}
	for _, id := range ids {
		doc, err := x.collection.GetByID(ctx, id)
		if err != nil {
			// Manifest can outlive a document after a partial delete.
			x.logger.Warn("manifest id missing from collection", "id", id)
			continue
		}
		list.IDs = append(list.IDs, doc.ID)
		list.Documents = append(list.Documents, doc.Content)
		list.Metadatas = append(list.Metadatas, doc.Metadata)
	}
	return list, nil
}

// Count reports the number of stored documents.
func (x *Index) Count() int {
	return x.collection.Count()
}

func (x *Index) loadManifest() error {
	data, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			x.manifest = nil
			return nil
		}
		return fmt.Errorf("read manifest: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	x.manifest = ids
	return nil
}

func (x *Index) saveManifestLocked() error {
	data, err := json.Marshal(x.manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	tmp := x.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, x.path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// compile-time interface checks
var (
	_ memory.Index         = (*Index)(nil)
	_ memory.DistanceIndex = (*Index)(nil)
)
