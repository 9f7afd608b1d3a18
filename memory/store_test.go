package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recall-ai/recall-go/metrics"
)

// testEmbedder returns fixed-dimension embeddings derived from text length.
type testEmbedder struct {
	failNext bool
}

func (e *testEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.failNext {
		e.failNext = false
		return nil, errors.New("embedder unavailable")
	}
	embedding := make([]float32, 8)
	for i := range embedding {
		embedding[i] = float32(len(text)) / float32(i+1)
	}
	return embedding, nil
}

func (e *testEmbedder) Dimensions() int { return 8 }

// fakeIndex is an in-memory Index. Wrap it in distanceIndex for the
// distance-reporting capability.
type fakeIndex struct {
	docs       map[string]Document
	order      []string
	distances  map[string]float64 // by content
	failUpsert bool
	failSearch bool
	failDelete bool
	failList   bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		docs:      map[string]Document{},
		distances: map[string]float64{},
	}
}

func (f *fakeIndex) Upsert(ctx context.Context, docs []Document) error {
	if f.failUpsert {
		return errors.New("index write error")
	}
	for _, d := range docs {
		if _, exists := f.docs[d.ID]; !exists {
			f.order = append(f.order, d.ID)
		}
		f.docs[d.ID] = d
	}
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, embedding []float32, k int) ([]Hit, error) {
	if f.failSearch {
		return nil, errors.New("index read error")
	}
	var hits []Hit
	for _, id := range f.order {
		if len(hits) == k {
			break
		}
		d := f.docs[id]
		hits = append(hits, Hit{ID: d.ID, Content: d.Content, Metadata: d.Metadata})
	}
	return hits, nil
}

func (f *fakeIndex) Delete(ctx context.Context, ids []string) error {
	if f.failDelete {
		return errors.New("index delete error")
	}
	for _, id := range ids {
		delete(f.docs, id)
	}
	var kept []string
	for _, id := range f.order {
		if _, ok := f.docs[id]; ok {
			kept = append(kept, id)
		}
	}
	f.order = kept
	return nil
}

func (f *fakeIndex) List(ctx context.Context, limit int) (*MemoryList, error) {
	if f.failList {
		return nil, errors.New("index list error")
	}
	list := &MemoryList{IDs: []string{}, Documents: []string{}, Metadatas: []map[string]string{}}
	for _, id := range f.order {
		if limit > 0 && len(list.IDs) == limit {
			break
		}
		d := f.docs[id]
		list.IDs = append(list.IDs, d.ID)
		list.Documents = append(list.Documents, d.Content)
		list.Metadatas = append(list.Metadatas, d.Metadata)
	}
	return list, nil
}

// distanceIndex adds the SearchWithDistance capability.
type distanceIndex struct {
	*fakeIndex
}

func (f *distanceIndex) SearchWithDistance(ctx context.Context, embedding []float32, k int) ([]DistanceHit, error) {
	hits, err := f.Search(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	out := make([]DistanceHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, DistanceHit{Hit: h, Distance: f.distances[h.Content]})
	}
	return out, nil
}

// recordingSink captures retrieval events.
type recordingSink struct {
	events []metrics.RetrievalEvent
}

func (r *recordingSink) LogRetrieval(ev metrics.RetrievalEvent) {
	r.events = append(r.events, ev)
}

func newTestStore(t *testing.T, index Index) (*Store, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	store, err := NewStore(&testEmbedder{}, index, StoreConfig{
		ChunkSize:    100,
		ChunkOverlap: 20,
		Recorder:     sink,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, sink
}

func TestConfidenceFromDistance(t *testing.T) {
	tests := []struct {
		distance, want float64
	}{
		{0, 1.0},
		{1, 0.5},
		{2, 0.0},
		{-1, 1.0}, // out of range, clamped
		{3, 0.0},  // out of range, clamped
	}
	for _, tt := range tests {
		if got := ConfidenceFromDistance(tt.distance); got != tt.want {
			t.Errorf("ConfidenceFromDistance(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestStore_SaveStampsMetadata(t *testing.T) {
	index := newFakeIndex()
	store, _ := newTestStore(t, index)

	res := store.Save(context.Background(), "remember this fact", map[string]string{"category": "work"})
	if !res.OK {
		t.Fatalf("save failed: %v", res.Err)
	}
	if res.Chunks != 1 {
		t.Fatalf("expected 1 chunk, got %d", res.Chunks)
	}

	for _, d := range index.docs {
		if d.Metadata["type"] != "memory" {
			t.Errorf("expected type=memory default, got %q", d.Metadata["type"])
		}
		if d.Metadata["category"] != "work" {
			t.Errorf("expected caller category, got %q", d.Metadata["category"])
		}
		if d.Metadata["timestamp"] == "" {
			t.Error("expected timestamp stamped")
		}
		if d.ID == "" {
			t.Error("expected generated chunk id")
		}
	}
}

func TestStore_SaveCallerMetadataWins(t *testing.T) {
	index := newFakeIndex()
	store, _ := newTestStore(t, index)

	res := store.Save(context.Background(), "session state", map[string]string{"type": "session_context"})
	if !res.OK {
		t.Fatalf("save failed: %v", res.Err)
	}
	for _, d := range index.docs {
		if d.Metadata["type"] != "session_context" {
			t.Errorf("caller metadata should override default, got %q", d.Metadata["type"])
		}
	}
}

func TestStore_SaveSplitsLongContent(t *testing.T) {
	index := newFakeIndex()
	store, _ := newTestStore(t, index)

	// size=100, overlap=20: L=250 -> ceil(230/80) = 3 chunks.
	res := store.Save(context.Background(), strings.Repeat("z", 250), nil)
	if !res.OK {
		t.Fatalf("save failed: %v", res.Err)
	}
	if res.Chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", res.Chunks)
	}
	if len(index.docs) != 3 {
		t.Errorf("expected 3 docs upserted, got %d", len(index.docs))
	}
}

func TestStore_SaveFailureIsTagged(t *testing.T) {
	index := newFakeIndex()
	index.failUpsert = true
	store, _ := newTestStore(t, index)

	res := store.Save(context.Background(), "doomed", nil)
	if res.OK {
		t.Error("expected tagged failure")
	}
	if res.Err == nil {
		t.Error("expected error cause in result")
	}
}

func TestStore_RetrieveWithDistance(t *testing.T) {
	inner := newFakeIndex()
	index := &distanceIndex{inner}
	store, sink := newTestStore(t, index)

	store.Save(context.Background(), "Meeting notes: discuss Q3 budget", map[string]string{"category": "work"})
	inner.distances["Meeting notes: discuss Q3 budget"] = 0.6

	results := store.Retrieve(context.Background(), "budget", 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Metadata["category"] != "work" {
		t.Errorf("expected category work, got %q", r.Metadata["category"])
	}
	if !r.WithDistance || r.Distance != 0.6 {
		t.Errorf("expected distance 0.6, got %v (withDistance=%v)", r.Distance, r.WithDistance)
	}
	if r.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", r.Confidence)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		t.Errorf("confidence out of range: %v", r.Confidence)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected exactly 1 retrieval event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.ChunksRetrieved != 1 || len(ev.ConfidenceScores) != 1 || ev.ConfidenceScores[0] != 0.7 {
		t.Errorf("unexpected retrieval event: %+v", ev)
	}
	if ev.SourceDiversity != 1 {
		t.Errorf("expected source diversity 1, got %d", ev.SourceDiversity)
	}
}

func TestStore_RetrieveFallbackNeutralConfidence(t *testing.T) {
	index := newFakeIndex() // no DistanceIndex capability
	store, sink := newTestStore(t, index)

	store.Save(context.Background(), "plain search path", nil)

	results := store.Retrieve(context.Background(), "anything", 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].WithDistance {
		t.Error("fallback result should not carry a distance")
	}
	if results[0].Confidence != NeutralConfidence {
		t.Errorf("expected neutral confidence, got %v", results[0].Confidence)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 retrieval event, got %d", len(sink.events))
	}
}

func TestStore_RetrieveErrorStillEmitsEvent(t *testing.T) {
	index := newFakeIndex()
	index.failSearch = true
	store, sink := newTestStore(t, index)

	results := store.Retrieve(context.Background(), "query", 5)
	if len(results) != 0 {
		t.Errorf("expected empty results on index failure, got %d", len(results))
	}
	if len(sink.events) != 1 {
		t.Fatalf("failed retrieval must still emit exactly 1 event, got %d", len(sink.events))
	}
	if sink.events[0].ChunksRetrieved != 0 {
		t.Errorf("expected zero-length event, got %d chunks", sink.events[0].ChunksRetrieved)
	}
}

func TestStore_RetrieveEmbedErrorStillEmitsEvent(t *testing.T) {
	index := newFakeIndex()
	sink := &recordingSink{}
	emb := &testEmbedder{failNext: true}
	store, err := NewStore(emb, index, StoreConfig{ChunkSize: 100, ChunkOverlap: 20, Recorder: sink})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	results := store.Retrieve(context.Background(), "query", 5)
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected exactly 1 event on embed failure, got %d", len(sink.events))
	}
}

func TestStore_SourceDiversity(t *testing.T) {
	results := []RetrievalResult{
		{Metadata: map[string]string{"category": "work"}},
		{Metadata: map[string]string{"category": "work"}},
		{Metadata: map[string]string{"category": "personal"}},
		{Metadata: map[string]string{}},
	}
	if got := SourceDiversity(results); got != 2 {
		t.Errorf("expected diversity 2, got %d", got)
	}
}

func TestStore_DeleteAndListAll(t *testing.T) {
	index := newFakeIndex()
	store, _ := newTestStore(t, index)
	ctx := context.Background()

	store.Save(ctx, "first memory", nil)
	store.Save(ctx, "second memory", nil)

	list := store.ListAll(ctx, 100)
	if len(list.IDs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list.IDs))
	}

	if !store.Delete(ctx, list.IDs[:1]) {
		t.Error("delete should succeed")
	}
	if remaining := store.ListAll(ctx, 100); len(remaining.IDs) != 1 {
		t.Errorf("expected 1 entry after delete, got %d", len(remaining.IDs))
	}

	index.failDelete = true
	if store.Delete(ctx, []string{"whatever"}) {
		t.Error("delete should report false on index failure")
	}
}

func TestStore_ListAllFailureReturnsEmpty(t *testing.T) {
	index := newFakeIndex()
	index.failList = true
	store, _ := newTestStore(t, index)

	list := store.ListAll(context.Background(), 100)
	if list == nil || len(list.IDs) != 0 || len(list.Documents) != 0 {
		t.Errorf("expected empty collections on failure, got %+v", list)
	}
}

func TestStore_ClearAll(t *testing.T) {
	index := newFakeIndex()
	store, _ := newTestStore(t, index)
	ctx := context.Background()

	store.Save(ctx, "wipe me", nil)
	store.Save(ctx, "me too", nil)

	if !store.ClearAll(ctx) {
		t.Fatal("clear should succeed")
	}
	if len(index.docs) != 0 {
		t.Errorf("expected empty index, got %d docs", len(index.docs))
	}

	// Clearing an empty store succeeds.
	if !store.ClearAll(ctx) {
		t.Error("clearing empty store should succeed")
	}

	store.Save(ctx, "unreachable", nil)
	index.failList = true
	if store.ClearAll(ctx) {
		t.Error("clear should fail when listing fails")
	}
}
