package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/recall-ai/recall-go/core"
	"github.com/recall-ai/recall-go/memory"
	"github.com/recall-ai/recall-go/memory/embedder/mock"
	"github.com/recall-ai/recall-go/metrics"
)

// stubIndex stores documents in insertion order and reports a fixed distance
// for every search hit.
type stubIndex struct {
	docs     []memory.Document
	distance float64
	failing  bool
}

func (s *stubIndex) Upsert(ctx context.Context, docs []memory.Document) error {
	if s.failing {
		return errors.New("index down")
	}
	s.docs = append(s.docs, docs...)
	return nil
}

func (s *stubIndex) Search(ctx context.Context, embedding []float32, k int) ([]memory.Hit, error) {
	hits, err := s.SearchWithDistance(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	out := make([]memory.Hit, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Hit)
	}
	return out, nil
}

func (s *stubIndex) SearchWithDistance(ctx context.Context, embedding []float32, k int) ([]memory.DistanceHit, error) {
	if s.failing {
		return nil, errors.New("index down")
	}
	var hits []memory.DistanceHit
	for _, d := range s.docs {
		if len(hits) == k {
			break
		}
		hits = append(hits, memory.DistanceHit{
			Hit:      memory.Hit{ID: d.ID, Content: d.Content, Metadata: d.Metadata},
			Distance: s.distance,
		})
	}
	return hits, nil
}

func (s *stubIndex) Delete(ctx context.Context, ids []string) error { return nil }

func (s *stubIndex) List(ctx context.Context, limit int) (*memory.MemoryList, error) {
	return &memory.MemoryList{}, nil
}

type nopRecorder struct{}

func (nopRecorder) LogRetrieval(metrics.RetrievalEvent) {}

func newToolStore(t *testing.T, index memory.Index) *memory.Store {
	t.Helper()
	store, err := memory.NewStore(mock.New(8), index, memory.StoreConfig{
		ChunkSize:    100,
		ChunkOverlap: 20,
		Recorder:     nopRecorder{},
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestSaveToMemory(t *testing.T) {
	index := &stubIndex{}
	tool := NewSaveToMemory(newToolStore(t, index), nil)

	if tool.Definition().Name != "save_to_memory" {
		t.Errorf("unexpected tool name %q", tool.Definition().Name)
	}

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"content":"the deploy key lives in vault","category":"work"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Output != "Saved 1 fragment(s) to memory" {
		t.Errorf("unexpected output: %q", res.Output)
	}
	if len(index.docs) != 1 || index.docs[0].Metadata["category"] != "work" {
		t.Errorf("unexpected stored docs: %+v", index.docs)
	}
}

func TestSaveToMemory_DefaultCategory(t *testing.T) {
	index := &stubIndex{}
	tool := NewSaveToMemory(newToolStore(t, index), nil)

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"content":"no category given"}`)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := index.docs[0].Metadata["category"]; got != "general" {
		t.Errorf("expected default category general, got %q", got)
	}
}

func TestSaveToMemory_Failure(t *testing.T) {
	index := &stubIndex{failing: true}
	tool := NewSaveToMemory(newToolStore(t, index), nil)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"content":"doomed"}`))
	if err != nil {
		t.Fatalf("domain failure must not surface as an error: %v", err)
	}
	if res.Success {
		t.Error("expected failed result")
	}
	if !strings.HasPrefix(res.Output, "Failed to save memory:") {
		t.Errorf("unexpected failure output: %q", res.Output)
	}
}

func TestSaveToMemory_BadInput(t *testing.T) {
	tool := NewSaveToMemory(newToolStore(t, &stubIndex{}), nil)
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{not json`)); err == nil {
		t.Error("expected decode error for malformed input")
	}
}

func TestSearchMemory_Empty(t *testing.T) {
	tool := NewSearchMemory(newToolStore(t, &stubIndex{}), nil)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"anything"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Error("empty search is still a successful call")
	}
	if res.Output != "No relevant information found in memory." {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestSearchMemory_FormatsResults(t *testing.T) {
	index := &stubIndex{distance: 0.25}
	store := newToolStore(t, index)
	store.Save(context.Background(), "standup moved to 9:30", map[string]string{"category": "work"})

	tool := NewSearchMemory(store, nil)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"standup time"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := res.Output
	if !strings.Contains(out, "1. [Relevance: 75.00%]") {
		t.Errorf("expected relevance line, got:\n%s", out)
	}
	if !strings.Contains(out, "standup moved to 9:30") {
		t.Errorf("expected content in output:\n%s", out)
	}
	if !strings.Contains(out, "Saved: ") {
		t.Errorf("expected timestamp line:\n%s", out)
	}
}

func TestFormatResults_NoDistanceNoRelevance(t *testing.T) {
	out := FormatResults([]memory.RetrievalResult{
		{Content: "plain hit", Confidence: memory.NeutralConfidence},
	})
	if strings.Contains(out, "Relevance") {
		t.Errorf("distance-less results must not show relevance:\n%s", out)
	}
	if !strings.Contains(out, "plain hit") {
		t.Errorf("content missing:\n%s", out)
	}
}

func TestRememberContext(t *testing.T) {
	index := &stubIndex{}
	tool := NewRememberContext(newToolStore(t, index), nil)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"context":"refactoring the billing service, step 2 of 4"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	meta := index.docs[0].Metadata
	if meta["category"] != "context" || meta["type"] != "session_context" {
		t.Errorf("unexpected context metadata: %v", meta)
	}
}

func TestExecuteLogsEveryInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	store := newToolStore(t, &stubIndex{})

	calls := []struct {
		tool core.Tool
		args string
	}{
		{NewSaveToMemory(store, logger), `{"content":"the deploy key lives in vault"}`},
		{NewSearchMemory(store, logger), `{"query":"deploy key","limit":3}`},
		{NewRememberContext(store, logger), `{"context":"mid-migration"}`},
	}
	for _, c := range calls {
		if _, err := c.tool.Execute(context.Background(), json.RawMessage(c.args)); err != nil {
			t.Fatalf("Execute %s: %v", c.tool.Definition().Name, err)
		}
	}

	logs := buf.String()
	for _, name := range []string{"save_to_memory", "search_memory", "remember_context"} {
		if !strings.Contains(logs, `"tool":"`+name+`"`) {
			t.Errorf("no log record for %s:\n%s", name, logs)
		}
	}
	if !strings.Contains(logs, `"msg":"invoked"`) {
		t.Errorf("expected invocation records:\n%s", logs)
	}
	if !strings.Contains(logs, `"results":0`) {
		t.Errorf("search outcome not logged:\n%s", logs)
	}
}

func TestAll(t *testing.T) {
	set := All(newToolStore(t, &stubIndex{}), nil)
	if len(set) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(set))
	}
	names := map[string]bool{}
	for _, tool := range set {
		names[tool.Definition().Name] = true
	}
	for _, want := range []string{"save_to_memory", "search_memory", "remember_context"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}
