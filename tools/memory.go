// Package tools exposes the agent's long-term memory operations as model
// tools: save_to_memory, search_memory and remember_context.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recall-ai/recall-go/core"
	"github.com/recall-ai/recall-go/memory"
)

// DefaultCategory is applied when save_to_memory is called without one.
const DefaultCategory = "general"

// SaveToMemory persists important information to long-term memory.
type SaveToMemory struct {
	store  *memory.Store
	logger *slog.Logger
}

// NewSaveToMemory creates the save_to_memory tool over the given store.
func NewSaveToMemory(store *memory.Store, logger *slog.Logger) *SaveToMemory {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveToMemory{store: store, logger: logger.With("tool", "save_to_memory")}
}

func (t *SaveToMemory) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name: "save_to_memory",
		Description: "Save important information to long-term memory. " +
			"Use when the user asks to remember something, or when information " +
			"worth keeping across conversations comes up.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"content":  StringProperty("The information to save."),
			"category": StringProperty("Category of the information (work, personal, project, etc.)."),
		}, "content"),
	}
}

type saveInput struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (t *SaveToMemory) Execute(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
	var in saveInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("decode save_to_memory input: %w", err)
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	t.logger.Info("invoked", "category", in.Category, "content_length", len(in.Content))

	res := t.store.Save(ctx, in.Content, map[string]string{"category": in.Category})
	if !res.OK {
		t.logger.Warn("save failed", "category", in.Category, "error", res.Err)
		return &core.ToolResult{
			Success: false,
			Output:  fmt.Sprintf("Failed to save memory: %v", res.Err),
			Error:   fmt.Sprintf("%v", res.Err),
		}, nil
	}
	t.logger.Info("saved", "category", in.Category, "chunks", res.Chunks)
	return &core.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Saved %d fragment(s) to memory", res.Chunks),
	}, nil
}

// SearchMemory retrieves saved information by semantic similarity.
type SearchMemory struct {
	store  *memory.Store
	logger *slog.Logger
}

// NewSearchMemory creates the search_memory tool over the given store.
func NewSearchMemory(store *memory.Store, logger *slog.Logger) *SearchMemory {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchMemory{store: store, logger: logger.With("tool", "search_memory")}
}

func (t *SearchMemory) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name: "search_memory",
		Description: "Search long-term memory for previously saved information. " +
			"Use when the user asks about something that may have been saved " +
			"earlier, or when prior context would help answer.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query": StringProperty("The search query."),
			"limit": IntegerProperty("Maximum number of results (default 5)."),
		}, "query"),
	}
}

type searchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (t *SearchMemory) Execute(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
	var in searchInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("decode search_memory input: %w", err)
	}

	t.logger.Info("invoked", "query_length", len(in.Query), "limit", in.Limit)

	results := t.store.Retrieve(ctx, in.Query, in.Limit)
	t.logger.Info("searched", "results", len(results))
	if len(results) == 0 {
		return &core.ToolResult{
			Success: true,
			Output:  "No relevant information found in memory.",
		}, nil
	}
	return &core.ToolResult{
		Success: true,
		Output:  FormatResults(results),
	}, nil
}

// FormatResults renders retrieval results for the model. Relevance is shown
// only when the index reported real distances; it is 1 - distance, which is
// a display score distinct from the normalized confidence.
func FormatResults(results []memory.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("Found in memory:\n\n")
	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d.", i+1))
		if r.WithDistance {
			b.WriteString(fmt.Sprintf(" [Relevance: %.2f%%]", (1-r.Distance)*100))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("   %s\n", r.Content))
		if ts := r.Metadata["timestamp"]; ts != "" {
			b.WriteString(fmt.Sprintf("   Saved: %s\n", ts))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RememberContext saves a description of the current session state.
type RememberContext struct {
	store  *memory.Store
	logger *slog.Logger
}

// NewRememberContext creates the remember_context tool over the given store.
func NewRememberContext(store *memory.Store, logger *slog.Logger) *RememberContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RememberContext{store: store, logger: logger.With("tool", "remember_context")}
}

func (t *RememberContext) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name: "remember_context",
		Description: "Save the current conversation or working session context. " +
			"Useful for preserving the state of work on a task.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"context": StringProperty("Description of the current context or state."),
		}, "context"),
	}
}

type contextInput struct {
	Context string `json:"context"`
}

func (t *RememberContext) Execute(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
	var in contextInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("decode remember_context input: %w", err)
	}

	t.logger.Info("invoked", "context_length", len(in.Context))

	res := t.store.Save(ctx, in.Context, map[string]string{
		"category": "context",
		"type":     "session_context",
	})
	if !res.OK {
		t.logger.Warn("context save failed", "error", res.Err)
		return &core.ToolResult{
			Success: false,
			Output:  fmt.Sprintf("Failed to save memory: %v", res.Err),
			Error:   fmt.Sprintf("%v", res.Err),
		}, nil
	}
	t.logger.Info("saved", "chunks", res.Chunks)
	return &core.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Saved %d fragment(s) to memory", res.Chunks),
	}, nil
}

// All returns the full memory tool set wired to one store.
func All(store *memory.Store, logger *slog.Logger) []core.Tool {
	return []core.Tool{
		NewSaveToMemory(store, logger),
		NewSearchMemory(store, logger),
		NewRememberContext(store, logger),
	}
}

// compile-time interface checks
var (
	_ core.Tool = (*SaveToMemory)(nil)
	_ core.Tool = (*SearchMemory)(nil)
	_ core.Tool = (*RememberContext)(nil)
)
