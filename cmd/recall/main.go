// Command recall is a conversational agent with short-term and long-term
// memory. It provides a chat REPL and a websocket server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/recall-ai/recall-go/agent"
	"github.com/recall-ai/recall-go/config"
	"github.com/recall-ai/recall-go/engine"
	"github.com/recall-ai/recall-go/memory"
	cacheembedder "github.com/recall-ai/recall-go/memory/embedder/cache"
	mockembedder "github.com/recall-ai/recall-go/memory/embedder/mock"
	openaiembedder "github.com/recall-ai/recall-go/memory/embedder/openai"
	chromemindex "github.com/recall-ai/recall-go/memory/index/chromem"
	"github.com/recall-ai/recall-go/metrics"
	"github.com/recall-ai/recall-go/tools"
)

func main() {
	root := &cobra.Command{
		Use:           "recall",
		Short:         "Conversational agent with persistent memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newChatCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime bundles the wired application components.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *memory.Store
	metrics *metrics.Aggregator
	loop    agent.Loop
	close   func() error
}

// setup loads config and wires the full stack: embedder (cached), vector
// index, store, metrics, tools and the Claude engine.
func setup() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closeLog, err := config.SetupLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		closeLog()
		return nil, err
	}

	index, err := chromemindex.New(cfg.MemoryDir, logger)
	if err != nil {
		closeLog()
		return nil, err
	}

	agg, err := metrics.New(cfg.MetricsDir, logger)
	if err != nil {
		closeLog()
		return nil, err
	}

	store, err := memory.NewStore(embedder, index, memory.StoreConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Recorder:     agg,
		Logger:       logger,
	})
	if err != nil {
		closeLog()
		return nil, err
	}

	registry := engine.NewToolRegistry()
	registry.RegisterAll(tools.All(store, logger))

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	eng, err := engine.New(&client, registry, engine.Config{
		Model:  cfg.Model,
		Logger: logger,
	})
	if err != nil {
		closeLog()
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		metrics: agg,
		loop:    eng,
		close:   closeLog,
	}, nil
}

// buildEmbedder returns the OpenAI-compatible embedder wrapped in a cache,
// or the deterministic mock when no embeddings key is configured.
func buildEmbedder(cfg *config.Config, logger *slog.Logger) (memory.Embedder, error) {
	if cfg.EmbeddingsAPIKey == "" {
		logger.Warn("EMBEDDINGS_API_KEY not set; using deterministic mock embedder")
		return mockembedder.New(0), nil
	}

	remote, err := openaiembedder.New(openaiembedder.Config{
		APIKey:  cfg.EmbeddingsAPIKey,
		BaseURL: cfg.EmbeddingsBaseURL,
		Model:   cfg.EmbeddingsModel,
	})
	if err != nil {
		return nil, err
	}
	return cacheembedder.New(remote, 0)
}

// newAgent builds a conversation agent over the shared runtime.
func (rt *runtime) newAgent() (*agent.Agent, error) {
	return agent.New(rt.loop, rt.store, rt.metrics, agent.Config{
		ShortTermCapacity: rt.cfg.ShortTermCapacity,
		Logger:            rt.logger,
	})
}
