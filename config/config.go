// Package config loads environment-sourced settings and sets up logging.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full application configuration, sourced from the
// environment with an optional .env file.
type Config struct {
	// Anthropic model loop.
	AnthropicAPIKey string
	Model           string

	// Embeddings endpoint (OpenAI-compatible). When the key is empty the
	// CLI substitutes the deterministic mock embedder.
	EmbeddingsAPIKey  string
	EmbeddingsBaseURL string
	EmbeddingsModel   string

	// Memory.
	MemoryDir         string
	ChunkSize         int
	ChunkOverlap      int
	ShortTermCapacity int

	// Observability.
	MetricsDir string
	LogDir     string
	LogLevel   string

	// Server.
	ListenAddr string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		Model:             getEnv("RECALL_MODEL", "claude-sonnet-4-20250514"),
		EmbeddingsAPIKey:  os.Getenv("EMBEDDINGS_API_KEY"),
		EmbeddingsBaseURL: getEnv("EMBEDDINGS_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingsModel:   getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
		MemoryDir:         getEnv("MEMORY_DIR", "./data/memory"),
		MetricsDir:        getEnv("METRICS_DIR", "./data/metrics"),
		LogDir:            getEnv("LOG_DIR", "./data/logs"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
	}

	var err error
	if cfg.ChunkSize, err = getEnvInt("MEMORY_CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("MEMORY_CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.ShortTermCapacity, err = getEnvInt("SHORT_TERM_CAPACITY", 10); err != nil {
		return nil, err
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("MEMORY_CHUNK_OVERLAP (%d) must be smaller than MEMORY_CHUNK_SIZE (%d)",
			cfg.ChunkOverlap, cfg.ChunkSize)
	}
	return cfg, nil
}

// Validate checks the settings required to talk to the model.
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not set; add it to the environment or a .env file")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}
