// Package openai implements the memory.Embedder interface against any
// OpenAI-compatible /v1/embeddings endpoint.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL targets the OpenAI API. Point it elsewhere for
	// compatible providers.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimensions is the vector size of DefaultModel.
	DefaultDimensions = 1536

	defaultTimeout = 30 * time.Second
)

// Config configures the embedder client. APIKey is required; the other
// fields fall back to the package defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Embedder calls a remote embeddings API. Safe for concurrent use.
type Embedder struct {
	client     *resty.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates an embeddings client.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embeddings api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Embedder{
		client:     client,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed requests an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	var result embeddingResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: e.model, Input: text}).
		SetResult(&result).
		SetError(&result).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return nil, fmt.Errorf("embeddings api: %s (%s)", result.Error.Message, result.Error.Type)
		}
		return nil, fmt.Errorf("embeddings api: status %d", resp.StatusCode())
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embeddings api returned no data")
	}

	embedding := result.Data[0].Embedding
	if len(embedding) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(embedding), e.dimensions)
	}
	return embedding, nil
}

// Dimensions returns the configured embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
