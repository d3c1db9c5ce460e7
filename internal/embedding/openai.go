package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ═══════════════════════════════════════════════════════════════════════════════
// OPENAI EMBEDDER
// ═══════════════════════════════════════════════════════════════════════════════

// DefaultOpenAIModel is the default hosted embedding model.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIConfig configures an OpenAIEmbedder.
type OpenAIConfig struct {
	APIKey string
	Model  string

	// BaseURL points at any OpenAI-compatible embeddings API. Empty uses api.openai.com.
	BaseURL string

	Timeout time.Duration
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	hasKey bool

	mu        sync.RWMutex
	dimension int
}

// NewOpenAI creates an embedder backed by the openai-go client.
func NewOpenAI(cfg OpenAIConfig) *OpenAIEmbedder {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIEmbedder{
		client: &client,
		model:  cfg.Model,
		hasKey: cfg.APIKey != "",
	}
}

// Embed generates an embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends all texts in one request and reorders results by index.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	if !e.Available() {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	out := make([]Vector, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = FromFloat64(d.Embedding)
	}

	e.mu.Lock()
	if e.dimension == 0 && len(out[0]) > 0 {
		e.dimension = len(out[0])
	}
	e.mu.Unlock()

	return out, nil
}

// Dimension returns the embedding dimension observed so far.
func (e *OpenAIEmbedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEmbedder) ModelName() string { return e.model }

// Available returns true when an API key is configured.
func (e *OpenAIEmbedder) Available() bool { return e.hasKey }
