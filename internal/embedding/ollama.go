package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ═══════════════════════════════════════════════════════════════════════════════
// OLLAMA EMBEDDER
// ═══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultOllamaModel is the default model for embeddings.
	DefaultOllamaModel = "nomic-embed-text"

	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://127.0.0.1:11434"

	// ollamaBatchConcurrency bounds parallel /api/embeddings calls in EmbedBatch.
	ollamaBatchConcurrency = 4
)

// OllamaConfig configures an OllamaEmbedder.
type OllamaConfig struct {
	Host          string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	CheckInterval time.Duration
}

// OllamaEmbedder generates embeddings using Ollama's local models.
type OllamaEmbedder struct {
	host   string
	model  string
	client *http.Client

	maxRetries    int
	retryDelay    time.Duration
	checkInterval time.Duration

	mu        sync.RWMutex
	dimension int
	available bool
	lastCheck time.Time
}

// NewOllama creates an Ollama-based embedder and probes the server once.
func NewOllama(ctx context.Context, cfg OllamaConfig) *OllamaEmbedder {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 5 * time.Minute
	}

	e := &OllamaEmbedder{
		host:  strings.TrimRight(cfg.Host, "/"),
		model: cfg.Model,
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.Timeout, // allows for model loading
				IdleConnTimeout:       90 * time.Second,
			},
		},
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
		checkInterval: cfg.CheckInterval,
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	e.setAvailable(e.checkAvailability(probeCtx))

	return e
}

// Embed generates an embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if !e.Available() {
		return nil, ErrUnavailable
	}
	return e.embedSingle(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
// Ollama has no batch endpoint, so texts are embedded concurrently with a small limit.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	if !e.Available() {
		return nil, ErrUnavailable
	}

	out := make([]Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ollamaBatchConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			v, err := e.embedSingle(gctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// embedSingle retries transient failures (timeouts, connection issues).
func (e *OllamaEmbedder) embedSingle(ctx context.Context, text string) (Vector, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt).Err(lastErr).Msg("retrying ollama embedding")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(e.retryDelay):
			}
		}

		v, err := e.doEmbedRequest(ctx, text)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !isRetryable(err) {
			break
		}
	}

	return nil, lastErr
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}

// doEmbedRequest performs the actual HTTP request to Ollama.
func (e *OllamaEmbedder) doEmbedRequest(ctx context.Context, text string) (Vector, error) {
	body, err := json.Marshal(map[string]string{
		"model":  e.model,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		// Rechecked after checkInterval.
		e.setAvailable(false)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(msg))
	}

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	v := FromFloat64(result.Embedding)

	e.mu.Lock()
	if e.dimension == 0 {
		e.dimension = len(v)
	}
	e.mu.Unlock()

	return v, nil
}

// Dimension returns the embedding dimension observed so far.
func (e *OllamaEmbedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OllamaEmbedder) ModelName() string {
	return e.model
}

// Available returns true if the embedder is ready to use.
// An unavailable embedder re-probes the server at most once per check interval.
func (e *OllamaEmbedder) Available() bool {
	e.mu.RLock()
	available := e.available
	lastCheck := e.lastCheck
	e.mu.RUnlock()

	if !available && time.Since(lastCheck) > e.checkInterval {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		available = e.checkAvailability(ctx)
		e.setAvailable(available)
	}

	return available
}

func (e *OllamaEmbedder) setAvailable(available bool) {
	e.mu.Lock()
	e.available = available
	e.lastCheck = time.Now()
	e.mu.Unlock()
}

// checkAvailability verifies Ollama is running and has the model pulled.
func (e *OllamaEmbedder) checkAvailability(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.host+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("host", e.host).Msg("ollama not reachable")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	for _, m := range result.Models {
		// Handle both "nomic-embed-text" and "nomic-embed-text:latest"
		if m.Name == e.model || strings.HasPrefix(m.Name, e.model+":") {
			return true
		}
	}

	log.Warn().Str("model", e.model).Msg("embedding model not found in ollama; run `ollama pull` first")
	return false
}
