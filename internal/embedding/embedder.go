package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

// ═══════════════════════════════════════════════════════════════════════════════
// EMBEDDER INTERFACE
// ═══════════════════════════════════════════════════════════════════════════════

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) (Vector, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)

	// Dimension returns the embedding dimension (e.g., 768 for nomic-embed-text).
	// Zero until the first successful call when the backend does not advertise it.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Available returns true if the embedder is ready to use.
	Available() bool
}

// ErrUnavailable is returned when the backend is not reachable or not configured.
var ErrUnavailable = errors.New("embedder not available")

// Usable reports whether e is non-nil and available.
// Every consumer degrades to its no-model default when this is false.
func Usable(e Embedder) bool {
	return e != nil && e.Available()
}

// ═══════════════════════════════════════════════════════════════════════════════
// CACHE
// ═══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultCacheMaxSize is the default number of cached embeddings.
	DefaultCacheMaxSize = 2000

	// DefaultCacheTTL is how long a cached embedding stays valid.
	DefaultCacheTTL = time.Hour
)

// CachedEmbedder memoizes embeddings of repeated texts (user queries,
// transcript user turns) in a bounded LRU with TTL.
type CachedEmbedder struct {
	inner Embedder
	cache *expirable.LRU[string, Vector]
}

// NewCached wraps inner with an LRU+TTL cache. Non-positive arguments use defaults.
func NewCached(inner Embedder, maxSize int, ttl time.Duration) *CachedEmbedder {
	if maxSize <= 0 {
		maxSize = DefaultCacheMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedEmbedder{
		inner: inner,
		cache: expirable.NewLRU[string, Vector](maxSize, nil, ttl),
	}
}

// normalizeKey creates a consistent cache key from text. Case is kept:
// sentence embeddings differ between case variants.
func normalizeKey(text string) string {
	return strings.TrimSpace(text)
}

// Embed returns the cached vector for text or computes and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	key := normalizeKey(text)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, v)
	return v, nil
}

// EmbedBatch serves cached entries and sends only the misses to the backend.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if v, ok := c.cache.Get(normalizeKey(t)); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	log.Debug().Int("hits", len(texts)-len(missTexts)).Int("misses", len(missTexts)).Msg("embedding cache batch")

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embed batch: got %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = vecs[j]
		c.cache.Add(normalizeKey(texts[i]), vecs[j])
	}
	return out, nil
}

// Dimension delegates to the wrapped embedder.
func (c *CachedEmbedder) Dimension() int { return c.inner.Dimension() }

// ModelName delegates to the wrapped embedder.
func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }

// Available delegates to the wrapped embedder.
func (c *CachedEmbedder) Available() bool { return c.inner.Available() }

// Len returns the number of live cache entries.
func (c *CachedEmbedder) Len() int { return c.cache.Len() }
