// Package embeddingtest provides a deterministic in-memory Embedder for tests.
package embeddingtest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
)

// Dim is the width of the fake bag-of-words vectors.
const Dim = 256

// ErrFake is returned by a Fake configured with Fail.
var ErrFake = errors.New("fake embedder failure")

// Fake hashes each lower-cased word into one of Dim buckets, so texts sharing
// words have positive cosine similarity and disjoint texts score zero.
// Fixed vectors can be pinned per text with Set.
type Fake struct {
	Unavailable bool
	Fail        bool

	calls atomic.Int64

	mu     sync.RWMutex
	pinned map[string]embedding.Vector
}

// New returns an available Fake.
func New() *Fake {
	return &Fake{pinned: make(map[string]embedding.Vector)}
}

// Set pins the vector returned for text.
func (f *Fake) Set(text string, v embedding.Vector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinned[text] = v
}

// Calls returns the number of texts embedded so far.
func (f *Fake) Calls() int64 { return f.calls.Load() }

// Embed implements embedding.Embedder.
func (f *Fake) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if f.Unavailable {
		return nil, embedding.ErrUnavailable
	}
	if f.Fail {
		return nil, ErrFake
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.calls.Add(1)

	f.mu.RLock()
	v, ok := f.pinned[text]
	f.mu.RUnlock()
	if ok {
		return v, nil
	}
	return BagOfWords(text), nil
}

// EmbedBatch implements embedding.Embedder.
func (f *Fake) EmbedBatch(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	out := make([]embedding.Vector, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimension implements embedding.Embedder.
func (f *Fake) Dimension() int { return Dim }

// ModelName implements embedding.Embedder.
func (f *Fake) ModelName() string { return "fake-bow" }

// Available implements embedding.Embedder.
func (f *Fake) Available() bool { return !f.Unavailable }

// BagOfWords builds the hashed word-count vector for text.
func BagOfWords(text string) embedding.Vector {
	v := make(embedding.Vector, Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%Dim]++
	}
	return v
}
