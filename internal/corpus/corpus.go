// Package corpus holds the immutable reference material the engine retrieves
// from: embedded reference texts and the session-structured transcript used
// for exemplar mining. Both are loaded once at startup and are read-only
// afterward, so lookups need no locking.
package corpus

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
)

// Corpus is an ordered set of texts with their precomputed embeddings.
// Index position is an entry's identity for the process lifetime.
type Corpus struct {
	texts   []string
	vectors []embedding.Vector
}

// Match is one scored corpus entry.
type Match struct {
	Index      int
	Similarity float64
	Text       string
}

// New builds a corpus, rejecting mismatched or ragged input.
func New(texts []string, vectors []embedding.Vector) (*Corpus, error) {
	if len(texts) != len(vectors) {
		return nil, fmt.Errorf("corpus has %d texts but %d embeddings", len(texts), len(vectors))
	}
	dim := -1
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("corpus entry %d has an empty embedding", i)
		}
		if dim >= 0 && len(v) != dim {
			return nil, fmt.Errorf("corpus entry %d has dimension %d, expected %d", i, len(v), dim)
		}
		dim = len(v)
	}

	c := &Corpus{
		texts:   make([]string, len(texts)),
		vectors: make([]embedding.Vector, len(vectors)),
	}
	copy(c.texts, texts)
	copy(c.vectors, vectors)
	return c, nil
}

// Len returns the number of entries. Safe on a nil corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.texts)
}

// Dimension returns the embedding width, or 0 for an empty corpus.
func (c *Corpus) Dimension() int {
	if c.Len() == 0 {
		return 0
	}
	return len(c.vectors[0])
}

// Text returns the text at index i.
func (c *Corpus) Text(i int) string {
	return c.texts[i]
}

// Vector returns the embedding at index i.
func (c *Corpus) Vector(i int) embedding.Vector {
	return c.vectors[i]
}

// Search returns the k entries most similar to query, highest first.
// Ties keep corpus order.
func (c *Corpus) Search(query embedding.Vector, k int) []Match {
	if c.Len() == 0 || k <= 0 {
		return nil
	}

	h := make(matchHeap, 0, k)
	for i, v := range c.vectors {
		m := Match{Index: i, Similarity: query.CosineSimilarity(v)}
		if len(h) < k {
			heap.Push(&h, m)
			continue
		}
		if worse(h[0], m) {
			h[0] = m
			heap.Fix(&h, 0)
		}
	}

	out := []Match(h)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	for i := range out {
		out[i].Text = c.texts[out[i].Index]
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════════
// MIN-HEAP FOR TOP-K SELECTION
// ═══════════════════════════════════════════════════════════════════════════════

// worse orders matches by similarity, then by later corpus position.
func worse(a, b Match) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity < b.Similarity
	}
	return a.Index > b.Index
}

// matchHeap keeps the K best matches with the worst at the root.
type matchHeap []Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) {
	*h = append(*h, x.(Match))
}

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
