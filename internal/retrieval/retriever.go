// Package retrieval assembles the context block handed to the completion
// model: ranked reference passages, mined example exchanges and the tone
// and length guidance for the selected style.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/corpus"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/guidance"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/logging"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ═══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultBaseResults is the passage count for a 100+ char neutral medium query.
	DefaultBaseResults = 5

	// DefaultMinSimilarity drops passages scoring below it.
	DefaultMinSimilarity = 0.3

	// minResults is the floor for top_k.
	minResults = 3

	// complexityChars is the query length at which complexity saturates.
	complexityChars = 100

	// fingerprintTokens is the number of leading tokens used for dedup.
	fingerprintTokens = 10
)

var emotionFactor = map[emotion.Label]float64{
	emotion.Distressed: 1.5,
	emotion.Sad:        1.2,
	emotion.Anxious:    1.2,
	emotion.Angry:      1.3,
	emotion.Neutral:    1.0,
	emotion.Content:    0.9,
	emotion.Hopeful:    0.9,
}

var lengthFactor = map[style.LengthBucket]float64{
	style.Short:  0.8,
	style.Medium: 1.0,
	style.Long:   1.5,
}

// Passage is one retrieved corpus text.
type Passage struct {
	Similarity float64
	Text       string
}

// Config tunes retrieval. Zero fields take the defaults.
type Config struct {
	BaseResults   int
	MinSimilarity float64
}

// Retriever ranks corpus passages against a query and renders the context.
type Retriever struct {
	embedder embedding.Embedder
	corpus   *corpus.Corpus
	miner    *Miner
	cfg      Config
}

// New returns a retriever. Any of embedder, c and miner may be nil; the
// retriever then degrades to an empty context or omits examples.
func New(embedder embedding.Embedder, c *corpus.Corpus, miner *Miner, cfg Config) *Retriever {
	if cfg.BaseResults <= 0 {
		cfg.BaseResults = DefaultBaseResults
	}
	if cfg.MinSimilarity == 0 {
		cfg.MinSimilarity = DefaultMinSimilarity
	}
	return &Retriever{embedder: embedder, corpus: c, miner: miner, cfg: cfg}
}

// Ready reports whether passages can be retrieved.
func (r *Retriever) Ready() bool {
	return embedding.Usable(r.embedder) && r.corpus.Len() > 0
}

// TopK returns the number of passages to keep for query and s. Longer
// queries, heavier emotions and longer replies ask for more.
func (r *Retriever) TopK(query string, s style.ResponseStyle) int {
	complexity := math.Min(1, float64(len(query))/complexityChars)
	ef, ok := emotionFactor[s.Emotion]
	if !ok {
		ef = 1
	}
	lf, ok := lengthFactor[s.Length]
	if !ok {
		lf = 1
	}
	k := int(float64(r.cfg.BaseResults) * complexity * ef * lf)
	return max(minResults, k)
}

// Search embeds query and returns up to k distinct passages scoring at
// least MinSimilarity, best first.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if !r.Ready() {
		return nil, embedding.ErrUnavailable
	}
	q, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.rank(q, k), nil
}

func (r *Retriever) rank(q embedding.Vector, k int) []Passage {
	matches := r.corpus.Search(q, 2*k)

	seen := make(map[string]struct{}, len(matches))
	out := make([]Passage, 0, k)
	for _, m := range matches {
		if m.Similarity < r.cfg.MinSimilarity {
			continue
		}
		fp := fingerprint(m.Text)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, Passage{Similarity: m.Similarity, Text: m.Text})
		if len(out) == k {
			break
		}
	}
	return out
}

// fingerprint is the first ten whitespace-separated tokens, case kept.
func fingerprint(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) > fingerprintTokens {
		tokens = tokens[:fingerprintTokens]
	}
	return strings.Join(tokens, " ")
}

// Retrieve builds the full context block for query under style s. It
// returns "" when retrieval is unavailable or the query cannot be embedded.
func (r *Retriever) Retrieve(ctx context.Context, query string, s style.ResponseStyle) string {
	logger := logging.Component("retrieval")

	k := r.TopK(query, s)
	passages, err := r.Search(ctx, query, k)
	if err != nil {
		logger.Debug().Err(err).Msg("retrieval skipped")
		return ""
	}

	var examples []Exemplar
	if r.miner != nil {
		examples = r.miner.Mine(ctx, s.Emotion, s.Length, query)
	}

	logger.Debug().
		Int("top_k", k).
		Int("passages", len(passages)).
		Int("examples", len(examples)).
		Str("emotion", s.Emotion.String()).
		Str("length", string(s.Length)).
		Msg("context retrieved")

	return Format(passages, examples, s)
}

// Format renders the context sections, skipping empty ones.
func Format(passages []Passage, examples []Exemplar, s style.ResponseStyle) string {
	var sections []string

	if len(passages) > 0 {
		texts := make([]string, len(passages))
		for i, p := range passages {
			texts[i] = p.Text
		}
		sections = append(sections, "## Relevant Information\n"+strings.Join(texts, "\n\n"))
	}

	if len(examples) > 0 {
		var b strings.Builder
		b.WriteString("## Example Conversations\n\n")
		for i, ex := range examples {
			fmt.Fprintf(&b, "### Example %d\nUser: %s\nTherapist: %s\n\n", i+1, ex.User, ex.Response)
		}
		sections = append(sections, b.String())
	}

	if g := guidance.Tone(s.Emotion); g != "" {
		sections = append(sections, "## Response Tone\n"+g)
	}
	if g := guidance.Length(s.Length); g != "" {
		sections = append(sections, "## Response Length\n"+g)
	}

	return strings.Join(sections, "\n\n")
}
