package emotion

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER
// ═══════════════════════════════════════════════════════════════════════════════

// Method records how a classification was reached.
type Method string

const (
	MethodEmbedding Method = "embedding"
	MethodKeyword   Method = "keyword"
	MethodFallback  Method = "fallback"
)

// Thresholds bound the heuristic confidence score.
type Thresholds struct {
	MinConfidence      float64
	MaxConfidence      float64
	OverrideConfidence float64
}

// DefaultThresholds returns the stock confidence bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{MinConfidence: 0.5, MaxConfidence: 0.95, OverrideConfidence: 0.9}
}

// Result is the outcome of classifying one utterance.
// Confidence is a similarity heuristic, not a probability.
type Result struct {
	Label           Label
	Confidence      float64
	Method          Method
	EmbeddingFailed bool
}

// Classifier scores text against each label's example phrases.
// Phrase embeddings are computed once at construction; Classify is safe
// for concurrent use.
type Classifier struct {
	embedder   embedding.Embedder
	thresholds Thresholds
	refs       map[Label][]embedding.Vector
}

// NewClassifier precomputes phrase embeddings. When the embedder is missing
// or fails, the classifier still works but only keyword overrides apply.
func NewClassifier(ctx context.Context, embedder embedding.Embedder, th Thresholds) *Classifier {
	c := &Classifier{embedder: embedder, thresholds: th}
	if !embedding.Usable(embedder) {
		log.Warn().Msg("emotion classifier running without an embedding model")
		return c
	}

	refs, err := embedPhrases(ctx, embedder)
	if err != nil {
		log.Warn().Err(err).Msg("emotion phrase embedding failed; classifier degraded")
		return c
	}
	c.refs = refs
	return c
}

// embedPhrases embeds every label's phrases concurrently.
func embedPhrases(ctx context.Context, embedder embedding.Embedder) (map[Label][]embedding.Vector, error) {
	vecs := make([][]embedding.Vector, len(Labels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, l := range Labels {
		g.Go(func() error {
			v, err := embedder.EmbedBatch(gctx, l.Phrases())
			if err != nil {
				return err
			}
			vecs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refs := make(map[Label][]embedding.Vector, len(Labels))
	for i, l := range Labels {
		refs[l] = vecs[i]
	}
	return refs, nil
}

// Ready reports whether embedding-based scoring is available.
func (c *Classifier) Ready() bool {
	return c.refs != nil && embedding.Usable(c.embedder)
}

// Classify returns the label and confidence for text. It never fails:
// without a model, or when embedding the text fails, the result is neutral
// at the minimum confidence. Otherwise a keyword override wins over the
// similarity scores.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	fallback := Result{Label: Neutral, Confidence: c.thresholds.MinConfidence, Method: MethodFallback}
	if !c.Ready() {
		return fallback
	}

	q, err := c.embedder.Embed(ctx, text)
	if err != nil {
		log.Debug().Err(err).Msg("emotion embedding failed")
		fallback.EmbeddingFailed = true
		return fallback
	}

	if l, ok := MatchOverride(text); ok {
		return Result{Label: l, Confidence: c.thresholds.OverrideConfidence, Method: MethodKeyword}
	}

	best, bestScore := Neutral, math.Inf(-1)
	for _, l := range Labels {
		score := embedding.MeanSimilarity(q, c.refs[l])
		if score > bestScore {
			best, bestScore = l, score
		}
	}

	return Result{
		Label:      best,
		Confidence: clamp(bestScore, c.thresholds.MinConfidence, c.thresholds.MaxConfidence),
		Method:     MethodEmbedding,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
