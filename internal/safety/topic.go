package safety

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
)

// RefusalMessage is returned for queries outside mental health and emotional support.
const RefusalMessage = "I'm a mental health assistant designed to help with emotional well-being and mental health concerns. " +
	"I don't have expertise in other topics. Could you please ask me something related to mental health " +
	"or emotional support?"

// topicKeywords are substrings; stems such as "depress" and "anxi" cover their inflections.
var topicKeywords = []string{
	"sad", "depress", "anxi", "stress", "worry", "feel", "emotion", "mental",
	"health", "therapy", "help", "relationship", "lonely", "tired", "exhausted",
	"overwhelm", "grief", "trauma", "fear", "panic", "angry", "upset", "life",
	"live", "death", "happiness", "cry", "hurt", "pain", "alone", "friend",
	"family", "love",
}

var onTopicExamples = []string{
	"I'm feeling sad",
	"I'm depressed",
	"I'm stressed",
	"I feel anxious",
	"I have panic attacks",
	"I'm feeling overwhelmed",
	"I'm lonely",
	"I lost a loved one",
	"I failed an exam",
	"I'm dealing with a breakup",
	"I feel like giving up",
	"How to cope with depression?",
	"What are anxiety symptoms?",
	"How do I handle stress?",
	"How to feel better after failure?",
	"How to improve my mental health?",
	"How can I sleep better with stress?",
	"I'm feeling hopeless",
	"I need emotional support",
}

var offTopicExamples = []string{
	"how to dance",
	"how to cook",
	"how to eat",
	"how to exercise",
	"how to sleep better at night",
	"how to tie a tie",
	"how to write an email",
	"how to make a shake",
	"how to clean my room",
	"how to be fashionable",
}

// TopicMethod records how a topic verdict was reached.
type TopicMethod string

const (
	TopicKeyword    TopicMethod = "keyword"
	TopicSimilarity TopicMethod = "similarity"
	TopicFailOpen   TopicMethod = "fail_open"
)

// TopicThresholds tune the similarity fallback.
type TopicThresholds struct {
	// OnTopicThreshold: on topic when the best on-topic similarity exceeds it.
	OnTopicThreshold float64
	// OffTopicCeiling: on topic when the best off-topic similarity is below it.
	OffTopicCeiling float64
}

// DefaultTopicThresholds returns the stock, deliberately permissive, values.
func DefaultTopicThresholds() TopicThresholds {
	return TopicThresholds{OnTopicThreshold: 0.3, OffTopicCeiling: 0.8}
}

// Verdict is the outcome of a topic check.
type Verdict struct {
	OnTopic     bool
	Method      TopicMethod
	Keyword     string
	MaxOnTopic  float64
	MaxOffTopic float64
}

// TopicGate decides whether a query is about mental health.
type TopicGate struct {
	embedder   embedding.Embedder
	thresholds TopicThresholds
	onRefs     []embedding.Vector
	offRefs    []embedding.Vector
}

// NewTopicGate precomputes the reference embeddings. Without a usable
// embedder the gate only checks keywords and otherwise fails open.
func NewTopicGate(ctx context.Context, embedder embedding.Embedder, th TopicThresholds) *TopicGate {
	g := &TopicGate{embedder: embedder, thresholds: th}
	if !embedding.Usable(embedder) {
		return g
	}

	var on, off []embedding.Vector
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		on, err = embedder.EmbedBatch(ectx, onTopicExamples)
		return err
	})
	eg.Go(func() (err error) {
		off, err = embedder.EmbedBatch(ectx, offTopicExamples)
		return err
	})
	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("topic reference embedding failed; topic gate will fail open")
		return g
	}

	g.onRefs, g.offRefs = on, off
	return g
}

// Ready reports whether the similarity fallback is available.
func (g *TopicGate) Ready() bool {
	return g.onRefs != nil && embedding.Usable(g.embedder)
}

// IsOnTopic checks keywords first, then similarity to the reference sets.
// Any failure to score lets the query through.
func (g *TopicGate) IsOnTopic(ctx context.Context, text string) Verdict {
	lower := strings.ToLower(text)
	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw) {
			return Verdict{OnTopic: true, Method: TopicKeyword, Keyword: kw}
		}
	}

	if !g.Ready() {
		return Verdict{OnTopic: true, Method: TopicFailOpen}
	}

	q, err := g.embedder.Embed(ctx, text)
	if err != nil {
		log.Debug().Err(err).Msg("topic embedding failed; failing open")
		return Verdict{OnTopic: true, Method: TopicFailOpen}
	}

	maxOn := embedding.MaxSimilarity(q, g.onRefs)
	maxOff := embedding.MaxSimilarity(q, g.offRefs)
	return Verdict{
		OnTopic:     maxOn > g.thresholds.OnTopicThreshold || maxOff < g.thresholds.OffTopicCeiling,
		Method:      TopicSimilarity,
		MaxOnTopic:  maxOn,
		MaxOffTopic: maxOff,
	}
}
