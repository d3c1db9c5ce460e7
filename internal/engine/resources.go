package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/config"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/corpus"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/logging"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/retrieval"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/safety"
)

// Resources is the read-only state shared by every request. It is built
// once before serving and never mutated afterward; the embedder's cache is
// the only internally synchronized part.
type Resources struct {
	Embedder   embedding.Embedder
	Corpus     *corpus.Corpus
	Transcript *corpus.Transcript

	Classifier *emotion.Classifier
	Topic      *safety.TopicGate
	Retriever  *retrieval.Retriever
}

// NewResources wires the components around already loaded data. Any of
// embedder, c and transcript may be nil; each component then degrades.
func NewResources(ctx context.Context, embedder embedding.Embedder, c *corpus.Corpus, transcript *corpus.Transcript, cfg config.EngineConfig) *Resources {
	miner := retrieval.NewMiner(embedder, transcript, cfg.MaxExamples)
	return &Resources{
		Embedder:   embedder,
		Corpus:     c,
		Transcript: transcript,
		Classifier: emotion.NewClassifier(ctx, embedder, emotion.Thresholds{
			MinConfidence:      cfg.MinConfidence,
			MaxConfidence:      cfg.MaxConfidence,
			OverrideConfidence: cfg.OverrideConfidence,
		}),
		Topic: safety.NewTopicGate(ctx, embedder, safety.TopicThresholds{
			OnTopicThreshold: cfg.OnTopicThreshold,
			OffTopicCeiling:  cfg.OffTopicCeiling,
		}),
		Retriever: retrieval.New(embedder, c, miner, retrieval.Config{
			BaseResults:   cfg.BaseResults,
			MinSimilarity: cfg.MinSimilarity,
		}),
	}
}

// Bootstrap builds the embedder and loads the corpus and transcript named
// by cfg. Missing data files are logged and leave the engine degraded; only
// an unusable configuration is an error.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Resources, error) {
	logger := logging.Component("bootstrap")

	embedder, err := NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		logger.Warn().Msg("no embedding model configured; retrieval and similarity scoring disabled")
	} else if !embedder.Available() {
		logger.Warn().Str("model", embedder.ModelName()).Msg("embedding model not reachable; continuing degraded")
	}

	var c *corpus.Corpus
	if cfg.Corpus.Path != "" {
		c, err = corpus.Load(ctx, cfg.Corpus.Path)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Corpus.Path).Msg("corpus not loaded")
			c = nil
		}
	}

	var transcript *corpus.Transcript
	if cfg.Corpus.Transcript != "" {
		transcript, err = corpus.LoadTranscript(cfg.Corpus.Transcript)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Corpus.Transcript).Msg("transcript not loaded")
			transcript = nil
		}
	}

	// Keep a nil interface when there is no embedder so Usable sees nil.
	var e embedding.Embedder
	if embedder != nil {
		e = embedder
	}
	res := NewResources(ctx, e, c, transcript, cfg.Engine)

	logger.Info().
		Bool("classifier_ready", res.Classifier.Ready()).
		Bool("topic_ready", res.Topic.Ready()).
		Int("corpus_entries", c.Len()).
		Int("sessions", transcript.SessionCount()).
		Msg("engine resources ready")
	return res, nil
}

// NewEmbedder builds the configured embedder wrapped in the LRU cache, or
// returns nil for provider "none".
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (*embedding.CachedEmbedder, error) {
	var inner embedding.Embedder
	switch cfg.Provider {
	case "", "ollama":
		inner = embedding.NewOllama(ctx, embedding.OllamaConfig{
			Host:    cfg.Host,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	case "openai":
		inner = embedding.NewOpenAI(embedding.OpenAIConfig{
			APIKey:  os.Getenv(cfg.APIKeyEnv),
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return embedding.NewCached(inner, cfg.CacheSize, cfg.CacheTTL), nil
}
