// Package engine orchestrates one reply: safety gates, emotion
// classification, style selection, context retrieval and the completion
// call. Generate never fails outward; every problem is reported in the
// Response it returns.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/config"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/llm"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/logging"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/metrics"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/safety"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

// ═══════════════════════════════════════════════════════════════════════════════
// USER-FACING MESSAGES
// ═══════════════════════════════════════════════════════════════════════════════

const (
	MsgNoAPIKey     = "I'm experiencing technical difficulties. Please make sure the API key is configured."
	MsgUpstream     = "I'm having trouble connecting to my brain. Please try again."
	MsgBadResponse  = "I received an unexpected response. Please try again."
	MsgGenericError = "I encountered an error while processing your request. Please try again."

	errBadResponse = "Unexpected API response format"
)

// Turn is one prior exchange, oldest first.
type Turn = style.Turn

// Request is one user utterance with its recent history.
type Request struct {
	Query  string
	UserID string

	// History holds up to five recent turns, most recent last.
	History []Turn
}

// Response is the normalized outcome of Generate. Error is empty on success.
type Response struct {
	Text           string
	EmotionalState emotion.Label
	Confidence     float64
	Error          string
	ProcessingTime time.Duration
}

// Engine generates replies. It is safe for concurrent use.
type Engine struct {
	res      *Resources
	provider llm.Provider
	cfg      config.EngineConfig
	llmCfg   config.LLMConfig
	policy   style.Policy
}

// New returns an engine over res. provider may be nil, in which case every
// request reports the missing credential.
func New(res *Resources, provider llm.Provider, cfg *config.Config) *Engine {
	return &Engine{
		res:      res,
		provider: provider,
		cfg:      cfg.Engine,
		llmCfg:   cfg.LLM,
		policy:   style.Policy{LongResponseChars: cfg.Engine.LongResponseChars},
	}
}

// Resources returns the shared read-only state.
func (e *Engine) Resources() *Resources { return e.res }

// Generate runs the pipeline on its own goroutine so a panic anywhere in it
// becomes an error Response. If ctx ends first the generic error is
// returned and the worker's eventual result is discarded.
func (e *Engine) Generate(ctx context.Context, req Request) Response {
	start := time.Now()
	logger := logging.Ctx(ctx)

	type outcome struct {
		resp Response
		kind string
	}
	done := make(chan outcome, 1)

	go func() {
		var cls emotion.Result
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Msg("response pipeline panicked")
				resp := e.failure(fmt.Sprintf("%v", r), MsgGenericError)
				if cls.Label != "" {
					resp.EmotionalState, resp.Confidence = cls.Label, cls.Confidence
				}
				done <- outcome{resp, metrics.OutcomeError}
			}
		}()
		resp, kind := e.generate(ctx, req, &cls)
		done <- outcome{resp, kind}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{e.failure(ctx.Err().Error(), MsgGenericError), metrics.OutcomeError}
	}

	out.resp.ProcessingTime = time.Since(start)
	metrics.Responses.WithLabelValues(out.kind).Inc()

	logger.Info().
		Str("outcome", out.kind).
		Str("emotion", out.resp.EmotionalState.String()).
		Float64("confidence", out.resp.Confidence).
		Dur("duration", out.resp.ProcessingTime).
		Msg("response generated")
	return out.resp
}

// generate stores the classification in cls as soon as it is known.
func (e *Engine) generate(ctx context.Context, req Request, cls *emotion.Result) (Response, string) {
	logger := logging.Ctx(ctx)

	if e.provider == nil || !e.provider.Available() {
		return e.failure(fmt.Sprintf("%s not found in environment variables", e.apiKeyEnv()), MsgNoAPIKey), metrics.OutcomeNoKey
	}

	if phrase, ok := safety.CrisisPhrase(req.Query); ok {
		logger.Warn().Str("phrase", phrase).Msg("crisis language detected")
		return Response{
			Text:           safety.CrisisMessage,
			EmotionalState: emotion.Distressed,
			Confidence:     e.cfg.OverrideConfidence,
		}, metrics.OutcomeCrisis
	}

	if v := e.res.Topic.IsOnTopic(ctx, req.Query); !v.OnTopic {
		logger.Info().
			Float64("max_on_topic", v.MaxOnTopic).
			Float64("max_off_topic", v.MaxOffTopic).
			Msg("off-topic query refused")
		return Response{
			Text:           safety.RefusalMessage,
			EmotionalState: emotion.Neutral,
			Confidence:     e.cfg.MinConfidence,
		}, metrics.OutcomeOffTopic
	}

	*cls = e.res.Classifier.Classify(ctx, req.Query)
	metrics.Emotions.WithLabelValues(cls.Label.String(), string(cls.Method)).Inc()

	rs := e.policy.Select(req.Query, cls.Label, req.History)
	metrics.RetrievalTopK.Observe(float64(e.res.Retriever.TopK(req.Query, rs)))
	contextBlock := e.res.Retriever.Retrieve(ctx, req.Query, rs)

	logger.Debug().
		Str("emotion", cls.Label.String()).
		Str("method", string(cls.Method)).
		Str("length", string(rs.Length)).
		Str("tone", string(rs.Tone)).
		Int("context_chars", len(contextBlock)).
		Msg("pipeline state")

	callCtx, cancel := context.WithTimeout(ctx, e.llmTimeout())
	defer cancel()

	callStart := time.Now()
	chat, err := e.provider.Chat(callCtx, &llm.ChatRequest{
		Model:        e.llmCfg.Model,
		SystemPrompt: SystemPrompt(cls.Label),
		Messages: []llm.Message{{
			Role:    "user",
			Content: UserContent(req.Query, req.History, e.cfg.HistoryWindow, contextBlock),
		}},
		MaxTokens:   e.llmCfg.MaxTokens,
		Temperature: e.llmCfg.Temperature,
	})
	metrics.CompletionLatency.Observe(time.Since(callStart).Seconds())

	if err != nil {
		logger.Error().Err(err).Str("provider", e.provider.Name()).Msg("completion failed")
		resp := e.mapError(err)
		resp.EmotionalState, resp.Confidence = cls.Label, cls.Confidence
		return resp, metrics.OutcomeError
	}

	return Response{
		Text:           chat.Content,
		EmotionalState: cls.Label,
		Confidence:     cls.Confidence,
	}, metrics.OutcomeOK
}

// mapError converts a completion failure to its fixed user-facing message.
func (e *Engine) mapError(err error) Response {
	var se *llm.StatusError
	switch {
	case errors.As(err, &se):
		return e.failure(fmt.Sprintf("API Error: %d", se.Code), MsgUpstream)
	case errors.Is(err, llm.ErrNoChoices):
		return e.failure(errBadResponse, MsgBadResponse)
	default:
		return e.failure(err.Error(), MsgGenericError)
	}
}

func (e *Engine) failure(errText, text string) Response {
	return Response{
		Text:           text,
		EmotionalState: emotion.Neutral,
		Confidence:     e.cfg.MinConfidence,
		Error:          errText,
	}
}

func (e *Engine) apiKeyEnv() string {
	if e.llmCfg.APIKeyEnv == "" {
		return "API key"
	}
	return e.llmCfg.APIKeyEnv
}

func (e *Engine) llmTimeout() time.Duration {
	if e.llmCfg.Timeout <= 0 {
		return 30 * time.Second
	}
	return e.llmCfg.Timeout
}

// ═══════════════════════════════════════════════════════════════════════════════
// STATUS
// ═══════════════════════════════════════════════════════════════════════════════

// Status reports which resources loaded.
type Status struct {
	ModelLoaded      bool   `json:"model_loaded"`
	EmbeddingsLoaded bool   `json:"embeddings_loaded"`
	DataLoaded       bool   `json:"data_loaded"`
	SessionsLoaded   bool   `json:"sessions_loaded"`
	APIKeyAvailable  bool   `json:"api_key_available"`
	CorpusEntries    int    `json:"corpus_entries"`
	Sessions         int    `json:"sessions"`
	EmbeddingModel   string `json:"embedding_model,omitempty"`
	Provider         string `json:"provider,omitempty"`
	Model            string `json:"model,omitempty"`
}

// Status reports the engine's readiness.
func (e *Engine) Status() Status {
	s := Status{
		ModelLoaded:      e.res.Classifier.Ready(),
		EmbeddingsLoaded: e.res.Retriever.Ready(),
		DataLoaded:       e.res.Corpus.Len() > 0,
		SessionsLoaded:   e.res.Transcript.SessionCount() > 0,
		CorpusEntries:    e.res.Corpus.Len(),
		Sessions:         e.res.Transcript.SessionCount(),
		Model:            e.llmCfg.Model,
	}
	if e.res.Embedder != nil {
		s.EmbeddingModel = e.res.Embedder.ModelName()
	}
	if e.provider != nil {
		s.APIKeyAvailable = e.provider.Available()
		s.Provider = e.provider.Name()
	}
	return s
}
