package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/engine"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/logging"
)

// ChatRequest is the body of POST /api/chat/message. Query is accepted as
// an alias of Message.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	Query   string `json:"query,omitempty"`
}

func (r ChatRequest) text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Query
}

// ChatResponse is the reply to a chat message.
type ChatResponse struct {
	Query          string        `json:"query"`
	Response       string        `json:"response"`
	EmotionalState emotion.Label `json:"emotional_state"`
	Confidence     float64       `json:"confidence"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime float64       `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse reports engine readiness.
type HealthResponse struct {
	Health  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	engine.Status
	HistoryAvailable bool `json:"history_available"`
}

// HistoryEntry is one stored exchange.
type HistoryEntry struct {
	ID             string        `json:"id"`
	Query          string        `json:"query"`
	Response       string        `json:"response"`
	EmotionalState emotion.Label `json:"emotional_state"`
	Confidence     float64       `json:"confidence"`
	Timestamp      string        `json:"timestamp"`
}

// StateResponse is a user's current emotional state.
type StateResponse struct {
	UserID string `json:"user_id"`
	emotion.State
}

// reply runs one chat exchange: load history, generate, persist.
func (s *Server) reply(ctx context.Context, req ChatRequest) ChatResponse {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	logger := logging.Ctx(ctx)
	query := req.text()

	var turns []engine.Turn
	if s.store != nil && req.UserID != "" {
		var err error
		turns, err = s.store.Recent(ctx, req.UserID, s.historyLimit)
		if err != nil {
			logger.Error().Err(err).Str("user_id", req.UserID).Msg("load history failed")
		}
	}

	resp := s.gen.Generate(ctx, engine.Request{Query: query, UserID: req.UserID, History: turns})

	if s.store != nil && req.UserID != "" {
		saveCtx, cancel := logging.DetachContextWithTimeout(ctx, saveTimeout)
		if _, err := s.store.Save(saveCtx, req.UserID, query, resp); err != nil {
			logger.Error().Err(err).Str("user_id", req.UserID).Msg("save message failed")
		}
		cancel()
	}

	return ChatResponse{
		Query:          query,
		Response:       resp.Text,
		EmotionalState: resp.EmotionalState,
		Confidence:     resp.Confidence,
		Error:          resp.Error,
		ProcessingTime: resp.ProcessingTime.Seconds(),
		RequestID:      requestID,
	}
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.text()) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	writeJSON(w, http.StatusOK, s.reply(r.Context(), req))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Health:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Status:  s.gen.Status(),
	}
	if s.store != nil {
		resp.HistoryAvailable = s.store.Health(r.Context()) == nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	msgs, err := s.store.Messages(r.Context(), r.PathValue("user_id"), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("load history failed")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	// Newest first, as a chat log is displayed.
	out := make([]HistoryEntry, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		out = append(out, HistoryEntry{
			ID:             m.ID,
			Query:          m.Query,
			Response:       m.Response,
			EmotionalState: m.EmotionalState,
			Confidence:     m.Confidence,
			Timestamp:      m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// stateHandler reports the latest stored emotion with its trend over the
// last three messages.
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}
	userID := r.PathValue("user_id")

	labels, err := s.store.Emotions(r.Context(), userID, 3)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("load emotions failed")
		writeError(w, http.StatusInternalServerError, "failed to load emotional state")
		return
	}

	confidence := 0.5
	if latest, err := s.store.Messages(r.Context(), userID, 1); err == nil && len(latest) == 1 {
		confidence = latest[0].Confidence
	}

	writeJSON(w, http.StatusOK, StateResponse{UserID: userID, State: emotion.Summarize(labels, confidence)})
}
