// Package server exposes the engine over HTTP: the chat endpoint, a
// WebSocket chat stream, per-user emotional state, health and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/config"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/engine"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/history"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/metrics"
)

// Version is reported by /health.
var Version = "dev"

const (
	// saveTimeout bounds persisting a reply after the client may have left.
	saveTimeout = 5 * time.Second

	// maxBodyBytes caps a chat request body.
	maxBodyBytes = 64 * 1024
)

// Generator produces replies.
type Generator interface {
	Generate(ctx context.Context, req engine.Request) engine.Response
	Status() engine.Status
}

// HistoryStore persists exchanges. Implemented by *history.Store.
type HistoryStore interface {
	Recent(ctx context.Context, userID string, limit int) ([]engine.Turn, error)
	Save(ctx context.Context, userID, query string, resp engine.Response) (string, error)
	Emotions(ctx context.Context, userID string, n int) ([]emotion.Label, error)
	Messages(ctx context.Context, userID string, limit int) ([]history.Message, error)
	Health(ctx context.Context) error
}

// Server represents the HTTP server.
type Server struct {
	gen          Generator
	store        HistoryStore
	historyLimit int
	upgrader     websocket.Upgrader
	httpServer   *http.Server
	startTime    time.Time
}

// New creates the server. store may be nil, in which case nothing is
// persisted and replies are generated without history.
func New(cfg config.ServerConfig, historyLimit int, gen Generator, store HistoryStore) *Server {
	if historyLimit <= 0 {
		historyLimit = history.DefaultLimit
	}
	s := &Server{
		gen:          gen,
		store:        store,
		historyLimit: historyLimit,
		startTime:    time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.instrument("/health", s.healthHandler))
	mux.HandleFunc("POST /api/chat/message", s.instrument("/api/chat/message", s.chatHandler))
	mux.HandleFunc("GET /api/chat/history/{user_id}", s.instrument("/api/chat/history", s.historyHandler))
	mux.HandleFunc("GET /api/users/{user_id}/state", s.instrument("/api/users/state", s.stateHandler))
	mux.HandleFunc("GET /chat/ws", s.wsHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     mux,
		ReadTimeout: readTimeout,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start serves until Shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.RequestCount.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
