package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/metrics"
)

const (
	// writeWait is the timeout for writing to a WebSocket.
	writeWait = 10 * time.Second

	// pongWait is the timeout for pong responses.
	pongWait = 60 * time.Second

	// pingPeriod is how often to send ping frames.
	pingPeriod = (pongWait * 9) / 10
)

// wsHandler upgrades to a WebSocket and answers each ChatRequest frame
// with a ChatResponse frame, in order.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// gorilla allows one concurrent writer; pings and replies share writes.
	writes := make(chan any)
	done := make(chan struct{})
	stopped := make(chan struct{})
	defer close(done)
	go func() {
		defer close(stopped)
		s.wsWriter(conn, writes, done)
	}()

	ctx := r.Context()
	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var out any
		if strings.TrimSpace(req.text()) == "" {
			out = map[string]string{"error": "message is required"}
		} else {
			out = s.reply(ctx, req)
		}

		select {
		case writes <- out:
		case <-stopped:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) wsWriter(conn *websocket.Conn, writes <-chan any, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case v := <-writes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(v); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
