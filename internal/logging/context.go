package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// DetachContextWithTimeout creates a detached context with its own timeout.
// Persisting a generated reply must finish even when the client that asked
// for it has already gone away.
//
//	saveCtx, cancel := logging.DetachContextWithTimeout(r.Context(), 5*time.Second)
//	defer cancel()
//	err := store.Save(saveCtx, userID, query, resp)
func DetachContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(parent)
	return context.WithTimeout(detached, timeout)
}

// WithRequestID returns a context whose zerolog logger carries request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := zlog.With().Str("request_id", requestID).Logger()
	return logger.WithContext(ctx)
}

// Ctx returns the logger attached to ctx, or the global logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
