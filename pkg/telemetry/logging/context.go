package logging

import (
	"context"
	"log/slog"
)

// contextKey is a private type so keys in this package never collide with
// context values set elsewhere.
type contextKey string

const (
	loggerKey contextKey = "logging.logger"
	reqIDKey  contextKey = "logging.reqId"
)

// WithRequestLogger returns a context carrying a logger pre-bound with the
// given request id, so every log emission downstream of a request handler
// carries reqId without threading it through every function signature.
func WithRequestLogger(ctx context.Context, base *slog.Logger, reqID string) context.Context {
	logger := base.With("reqId", reqID)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return context.WithValue(ctx, reqIDKey, reqID)
}

// FromContext returns the request-scoped logger, falling back to the
// process-wide default logger if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// RequestID returns the request id carried by ctx, or "" if none was set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
