package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

func init() {
	defaultLogger = New(os.Stdout, os.Getenv("ENV"))
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w. Production uses JSON at info level,
// every other environment uses text at debug level.
func New(w io.Writer, env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// Logger returns the default logger
func Logger() *slog.Logger {
	return defaultLogger
}

// Context keys
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	jobRunIDKey  contextKey = "job_run_id"
)

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID adds user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithJobRunID tags every log line of a daily job run with the same id.
func WithJobRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, jobRunIDKey, runID)
}

// FromContext returns the default logger enriched with context values.
func FromContext(ctx context.Context) *slog.Logger {
	return Enrich(ctx, defaultLogger)
}

// Enrich adds the request, user and job run ids found in ctx to l.
func Enrich(ctx context.Context, l *slog.Logger) *slog.Logger {
	if l == nil {
		l = defaultLogger
	}

	for _, key := range []contextKey{requestIDKey, userIDKey, jobRunIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			l = l.With(string(key), v)
		}
	}

	return l
}
