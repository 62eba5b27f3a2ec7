package logging

import (
	"context"
	"log/slog"
)

// contextKey is the type for logging values stored in a context.
type contextKey string

const (
	// RunIDKey tags every log line of one trend-analysis run.
	RunIDKey contextKey = "log_run_id"
	// TrendIDKey tags every log line of one generation job.
	TrendIDKey contextKey = "log_trend_id"
)

// WithRunID returns a context carrying the analysis run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithTrendID returns a context carrying the trend being generated.
func WithTrendID(ctx context.Context, trendID string) context.Context {
	return context.WithValue(ctx, TrendIDKey, trendID)
}

// GetRunID returns the run ID from the context, or "".
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// GetTrendID returns the trend ID from the context, or "".
func GetTrendID(ctx context.Context) string {
	id, _ := ctx.Value(TrendIDKey).(string)
	return id
}

// FromContext returns logger with the context's run and trend IDs attached.
// The logger is returned unchanged when the context carries neither.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		return logger
	}
	var attrs []any
	if id := GetRunID(ctx); id != "" {
		attrs = append(attrs, "run_id", id)
	}
	if id := GetTrendID(ctx); id != "" {
		attrs = append(attrs, "trend_id", id)
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
