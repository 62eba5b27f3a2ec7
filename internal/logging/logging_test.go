package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// ========================================
// Context Tests
// ========================================

func TestWithRunID(t *testing.T) {
	ctx := context.Background()
	newCtx := WithRunID(ctx, "run-123")

	if GetRunID(ctx) != "" {
		t.Error("original context should not be modified")
	}
	if got := GetRunID(newCtx); got != "run-123" {
		t.Errorf("GetRunID() = %q, want %q", got, "run-123")
	}
}

func TestGetTrendID_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), TrendIDKey, 42)
	if got := GetTrendID(ctx); got != "" {
		t.Errorf("GetTrendID() = %q, want empty for non-string value", got)
	}
}

func TestFromContext_NoIDs(t *testing.T) {
	logger := slog.Default()
	if FromContext(context.Background(), logger) != logger {
		t.Error("FromContext without IDs should return original logger")
	}
}

func TestFromContext_WithIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, slog.LevelInfo)

	ctx := WithTrendID(WithRunID(context.Background(), "run-1"), "trend-9")
	FromContext(ctx, logger).Info("generated")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["run_id"] != "run-1" || line["trend_id"] != "trend-9" {
		t.Errorf("log line = %v, want run_id and trend_id", line)
	}
}

// ========================================
// Logger Construction Tests
// ========================================

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", "model", "flux-pro")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "model=flux-pro") {
		t.Errorf("text output = %q, want model=flux-pro", out)
	}
}

func TestSetDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetDefault()
	if logger == nil || slog.Default() != logger {
		t.Error("SetDefault() should install and return the logger")
	}
}
