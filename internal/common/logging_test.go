package common

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLogger_AddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("component", "test")

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if rec["run_id"] != "run-123" {
		t.Errorf("run_id = %v, want run-123", rec["run_id"])
	}
	if rec["component"] != "test" {
		t.Errorf("component = %v, want test", rec["component"])
	}
}

func TestNewLogger_NoRunID(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("plain")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if _, ok := rec["run_id"]; ok {
		t.Error("run_id present without a tagged context")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		quiet, verbose bool
		want           slog.Level
	}{
		{false, false, slog.LevelInfo},
		{true, false, slog.LevelError},
		{false, true, slog.LevelDebug},
		{true, true, slog.LevelError},
	}
	for _, tt := range tests {
		if got := LogLevel(tt.quiet, tt.verbose); got != tt.want {
			t.Errorf("LogLevel(%v, %v) = %v, want %v", tt.quiet, tt.verbose, got, tt.want)
		}
	}
}
