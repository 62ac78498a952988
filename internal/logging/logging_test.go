package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNew_DefaultLevel(t *testing.T) {
	logger := New("unknown", "text")
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info level to be enabled by default")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be disabled by default")
	}
}

func TestNew_DebugLevel(t *testing.T) {
	logger := New("debug", "text")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be enabled")
	}
}

func TestNew_ErrorLevel(t *testing.T) {
	logger := New("error", "json")
	if logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("expected warn level to be disabled")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error level to be enabled")
	}
}

func TestCommandID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := CommandID(ctx); got != "" {
		t.Errorf("expected empty command ID, got %q", got)
	}

	ctx = WithCommandID(ctx, "cmd-123")
	if got := CommandID(ctx); got != "cmd-123" {
		t.Errorf("expected cmd-123, got %q", got)
	}

	ctx = WithCommandID(ctx, "cmd-456")
	if got := CommandID(ctx); got != "cmd-456" {
		t.Errorf("expected overwrite to cmd-456, got %q", got)
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected the default logger, got nil")
	}

	logger := New("info", "text")
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected the context logger back")
	}
}

func TestL_WithCommandID(t *testing.T) {
	ctx := WithLogger(context.Background(), New("info", "text"))
	ctx = WithCommandID(ctx, "cmd-789")

	if L(ctx) == nil {
		t.Fatal("expected a logger")
	}
}
