package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	NewComponentLogger(logger, "resolver").Info("cache hit",
		String(FieldTier, "exact"),
		Float64("confidence", 1.0),
	)

	out := buf.String()
	if !strings.Contains(out, "[resolver]") {
		t.Fatalf("expected component marker in output: %q", out)
	}
	if !strings.Contains(out, "cache hit") {
		t.Fatalf("expected message in output: %q", out)
	}
	if !strings.Contains(out, "tier=exact") {
		t.Fatalf("expected tier field in output: %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("should be suppressed")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info line leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestJSONHandlerRenamesCoreKeys(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar))

	logger.Info("registered", String(FieldFingerprint, "abc123"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if decoded["msg"] != "registered" {
		t.Fatalf("expected msg key, got %v", decoded)
	}
	if decoded["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", decoded["level"])
	}
	if decoded["fingerprint"] != "abc123" {
		t.Fatalf("expected fingerprint field, got %v", decoded)
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	ctx := WithRequestID(context.Background(), "req-42")
	WithContext(ctx, logger).Info("resolving")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("expected request id field: %q", buf.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if parseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unknown level should fall back to info")
	}
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug level should parse")
	}
}
