package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_WritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "pastvu-map")

	logger.Info("dropped")
	logger.Warn("stale load", "generation", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "stale load" {
		t.Errorf("expected warn entry, got %v", entry["msg"])
	}
	if entry["service"] != "pastvu-map" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
	if entry["generation"] != float64(3) {
		t.Errorf("expected generation 3, got %v", entry["generation"])
	}
}
