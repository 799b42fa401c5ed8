package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/chronoblock/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseLevel(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "info", Format: "json"}, WithOutput(&buf))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = closer.Close() }()

	logger.Debug("hidden")
	logger.Info("time block added", "id", "b-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON line: %v", err)
	}
	if entry["msg"] != "time block added" || entry["id"] != "b-1" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(config.LogConfig{Level: "error", Format: "text"}, WithOutput(&buf), WithLevel(slog.LevelDebug))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("expected debug line in text output, got %q", buf.String())
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chronoblock.log")
	logger, closer, err := New(config.LogConfig{Level: "warn", Format: "text", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Warn("save failed")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "save failed") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
