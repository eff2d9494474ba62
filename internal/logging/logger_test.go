package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/yt-music-bot/internal/config"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		terminal bool
		expected string
	}{
		{"should use console on a terminal", "auto", true, FormatConsole},
		{"should use json off a terminal", "auto", false, FormatJSON},
		{"should treat empty as auto", "", false, FormatJSON},
		{"should accept pretty alias", "Pretty", false, FormatConsole},
		{"should keep json on a terminal", "json", true, FormatJSON},
		{"should pass unknown through", "xml", true, "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveFormat(tt.format, tt.terminal); got != tt.expected {
				t.Errorf("resolveFormat(%q, %v) = %q, expected %q", tt.format, tt.terminal, got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, expected := range tests {
		if got := parseLevel(input); got != expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", input, got, expected)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJSONLoggerWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "bot.log")
	logger, err := New(Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	Component(logger, "router").Info("search completed", "results", 20)
	logger.Debug("hidden")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), content)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "search completed" || entry["component"] != "router" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["results"] != float64(20) {
		t.Errorf("results = %v", entry["results"])
	}
	if _, err := time.Parse(time.RFC3339, entry["ts"].(string)); err != nil {
		t.Errorf("ts is not RFC3339: %v", entry["ts"])
	}
}

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.With(ComponentKey, "pipeline").WithGroup("job").Warn("fetch failed",
		"id", "job-1",
		"error", errors.New("size limit exceeded"),
		"elapsed", 1500*time.Millisecond)

	line := buf.String()
	for _, want := range []string{
		" WARN pipeline: fetch failed",
		"job.id=job-1",
		`job.error="size limit exceeded"`,
		"job.elapsed=1.5s",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should be a prefix, not a field: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Errorf("expected no source at info level: %q", line)
	}
}

func TestConsoleHandlerAddsSourceForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Errorf("expected caller in debug logs, got %q", content)
	}
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("started")

	if _, err := os.Stat(cfg.LogFile()); err != nil {
		t.Errorf("expected log file: %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value    slog.Value
		expected string
	}{
		{slog.StringValue("plain"), "plain"},
		{slog.StringValue("two words"), `"two words"`},
		{slog.StringValue(""), `""`},
		{slog.IntValue(-3), "-3"},
		{slog.BoolValue(true), "true"},
		{slog.Float64Value(0.5), "0.5"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.value); got != tt.expected {
			t.Errorf("formatValue(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}
