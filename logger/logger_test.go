package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_ParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, expected := range cases {
		if got := ParseLevel(input); got != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", input, got, expected)
		}
	}
}

func Test_NewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "path", "/docs")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "path=/docs") {
		t.Errorf("expected warn message with attributes, got: %s", out)
	}
}

func Test_New_WritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "davsearch.log")
	logger, closer := New("info", logFile)
	logger.Info("started", "backend", "local")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "backend=local") {
		t.Errorf("expected log line in file, got: %s", data)
	}
}
