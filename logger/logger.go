// Package logger builds the process logger. Output goes to a file or stderr,
// never stdout: stdout carries the MCP stdio transport.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps debug|info|warn|error to a slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger writing to logFile, or to stderr when logFile is empty
// or cannot be opened. The returned closer releases the file.
func New(level string, logFile string) (*slog.Logger, io.Closer) {
	var writer io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer, closer = f, f
		}
	}
	return NewWithWriter(level, writer), closer
}

func NewWithWriter(level string, w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
