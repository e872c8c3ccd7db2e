// Package logging builds the structured logger shared by furrow components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger pairs a slog.Logger with the file it writes to.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Open creates a text logger appending to path. An empty path discards all
// output. The terminal belongs to the UI, so nothing is written to stdout.
func Open(path string, level slog.Level) (*Logger, error) {
	if strings.TrimSpace(path) == "" {
		return &Logger{Logger: slog.New(slog.DiscardHandler)}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{Logger: New(file, level), file: file}, nil
}

// New creates a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
