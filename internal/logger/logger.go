// Package logger holds the process-wide structured logger. Level, format and
// destination are read from the environment so every command configures
// logging the same way.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	closer        io.Closer
)

// Setup builds the default logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE.
// When LOG_FILE is set the output goes there instead of stderr; the terminal
// UI relies on this to keep log lines off the screen.
func Setup() *slog.Logger {
	if path := os.Getenv("LOG_FILE"); path != "" {
		if l, err := SetupFile(path); err == nil {
			return l
		}
	}
	return setup(os.Stderr, nil)
}

// SetupFile builds the default logger appending to the file at path,
// creating it and its directory when missing.
func SetupFile(path string) (*slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	return setup(f, f), nil
}

// SetupWriter builds the default logger writing to w. Used by tests and by
// commands that pick their own destination.
func SetupWriter(w io.Writer) *slog.Logger {
	return setup(w, nil)
}

func setup(w io.Writer, c io.Closer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}

	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = c
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L returns the default logger, initializing it on first use.
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup()
	}
	return l
}

// Close releases the log file opened by Setup, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
