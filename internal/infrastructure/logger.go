package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rentalfigs/internal/config"
)

var (
	globalLogger *slog.Logger
	globalMu     sync.Mutex
	// globalLogFile holds the open log file for cleanup
	globalLogFile *os.File
)

// InitializeLogger creates the logger described by cfg and installs it as the
// slog default. Calling it again replaces the previous logger and closes its
// log file.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logger, file, err := NewLogger(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogFile != nil {
		_ = globalLogFile.Close()
	}
	globalLogFile = file
	globalLogger = logger
	slog.SetDefault(logger)
	return logger, nil
}

// GetLogger returns the global logger instance.
// If not initialized, returns the default slog logger.
func GetLogger() *slog.Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger builds a logger writing to console, to cfg.FilePath, or to both.
// The returned file is nil for console-only output; the caller owns closing it.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, *os.File, error) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     ParseLogLevel(cfg.Level),
	}

	var (
		output io.Writer
		file   *os.File
		err    error
	)

	switch strings.ToLower(cfg.Output) {
	case "file":
		if file, err = openLogFile(cfg.FilePath); err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	case "both":
		if file, err = openLogFile(cfg.FilePath); err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = io.MultiWriter(console, file)
	default:
		output = console
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(&runHandler{Handler: handler}), file, nil
}

// runHandler wraps a slog.Handler to inject run_id and figure from context
type runHandler struct {
	slog.Handler
}

// Handle adds the run and figure identifiers to the record if present in ctx
func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if runID := RunIDFromContext(ctx); runID != "" {
			r.AddAttrs(slog.String("run_id", runID))
		}
		if figure := FigureFromContext(ctx); figure != "" {
			r.AddAttrs(slog.String("figure", figure))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLogLevel converts string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// CloseLogFile closes the global log file if open.
func CloseLogFile() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogFile != nil {
		err := globalLogFile.Close()
		globalLogFile = nil
		return err
	}
	return nil
}

// openLogFile opens or creates a log file in append mode
func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	return file, nil
}
