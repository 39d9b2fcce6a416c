package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	figureKey contextKey = "figure"
)

// NewRunID creates a new unique run ID using UUID v4
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID stores the run ID in the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run ID stored in ctx, or ""
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// EnsureRunID returns ctx carrying a run ID, generating one if needed
func EnsureRunID(ctx context.Context) context.Context {
	if RunIDFromContext(ctx) == "" {
		return WithRunID(ctx, NewRunID())
	}
	return ctx
}

// WithFigure stores the figure being produced in the context
func WithFigure(ctx context.Context, figure string) context.Context {
	return context.WithValue(ctx, figureKey, figure)
}

// FigureFromContext returns the figure name stored in ctx, or ""
func FigureFromContext(ctx context.Context) string {
	if figure, ok := ctx.Value(figureKey).(string); ok {
		return figure
	}
	return ""
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}
