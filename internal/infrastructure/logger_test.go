package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalfigs/internal/config"
)

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, file, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)
	assert.Nil(t, file)

	logger.Info("figure saved", "path", "/tmp/x.png")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "figure saved", entry["msg"])
	assert.Equal(t, "/tmp/x.png", entry["path"])
}

func TestNewLogger_Both(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "nested", "run.log")

	logger, file, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "both", FilePath: logFile}, &buf)
	require.NoError(t, err)
	require.NotNil(t, file)

	logger.Warn("skipping")
	require.NoError(t, file.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"skipping"`)
	assert.Contains(t, buf.String(), `"msg":"skipping"`)
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug("rendering", "figure", "fig_rq1_rf_importance")
	assert.True(t, strings.Contains(buf.String(), "level=DEBUG"))
	assert.True(t, strings.Contains(buf.String(), "figure=fig_rq1_rf_importance"))
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestRunHandler_InjectsContext(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	ctx := WithFigure(WithRunID(context.Background(), "run-123"), "fig_rq3_price_pre_post")
	logger.With("component", "runner").InfoContext(ctx, "figure completed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
	assert.Equal(t, "fig_rq3_price_pre_post", entry["figure"])
	assert.Equal(t, "runner", entry["component"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestInitializeLogger_SetsDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		_ = CloseLogFile()
		slog.SetDefault(previous)
		globalMu.Lock()
		globalLogger = nil
		globalMu.Unlock()
	})

	logFile := filepath.Join(t.TempDir(), "app.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile})
	require.NoError(t, err)
	assert.Same(t, logger, GetLogger())
	assert.Same(t, logger, slog.Default())

	slog.Info("via default")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "via default")
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))
	assert.Empty(t, FigureFromContext(ctx))

	ctx = EnsureRunID(ctx)
	id := RunIDFromContext(ctx)
	assert.Len(t, id, 36)

	// an existing run ID is kept
	assert.Equal(t, id, RunIDFromContext(EnsureRunID(ctx)))
	assert.NotEqual(t, NewRunID(), NewRunID())
}
