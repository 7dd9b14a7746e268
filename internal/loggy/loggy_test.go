package loggy

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: slog.LevelDebug, Format: "text"})

	logger.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "key=value")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: slog.LevelInfo, Format: "json"})

	logger.Warn("disk low", "free_mb", 42)

	out := buf.String()
	assert.Contains(t, out, `"msg":"disk low"`)
	assert.Contains(t, out, `"free_mb":42`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: slog.LevelWarn, Format: "text"})

	logger.Debug("not shown")
	logger.Info("not shown either")
	logger.Error("shown")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "shown")
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: slog.LevelInfo, Format: "text"})

	passLogger := logger.WithPass(3)
	require.NotNil(t, passLogger)
	passLogger.Info("pass started")

	assert.Contains(t, buf.String(), "pass=3")
}

func TestWithErrorNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: slog.LevelInfo, Format: "text"})

	same := logger.WithError(nil)
	assert.Equal(t, logger, same)
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("should not panic")
		logger.Debug("nor this")
	})
}
