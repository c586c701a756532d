package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Info("loaded configuration", "data_root", "/srv/data")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed), "output: %s", buf.String())
	assert.Equal(t, "loaded configuration", parsed["msg"])
	assert.Equal(t, "INFO", parsed["level"])
	assert.Equal(t, "/srv/data", parsed["data_root"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatText, Output: &buf})

	logger.Info("loaded configuration", "data_root", "/srv/data")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "loaded configuration")
	assert.Contains(t, out, "data_root=/srv/data")
	assert.False(t, json.Valid(buf.Bytes()), "text format should not be JSON")
}

func TestNew_UnknownFormatDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: slog.LevelInfo, Format: Format("xml"), Output: &buf}).Info("hello")
	assert.False(t, json.Valid(buf.Bytes()))
	assert.Contains(t, buf.String(), "hello")
}

func TestDefault(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	logger.Error("dropped", "err", "boom")
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v    int
		want slog.Level
	}{
		{v: -1, want: slog.LevelWarn},
		{v: 0, want: slog.LevelWarn},
		{v: 1, want: slog.LevelInfo},
		{v: 2, want: slog.LevelDebug},
		{v: 3, want: LevelTrace},
		{v: 7, want: LevelTrace},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromVerbosity(tt.v), "LevelFromVerbosity(%d)", tt.v)
	}
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf})

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	assert.Same(t, slog.Default(), FromContext(context.Background()))
	assert.Same(t, slog.Default(), FromContext(nil)) //nolint:staticcheck // nil context is handled
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("visible with -v", "key", "value")
}
