package logger

import (
	"bytes"
	"encoding/json/v2"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer: &buf,
		Format: "json",
		Level:  slog.LevelInfo,
	})

	log.Info("category created", "id", "local-businesses")

	var record map[string]any
	err := json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)
	assert.Equal(t, "category created", record["msg"])
	assert.Equal(t, "local-businesses", record["id"])
}

func TestNew_DefaultsToJSONInProduction(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.Info("hello")

	// JSON output starts with a brace; pretty output starts with a color code.
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNew_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer: &buf,
		Format: "pretty",
		Level:  slog.LevelDebug,
	})

	log.Warn("leaf write failed", "business_id", "biz-123")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "leaf write failed")
	assert.Contains(t, out, "business_id=biz-123")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Writer: &buf,
		Format: "pretty",
		Level:  slog.LevelWarn,
	})

	log.Debug("should not appear")
	log.Info("should not appear either")
	log.Error("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer

	base := New(Config{
		Writer: &buf,
		Format: "pretty",
		Level:  slog.LevelInfo,
	})

	child := base.With("root_id", "local-businesses")
	child.Info("reconcile complete")

	assert.Contains(t, buf.String(), "root_id=local-businesses")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}
