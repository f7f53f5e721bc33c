package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "production", "info")

	l.Debug("hidden")
	l.Info("user created", "user_id", "42")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user created", entry["msg"])
	assert.Equal(t, "42", entry["user_id"])
}

func TestNew_DevelopmentUsesTint(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "development", "debug")

	l.Debug("token issued", "sub", "alice01")

	assert.Contains(t, buf.String(), "token issued")
	assert.Contains(t, buf.String(), "alice01")
}
