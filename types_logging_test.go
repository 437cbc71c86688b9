package auth_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-shop-auth"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry), string(line))
		out = append(out, entry)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := auth.NewLogger(glog.WithWriter(&buf), glog.WithLevel(glog.Debug)).GetLogger("auth.accounts")

	logger.Debug("debug message", "user_id", "u-1")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", "reason", "boom")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)

	levels := []string{"debug", "info", "warn", "error"}
	for i, entry := range entries {
		assert.Equal(t, levels[i], entry["level"])
		assert.Equal(t, "auth.accounts", entry["logger"])
	}

	assert.Equal(t, "debug message", entries[0]["msg"])
	assert.Equal(t, "u-1", entries[0]["user_id"])
	assert.Contains(t, entries[0], "ts")
}

func TestNewLogger_DefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := auth.NewLogger(glog.WithWriter(&buf)).GetLogger("auth")

	logger.Debug("hidden")
	logger.Info("shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestNewLogger_RichErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := auth.NewLogger(glog.WithWriter(&buf)).GetLogger("http")

	logger.Error("request failed", "path", "/user/login", "error", auth.ErrInvalidCredentials)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "/user/login", entry["path"])
	assert.Equal(t, "authentication", entry["category"])
	assert.Equal(t, auth.ErrInvalidCredentials.TextCode, entry["text_code"])
	assert.EqualValues(t, 401, entry["error_code"])
	assert.Contains(t, entry, "stack")
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, auth.DefaultLogger("auth"))
}
