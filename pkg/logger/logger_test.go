package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Output: &buf})
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	WithRequestID(ctx, log).Debug("task created")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task created", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "chatty", Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithRequestIDAddsSubject(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Output: &buf})
	require.NoError(t, err)

	ctx := ContextWithSubject(ContextWithRequestID(context.Background(), "req-2"), "user-7")
	WithRequestID(ctx, log).Info("task deleted")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-2", entry["request_id"])
	assert.Equal(t, "user-7", entry["subject"])
}

func TestRequestIDMissing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
}
