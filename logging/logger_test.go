package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelInfo).With("component", "test")

	logger.Debug("dropped")
	logger.Info("match completed", "match_id", "m1", "round", 2)
	logger.Error("upload failed", "error", errors.New("boom"), "dangling")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "match completed", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "test", entries[0]["component"])
	assert.Equal(t, "m1", entries[0]["match_id"])
	assert.EqualValues(t, 2, entries[0]["round"])

	assert.Equal(t, "boom", entries[1]["error"])
	assert.Contains(t, entries[1], "dangling")
	assert.Contains(t, entries[1], "stacktrace")
}

func TestLogger_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug)

	var ctx context.Context
	h := chimw.RequestID(httpHandlerFunc(func(r context.Context) { ctx = r }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	require.NotNil(t, ctx)

	logger.InfoContext(ctx, "handled")
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0]["request_id"])
}

func TestLogger_NilIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("nothing")
		logger.With("k", "v").Warn("still nothing")
		_ = logger.Sync()
	})
}
