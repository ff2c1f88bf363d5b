package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingHandler records every slog record for assertions.
type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(string) slog.Handler      { return h }

func (h *capturingHandler) last(t *testing.T) slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.records)
	return h.records[len(h.records)-1]
}

func TestClientLogHandler(t *testing.T) {
	capture := &capturingHandler{}
	handler := NewClientLogHandler(slog.New(capture))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	tests := []struct {
		name      string
		level     string
		wantLevel slog.Level
	}{
		{name: "error level", level: "error", wantLevel: slog.LevelError},
		{name: "warn level", level: "warn", wantLevel: slog.LevelWarn},
		{name: "debug level", level: "debug", wantLevel: slog.LevelDebug},
		{name: "unknown level defaults to info", level: "verbose", wantLevel: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(map[string]interface{}{
				"level":   tt.level,
				"message": "chart render failed",
				"page":    "/compare",
			})
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/client-log", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, true, decodeBody(t, rec)["success"])

			record := capture.last(t)
			assert.Equal(t, tt.wantLevel, record.Level)
			assert.Equal(t, "chart render failed", record.Message)
		})
	}
}

func TestClientLogHandler_InvalidPayload(t *testing.T) {
	handler := NewClientLogHandler(testLogger())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest("POST", "/client-log", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}
