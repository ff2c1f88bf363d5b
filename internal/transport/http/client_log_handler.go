package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "macrocli/internal/errors"
)

// ClientLogHandler funnels browser console logs from the dashboard into the
// server log so client-side failures show up next to server events.
type ClientLogHandler struct {
	logger *slog.Logger
}

// NewClientLogHandler creates a new client log handler.
func NewClientLogHandler(logger *slog.Logger) *ClientLogHandler {
	return &ClientLogHandler{
		logger: logger.With(slog.String("handler", "client_log")),
	}
}

// RegisterRoutes registers the client log route.
func (h *ClientLogHandler) RegisterRoutes(r chi.Router) {
	r.Post("/client-log", h.Handle)
}

// ClientLogBody is one client-side log entry.
type ClientLogBody struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Page    string                 `json:"page,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Handle processes POST /api/client-log.
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var body ClientLogBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("invalid log payload"))
		return
	}

	level := slog.LevelInfo
	switch body.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := []slog.Attr{slog.String("client_page", body.Page)}
	if body.Data != nil {
		attrs = append(attrs, slog.Any("data", body.Data))
	}
	h.logger.LogAttrs(r.Context(), level, body.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{"success": true})
}
