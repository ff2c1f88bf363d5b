package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"macrocli/internal/catalog"
	apierrors "macrocli/internal/errors"
	"macrocli/internal/infrastructure"
	"macrocli/internal/services"
)

// CollectionHandler triggers collection runs over HTTP. Runs execute in the
// background; progress streams over the websocket hub.
type CollectionHandler struct {
	service      *services.CollectionService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(service *services.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "collection")),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the collection routes.
func (h *CollectionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/collect", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Get("/status", h.Status)
	})
}

// CollectRequestBody is the POST /api/collect payload. An empty source list
// collects every source a provider client is registered for.
type CollectRequestBody struct {
	Sources []string `json:"sources,omitempty"`
}

// Bind implements render.Binder.
func (b *CollectRequestBody) Bind(r *http.Request) error { return nil }

// Start handles POST /api/collect. The run is detached from the request
// context so closing the browser tab does not cancel it.
func (h *CollectionHandler) Start(w http.ResponseWriter, r *http.Request) {
	body := &CollectRequestBody{}
	if r.ContentLength > 0 {
		if err := render.Bind(r, body); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	sources := make([]string, 0, len(body.Sources))
	for _, source := range body.Sources {
		source = strings.ToUpper(strings.TrimSpace(source))
		if source == "" {
			continue
		}
		if _, ok := catalog.ForSource(source); !ok {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sources", "unknown source "+source))
			return
		}
		sources = append(sources, source)
	}

	if h.service.Running() {
		h.errorHandler.HandleError(w, r, apierrors.ErrCollectionRunning)
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	h.logger.InfoContext(r.Context(), "collection requested",
		slog.Any("sources", sources))

	go func() {
		ctx := infrastructure.WithTraceID(context.Background(), traceID)
		if _, err := h.service.Run(ctx, sources); err != nil {
			h.logger.Error("background collection run failed",
				slog.String("trace_id", traceID),
				slog.String("error", err.Error()))
		}
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status":  "accepted",
		"sources": sources,
		"message": "Collection started, progress streams over /ws",
	})
}

// Status handles GET /api/collect/status.
func (h *CollectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"running": h.service.Running(),
	})
}
