package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"macrocli/internal/config"
	apierrors "macrocli/internal/errors"
	"macrocli/internal/services"
)

// SettingsHandler serves the persisted user settings: saved charts, layout,
// categories, and hidden indicators.
type SettingsHandler struct {
	service      *services.SettingsService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(service *services.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "settings")),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the settings routes.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Post("/charts", h.SaveChart)
		r.Delete("/charts/{id}", h.DeleteChart)
		r.Put("/indicators/hidden", h.SetIndicatorHidden)
	})
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, settings)
}

// settingsBody wraps config.Settings for request binding.
type settingsBody struct {
	config.Settings
}

// Bind implements render.Binder.
func (b *settingsBody) Bind(r *http.Request) error { return nil }

// Update handles PUT /api/settings, replacing the settings wholesale.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	body := &settingsBody{}
	if err := render.Bind(r, body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.service.Update(&body.Settings); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, &body.Settings)
}

// chartBody wraps config.ChartConfig for request binding.
type chartBody struct {
	config.ChartConfig
}

// Bind implements render.Binder.
func (b *chartBody) Bind(r *http.Request) error { return nil }

// SaveChart handles POST /api/settings/charts. A body without an ID creates
// a chart; with an ID it updates the existing one.
func (h *SettingsHandler) SaveChart(w http.ResponseWriter, r *http.Request) {
	body := &chartBody{}
	if err := render.Bind(r, body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	created := body.ID == ""
	chart, err := h.service.SaveChart(body.ChartConfig)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, chart)
}

// DeleteChart handles DELETE /api/settings/charts/{id}.
func (h *SettingsHandler) DeleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteChart(id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// HiddenIndicatorBody is the PUT /api/settings/indicators/hidden payload.
type HiddenIndicatorBody struct {
	Source string `json:"source"`
	Code   string `json:"code"`
	Hidden bool   `json:"hidden"`
}

// Bind implements render.Binder.
func (b *HiddenIndicatorBody) Bind(r *http.Request) error { return nil }

// SetIndicatorHidden handles PUT /api/settings/indicators/hidden.
func (h *SettingsHandler) SetIndicatorHidden(w http.ResponseWriter, r *http.Request) {
	body := &HiddenIndicatorBody{}
	if err := render.Bind(r, body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	source := strings.ToUpper(strings.TrimSpace(body.Source))
	if err := h.service.SetIndicatorHidden(source, body.Code, body.Hidden); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"source": source,
		"code":   body.Code,
		"hidden": body.Hidden,
	})
}
