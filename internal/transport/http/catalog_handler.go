package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"macrocli/internal/catalog"
	apierrors "macrocli/internal/errors"
	"macrocli/internal/services"
)

// CatalogHandler serves the source and indicator catalog.
type CatalogHandler struct {
	analysis     *services.AnalysisService
	settings     *services.SettingsService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCatalogHandler creates a new catalog handler. The settings service is
// optional; without it no indicator is reported hidden.
func NewCatalogHandler(analysis *services.AnalysisService, settings *services.SettingsService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		analysis:     analysis,
		settings:     settings,
		logger:       logger.With(slog.String("handler", "catalog")),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sources", h.ListSources)
	r.Get("/sources/{source}/categories", h.ListCategories)
	r.Get("/sources/{source}/indicators", h.ListIndicators)
}

// ListSources handles GET /api/sources.
func (h *CatalogHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"sources": h.analysis.Sources(),
	})
}

// CategoryResponse is one catalog category with its indicator count.
type CategoryResponse struct {
	Name       string `json:"name"`
	Indicators int    `json:"indicators"`
}

// ListCategories handles GET /api/sources/{source}/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.sourceCatalog(w, r)
	if !ok {
		return
	}

	categories := make([]CategoryResponse, 0, len(cat.Categories()))
	for _, name := range cat.Categories() {
		categories = append(categories, CategoryResponse{
			Name:       name,
			Indicators: len(cat.Codes(name)),
		})
	}
	render.JSON(w, r, map[string]interface{}{
		"source":     cat.Source(),
		"categories": categories,
	})
}

// IndicatorResponse is one catalog entry with its hidden flag.
type IndicatorResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Cadence  string `json:"cadence,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
}

// ListIndicators handles GET /api/sources/{source}/indicators. An optional
// category query parameter narrows the listing to one category.
func (h *CatalogHandler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.sourceCatalog(w, r)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")
	if category != "" {
		known := false
		for _, name := range cat.Categories() {
			if name == category {
				known = true
				break
			}
		}
		if !known {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("category %s", category)))
			return
		}
	}

	hidden := func(string, string) bool { return false }
	if h.settings != nil {
		settings, err := h.settings.Get()
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		hidden = settings.IsHidden
	}

	var indicators []IndicatorResponse
	for _, entry := range cat.All() {
		entryCategory := cat.CategoryFor(entry.Code)
		if category != "" && entryCategory != category {
			continue
		}
		indicators = append(indicators, IndicatorResponse{
			Code:     entry.Code,
			Name:     entry.Name,
			Category: entryCategory,
			Cadence:  entry.Cadence,
			Hidden:   hidden(cat.Source(), entry.Code),
		})
	}
	render.JSON(w, r, map[string]interface{}{
		"source":     cat.Source(),
		"indicators": indicators,
	})
}

// sourceCatalog resolves the source URL parameter, case-insensitively.
func (h *CatalogHandler) sourceCatalog(w http.ResponseWriter, r *http.Request) (*catalog.Catalog, bool) {
	source := strings.ToUpper(chi.URLParam(r, "source"))
	cat, ok := catalog.ForSource(source)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("source %s", source)))
		return nil, false
	}
	return cat, true
}
