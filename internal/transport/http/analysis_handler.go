package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"macrocli/internal/analysis"
	apierrors "macrocli/internal/errors"
	"macrocli/internal/middleware"
	"macrocli/internal/services"
	"macrocli/pkg/contracts/domain"
)

// AnalysisHandler serves series queries and comparisons.
type AnalysisHandler struct {
	service      *services.AnalysisService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &AnalysisHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "analysis")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// RegisterRoutes registers the analysis routes.
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sources/{source}/series/{code}", h.GetSeries)
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/compare", h.Compare)
		r.Post("/lag-profile", h.LagProfile)
	})
}

// GetSeries handles GET /api/sources/{source}/series/{code} with optional
// transform, shift, from and to query parameters.
func (h *AnalysisHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	source := strings.ToUpper(chi.URLParam(r, "source"))
	code := chi.URLParam(r, "code")

	transforms := make([]string, len(domain.TransformModes))
	for i, m := range domain.TransformModes {
		transforms[i] = string(m)
	}
	transform, ok := h.query.ValidateEnum(w, r, "transform", transforms, string(domain.TransformRaw))
	if !ok {
		return
	}
	shift, ok := h.query.ValidateInt(w, r, "shift", -analysis.MaxLagPeriods, analysis.MaxLagPeriods, 0)
	if !ok {
		return
	}
	from, ok := h.query.ValidateDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.query.ValidateDate(w, r, "to")
	if !ok {
		return
	}

	result, err := h.service.Series(r.Context(), source, code, services.SeriesQuery{
		Transform: domain.TransformMode(transform),
		Shift:     shift,
		From:      from,
		To:        to,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, newSeriesResponse(result))
}

// SelectionRequest is one series selection in a comparison body.
type SelectionRequest struct {
	Source    string `json:"source" validate:"required,oneof=FRED ECOS BLS"`
	Code      string `json:"code" validate:"required,indicator"`
	Transform string `json:"transform,omitempty" validate:"omitempty,transform"`
	Shift     int    `json:"shift,omitempty" validate:"min=-24,max=24"`
}

func (s SelectionRequest) selection() domain.SeriesSelection {
	return domain.SeriesSelection{
		Source:    strings.ToUpper(s.Source),
		Code:      s.Code,
		Transform: domain.TransformMode(s.Transform),
		Shift:     s.Shift,
	}
}

// CompareRequestBody is the POST /api/analysis/compare payload.
type CompareRequestBody struct {
	Selections []SelectionRequest `json:"selections" validate:"required,min=2,max=12,dive"`
	From       string             `json:"from,omitempty" validate:"omitempty,iso8601"`
	To         string             `json:"to,omitempty" validate:"omitempty,iso8601"`
	MaxLag     int                `json:"max_lag,omitempty" validate:"min=0,max=60"`
}

// Bind implements render.Binder.
func (b *CompareRequestBody) Bind(r *http.Request) error { return nil }

// Compare handles POST /api/analysis/compare.
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	body := &CompareRequestBody{}
	if err := render.Bind(r, body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(body); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := services.CompareRequest{
		Selections: make([]domain.SeriesSelection, len(body.Selections)),
		From:       parseDate(body.From),
		To:         parseDate(body.To),
		MaxLag:     body.MaxLag,
	}
	for i, sel := range body.Selections {
		req.Selections[i] = sel.selection()
	}

	result, err := h.service.Compare(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, newCompareResponse(result))
}

// LagProfileRequestBody is the POST /api/analysis/lag-profile payload.
type LagProfileRequestBody struct {
	SeriesA SelectionRequest `json:"series_a" validate:"required"`
	SeriesB SelectionRequest `json:"series_b" validate:"required"`
	From    string           `json:"from,omitempty" validate:"omitempty,iso8601"`
	To      string           `json:"to,omitempty" validate:"omitempty,iso8601"`
	MaxLag  int              `json:"max_lag,omitempty" validate:"min=0,max=60"`
}

// Bind implements render.Binder.
func (b *LagProfileRequestBody) Bind(r *http.Request) error { return nil }

// LagProfile handles POST /api/analysis/lag-profile, returning the full
// correlation-by-lag curve behind an optimal lag.
func (h *AnalysisHandler) LagProfile(w http.ResponseWriter, r *http.Request) {
	body := &LagProfileRequestBody{}
	if err := render.Bind(r, body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(body); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points, err := h.service.LagProfile(r.Context(),
		body.SeriesA.selection(), body.SeriesB.selection(),
		parseDate(body.From), parseDate(body.To), body.MaxLag)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"series_a": body.SeriesA.selection().Label(),
		"series_b": body.SeriesB.selection().Label(),
		"points":   newLagProfileResponse(points),
	})
}

// parseDate converts a validated YYYY-MM-DD string; empty means unbounded.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
