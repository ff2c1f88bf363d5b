package http

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/catalog"
	"macrocli/internal/config"
	"macrocli/internal/services"
	"macrocli/pkg/contracts/domain"
)

func newCatalogRouter(t *testing.T, withSettings bool) (*chi.Mux, *config.Paths, *services.SettingsService) {
	t.Helper()
	paths := config.PathsFor(t.TempDir())
	analysis := services.NewAnalysisService(paths, nil, testLogger())

	var settings *services.SettingsService
	if withSettings {
		settings = services.NewSettingsService(filepath.Join(paths.ExecutableDir, "settings.json"), testLogger())
	}

	handler := NewCatalogHandler(analysis, settings, testLogger())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, paths, settings
}

func TestCatalogHandler_ListSources(t *testing.T) {
	router, paths, _ := newCatalogRouter(t, false)

	rec := doJSON(t, router, "GET", "/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	sources := body["sources"].([]interface{})
	require.Len(t, sources, 3)

	byName := make(map[string]map[string]interface{})
	for _, s := range sources {
		entry := s.(map[string]interface{})
		byName[entry["source"].(string)] = entry
	}
	require.Contains(t, byName, "FRED")
	require.Contains(t, byName, "ECOS")
	require.Contains(t, byName, "BLS")

	fred := byName["FRED"]
	assert.Equal(t, float64(6), fred["categories"])
	assert.Equal(t, float64(50), fred["indicators"])
	assert.Equal(t, false, fred["collected"])

	// A workbook on disk flips the collected flag.
	writeWorkbook(t, paths, catalog.SourceFRED, []domain.Observation{
		observation("UNRATE", monthly(2024, time.January), 3.7),
	})
	rec = doJSON(t, router, "GET", "/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, s := range decodeBody(t, rec)["sources"].([]interface{}) {
		entry := s.(map[string]interface{})
		if entry["source"] == "FRED" {
			assert.Equal(t, true, entry["collected"])
		}
	}
}

func TestCatalogHandler_ListCategories(t *testing.T) {
	router, _, _ := newCatalogRouter(t, false)

	rec := doJSON(t, router, "GET", "/sources/FRED/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "FRED", body["source"])

	categories := body["categories"].([]interface{})
	require.Len(t, categories, 6)

	first := categories[0].(map[string]interface{})
	assert.Equal(t, "Employment", first["name"])
	assert.Equal(t, float64(10), first["indicators"])
}

func TestCatalogHandler_ListIndicators(t *testing.T) {
	router, _, _ := newCatalogRouter(t, false)

	t.Run("full catalog", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/indicators", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		indicators := body["indicators"].([]interface{})
		assert.Len(t, indicators, 50)

		first := indicators[0].(map[string]interface{})
		assert.Equal(t, "UNRATE", first["code"])
		assert.Equal(t, "Unemployment Rate (SA)", first["name"])
		assert.Equal(t, "Employment", first["category"])
		assert.Equal(t, "monthly", first["cadence"])
	})

	t.Run("filtered by category", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/indicators?category=Rates", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		indicators := decodeBody(t, rec)["indicators"].([]interface{})
		require.Len(t, indicators, 10)
		for _, entry := range indicators {
			assert.Equal(t, "Rates", entry.(map[string]interface{})["category"])
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/indicators?category=Astrology", nil)
		assertProblem(t, rec, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("lowercase source accepted", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/bls/indicators", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "BLS", decodeBody(t, rec)["source"])
	})
}

func TestCatalogHandler_UnknownSource(t *testing.T) {
	router, _, _ := newCatalogRouter(t, false)

	rec := doJSON(t, router, "GET", "/sources/MARS/categories", nil)
	body := assertProblem(t, rec, http.StatusNotFound, "NOT_FOUND")
	assert.Contains(t, body["detail"], "MARS")
}

func TestCatalogHandler_HiddenIndicators(t *testing.T) {
	router, _, settings := newCatalogRouter(t, true)
	require.NoError(t, settings.SetIndicatorHidden("FRED", "UNRATE", true))

	rec := doJSON(t, router, "GET", "/sources/FRED/indicators?category=Employment", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, entry := range decodeBody(t, rec)["indicators"].([]interface{}) {
		indicator := entry.(map[string]interface{})
		if indicator["code"] == "UNRATE" {
			assert.Equal(t, true, indicator["hidden"])
		} else {
			assert.Nil(t, indicator["hidden"], "%s should not be hidden", indicator["code"])
		}
	}
}

