package http

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/services"
)

func newSettingsRouter(t *testing.T) *chi.Mux {
	t.Helper()
	service := services.NewSettingsService(filepath.Join(t.TempDir(), "settings.json"), testLogger())
	handler := NewSettingsHandler(service, testLogger())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func chartPayload(name string) map[string]interface{} {
	return map[string]interface{}{
		"name": name,
		"indicators": []map[string]interface{}{
			{"source": "FRED", "id": "UNRATE", "chart_type": "Line"},
		},
	}
}

func TestSettingsHandler_Get_Defaults(t *testing.T) {
	router := newSettingsRouter(t)

	rec := doJSON(t, router, "GET", "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Empty(t, body["saved_charts"])
	assert.Empty(t, body["main_layout"])

	categories := body["categories"].([]interface{})
	assert.Contains(t, categories, "Rates")
	assert.Contains(t, categories, "Other")
}

func TestSettingsHandler_SaveChart(t *testing.T) {
	router := newSettingsRouter(t)

	rec := doJSON(t, router, "POST", "/settings/charts", chartPayload("Labor market"))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	id := body["id"].(string)
	assert.True(t, strings.HasPrefix(id, "chart_"), "id %q", id)
	assert.Equal(t, "Labor market", body["name"])

	// The chart and its layout slot show up in the settings.
	rec = doJSON(t, router, "GET", "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decodeBody(t, rec)
	require.Len(t, settings["saved_charts"].([]interface{}), 1)
	require.Len(t, settings["main_layout"].([]interface{}), 1)
}

func TestSettingsHandler_SaveChart_Update(t *testing.T) {
	router := newSettingsRouter(t)

	rec := doJSON(t, router, "POST", "/settings/charts", chartPayload("Before"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	update := chartPayload("After")
	update["id"] = id
	rec = doJSON(t, router, "POST", "/settings/charts", update)
	require.Equal(t, http.StatusOK, rec.Code, "updating an existing chart is not a create")
	assert.Equal(t, "After", decodeBody(t, rec)["name"])

	rec = doJSON(t, router, "GET", "/settings", nil)
	charts := decodeBody(t, rec)["saved_charts"].([]interface{})
	require.Len(t, charts, 1)
	assert.Equal(t, "After", charts[0].(map[string]interface{})["name"])
}

func TestSettingsHandler_SaveChart_Validation(t *testing.T) {
	router := newSettingsRouter(t)

	t.Run("missing name", func(t *testing.T) {
		payload := chartPayload("")
		rec := doJSON(t, router, "POST", "/settings/charts", payload)
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("no indicators", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/settings/charts", map[string]interface{}{
			"name": "Empty chart",
		})
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})
}

func TestSettingsHandler_DeleteChart(t *testing.T) {
	router := newSettingsRouter(t)

	rec := doJSON(t, router, "POST", "/settings/charts", chartPayload("Doomed"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, router, "DELETE", "/settings/charts/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, "DELETE", "/settings/charts/"+id, nil)
	assertProblem(t, rec, http.StatusNotFound, "CHART_NOT_FOUND")
}

func TestSettingsHandler_Update(t *testing.T) {
	router := newSettingsRouter(t)

	rec := doJSON(t, router, "PUT", "/settings", map[string]interface{}{
		"saved_charts": []interface{}{},
		"main_layout":  []interface{}{},
		"categories":   []string{"Rates", "Custom"},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, "GET", "/settings", nil)
	categories := decodeBody(t, rec)["categories"].([]interface{})
	assert.Equal(t, []interface{}{"Rates", "Custom"}, categories)
}

func TestSettingsHandler_SetIndicatorHidden(t *testing.T) {
	router := newSettingsRouter(t)

	rec := doJSON(t, router, "PUT", "/settings/indicators/hidden", map[string]interface{}{
		"source": "fred",
		"code":   "UNRATE",
		"hidden": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "FRED", body["source"], "source is normalized to uppercase")
	assert.Equal(t, true, body["hidden"])

	rec = doJSON(t, router, "GET", "/settings", nil)
	hidden := decodeBody(t, rec)["hidden_indicators"].([]interface{})
	assert.Contains(t, hidden, "FRED:UNRATE")

	// Unhiding empties the list again.
	rec = doJSON(t, router, "PUT", "/settings/indicators/hidden", map[string]interface{}{
		"source": "FRED",
		"code":   "UNRATE",
		"hidden": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/settings", nil)
	assert.Empty(t, decodeBody(t, rec)["hidden_indicators"])
}
