package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/catalog"
	"macrocli/internal/config"
	"macrocli/internal/services"
	"macrocli/internal/store"
	"macrocli/internal/workbook"
	"macrocli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func monthly(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func observation(code string, date time.Time, value float64) domain.Observation {
	return domain.Observation{
		Date:        date,
		Indicator:   code,
		Value:       value,
		Description: code + " description",
		Unit:        "Percent",
	}
}

// writeWorkbook partitions the observations into a source workbook on disk,
// the same shape a collection run produces.
func writeWorkbook(t *testing.T, paths *config.Paths, source string, observations []domain.Observation) {
	t.Helper()
	cat, ok := catalog.ForSource(source)
	require.True(t, ok, "unknown source %s", source)
	tables, _ := store.Partition(store.Merge(nil, observations), cat)
	require.NoError(t, workbook.Write(paths.WorkbookPath(source), tables))
}

// seedMonthlyPair writes UNRATE and FEDFUNDS for Jan through Jun 2024 into
// the FRED workbook. FEDFUNDS is an exact linear function of UNRATE so the
// zero-lag correlation is 1.
func seedMonthlyPair(t *testing.T, paths *config.Paths) {
	t.Helper()
	unrate := []float64{3.0, 3.5, 3.2, 4.1, 3.9, 4.4}
	var observations []domain.Observation
	for i, v := range unrate {
		date := monthly(2024, time.Month(i+1))
		observations = append(observations,
			observation("UNRATE", date, v),
			observation("FEDFUNDS", date, 2*v+1))
	}
	writeWorkbook(t, paths, catalog.SourceFRED, observations)
}

func newAnalysisRouter(t *testing.T) (*chi.Mux, *config.Paths) {
	t.Helper()
	paths := config.PathsFor(t.TempDir())
	handler := NewAnalysisHandler(services.NewAnalysisService(paths, nil, testLogger()), testLogger())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, paths
}

func doJSON(t *testing.T, router *chi.Mux, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// assertProblem checks an RFC 7807 body's status and error_code extension.
func assertProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, errorCode string) map[string]interface{} {
	t.Helper()
	assert.Equal(t, status, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(status), body["status"])
	assert.Equal(t, errorCode, body["error_code"])
	assert.NotEmpty(t, body["title"])
	assert.Contains(t, body, "type")
	return body
}

func TestAnalysisHandler_GetSeries(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE", nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "FRED", body["source"])
	assert.Equal(t, "UNRATE", body["code"])
	assert.Equal(t, "UNRATE description", body["name"])
	assert.Equal(t, "Percent", body["unit"])
	assert.Equal(t, "Raw Data", body["transform"])

	dates := body["dates"].([]interface{})
	values := body["values"].([]interface{})
	require.Len(t, dates, 6)
	require.Len(t, values, 6)
	assert.Equal(t, "2024-01-01", dates[0])
	assert.Equal(t, "2024-06-01", dates[5])
	assert.Equal(t, 3.0, values[0])
	assert.Equal(t, 4.4, values[5])

	// 3.9 -> 4.4 across the last two months.
	assert.InDelta(t, 12.8205, body["change"].(float64), 1e-3)
}

func TestAnalysisHandler_GetSeries_LowercaseSource(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "GET", "/sources/fred/series/UNRATE", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalysisHandler_GetSeries_Transform(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE?transform=MoM", nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "MoM", body["transform"])

	values := body["values"].([]interface{})
	require.Len(t, values, 6)
	assert.Nil(t, values[0], "first month-over-month change has no prior period")
	assert.InDelta(t, 16.6667, values[1].(float64), 1e-3)
	assert.InDelta(t, -8.5714, values[2].(float64), 1e-3)
}

func TestAnalysisHandler_GetSeries_Shift(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE?shift=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["shift"])

	values := body["values"].([]interface{})
	require.Len(t, values, 6)
	assert.Nil(t, values[0], "shifting forward vacates the first row")
	assert.Equal(t, 3.0, values[1])
}

func TestAnalysisHandler_GetSeries_Window(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE?from=2024-03-01&to=2024-05-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	dates := body["dates"].([]interface{})
	require.Len(t, dates, 3)
	assert.Equal(t, "2024-03-01", dates[0])
	assert.Equal(t, "2024-05-01", dates[2])
}

func TestAnalysisHandler_GetSeries_Errors(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	t.Run("unknown transform", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE?transform=banana", nil)
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("shift out of range", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE?shift=99", nil)
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/series/UNRATE?from=March", nil)
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("unknown indicator", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/FRED/series/NOPE", nil)
		assertProblem(t, rec, http.StatusNotFound, "INDICATOR_NOT_FOUND")
	})

	t.Run("unknown source", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/MARS/series/UNRATE", nil)
		assertProblem(t, rec, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("workbook not collected", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/sources/ECOS/series/901Y009_0", nil)
		body := assertProblem(t, rec, http.StatusNotFound, "WORKBOOK_NOT_FOUND")
		assert.Equal(t, "/errors/data/not-found", body["type"])
	})
}

func TestAnalysisHandler_Compare(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "POST", "/analysis/compare", map[string]interface{}{
		"selections": []map[string]interface{}{
			{"source": "FRED", "code": "UNRATE"},
			{"source": "FRED", "code": "FEDFUNDS"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	dates := body["dates"].([]interface{})
	require.Len(t, dates, 6)

	series := body["series"].([]interface{})
	require.Len(t, series, 2)
	first := series[0].(map[string]interface{})
	assert.Equal(t, "FRED_UNRATE", first["label"])

	pairs := body["pairs"].([]interface{})
	require.Len(t, pairs, 1)
	pair := pairs[0].(map[string]interface{})
	assert.Equal(t, "FRED_UNRATE", pair["series_a"])
	assert.Equal(t, "FRED_FEDFUNDS", pair["series_b"])
	assert.Equal(t, float64(6), pair["samples"])
	assert.InDelta(t, 1.0, pair["correlation"].(float64), 1e-9)
	assert.Equal(t, float64(0), pair["optimal_lag"])
}

func TestAnalysisHandler_Compare_SparseSeriesEncodesNull(t *testing.T) {
	router, paths := newAnalysisRouter(t)

	var observations []domain.Observation
	unrate := []float64{3.0, 3.5, 3.2, 4.1, 3.9, 4.4}
	for i, v := range unrate {
		observations = append(observations, observation("UNRATE", monthly(2024, time.Month(i+1)), v))
	}
	// FEDFUNDS covers only Feb through Apr, so the aligned table has
	// holes on either side.
	for i := 2; i <= 4; i++ {
		observations = append(observations, observation("FEDFUNDS", monthly(2024, time.Month(i)), 2*unrate[i-1]+1))
	}
	writeWorkbook(t, paths, catalog.SourceFRED, observations)

	rec := doJSON(t, router, "POST", "/analysis/compare", map[string]interface{}{
		"selections": []map[string]interface{}{
			{"source": "FRED", "code": "UNRATE"},
			{"source": "FRED", "code": "FEDFUNDS"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	require.Len(t, body["dates"].([]interface{}), 6)

	series := body["series"].([]interface{})
	require.Len(t, series, 2)
	fedfunds := series[1].(map[string]interface{})
	require.Equal(t, "FRED_FEDFUNDS", fedfunds["label"])

	values := fedfunds["values"].([]interface{})
	require.Len(t, values, 6)
	assert.Nil(t, values[0], "January has no FEDFUNDS observation")
	assert.NotNil(t, values[1])
	assert.Nil(t, values[5], "June has no FEDFUNDS observation")

	pairs := body["pairs"].([]interface{})
	require.Len(t, pairs, 1)
	assert.Equal(t, float64(3), pairs[0].(map[string]interface{})["samples"])
}

func TestAnalysisHandler_Compare_Validation(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	t.Run("single selection rejected", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/analysis/compare", map[string]interface{}{
			"selections": []map[string]interface{}{
				{"source": "FRED", "code": "UNRATE"},
			},
		})
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/analysis/compare", map[string]interface{}{
			"selections": []map[string]interface{}{
				{"source": "FRED", "code": "UNRATE"},
				{"source": "MARS", "code": "UNRATE"},
			},
		})
		assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/analysis/compare", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assertProblem(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
	})
}

func TestAnalysisHandler_LagProfile(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "POST", "/analysis/lag-profile", map[string]interface{}{
		"series_a": map[string]interface{}{"source": "FRED", "code": "UNRATE"},
		"series_b": map[string]interface{}{"source": "FRED", "code": "FEDFUNDS"},
		"max_lag":  3,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "FRED_UNRATE", body["series_a"])
	assert.Equal(t, "FRED_FEDFUNDS", body["series_b"])

	points := body["points"].([]interface{})
	require.Len(t, points, 7)

	first := points[0].(map[string]interface{})
	assert.Equal(t, float64(-3), first["lag"])

	zero := points[3].(map[string]interface{})
	require.Equal(t, float64(0), zero["lag"])
	assert.InDelta(t, 1.0, zero["correlation"].(float64), 1e-9)
}

func TestAnalysisHandler_LagProfile_MissingSeries(t *testing.T) {
	router, paths := newAnalysisRouter(t)
	seedMonthlyPair(t, paths)

	rec := doJSON(t, router, "POST", "/analysis/lag-profile", map[string]interface{}{
		"series_a": map[string]interface{}{"source": "FRED", "code": "UNRATE"},
	})
	assertProblem(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}
