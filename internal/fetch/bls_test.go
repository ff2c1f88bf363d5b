package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/pkg/contracts/domain"
)

func fixedNow(value string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse(domain.DateLayout, value)
		return t
	}
}

func TestBLS_Fetch(t *testing.T) {
	var gotReq blsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/timeseries/data/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{
			"status": "REQUEST_SUCCEEDED",
			"Results": {"series": [{
				"catalog": {"series_title": "All items in U.S. city average, all urban consumers, seasonally adjusted"},
				"data": [
					{"year": "2020", "period": "M13", "value": "258.8"},
					{"year": "2020", "period": "M03", "value": "258.1"},
					{"year": "2020", "period": "M02", "value": "258.7"},
					{"year": "2020", "period": "M01", "value": "257.9"}
				]
			}]}
		}`)
	}))
	defer srv.Close()

	client := NewBLS("test-key", nil)
	client.BaseURL = srv.URL
	client.now = fixedNow("2020-06-15")

	obs, err := client.Fetch(context.Background(), "CUSR0000SA0", "CPI-U (SA)", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"CUSR0000SA0"}, gotReq.SeriesID)
	assert.Equal(t, "2005", gotReq.StartYear)
	assert.Equal(t, "2020", gotReq.EndYear)
	assert.Equal(t, "test-key", gotReq.RegistrationKey)
	assert.True(t, gotReq.Catalog)

	require.Len(t, obs, 3, "the M13 annual average row is not an observation")
	assert.Equal(t, "2020-01-01", obs[0].Date.Format(domain.DateLayout), "rows come back oldest first")
	assert.Equal(t, "2020-03-01", obs[2].Date.Format(domain.DateLayout))
	assert.Equal(t, 257.9, obs[0].Value)
	require.NotEmpty(t, obs[0].Unit)
	assert.LessOrEqual(t, len(obs[0].Unit), maxUnitLen+3, "unit text is truncated from the series title")
}

func TestBLS_FetchSinceFiltersStoredPeriods(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req blsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2020", req.StartYear, "window starts at the resume year")
		fmt.Fprint(w, `{
			"status": "REQUEST_SUCCEEDED",
			"Results": {"series": [{
				"data": [
					{"year": "2020", "period": "M04", "value": "256.2"},
					{"year": "2020", "period": "M03", "value": "258.1"},
					{"year": "2020", "period": "M02", "value": "258.7"}
				]
			}]}
		}`)
	}))
	defer srv.Close()

	client := NewBLS("", nil)
	client.BaseURL = srv.URL
	client.now = fixedNow("2020-06-15")

	since, err := time.Parse(domain.DateLayout, "2020-03-02")
	require.NoError(t, err)
	obs, err := client.Fetch(context.Background(), "CUSR0000SA0", "CPI-U (SA)", since)
	require.NoError(t, err)

	require.Len(t, obs, 1, "periods at or before the resume point are already stored")
	assert.Equal(t, "2020-04-01", obs[0].Date.Format(domain.DateLayout))
}

func TestBLS_WindowClampedToTwentyYears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req blsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2007", req.StartYear)
		assert.Equal(t, "2026", req.EndYear)
		fmt.Fprint(w, `{"status": "REQUEST_SUCCEEDED", "Results": {"series": []}}`)
	}))
	defer srv.Close()

	client := NewBLS("", nil)
	client.BaseURL = srv.URL
	client.now = fixedNow("2026-08-25")

	obs, err := client.Fetch(context.Background(), "CUSR0000SA0", "CPI-U (SA)", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestBLS_RequestRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "REQUEST_NOT_PROCESSED", "message": ["daily threshold reached"]}`)
	}))
	defer srv.Close()

	client := NewBLS("", nil)
	client.BaseURL = srv.URL
	client.now = fixedNow("2020-06-15")

	_, err := client.Fetch(context.Background(), "CUSR0000SA0", "CPI-U (SA)", time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily threshold reached")
}
