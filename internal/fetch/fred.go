package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"macrocli/internal/catalog"
	"macrocli/pkg/contracts/domain"
)

// DefaultFREDBaseURL is the production FRED API root.
const DefaultFREDBaseURL = "https://api.stlouisfed.org/fred"

// FRED fetches observations from the St. Louis Fed FRED API.
type FRED struct {
	restClient

	// BaseURL may be pointed at a test server before first use.
	BaseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewFRED builds a FRED client with the given API key.
func NewFRED(apiKey string, logger *slog.Logger) *FRED {
	if logger == nil {
		logger = slog.Default()
	}
	return &FRED{
		restClient: newRESTClient(),
		BaseURL:    DefaultFREDBaseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (f *FRED) Source() string { return catalog.SourceFRED }

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredObservationsResponse struct {
	Observations []fredObservation `json:"observations"`
}

type fredSeriesResponse struct {
	Seriess []struct {
		Title string `json:"title"`
		Units string `json:"units"`
	} `json:"seriess"`
}

// Fetch requests observations starting at since (inclusive). FRED reports a
// missing reading as the literal value "."; those rows are dropped.
func (f *FRED) Fetch(ctx context.Context, code, description string, since time.Time) ([]domain.Observation, error) {
	start := defaultSince(since)

	q := url.Values{}
	q.Set("series_id", code)
	q.Set("api_key", f.apiKey)
	q.Set("file_type", "json")
	q.Set("observation_start", start.Format(domain.DateLayout))

	var resp fredObservationsResponse
	if err := f.getJSON(ctx, f.BaseURL+"/series/observations?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fred %s: %w", code, err)
	}

	unit := f.seriesUnit(ctx, code)

	var out []domain.Observation
	for _, o := range resp.Observations {
		date, err := time.Parse(domain.DateLayout, o.Date)
		if err != nil {
			f.logger.Warn("dropping observation with bad date",
				slog.String("source", f.Source()),
				slog.String("code", code),
				slog.String("date", o.Date))
			continue
		}
		if o.Value == "." {
			continue
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			f.logger.Warn("dropping non-numeric observation",
				slog.String("source", f.Source()),
				slog.String("code", code),
				slog.String("value", o.Value))
			continue
		}
		out = append(out, domain.Observation{
			Date:        date,
			Indicator:   code,
			Value:       value,
			Description: description,
			Unit:        unit,
		})
	}
	return out, nil
}

// seriesUnit looks up the series metadata for its unit label. Metadata
// failures degrade to an empty unit; they never fail the fetch.
func (f *FRED) seriesUnit(ctx context.Context, code string) string {
	q := url.Values{}
	q.Set("series_id", code)
	q.Set("api_key", f.apiKey)
	q.Set("file_type", "json")

	var resp fredSeriesResponse
	if err := f.getJSON(ctx, f.BaseURL+"/series?"+q.Encode(), &resp); err != nil {
		f.logger.Warn("series metadata lookup failed",
			slog.String("source", f.Source()),
			slog.String("code", code),
			slog.String("error", err.Error()))
		return ""
	}
	if len(resp.Seriess) == 0 {
		return ""
	}
	return truncate(resp.Seriess[0].Units, maxUnitLen)
}
