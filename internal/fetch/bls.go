package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"macrocli/internal/catalog"
	"macrocli/pkg/contracts/domain"
)

// DefaultBLSBaseURL is the production BLS public API v2 root.
const DefaultBLSBaseURL = "https://api.bls.gov/publicAPI/v2"

const (
	// blsDefaultStartYear starts history when a series has never been
	// collected. The public API caps one request at a 20 year window.
	blsDefaultStartYear = 2005
	blsMaxWindowYears   = 20

	blsStatusSucceeded = "REQUEST_SUCCEEDED"
)

// BLS fetches observations from the Bureau of Labor Statistics timeseries
// API.
type BLS struct {
	restClient

	// BaseURL may be pointed at a test server before first use.
	BaseURL string
	apiKey  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewBLS builds a BLS client. The registration key is optional; without one
// the API enforces tighter quotas and omits series catalog metadata.
func NewBLS(apiKey string, logger *slog.Logger) *BLS {
	if logger == nil {
		logger = slog.Default()
	}
	return &BLS{
		restClient: newRESTClient(),
		BaseURL:    DefaultBLSBaseURL,
		apiKey:     apiKey,
		logger:     logger,
		now:        time.Now,
	}
}

func (b *BLS) Source() string { return catalog.SourceBLS }

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
	Catalog         bool     `json:"catalog"`
	Calculations    bool     `json:"calculations"`
	AnnualAverage   bool     `json:"annualaverage"`
}

type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			Catalog struct {
				SeriesTitle string `json:"series_title"`
			} `json:"catalog"`
			Data []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Fetch requests the year window covering since through the current year and
// keeps monthly rows dated strictly after since. Only periods M01 through
// M12 are observations; M13 is the annual average and is skipped.
func (b *BLS) Fetch(ctx context.Context, code, description string, since time.Time) ([]domain.Observation, error) {
	endYear := b.now().Year()
	startYear := blsDefaultStartYear
	if !since.IsZero() {
		startYear = since.Year()
	}
	if endYear-startYear >= blsMaxWindowYears {
		startYear = endYear - blsMaxWindowYears + 1
	}

	payload := blsRequest{
		SeriesID:        []string{code},
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(endYear),
		RegistrationKey: b.apiKey,
		Catalog:         true,
		Calculations:    true,
		AnnualAverage:   false,
	}

	var resp blsResponse
	if err := b.postJSON(ctx, b.BaseURL+"/timeseries/data/", payload, &resp); err != nil {
		return nil, fmt.Errorf("bls %s: %w", code, err)
	}
	if resp.Status != blsStatusSucceeded {
		return nil, fmt.Errorf("bls %s: request rejected: %s", code, strings.Join(resp.Message, "; "))
	}
	if len(resp.Results.Series) == 0 {
		return nil, nil
	}

	series := resp.Results.Series[0]
	unit := truncate(series.Catalog.SeriesTitle, maxUnitLen)

	var out []domain.Observation
	for _, row := range series.Data {
		date, ok := b.parsePeriod(code, row.Year, row.Period)
		if !ok {
			continue
		}
		if !since.IsZero() && !date.After(since) {
			continue
		}
		value, err := strconv.ParseFloat(row.Value, 64)
		if err != nil {
			b.logger.Warn("dropping non-numeric observation",
				slog.String("source", b.Source()),
				slog.String("code", code),
				slog.String("value", row.Value))
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
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (b *BLS) parsePeriod(code, year, period string) (time.Time, bool) {
	if len(period) != 3 || period[0] != 'M' {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(period[1:])
	if err != nil || month < 1 || month > 12 {
		// M13 is the annual average row, not a monthly observation.
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		b.logger.Warn("dropping observation with bad year",
			slog.String("source", b.Source()),
			slog.String("code", code),
			slog.String("year", year))
		return time.Time{}, false
	}
	return time.Date(y, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}
