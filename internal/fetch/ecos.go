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

// DefaultECOSBaseURL is the production Bank of Korea ECOS API root.
const DefaultECOSBaseURL = "https://ecos.bok.or.kr/api"

// ecosPageSize covers full daily history in one request; ECOS pages by row
// range rather than cursor.
const ecosPageSize = 10000

// ECOS fetches observations from the Bank of Korea ECOS statistics API.
type ECOS struct {
	restClient

	// BaseURL may be pointed at a test server before first use.
	BaseURL string
	apiKey  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewECOS builds an ECOS client with the given API key.
func NewECOS(apiKey string, logger *slog.Logger) *ECOS {
	if logger == nil {
		logger = slog.Default()
	}
	return &ECOS{
		restClient: newRESTClient(),
		BaseURL:    DefaultECOSBaseURL,
		apiKey:     apiKey,
		logger:     logger,
		now:        time.Now,
	}
}

func (e *ECOS) Source() string { return catalog.SourceECOS }

// SplitECOSCode splits a combined "STAT/ITEM" indicator code into its
// statistic table and item parts.
func SplitECOSCode(code string) (stat, item string, err error) {
	parts := strings.SplitN(code, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("ecos code %q must have the form STAT/ITEM", code)
	}
	return parts[0], parts[1], nil
}

// cycleFor maps a statistic table to its publication cycle. Rate and FX
// tables publish daily, national accounts quarterly, everything else
// monthly.
func cycleFor(stat string) string {
	switch {
	case strings.HasPrefix(stat, "731Y"), strings.HasPrefix(stat, "722Y"), strings.HasPrefix(stat, "817Y"):
		return "D"
	case strings.HasPrefix(stat, "104Y"):
		return "Q"
	default:
		return "M"
	}
}

// formatPeriod renders a date in the period notation the cycle expects.
func formatPeriod(cycle string, t time.Time) string {
	switch cycle {
	case "D":
		return t.Format("20060102")
	case "M":
		return t.Format("200601")
	case "Q":
		return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("2006")
	}
}

// parsePeriod is the inverse of formatPeriod, tolerant of the quarter
// notations ECOS has used ("2020Q1" and "20201" both mean Q1 2020).
func parsePeriod(cycle, s string) (time.Time, error) {
	switch cycle {
	case "D":
		return time.Parse("20060102", s)
	case "M":
		return time.Parse("200601", s)
	case "Q":
		if len(s) < 5 {
			return time.Time{}, fmt.Errorf("quarter period %q too short", s)
		}
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			return time.Time{}, fmt.Errorf("bad quarter year in %q", s)
		}
		quarter := int(s[len(s)-1] - '0')
		if quarter < 1 || quarter > 4 {
			return time.Time{}, fmt.Errorf("bad quarter in %q", s)
		}
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Parse("2006", s)
	}
}

type ecosRow struct {
	Time      string `json:"TIME"`
	DataValue string `json:"DATA_VALUE"`
	UnitName  string `json:"UNIT_NAME"`
}

type ecosResponse struct {
	StatisticSearch struct {
		ListTotalCount int       `json:"list_total_count"`
		Row            []ecosRow `json:"row"`
	} `json:"StatisticSearch"`
	Result struct {
		Code    string `json:"CODE"`
		Message string `json:"MESSAGE"`
	} `json:"RESULT"`
}

// Fetch requests the period range from since through today. The combined
// code selects both the statistic table and the item within it; the table
// prefix decides the publication cycle and with it the period notation.
// ECOS reports a missing reading as "-"; those rows are dropped.
func (e *ECOS) Fetch(ctx context.Context, code, description string, since time.Time) ([]domain.Observation, error) {
	stat, item, err := SplitECOSCode(code)
	if err != nil {
		return nil, err
	}

	cycle := cycleFor(stat)
	start := defaultSince(since)
	url := fmt.Sprintf("%s/StatisticSearch/%s/json/kr/1/%d/%s/%s/%s/%s/%s",
		e.BaseURL, e.apiKey, ecosPageSize, stat, cycle,
		formatPeriod(cycle, start), formatPeriod(cycle, e.now()), item)

	var resp ecosResponse
	if err := e.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("ecos %s: %w", code, err)
	}
	if len(resp.StatisticSearch.Row) == 0 {
		// INFO-200 is the no-matching-data outcome, not a failure.
		if resp.Result.Code != "" && resp.Result.Code != "INFO-200" {
			return nil, fmt.Errorf("ecos %s: %s: %s", code, resp.Result.Code, resp.Result.Message)
		}
		return nil, nil
	}

	unit := truncate(resp.StatisticSearch.Row[0].UnitName, maxUnitLen)

	var out []domain.Observation
	for _, row := range resp.StatisticSearch.Row {
		if row.DataValue == "" || row.DataValue == "-" {
			continue
		}
		date, err := parsePeriod(cycle, row.Time)
		if err != nil {
			e.logger.Warn("dropping observation with bad period",
				slog.String("source", e.Source()),
				slog.String("code", code),
				slog.String("period", row.Time))
			continue
		}
		// Period-granular request starts can round down past the resume
		// point; drop anything already stored.
		if !since.IsZero() && date.Before(since) {
			continue
		}
		value, err := strconv.ParseFloat(row.DataValue, 64)
		if err != nil {
			e.logger.Warn("dropping non-numeric observation",
				slog.String("source", e.Source()),
				slog.String("code", code),
				slog.String("value", row.DataValue))
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
