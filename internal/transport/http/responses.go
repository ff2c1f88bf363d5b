package http

import (
	"math"
	"time"

	"macrocli/internal/analysis"
	"macrocli/internal/services"
	"macrocli/pkg/contracts/domain"
)

// SeriesResponse is the wire form of one series. Values are pointers because
// JSON cannot encode NaN; a missing observation becomes null. Change is the
// percent change between the last two non-missing values, null when fewer
// than two remain or the earlier value is zero.
type SeriesResponse struct {
	Source    string     `json:"source"`
	Code      string     `json:"code"`
	Name      string     `json:"name,omitempty"`
	Unit      string     `json:"unit,omitempty"`
	Transform string     `json:"transform,omitempty"`
	Shift     int        `json:"shift,omitempty"`
	Dates     []string   `json:"dates"`
	Values    []*float64 `json:"values"`
	Change    *float64   `json:"change"`
}

func newSeriesResponse(result *services.SeriesResult) *SeriesResponse {
	resp := &SeriesResponse{
		Source:    result.Source,
		Code:      result.Code,
		Name:      result.Name,
		Unit:      result.Unit,
		Transform: string(result.Transform),
		Shift:     result.Shift,
		Dates:     datesToStrings(result.Series.Dates),
		Values:    valuesToPointers(result.Series.Values),
	}
	if result.ChangeDefined {
		change := result.Change
		resp.Change = &change
	}
	return resp
}

// CompareColumn is one aligned series column.
type CompareColumn struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// PairStatsResponse is one series pair's statistics. Correlation is null
// when the pair shares too few dates at zero lag; the lag fields stand on
// their own since a pair can overlap only after shifting.
type PairStatsResponse struct {
	SeriesA        string   `json:"series_a"`
	SeriesB        string   `json:"series_b"`
	Samples        int      `json:"samples"`
	Correlation    *float64 `json:"correlation"`
	OptimalLag     int      `json:"optimal_lag"`
	LagCorrelation float64  `json:"lag_correlation"`
}

// CompareResponse is the aligned table plus pairwise statistics.
type CompareResponse struct {
	Dates  []string            `json:"dates"`
	Series []CompareColumn     `json:"series"`
	Pairs  []PairStatsResponse `json:"pairs"`
}

func newCompareResponse(result *services.CompareResult) *CompareResponse {
	resp := &CompareResponse{
		Dates:  datesToStrings(result.Table.Dates),
		Series: make([]CompareColumn, len(result.Table.Labels)),
		Pairs:  make([]PairStatsResponse, len(result.Pairs)),
	}
	for j, label := range result.Table.Labels {
		resp.Series[j] = CompareColumn{
			Label:  label,
			Values: valuesToPointers(result.Table.Columns[j]),
		}
	}
	for i, pair := range result.Pairs {
		p := PairStatsResponse{
			SeriesA:        pair.SeriesA,
			SeriesB:        pair.SeriesB,
			Samples:        pair.Samples,
			OptimalLag:     pair.OptimalLag,
			LagCorrelation: pair.LagCorrelation,
		}
		if pair.Defined {
			corr := pair.Correlation
			p.Correlation = &corr
		}
		resp.Pairs[i] = p
	}
	return resp
}

// LagPointResponse is the correlation at one candidate lag.
type LagPointResponse struct {
	Lag         int      `json:"lag"`
	Correlation *float64 `json:"correlation"`
}

func newLagProfileResponse(points []analysis.LagPoint) []LagPointResponse {
	out := make([]LagPointResponse, len(points))
	for i, p := range points {
		resp := LagPointResponse{Lag: p.Lag}
		if p.Valid {
			corr := p.Corr
			resp.Correlation = &corr
		}
		out[i] = resp
	}
	return out
}

func datesToStrings(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(domain.DateLayout)
	}
	return out
}

func valuesToPointers(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}
