package analysis

import (
	"math"
	"sort"
	"time"
)

// Analysis defaults. Lag search and row shifts are bounded to two years of
// monthly rows; correlations on fewer than three paired points are noise and
// reported as undefined.
const (
	MaxLagPeriods            = 24
	MinSamplesForCorrelation = 3
)

// Table is N series outer-joined on date: one row per date in the union of
// all inputs, ascending, with NaN where a series has no value. Columns is
// column-major and parallel to Labels.
type Table struct {
	Dates   []time.Time
	Labels  []string
	Columns [][]float64
}

// Column returns the values of the labeled column, or nil if absent.
func (t Table) Column(label string) []float64 {
	for j, l := range t.Labels {
		if l == label {
			return t.Columns[j]
		}
	}
	return nil
}

// Series extracts one column, with the table's date axis, as a Series.
func (t Table) Series(label string) Series {
	return Series{Label: label, Dates: t.Dates, Values: t.Column(label)}
}

// Align outer-joins the given series on date. Every date observed by any
// input becomes a row; a series without a value on a row contributes NaN.
func Align(series ...Series) Table {
	dateSet := make(map[time.Time]bool)
	for _, s := range series {
		for _, d := range s.Dates {
			dateSet[d] = true
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	t := Table{
		Dates:   dates,
		Labels:  make([]string, len(series)),
		Columns: make([][]float64, len(series)),
	}
	for j, s := range series {
		t.Labels[j] = s.Label
		col := make([]float64, len(dates))
		for i, d := range dates {
			if v, ok := s.valueAt(d); ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		t.Columns[j] = col
	}
	return t
}

// Correlation returns the Pearson correlation of two series over the dates
// where both have a value. It is undefined (ok=false) with fewer than
// MinSamplesForCorrelation paired points or when either paired sample has no
// variance.
func Correlation(a, b Series) (float64, bool) {
	var xs, ys []float64
	for i, d := range a.Dates {
		if a.IsMissing(i) {
			continue
		}
		if v, ok := b.valueAt(d); ok {
			xs = append(xs, a.Values[i])
			ys = append(ys, v)
		}
	}
	if len(xs) < MinSamplesForCorrelation {
		return 0, false
	}
	return pearson(xs, ys)
}

func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// LagPoint is the correlation of a at one candidate lag of b.
type LagPoint struct {
	Lag   int
	Corr  float64
	Valid bool
}

// LagProfile computes Correlation(a, Shift(b, lag)) for every lag in
// [-maxLag, +maxLag] inclusive, ascending. A non-positive maxLag falls back
// to MaxLagPeriods.
func LagProfile(a, b Series, maxLag int) []LagPoint {
	if maxLag <= 0 {
		maxLag = MaxLagPeriods
	}
	profile := make([]LagPoint, 0, 2*maxLag+1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		corr, ok := Correlation(a, Shift(b, lag))
		profile = append(profile, LagPoint{Lag: lag, Corr: corr, Valid: ok})
	}
	return profile
}

// OptimalLag scans [-maxLag, +maxLag] for the lag of b whose correlation
// with a has the greatest absolute value, and returns that lag with its
// correlation. Lags with undefined correlation are never selected; among
// equal absolute correlations the scan order makes the most negative lag
// win. When no lag in the range yields a defined correlation the result is
// (0, 0).
func OptimalLag(a, b Series, maxLag int) (int, float64) {
	bestLag := 0
	bestCorr := 0.0
	bestAbs := -1.0
	for _, p := range LagProfile(a, b, maxLag) {
		if !p.Valid {
			continue
		}
		if abs := math.Abs(p.Corr); abs > bestAbs {
			bestLag, bestCorr, bestAbs = p.Lag, p.Corr, abs
		}
	}
	if bestAbs < 0 {
		return 0, 0
	}
	return bestLag, bestCorr
}
