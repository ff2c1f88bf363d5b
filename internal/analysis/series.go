// Package analysis implements the comparative analytics engine: single-series
// transforms (indexing, period-over-period change, row shifts), date alignment
// of heterogeneous series, Pearson correlation, and the optimal-lag search.
//
// Every operation is a pure function over in-memory data. Missing values are
// represented as NaN throughout; operations preserve them instead of raising,
// and degenerate numeric states (zero base, too few samples) come back as
// explicit "undefined" results the caller branches on.
package analysis

import (
	"math"
	"sort"
	"time"

	"macrocli/pkg/contracts/domain"
)

// Series is one indicator's ordered observations: parallel Dates and Values
// slices of equal length, dates strictly ascending and unique. Values may be
// NaN where the indicator has no reading for a date.
type Series struct {
	Label  string
	Dates  []time.Time
	Values []float64
}

// FromObservations builds a Series from raw observations. Input order does
// not matter: records are sorted by date and, when a date repeats, the last
// record in input order wins.
func FromObservations(label string, obs []domain.Observation) Series {
	byDate := make(map[time.Time]float64, len(obs))
	for _, o := range obs {
		if o.Date.IsZero() {
			continue
		}
		byDate[o.Date] = o.Value
	}
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = byDate[d]
	}
	return Series{Label: label, Dates: dates, Values: values}
}

// Len returns the number of rows in the series.
func (s Series) Len() int { return len(s.Dates) }

// IsMissing reports whether row i holds no value.
func (s Series) IsMissing(i int) bool { return math.IsNaN(s.Values[i]) }

// Clone returns a deep copy sharing no backing arrays with s.
func (s Series) Clone() Series {
	out := Series{
		Label:  s.Label,
		Dates:  make([]time.Time, len(s.Dates)),
		Values: make([]float64, len(s.Values)),
	}
	copy(out.Dates, s.Dates)
	copy(out.Values, s.Values)
	return out
}

// DropMissing returns a copy of s with all NaN rows removed.
func (s Series) DropMissing() Series {
	out := Series{Label: s.Label}
	for i := range s.Dates {
		if s.IsMissing(i) {
			continue
		}
		out.Dates = append(out.Dates, s.Dates[i])
		out.Values = append(out.Values, s.Values[i])
	}
	return out
}

// FilterRange returns the rows of s with from <= date <= to. A zero from or
// to leaves that side unbounded.
func (s Series) FilterRange(from, to time.Time) Series {
	out := Series{Label: s.Label}
	for i, d := range s.Dates {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, s.Values[i])
	}
	return out
}

// valueAt returns the value on an exact date, with ok=false when the series
// has no row or a missing value there.
func (s Series) valueAt(d time.Time) (float64, bool) {
	i := sort.Search(len(s.Dates), func(i int) bool { return !s.Dates[i].Before(d) })
	if i >= len(s.Dates) || !s.Dates[i].Equal(d) || s.IsMissing(i) {
		return 0, false
	}
	return s.Values[i], true
}
