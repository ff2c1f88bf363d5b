package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/pkg/contracts/domain"
)

// monthly builds a series of consecutive monthly rows starting at the given
// year and month.
func monthly(label string, year int, month time.Month, values ...float64) Series {
	s := Series{Label: label}
	for i, v := range values {
		s.Dates = append(s.Dates, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0))
		s.Values = append(s.Values, v)
	}
	return s
}

// sameValues asserts element-wise equality treating NaN as equal to NaN.
func sameValues(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %g", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestTransform_Indexed(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name  string
		in    []float64
		want  []float64
	}{
		{"rescales to base 100", []float64{50, 100, 150}, []float64{100, 200, 300}},
		{"first non-missing anchors the base", []float64{nan, 50, 75}, []float64{nan, 100, 150}},
		{"zero base passes through raw", []float64{0, 5, 10}, []float64{0, 5, 10}},
		{"all missing passes through", []float64{nan, nan}, []float64{nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := monthly("x", 2020, time.January, tt.in...)
			out := Transform(in, domain.TransformIndexed)
			sameValues(t, tt.want, out.Values)
			assert.Equal(t, in.Dates, out.Dates)
		})
	}
}

func TestTransform_RawAndUnknownModesCopyInput(t *testing.T) {
	in := monthly("x", 2020, time.January, 1, 2, 3)

	for _, mode := range []domain.TransformMode{domain.TransformRaw, domain.TransformMode("bogus")} {
		out := Transform(in, mode)
		sameValues(t, in.Values, out.Values)
		out.Values[0] = 99
		assert.Equal(t, 1.0, in.Values[0], "transform output must not alias the input")
	}
}

func TestChange_OneStep(t *testing.T) {
	in := monthly("x", 2020, time.January, 100, 110, 121)
	out := Change(in, 1)

	nan := math.NaN()
	sameValues(t, []float64{nan, 10, 10}, out.Values)
}

func TestChange_EdgeCases(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name    string
		in      []float64
		periods int
		want    []float64
	}{
		{"twelve step needs thirteen rows", []float64{100, 110}, 12, []float64{nan, nan}},
		{"zero base is undefined", []float64{0, 5, 10}, 1, []float64{nan, nan, 100}},
		{"missing on either side is undefined", []float64{100, nan, 120}, 1, []float64{nan, nan, nan}},
		{"three step", []float64{100, 1, 1, 150}, 3, []float64{nan, nan, nan, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Change(monthly("x", 2020, time.January, tt.in...), tt.periods)
			sameValues(t, tt.want, out.Values)
		})
	}
}

func TestTransform_ChangeModesUsePeriodOffsets(t *testing.T) {
	values := make([]float64, 14)
	for i := range values {
		values[i] = float64(100 + i)
	}
	in := monthly("x", 2020, time.January, values...)

	mom := Transform(in, domain.TransformMoM)
	assert.InDelta(t, (101.0-100.0)/100.0*100, mom.Values[1], 1e-9)

	qoq := Transform(in, domain.TransformQoQ)
	assert.True(t, math.IsNaN(qoq.Values[2]))
	assert.InDelta(t, (103.0-100.0)/100.0*100, qoq.Values[3], 1e-9)

	yoy := Transform(in, domain.TransformYoY)
	assert.True(t, math.IsNaN(yoy.Values[11]))
	assert.InDelta(t, (112.0-100.0)/100.0*100, yoy.Values[12], 1e-9)
}

func TestShift(t *testing.T) {
	nan := math.NaN()
	in := monthly("x", 2020, time.January, 1, 2, 3, 4)

	tests := []struct {
		name string
		rows int
		want []float64
	}{
		{"zero is a copy", 0, []float64{1, 2, 3, 4}},
		{"positive delays", 1, []float64{nan, 1, 2, 3}},
		{"negative advances", -2, []float64{3, 4, nan, nan}},
		{"past either end clears everything", 5, []float64{nan, nan, nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Shift(in, tt.rows)
			sameValues(t, tt.want, out.Values)
			assert.Equal(t, in.Dates, out.Dates, "shift moves values, not dates")
		})
	}
}

func TestRecentChange(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		in   []float64
		want float64
		ok   bool
	}{
		{"last two values", []float64{95, 100, 110}, 10, true},
		{"skips trailing missing", []float64{100, 110, nan}, 10, true},
		{"skips interior missing", []float64{100, nan, 110}, 10, true},
		{"negative base keeps direction", []float64{-100, -50}, 50, true},
		{"zero base undefined", []float64{0, 10}, 0, false},
		{"single value undefined", []float64{42}, 0, false},
		{"all missing undefined", []float64{nan, nan}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecentChange(monthly("x", 2020, time.January, tt.in...))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestSeries_DropMissingAndFilterRange(t *testing.T) {
	nan := math.NaN()
	in := monthly("x", 2020, time.January, 1, nan, 3, 4)

	dropped := in.DropMissing()
	require.Equal(t, 3, dropped.Len())
	sameValues(t, []float64{1, 3, 4}, dropped.Values)

	from := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	window := in.FilterRange(from, to)
	require.Equal(t, 2, window.Len())
	assert.Equal(t, from, window.Dates[0])
	assert.Equal(t, to, window.Dates[1])

	open := in.FilterRange(time.Time{}, time.Time{})
	assert.Equal(t, in.Len(), open.Len())
}

func TestFromObservations_SortsAndDeduplicates(t *testing.T) {
	jan := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	s := FromObservations("UNRATE", []domain.Observation{
		{Date: feb, Indicator: "UNRATE", Value: 3.5},
		{Date: jan, Indicator: "UNRATE", Value: 3.6},
		{Date: feb, Indicator: "UNRATE", Value: 3.4}, // revision, last wins
	})

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "UNRATE", s.Label)
	assert.Equal(t, []time.Time{jan, feb}, s.Dates)
	sameValues(t, []float64{3.6, 3.4}, s.Values)
}
