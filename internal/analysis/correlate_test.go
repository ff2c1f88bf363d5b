package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign_OuterJoinsOnDate(t *testing.T) {
	a := monthly("a", 2020, time.January, 1, 2, 3)
	b := monthly("b", 2020, time.February, 20, 30, 40) // overlaps Feb+Mar, adds Apr

	table := Align(a, b)

	require.Len(t, table.Dates, 4)
	for i := 1; i < len(table.Dates); i++ {
		assert.True(t, table.Dates[i-1].Before(table.Dates[i]), "dates must ascend")
	}
	assert.Equal(t, []string{"a", "b"}, table.Labels)

	nan := math.NaN()
	sameValues(t, []float64{1, 2, 3, nan}, table.Column("a"))
	sameValues(t, []float64{nan, 20, 30, 40}, table.Column("b"))
	assert.Nil(t, table.Column("missing"))

	back := table.Series("b")
	assert.Equal(t, "b", back.Label)
	assert.Equal(t, table.Dates, back.Dates)
}

func TestAlign_PreservesMissingRows(t *testing.T) {
	a := monthly("a", 2020, time.January, 1, math.NaN(), 3)
	table := Align(a)

	require.Len(t, table.Dates, 3)
	assert.True(t, math.IsNaN(table.Column("a")[1]))
}

func TestCorrelation(t *testing.T) {
	base := monthly("a", 2020, time.January, 1, 2, 3, 4, 5)

	t.Run("perfect positive", func(t *testing.T) {
		b := monthly("b", 2020, time.January, 10, 20, 30, 40, 50)
		corr, ok := Correlation(base, b)
		require.True(t, ok)
		assert.InDelta(t, 1.0, corr, 1e-9)
	})

	t.Run("perfect negative", func(t *testing.T) {
		b := monthly("b", 2020, time.January, 5, 4, 3, 2, 1)
		corr, ok := Correlation(base, b)
		require.True(t, ok)
		assert.InDelta(t, -1.0, corr, 1e-9)
	})

	t.Run("fewer than three paired points is undefined", func(t *testing.T) {
		b := monthly("b", 2020, time.April, 1, 2, 3) // only Apr+May overlap
		_, ok := Correlation(base, b)
		assert.False(t, ok)
	})

	t.Run("missing values shrink the pairing", func(t *testing.T) {
		nan := math.NaN()
		b := monthly("b", 2020, time.January, 10, nan, 30, nan, 50)
		corr, ok := Correlation(base, b)
		require.True(t, ok, "three non-missing pairs remain")
		assert.InDelta(t, 1.0, corr, 1e-9)
	})

	t.Run("constant series has no variance", func(t *testing.T) {
		b := monthly("b", 2020, time.January, 7, 7, 7, 7, 7)
		_, ok := Correlation(base, b)
		assert.False(t, ok)
	})

	t.Run("disjoint dates are undefined", func(t *testing.T) {
		b := monthly("b", 2023, time.January, 1, 2, 3)
		_, ok := Correlation(base, b)
		assert.False(t, ok)
	})
}

func TestLagProfile_CoversFullRangeAscending(t *testing.T) {
	a := monthly("a", 2020, time.January, 1, 2, 3, 4, 5, 6)
	profile := LagProfile(a, a, 3)

	require.Len(t, profile, 7)
	assert.Equal(t, -3, profile[0].Lag)
	assert.Equal(t, 3, profile[6].Lag)
	mid := profile[3]
	assert.Equal(t, 0, mid.Lag)
	require.True(t, mid.Valid)
	assert.InDelta(t, 1.0, mid.Corr, 1e-9)
}

func TestOptimalLag_RecoversKnownDelay(t *testing.T) {
	values := []float64{1, 2, 4, 8, 3, 5, 9, 2, 7, 6, 10, 4}
	a := monthly("a", 2020, time.January, values...)

	// b reports the same movements three rows later.
	delayed := make([]float64, len(values))
	for i := range delayed {
		if i < 3 {
			delayed[i] = math.NaN()
			continue
		}
		delayed[i] = values[i-3]
	}
	b := monthly("b", 2020, time.January, delayed...)

	lag, corr := OptimalLag(a, b, 5)
	assert.Equal(t, -3, lag, "advancing b three rows should line it back up")
	assert.InDelta(t, 1.0, corr, 1e-9)
}

func TestOptimalLag_TieBreaksTowardMostNegativeLag(t *testing.T) {
	// Period-four wave: correlation is +1 at lag 0 and -1 at lags -2 and +2.
	// All three tie on absolute value; the ascending scan keeps -2.
	pattern := []float64{1, 0, -1, 0}
	values := make([]float64, 12)
	for i := range values {
		values[i] = pattern[i%4]
	}
	a := monthly("a", 2020, time.January, values...)
	b := monthly("b", 2020, time.January, values...)

	lag, corr := OptimalLag(a, b, 2)
	assert.Equal(t, -2, lag)
	assert.InDelta(t, -1.0, corr, 1e-9)
}

func TestOptimalLag_NoValidCorrelationAnywhere(t *testing.T) {
	a := monthly("a", 2020, time.January, 1, 2)
	b := monthly("b", 2026, time.January, 1, 2)

	lag, corr := OptimalLag(a, b, 2)
	assert.Equal(t, 0, lag)
	assert.Equal(t, 0.0, corr)
}
