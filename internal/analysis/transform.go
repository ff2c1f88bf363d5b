package analysis

import (
	"math"

	"macrocli/pkg/contracts/domain"
)

// Transform maps a series onto the requested analytical basis. Raw returns a
// copy unchanged; Indexed rescales so the first non-missing value becomes
// 100; the period-change modes produce percent change across a fixed row
// offset (1, 3, or 12). An unknown mode behaves as Raw.
func Transform(s Series, mode domain.TransformMode) Series {
	switch mode {
	case domain.TransformIndexed:
		return indexed(s)
	case domain.TransformMoM, domain.TransformQoQ, domain.TransformYoY:
		return Change(s, mode.Periods())
	default:
		return s.Clone()
	}
}

// indexed divides every value by the first non-missing value and multiplies
// by 100. A first value of exactly zero cannot anchor an index; the series
// passes through unscaled in that case.
func indexed(s Series) Series {
	base := math.NaN()
	for i := range s.Values {
		if !s.IsMissing(i) {
			base = s.Values[i]
			break
		}
	}
	if math.IsNaN(base) || base == 0 {
		return s.Clone()
	}
	out := s.Clone()
	for i := range out.Values {
		if !out.IsMissing(i) {
			out.Values[i] = out.Values[i] / base * 100
		}
	}
	return out
}

// Change computes percent change against the value `periods` rows earlier:
// (v[i] - v[i-periods]) / v[i-periods] * 100. The offset counts rows of the
// ordered sequence, not calendar periods. Positions with no prior row, a
// missing value on either side, or a zero base are undefined and come back
// as NaN.
func Change(s Series, periods int) Series {
	out := s.Clone()
	if periods <= 0 {
		return out
	}
	for i := range out.Values {
		out.Values[i] = math.NaN()
		if i < periods || s.IsMissing(i) || s.IsMissing(i-periods) {
			continue
		}
		prev := s.Values[i-periods]
		if prev == 0 {
			continue
		}
		out.Values[i] = (s.Values[i] - prev) / prev * 100
	}
	return out
}

// Shift moves values across rows while dates stay put: positive rows delay
// the series (the value observed at row i shows up at row i+rows), negative
// rows advance it. Vacated rows are NaN and values shifted past either end
// are discarded. The series length never changes.
func Shift(s Series, rows int) Series {
	out := s.Clone()
	if rows == 0 {
		return out
	}
	n := len(out.Values)
	for i := 0; i < n; i++ {
		src := i - rows
		if src < 0 || src >= n {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = s.Values[src]
	}
	return out
}

// RecentChange returns the percent change between the last two non-missing
// values of the series, the headline "latest move" number. It is undefined
// (ok=false) when fewer than two non-missing values exist or the earlier of
// the pair is zero. The denominator uses the absolute previous value so the
// sign of the result always reflects the direction of the move.
func RecentChange(s Series) (float64, bool) {
	last := math.NaN()
	prev := math.NaN()
	for i := s.Len() - 1; i >= 0; i-- {
		if s.IsMissing(i) {
			continue
		}
		if math.IsNaN(last) {
			last = s.Values[i]
			continue
		}
		prev = s.Values[i]
		break
	}
	if math.IsNaN(last) || math.IsNaN(prev) || prev == 0 {
		return 0, false
	}
	return (last - prev) / math.Abs(prev) * 100, true
}
