package domain

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the canonical wire/storage format for observation dates.
const DateLayout = "2006-01-02"

// Observation is the atomic fact collected from a provider: one value for one
// indicator on one calendar date. The natural key is (Indicator, Date); a
// provider revision is modeled as a new Observation with the same key that
// supersedes the stored one at merge time. Observations are never updated in
// place.
type Observation struct {
	Date        time.Time `json:"date" db:"date" validate:"required"`
	Indicator   string    `json:"indicator" db:"indicator" validate:"required"`
	Value       float64   `json:"value" db:"value"`
	Description string    `json:"description,omitempty" db:"description"`
	Unit        string    `json:"unit,omitempty" db:"unit"`
}

// ObservationKey is the comparable natural key of an Observation. Dates are
// normalized to their calendar day so that zone or monotonic-clock differences
// never split a key.
type ObservationKey struct {
	Indicator string
	Date      string // DateLayout
}

// Key returns the natural key of the observation.
func (o Observation) Key() ObservationKey {
	return ObservationKey{Indicator: o.Indicator, Date: o.Date.Format(DateLayout)}
}

// IsValid reports whether the observation carries the minimum required
// fields and a usable value. Records failing this check are dropped by the
// merge step rather than aborting a collection run.
func (o Observation) IsValid() bool {
	return o.Indicator != "" && !o.Date.IsZero() && !math.IsNaN(o.Value)
}

// String implements fmt.Stringer for log output.
func (o Observation) String() string {
	return fmt.Sprintf("%s@%s=%g", o.Indicator, o.Date.Format(DateLayout), o.Value)
}

// TransformMode selects the analytical basis a series is mapped onto before
// comparison. The period-over-period modes operate on row offsets in the
// ordered sequence, not calendar distance; a series with gaps therefore
// compares values N rows apart rather than N months apart. That behavior is
// intentional and saved comparisons depend on it.
type TransformMode string

const (
	TransformRaw     TransformMode = "Raw Data"
	TransformIndexed TransformMode = "Indexed (Base=100)"
	TransformMoM     TransformMode = "MoM"
	TransformQoQ     TransformMode = "QoQ"
	TransformYoY     TransformMode = "YoY"
)

// TransformModes lists every supported mode in menu order.
var TransformModes = []TransformMode{
	TransformRaw,
	TransformIndexed,
	TransformMoM,
	TransformQoQ,
	TransformYoY,
}

// Valid reports whether the mode is one of the supported transforms.
func (m TransformMode) Valid() bool {
	for _, known := range TransformModes {
		if m == known {
			return true
		}
	}
	return false
}

// Periods returns the row offset a period-over-period mode compares across,
// or 0 for modes that are not period changes.
func (m TransformMode) Periods() int {
	switch m {
	case TransformMoM:
		return 1
	case TransformQoQ:
		return 3
	case TransformYoY:
		return 12
	}
	return 0
}

// IsPercentage reports whether the transformed values are percent changes.
// The presentation layer uses this to suffix values with "%".
func (m TransformMode) IsPercentage() bool {
	return m.Periods() > 0
}

// SeriesSelection identifies one series within an analysis request: which
// provider it comes from, which indicator, and how it is transformed and
// shifted before alignment. Shift is a row offset; positive values delay the
// series (lag), negative values advance it (lead).
type SeriesSelection struct {
	Source    string        `json:"source" db:"source" validate:"required,oneof=FRED ECOS BLS"`
	Code      string        `json:"code" db:"code" validate:"required"`
	Transform TransformMode `json:"transform,omitempty" db:"transform"`
	Shift     int           `json:"shift,omitempty" db:"shift" validate:"min=-24,max=24"`
}

// Label returns the display key used for the selection's column in aligned
// tables, unique across sources.
func (s SeriesSelection) Label() string {
	return s.Source + "_" + s.Code
}

// SourceSummary reports the outcome of one source's collection run. Error is
// set when the whole source failed; FailedCodes lists indicators that failed
// individually while the rest of the source went through.
type SourceSummary struct {
	Source       string        `json:"source"`
	Indicators   int           `json:"indicators"`
	Fetched      int           `json:"fetched"`
	Merged       int           `json:"merged"`
	Sheets       int           `json:"sheets"`
	Duration     time.Duration `json:"duration"`
	FailedCodes  []string      `json:"failed_codes,omitempty"`
	WorkbookPath string        `json:"workbook_path,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Failed reports whether the source produced no usable result.
func (s SourceSummary) Failed() bool { return s.Error != "" }

// CollectionResult aggregates the per-source summaries of a collection run.
type CollectionResult struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Sources   []SourceSummary `json:"sources"`
}
