package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// formatValue formats an observation value for CSV output. Missing values
// (NaN) become empty cells; everything else keeps full precision so a
// re-import loses nothing.
func formatValue(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCorr formats a correlation coefficient with 4 decimal places
func formatCorr(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
