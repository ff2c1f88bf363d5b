package exporter

import (
	"errors"

	"macrocli/internal/analysis"
	"macrocli/internal/config"
	"macrocli/pkg/contracts/domain"
)

// TableExporter writes comparison tables and their pair statistics to CSV.
type TableExporter struct {
	csvWriter *CSVWriter
	bom       bool
}

// NewTableExporter creates a new comparison table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{
		csvWriter: NewCSVWriter(paths),
		bom:       true,
	}
}

// SetBOM toggles the UTF-8 BOM prefix on exported files. On by default so
// Excel opens the files with the right encoding.
func (e *TableExporter) SetBOM(enabled bool) {
	e.bom = enabled
}

// PairStat is one series pair's comparison summary as written to CSV.
type PairStat struct {
	SeriesA        string
	SeriesB        string
	Samples        int
	Correlation    float64
	Defined        bool
	OptimalLag     int
	LagCorrelation float64
}

// ExportComparisonTable writes an aligned table as one CSV: a date column
// followed by one column per series, rows ascending by date, missing values
// as empty cells.
func (e *TableExporter) ExportComparisonTable(table analysis.Table, filename string) error {
	if len(table.Labels) == 0 {
		return errors.New("comparison table has no series")
	}

	headers := make([]string, 0, len(table.Labels)+1)
	headers = append(headers, "date")
	headers = append(headers, table.Labels...)

	records := make([][]string, 0, len(table.Dates))
	for i, d := range table.Dates {
		row := make([]string, 0, len(table.Labels)+1)
		row = append(row, d.Format(domain.DateLayout))
		for _, col := range table.Columns {
			row = append(row, formatValue(col[i]))
		}
		records = append(records, row)
	}

	return e.csvWriter.WriteCSV(filename, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: e.bom,
	})
}

// ExportPairStats writes per-pair correlation and lag results. An undefined
// correlation leaves its cells empty rather than writing a fake zero.
func (e *TableExporter) ExportPairStats(stats []PairStat, filename string) error {
	headers := []string{"series_a", "series_b", "samples", "correlation", "optimal_lag", "lag_correlation"}

	records := make([][]string, 0, len(stats))
	for _, st := range stats {
		corr := ""
		lagCorr := ""
		if st.Defined {
			corr = formatCorr(st.Correlation)
			lagCorr = formatCorr(st.LagCorrelation)
		}
		records = append(records, []string{
			st.SeriesA,
			st.SeriesB,
			formatInt(st.Samples),
			corr,
			formatInt(st.OptimalLag),
			lagCorr,
		})
	}

	return e.csvWriter.WriteCSV(filename, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: e.bom,
	})
}
