package store

import (
	"math"
	"sort"
	"time"

	"macrocli/internal/catalog"
	"macrocli/pkg/contracts/domain"
)

// AllCategory names the synthetic wide table that spans every indicator of a
// source, including codes the catalog does not declare.
const AllCategory = "All"

// WideTable is one category's observations pivoted into a date-by-indicator
// grid, the shape persisted to a workbook sheet and rendered by the UI.
//
// Columns holds indicator codes in lexicographic order; Names and Units are
// the matching metadata rows, populated from each code's most recent
// observation. Dates ascend strictly and Cells is row-major with
// len(Dates) rows and len(Columns) columns. Missing cells are NaN.
type WideTable struct {
	Category string
	Columns  []string
	Names    []string
	Units    []string
	Dates    []time.Time
	Cells    [][]float64
}

// Cell returns the value at (date row i, column j).
func (t *WideTable) Cell(i, j int) float64 {
	return t.Cells[i][j]
}

// Column returns the full value series for column j, aligned with Dates.
func (t *WideTable) Column(j int) []float64 {
	col := make([]float64, len(t.Dates))
	for i := range t.Dates {
		col[i] = t.Cells[i][j]
	}
	return col
}

// Partition reshapes a merged observation list into per-category wide tables.
//
// One table is produced for each category the catalog declares, in
// declaration order, followed by the AllCategory table covering every
// indicator present in the input. Codes the catalog does not know about
// surface only in the AllCategory table. Declared categories with no
// observations are omitted from the result and reported in skipped so the
// caller can log them; they are not an error.
//
// The input is expected to be Merge output: sorted and free of duplicate
// keys. Should duplicates slip through, the last record for a key wins.
func Partition(merged []domain.Observation, cat *catalog.Catalog) (tables []WideTable, skipped []string) {
	byCategory := make(map[string][]domain.Observation)
	for _, obs := range merged {
		if !obs.IsValid() {
			continue
		}
		name := cat.CategoryFor(obs.Indicator)
		byCategory[name] = append(byCategory[name], obs)
	}

	for _, name := range cat.Categories() {
		declared := make(map[string]bool)
		for _, code := range cat.Codes(name) {
			declared[code] = true
		}
		var obs []domain.Observation
		for _, o := range byCategory[name] {
			if declared[o.Indicator] {
				obs = append(obs, o)
			}
		}
		if len(obs) == 0 {
			skipped = append(skipped, name)
			continue
		}
		tables = append(tables, buildTable(name, obs, cat))
	}

	if len(merged) > 0 {
		tables = append(tables, buildTable(AllCategory, merged, cat))
	}
	return tables, skipped
}

// buildTable pivots one category's observations into a WideTable. Metadata
// rows take each column's description and unit from its latest observation,
// falling back to the catalog display name when the record carries none.
func buildTable(name string, obs []domain.Observation, cat *catalog.Catalog) WideTable {
	type meta struct {
		date        time.Time
		description string
		unit        string
	}
	codeSet := make(map[string]*meta)
	dateSet := make(map[time.Time]bool)
	for _, o := range obs {
		if !o.IsValid() {
			continue
		}
		dateSet[o.Date] = true
		m, ok := codeSet[o.Indicator]
		if !ok {
			m = &meta{}
			codeSet[o.Indicator] = m
		}
		if !o.Date.Before(m.date) {
			m.date = o.Date
			m.description = o.Description
			m.unit = o.Unit
		}
	}

	columns := make([]string, 0, len(codeSet))
	for code := range codeSet {
		columns = append(columns, code)
	}
	sort.Strings(columns)

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	colIndex := make(map[string]int, len(columns))
	names := make([]string, len(columns))
	units := make([]string, len(columns))
	for j, code := range columns {
		colIndex[code] = j
		m := codeSet[code]
		if m.description != "" {
			names[j] = m.description
		} else {
			names[j] = cat.DescriptionFor(code)
		}
		units[j] = m.unit
	}

	rowIndex := make(map[time.Time]int, len(dates))
	cells := make([][]float64, len(dates))
	for i, d := range dates {
		rowIndex[d] = i
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = math.NaN()
		}
		cells[i] = row
	}
	for _, o := range obs {
		if !o.IsValid() {
			continue
		}
		cells[rowIndex[o.Date]][colIndex[o.Indicator]] = o.Value
	}

	return WideTable{
		Category: name,
		Columns:  columns,
		Names:    names,
		Units:    units,
		Dates:    dates,
		Cells:    cells,
	}
}
