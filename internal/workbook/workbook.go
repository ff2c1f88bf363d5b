// Package workbook persists per-source wide tables as Excel workbooks, one
// sheet per category plus the combined sheet, and reads them back.
//
// Sheet layout: row 1 is the header ("date" followed by indicator codes),
// rows 2 and 3 are the display-name and unit metadata rows, and rows 4+ hold
// dated observations, newest first for display. Readers return tables with
// dates ascending regardless of on-disk row order. Missing values are blank
// cells on disk and NaN in memory.
package workbook

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"macrocli/internal/store"
	"macrocli/pkg/contracts/domain"
)

const (
	dateHeader = "date"
	nameLabel  = "Name"
	unitLabel  = "Unit"
)

// Write saves the tables to path as a single workbook, one sheet per table
// in input order. An existing file at path is replaced whole; partitions are
// always rebuilt, never patched.
func Write(path string, tables []store.WideTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), table.Category); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", table.Category, err)
			}
		} else if _, err := f.NewSheet(table.Category); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", table.Category, err)
		}
		if err := writeSheet(f, table); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", table.Category, err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create workbook directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetWriter sets cells by coordinate and remembers the first error, so a
// sheet can be laid out without checking every call.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, value)
}

func writeSheet(f *excelize.File, t store.WideTable) error {
	w := &sheetWriter{f: f, sheet: t.Category}

	w.set(1, 1, dateHeader)
	w.set(1, 2, nameLabel)
	w.set(1, 3, unitLabel)
	for j, code := range t.Columns {
		w.set(j+2, 1, code)
		w.set(j+2, 2, t.Names[j])
		w.set(j+2, 3, t.Units[j])
	}

	// Data rows go newest first; analysts read the top of the sheet.
	row := 4
	for i := len(t.Dates) - 1; i >= 0; i-- {
		w.set(1, row, t.Dates[i].Format(domain.DateLayout))
		for j := range t.Columns {
			if v := t.Cells[i][j]; !math.IsNaN(v) {
				w.set(j+2, row, v)
			}
		}
		row++
	}
	return w.err
}

// Workbook is the in-memory form of one source's persisted artifact.
type Workbook struct {
	Tables []store.WideTable
}

// Read loads every sheet of the workbook at path. Sheets that do not carry
// the table layout are skipped with a warning rather than failing the read,
// so a stray sheet added by hand cannot block collection.
func Read(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		table, ok := parseSheet(sheet, rows)
		if !ok {
			slog.Warn("skipping sheet without table layout", slog.String("sheet", sheet))
			continue
		}
		wb.Tables = append(wb.Tables, table)
	}
	return wb, nil
}

// Table returns the sheet parsed for the named category.
func (wb *Workbook) Table(category string) (store.WideTable, bool) {
	for _, t := range wb.Tables {
		if t.Category == category {
			return t, true
		}
	}
	return store.WideTable{}, false
}

// Observations flattens the workbook back into a record list suitable for
// merging, with each column's display name and unit re-attached. The
// combined sheet is preferred since it spans every indicator; workbooks
// without one fall back to the union of the category sheets.
func (wb *Workbook) Observations() []domain.Observation {
	if all, ok := wb.Table(store.AllCategory); ok {
		return flatten(all)
	}
	seen := make(map[domain.ObservationKey]bool)
	var out []domain.Observation
	for _, t := range wb.Tables {
		for _, o := range flatten(t) {
			if seen[o.Key()] {
				continue
			}
			seen[o.Key()] = true
			out = append(out, o)
		}
	}
	return out
}

func flatten(t store.WideTable) []domain.Observation {
	var out []domain.Observation
	for i, d := range t.Dates {
		for j, code := range t.Columns {
			v := t.Cells[i][j]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, domain.Observation{
				Date:        d,
				Indicator:   code,
				Value:       v,
				Description: t.Names[j],
				Unit:        t.Units[j],
			})
		}
	}
	return out
}

// cellAt reads a cell from a GetRows row, tolerating rows the reader
// truncated at the last non-empty cell.
func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseSheet rebuilds a wide table from raw sheet rows. It requires the
// header and both metadata rows; data rows with an unparseable date are
// dropped and rows may appear in any order on disk.
func parseSheet(name string, rows [][]string) (store.WideTable, bool) {
	if len(rows) < 3 {
		return store.WideTable{}, false
	}
	if !strings.EqualFold(cellAt(rows[0], 0), dateHeader) {
		return store.WideTable{}, false
	}

	// Map header columns to table columns, skipping blank header cells.
	var codes []string
	var srcCols []int
	for j := 1; j < len(rows[0]); j++ {
		if code := cellAt(rows[0], j); code != "" {
			codes = append(codes, code)
			srcCols = append(srcCols, j)
		}
	}
	if len(codes) == 0 {
		return store.WideTable{}, false
	}

	names := make([]string, len(codes))
	units := make([]string, len(codes))
	for k, j := range srcCols {
		names[k] = cellAt(rows[1], j)
		units[k] = cellAt(rows[2], j)
	}

	byDate := make(map[time.Time][]float64)
	for _, row := range rows[3:] {
		d, err := time.Parse(domain.DateLayout, cellAt(row, 0))
		if err != nil {
			continue
		}
		vals := make([]float64, len(codes))
		for k, j := range srcCols {
			v, err := strconv.ParseFloat(cellAt(row, j), 64)
			if err != nil {
				v = math.NaN()
			}
			vals[k] = v
		}
		byDate[d] = vals
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cells := make([][]float64, len(dates))
	for i, d := range dates {
		cells[i] = byDate[d]
	}

	return store.WideTable{
		Category: name,
		Columns:  codes,
		Names:    names,
		Units:    units,
		Dates:    dates,
		Cells:    cells,
	}, true
}
