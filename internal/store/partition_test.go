package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/catalog"
	"macrocli/pkg/contracts/domain"
)

func testCatalog() *catalog.Catalog {
	return catalog.New("FRED", []catalog.Category{
		{Name: "Inflation", Entries: []catalog.Entry{
			{Code: "CPIAUCSL", Name: "CPI (All Urban)", Cadence: catalog.CadenceMonthly},
		}},
		{Name: "Employment", Entries: []catalog.Entry{
			{Code: "UNRATE", Name: "Unemployment Rate", Cadence: catalog.CadenceMonthly},
			{Code: "PAYEMS", Name: "Nonfarm Payrolls", Cadence: catalog.CadenceMonthly},
		}},
		{Name: "Rates", Entries: []catalog.Entry{
			{Code: "DFF", Name: "Federal Funds Rate", Cadence: catalog.CadenceDaily},
		}},
	})
}

func metaObs(t *testing.T, indicator, date string, value float64, desc, unit string) domain.Observation {
	t.Helper()
	o := obs(t, indicator, date, value)
	o.Description = desc
	o.Unit = unit
	return o
}

func TestPartition_GroupsByCategoryWithAllLast(t *testing.T) {
	merged := Merge(nil, []domain.Observation{
		metaObs(t, "CPIAUCSL", "2020-01-01", 257.9, "CPI (All Urban)", "Index 1982-1984=100"),
		metaObs(t, "CPIAUCSL", "2020-02-01", 258.7, "CPI (All Urban)", "Index 1982-1984=100"),
		metaObs(t, "UNRATE", "2020-01-01", 3.6, "Unemployment Rate", "Percent"),
		metaObs(t, "PAYEMS", "2020-02-01", 152523, "Nonfarm Payrolls", "Thousands"),
	})

	tables, skipped := Partition(merged, testCatalog())

	require.Len(t, tables, 3)
	assert.Equal(t, "Inflation", tables[0].Category)
	assert.Equal(t, "Employment", tables[1].Category)
	assert.Equal(t, AllCategory, tables[2].Category)
	assert.Equal(t, []string{"Rates"}, skipped, "categories with no data are reported, not emitted")

	employment := tables[1]
	assert.Equal(t, []string{"PAYEMS", "UNRATE"}, employment.Columns, "columns sort lexicographically")
	assert.Equal(t, []string{"Nonfarm Payrolls", "Unemployment Rate"}, employment.Names)
	assert.Equal(t, []string{"Thousands", "Percent"}, employment.Units)

	all := tables[2]
	assert.Equal(t, []string{"CPIAUCSL", "PAYEMS", "UNRATE"}, all.Columns)
}

func TestPartition_CellsAlignWithDatesAscending(t *testing.T) {
	merged := Merge(nil, []domain.Observation{
		obs(t, "UNRATE", "2020-02-01", 3.5),
		obs(t, "UNRATE", "2020-01-01", 3.6),
		obs(t, "PAYEMS", "2020-01-01", 152234),
	})

	tables, _ := Partition(merged, testCatalog())
	require.Len(t, tables, 2) // Employment + All

	emp := tables[0]
	require.Equal(t, "Employment", emp.Category)
	require.Len(t, emp.Dates, 2)
	assert.True(t, emp.Dates[0].Before(emp.Dates[1]))

	// Row 0 is 2020-01-01: both series present.
	assert.Equal(t, 152234.0, emp.Cell(0, 0))
	assert.Equal(t, 3.6, emp.Cell(0, 1))

	// Row 1 is 2020-02-01: PAYEMS has no value there.
	assert.True(t, math.IsNaN(emp.Cell(1, 0)), "missing cell should be NaN")
	assert.Equal(t, 3.5, emp.Cell(1, 1))

	assert.Equal(t, []float64{3.6, 3.5}, emp.Column(1))
}

func TestPartition_MetadataFromMostRecentObservation(t *testing.T) {
	merged := Merge(nil, []domain.Observation{
		metaObs(t, "CPIAUCSL", "2020-01-01", 257.9, "CPI old title", "Index"),
		metaObs(t, "CPIAUCSL", "2020-02-01", 258.7, "CPI renamed", "Index 1982-1984=100"),
	})

	tables, _ := Partition(merged, testCatalog())
	require.NotEmpty(t, tables)

	inflation := tables[0]
	assert.Equal(t, []string{"CPI renamed"}, inflation.Names)
	assert.Equal(t, []string{"Index 1982-1984=100"}, inflation.Units)
}

func TestPartition_MetadataFallsBackToCatalogName(t *testing.T) {
	merged := Merge(nil, []domain.Observation{
		obs(t, "UNRATE", "2020-01-01", 3.6), // no description on the record
	})

	tables, _ := Partition(merged, testCatalog())
	require.NotEmpty(t, tables)
	assert.Equal(t, []string{"Unemployment Rate"}, tables[0].Names)
	assert.Equal(t, []string{""}, tables[0].Units)
}

func TestPartition_UncatalogedCodesOnlyInAll(t *testing.T) {
	merged := Merge(nil, []domain.Observation{
		obs(t, "UNRATE", "2020-01-01", 3.6),
		obs(t, "RETIRED_SERIES", "2020-01-01", 1.0),
	})

	tables, _ := Partition(merged, testCatalog())
	require.Len(t, tables, 2)

	emp := tables[0]
	assert.Equal(t, "Employment", emp.Category)
	assert.NotContains(t, emp.Columns, "RETIRED_SERIES")

	all := tables[1]
	require.Equal(t, AllCategory, all.Category)
	assert.Contains(t, all.Columns, "RETIRED_SERIES")
	assert.Contains(t, all.Names, "RETIRED_SERIES", "unknown code falls back to itself as display name")
}

func TestPartition_EmptyInput(t *testing.T) {
	tables, skipped := Partition(nil, testCatalog())
	assert.Empty(t, tables)
	assert.Equal(t, []string{"Inflation", "Employment", "Rates"}, skipped)
}
