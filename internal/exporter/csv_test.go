package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func newTestWriter(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	paths := config.PathsFor(t.TempDir())
	return NewCSVWriter(paths), paths
}

func readCSVFile(t *testing.T, path string) ([][]string, bool) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	hasBOM := bytes.HasPrefix(data, utf8BOM)
	data = bytes.TrimPrefix(data, utf8BOM)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records, hasBOM
}

func TestWriteSimpleCSV(t *testing.T) {
	writer, paths := newTestWriter(t)

	headers := []string{"date", "CPIAUCSL", "FEDFUNDS"}
	records := [][]string{
		{"2024-01-01", "308.417", "5.33"},
		{"2024-02-01", "310.326", "5.33"},
	}

	require.NoError(t, writer.WriteSimpleCSV("comparison.csv", headers, records))

	got, hasBOM := readCSVFile(t, paths.ExportPath("comparison.csv"))
	assert.True(t, hasBOM, "expected UTF-8 BOM prefix")
	require.Len(t, got, 3)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, records[0], got[1])
	assert.Equal(t, records[1], got[2])
}

func TestWriteCSV_NoBOMWhenDisabled(t *testing.T) {
	writer, paths := newTestWriter(t)

	err := writer.WriteCSV("plain.csv", WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	})
	require.NoError(t, err)

	_, hasBOM := readCSVFile(t, paths.ExportPath("plain.csv"))
	assert.False(t, hasBOM)
}

func TestWriteCSV_TruncatesExistingFile(t *testing.T) {
	writer, paths := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("out.csv", []string{"x"}, [][]string{{"old"}}))
	require.NoError(t, writer.WriteSimpleCSV("out.csv", []string{"x"}, [][]string{{"new"}}))

	got, _ := readCSVFile(t, paths.ExportPath("out.csv"))
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[1][0])
}

func TestAppendToCSV(t *testing.T) {
	writer, paths := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("log.csv", []string{"date", "value"}, [][]string{{"2024-01-01", "1"}}))
	require.NoError(t, writer.AppendToCSV("log.csv", [][]string{{"2024-02-01", "2"}}))

	got, _ := readCSVFile(t, paths.ExportPath("log.csv"))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-02-01", "2"}, got[2])
}

func TestWriteCSV_AbsolutePathBypassesExportsDir(t *testing.T) {
	writer, _ := newTestWriter(t)

	target := filepath.Join(t.TempDir(), "elsewhere.csv")
	require.NoError(t, writer.WriteSimpleCSV(target, []string{"a"}, [][]string{{"1"}}))

	_, err := os.Stat(target)
	require.NoError(t, err)
}

func TestWriteCSV_CreatesMissingDirectories(t *testing.T) {
	writer, paths := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV(filepath.Join("sub", "dir", "out.csv"), []string{"a"}, [][]string{{"1"}}))

	_, err := os.Stat(paths.ExportPath(filepath.Join("sub", "dir", "out.csv")))
	require.NoError(t, err)
}

func TestStreamWriter(t *testing.T) {
	writer, paths := newTestWriter(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"date", "value"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"2024-01-01", "100.5"}))
	require.NoError(t, stream.WriteRecord([]string{"2024-02-01", "101.2"}))
	require.NoError(t, stream.Close())

	got, hasBOM := readCSVFile(t, paths.ExportPath("stream.csv"))
	assert.True(t, hasBOM)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"date", "value"}, got[0])
	assert.Equal(t, []string{"2024-02-01", "101.2"}, got[2])
}

func TestWriteCSV_QuotesEmbeddedCommas(t *testing.T) {
	writer, paths := newTestWriter(t)

	records := [][]string{{"2024-01-01", "Consumer Price Index, All Urban"}}
	require.NoError(t, writer.WriteSimpleCSV("quoted.csv", []string{"date", "name"}, records))

	got, _ := readCSVFile(t, paths.ExportPath("quoted.csv"))
	require.Len(t, got, 2)
	assert.Equal(t, "Consumer Price Index, All Urban", got[1][1])
}
