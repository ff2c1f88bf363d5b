// Package exporter provides CSV export functionality for comparison tables.
//
// CSVWriter is the core writer: headers, streaming, and an optional UTF-8
// BOM so Excel opens the files correctly. Relative paths resolve into the
// exports directory.
//
// TableExporter turns an aligned analysis table into a date-keyed CSV and
// writes per-pair correlation summaries.
package exporter
