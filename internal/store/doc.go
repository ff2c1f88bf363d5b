// Package store implements the incremental observation store shared by every
// data source.
//
// A source's history lives as a flat list of observations keyed by
// (indicator, date). Each collection cycle loads the persisted list, fetches
// anything newer than the per-indicator watermark, and merges the two:
//
//	wb, _ := workbook.Read(path)
//	existing := wb.Observations()
//	since, _ := store.ComputeWatermark(existing, code)
//	incoming, _ := client.Fetch(ctx, code, name, since)
//	merged := store.Merge(existing, incoming)
//	tables, skipped := store.Partition(merged, cat)
//
// Merge is last-write-wins on the natural key: when a provider revises a
// recently published value, the freshly fetched record replaces the stored
// one. The merged list is always sorted by (date, indicator) and contains
// exactly one record per key.
//
// Partition reshapes the merged list into per-category wide tables (one row
// per date, one column per indicator) plus a synthetic table spanning every
// indicator. Tables carry two metadata rows, display name and unit, taken
// from the most recent observation of each column. Derived tables are rebuilt
// in full on every merge; nothing here patches previous output.
//
// All functions are pure and safe for concurrent use across independent
// sources. Callers are responsible for serializing writers of one source's
// persisted data.
package store
