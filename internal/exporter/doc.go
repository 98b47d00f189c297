// Package exporter writes pipeline outputs to disk.
//
// Three formats are produced per batch run:
//
// Feature CSV: one file per session with the fixed identifier columns
// followed by name-sorted feature columns; NaN values become empty cells
// so spreadsheet tools treat them as missing rather than as text.
//
// Quality report JSON: the per-channel quality statistics for one
// session, indented for human diffing.
//
// Summary workbook: a run-level xlsx with one row per recording and
// channel, for quick triage of which sessions need manual review.
package exporter
