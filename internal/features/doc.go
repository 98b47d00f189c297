// Package features computes per-phase aggregate statistics from processed
// physiological signals.
//
// For each valid study-phase window it slices the processed per-channel
// series by the closed interval [start, end] (both ends inclusive; this
// consumer's convention deliberately differs from the half-open window
// mask used for quality overlays) and emits one row of named numeric
// features per (recording, window) pair. An empty slice yields NaN for
// every feature except event counts, which are 0 when the signal itself
// was present: "zero events observed" is a valid value distinct from
// "no data".
package features
