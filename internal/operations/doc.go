// Package operations drives batch processing of physiological recordings:
// discovering EDF files under the data root, skipping already-processed
// content via the tracker, and running quality checks, signal cleaning,
// and feature extraction per recording with per-recording failure
// isolation.
package operations
