// Package quality scores channel signal quality over sliding time windows.
//
// Two scorers run per channel: an SNR score derived from spectral flatness
// of the Welch power spectral density (fixed threshold), and an energy
// density amplitude score (adaptive threshold computed once from the whole
// signal). Per-window flags are aggregated into summary statistics and a
// four-level categorical rating per channel. Scored series are appended
// back to the recording as derived channels ("<name>_SNR",
// "<name>_Amplitude") at the sliding output rate.
package quality
