// Package recording holds the core data model for a single physiological
// recording session: channels, event markers, and the marker index used to
// resolve study-phase windows.
//
// A Recording owns its channels exclusively. Channel names are unique by
// construction; appending a duplicate name is an error. Derived quality
// channels (e.g. "ECG_SNR") are synthesized at a lower sampling rate and
// appended to the same Recording, which keeps EndTime monotonically
// up to date.
package recording
