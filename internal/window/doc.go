// Package window derives named study-phase windows from a recording's
// event markers.
//
// Each visit type carries a declarative specification table mapping paired
// event-marker occurrences to a named phase (baseline, stress task,
// recovery, ...). Resolution never fails outright: a window whose markers
// cannot be found is retained with zeroed times and Valid() == false, and
// its Resolution records which flag and occurrence was missing so callers
// can tell "marker not found" apart from a legitimately zero window.
package window
