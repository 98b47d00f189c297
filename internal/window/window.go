package window

import "fmt"

// MarkerSource resolves the time of the Nth occurrence (1-indexed) of a
// named event marker, case-insensitively. Implemented by
// recording.MarkerIndex.
type MarkerSource interface {
	TimeOf(text string, occurrence int) (float64, bool)
}

// Resolution is the tagged outcome of resolving a window's marker pair.
type Resolution struct {
	Resolved bool
	// MissingFlag and MissingOccurrence identify the first lookup that
	// failed when Resolved is false.
	MissingFlag       string
	MissingOccurrence int
}

// Window is a named, time-bounded phase of a study visit derived from a
// pair of event-marker occurrences. Times are seconds from recording
// start. A window is never mutated after construction except through Fix.
type Window struct {
	Name            string
	StartFlag       string
	EndFlag         string
	StartOccurrence int
	EndOccurrence   int
	StartTime       float64
	EndTime         float64
	Resolution      Resolution
}

// Resolve builds a Window from a spec row against the given marker source.
// A failed lookup yields a retained, invalid window with zeroed times; it
// never returns an error.
func Resolve(spec Spec, markers MarkerSource) *Window {
	w := &Window{
		Name:            spec.Name,
		StartFlag:       spec.StartFlag,
		EndFlag:         spec.EndFlag,
		StartOccurrence: spec.StartOccurrence,
		EndOccurrence:   spec.EndOccurrence,
	}

	start, ok := markers.TimeOf(spec.StartFlag, spec.StartOccurrence)
	if !ok {
		w.Resolution = Resolution{MissingFlag: spec.StartFlag, MissingOccurrence: spec.StartOccurrence}
		return w
	}
	end, ok := markers.TimeOf(spec.EndFlag, spec.EndOccurrence)
	if !ok {
		w.Resolution = Resolution{MissingFlag: spec.EndFlag, MissingOccurrence: spec.EndOccurrence}
		return w
	}

	w.StartTime = start
	w.EndTime = end
	w.Resolution = Resolution{Resolved: true}
	return w
}

// Valid reports whether the window has usable bounds: both times resolved
// and end strictly after start. The tagged Resolution distinguishes a
// window legitimately starting at t=0 from one whose markers were never
// found, so zero times alone do not invalidate. Downstream consumers must
// filter on this before slicing channel data.
func (w *Window) Valid() bool {
	return w.Resolution.Resolved && w.EndTime > w.StartTime
}

// Fix manually overrides the window bounds. Used to repair sessions with
// known-bad marker sequences.
func (w *Window) Fix(startTime, endTime float64) {
	w.StartTime = startTime
	w.EndTime = endTime
	w.Resolution = Resolution{Resolved: true}
}

// Duration returns end - start in seconds.
func (w *Window) Duration() float64 {
	return w.EndTime - w.StartTime
}

// Contains reports whether t falls inside the window using the half-open
// convention (start, end]: left-exclusive, right-inclusive. The feature
// extractor applies its own closed-interval mask; see features.
func (w *Window) Contains(t float64) bool {
	return t > w.StartTime && t <= w.EndTime
}

func (w *Window) String() string {
	return fmt.Sprintf("Window(%s %.2fs-%.2fs)", w.Name, w.StartTime, w.EndTime)
}
