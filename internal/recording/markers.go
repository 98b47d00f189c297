package recording

import "strings"

// MarkerIndex answers occurrence lookups against a recording's event
// markers. Lookup scans markers in their original chronological order and
// counts exact case-folded text matches; substring matching is deliberately
// not supported here (channel lookup is the substring-matching capability,
// see FindChannel).
type MarkerIndex struct {
	markers []EventMarker
}

// NewMarkerIndex builds an index over the given markers. The slice is
// assumed to be in file order (chronological by sample index).
func NewMarkerIndex(markers []EventMarker) *MarkerIndex {
	return &MarkerIndex{markers: markers}
}

// TimeOf returns the time in seconds of the Nth occurrence (1-indexed) of
// the marker with the given text, compared case-insensitively. If fewer
// than occurrence matches exist the second return is false; this is never
// an error.
func (ix *MarkerIndex) TimeOf(text string, occurrence int) (float64, bool) {
	if occurrence < 1 {
		return 0, false
	}
	want := strings.ToLower(text)
	count := 0
	for _, m := range ix.markers {
		if strings.ToLower(m.Text) != want {
			continue
		}
		count++
		if count == occurrence {
			return m.Time(), true
		}
	}
	return 0, false
}

// Occurrences returns how many markers match the given text,
// case-insensitively.
func (ix *MarkerIndex) Occurrences(text string) int {
	want := strings.ToLower(text)
	count := 0
	for _, m := range ix.markers {
		if strings.ToLower(m.Text) == want {
			count++
		}
	}
	return count
}

// Texts returns the distinct marker texts in first-seen order, case-folded.
func (ix *MarkerIndex) Texts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range ix.markers {
		key := strings.ToLower(m.Text)
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}
