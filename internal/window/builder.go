package window

import (
	"context"
	"log/slog"
	"strings"
)

// VisitType identifies the experimental protocol of a session. Exactly two
// protocols are recognized; everything else is unknown.
type VisitType int

const (
	VisitUnknown VisitType = iota
	VisitTSST
	VisitPDST
)

// String returns the display label for the visit type.
func (v VisitType) String() string {
	switch v {
	case VisitTSST:
		return "TSST Visit"
	case VisitPDST:
		return "PDST Visit"
	default:
		return "unknown"
	}
}

// ParseVisitType maps a free-text visit label (usually a directory name)
// to a VisitType by substring match.
func ParseVisitType(label string) VisitType {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "TSST"):
		return VisitTSST
	case strings.Contains(upper, "PDST"):
		return VisitPDST
	default:
		return VisitUnknown
	}
}

// Spec is one row of a visit type's window specification table.
type Spec struct {
	StartFlag       string
	EndFlag         string
	Name            string
	StartOccurrence int
	EndOccurrence   int
}

// Protocol phase tables. Several phases are delimited by two occurrences
// of the same marker; the Debrief phase starts at the marker that also
// ends Recovery, so those two windows share a boundary.
var (
	tsstSpecs = []Spec{
		{"Speech Period", "Speech Period", "Speech", 1, 2},
		{"Arithmetic period", "Arithmetic period", "Arithmetic", 1, 2},
		{"Baseline Resting Period", "Baseline Resting Period", "Baseline", 1, 2},
		{"Recovery Period", "Recovery Period", "Recovery", 1, 2},
		{"Task Introduction", "Task Introduction", "Task Intro", 1, 2},
		{"Speech Preperation", "Speech Preperation", "Speech Prep", 1, 2},
		{"Debrief Period", "Recovery Period", "Debrief", 1, 1},
	}

	pdstSpecs = []Spec{
		{"Baseline Resting Period", "Baseline Resting Period", "Baseline", 1, 2},
		{"Recovery Period", "Recovery Period", "Recovery", 1, 2},
		{"Debrief Period", "Recovery Period", "Debrief", 1, 1},
		{"Survey Session", "Debrief Period", "Debate", 2, 1},
	}

	// TSSTMarkers and PDSTMarkers are the recognized marker vocabularies
	// per protocol, used only for non-fatal spec validation warnings.
	TSSTMarkers = []string{
		"tsst arithmetic period",
		"speech period",
		"tsst prep period",
		"baseline resting period",
		"post stress resting period",
		"thought listing",
		"recovery period",
		"arithmetic period",
		"task introduction",
		"debrief period",
		"speech preperation",
		"survey session",
	}

	PDSTMarkers = []string{
		"baseline resting period",
		"post stress resting period",
		"recovery period",
		"debrief period",
		"survey session",
	}
)

// SpecsFor returns the window specification table for a visit type. The
// second return is false for an unrecognized visit type.
func SpecsFor(visit VisitType) ([]Spec, bool) {
	switch visit {
	case VisitTSST:
		return tsstSpecs, true
	case VisitPDST:
		return pdstSpecs, true
	default:
		return nil, false
	}
}

// markersFor returns the default recognized-marker list for a visit type.
func markersFor(visit VisitType) []string {
	switch visit {
	case VisitTSST:
		return TSSTMarkers
	case VisitPDST:
		return PDSTMarkers
	default:
		return nil
	}
}

// Builder resolves visit-type window tables against a recording's markers.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder logging through the given logger.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build resolves one Window per spec table row, in table order. An
// unrecognized visit type yields an empty list with a warning, never an
// error. Individual windows that fail to resolve are retained in the
// output flagged invalid. recognizedMarkers overrides the per-visit
// default vocabulary when non-nil; configured flags absent from it produce
// a non-fatal warning.
func (b *Builder) Build(ctx context.Context, visit VisitType, markers MarkerSource, recognizedMarkers []string) []*Window {
	specs, ok := SpecsFor(visit)
	if !ok {
		b.logger.WarnContext(ctx, "unrecognized visit type, no windows built",
			"visit_type", visit.String(),
		)
		return []*Window{}
	}

	if recognizedMarkers == nil {
		recognizedMarkers = markersFor(visit)
	}

	windows := make([]*Window, 0, len(specs))
	for _, spec := range specs {
		b.validateSpec(ctx, spec, recognizedMarkers)

		w := Resolve(spec, markers)
		if !w.Resolution.Resolved {
			b.logger.WarnContext(ctx, "window marker not found",
				"window", spec.Name,
				"missing_flag", w.Resolution.MissingFlag,
				"missing_occurrence", w.Resolution.MissingOccurrence,
			)
		}
		windows = append(windows, w)
	}
	return windows
}

// validateSpec warns when a configured flag is not a recognized marker
// name. Validation never blocks window construction.
func (b *Builder) validateSpec(ctx context.Context, spec Spec, recognized []string) {
	for _, flag := range []string{spec.StartFlag, spec.EndFlag} {
		if !containsFold(recognized, flag) {
			b.logger.WarnContext(ctx, "window flag not in recognized marker list",
				"window", spec.Name,
				"flag", flag,
			)
		}
	}
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
