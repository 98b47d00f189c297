package features

import (
	"context"
	"log/slog"

	"physioqc/internal/dsp"
	"physioqc/internal/recording"
	"physioqc/internal/window"
)

// Row is one (recording, window) feature row. Values maps feature name to
// value; NaN is the missing sentinel.
type Row struct {
	RecordingID   string
	ParticipantID string
	VisitType     string
	Phase         string
	StartTime     float64
	EndTime       float64
	Duration      float64
	Values        map[string]float64
}

// IDColumns is the fixed leading column set of the feature table, in
// order. Feature columns follow, name-sorted.
var IDColumns = []string{
	"participant_id",
	"visit_type",
	"phase",
	"window_start_time",
	"window_end_time",
	"window_duration",
}

// Extractor computes per-window features from processed signals.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor logging through the given logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractSession emits one row per valid window. processed maps signal
// kind to that kind's processed channel (callers pick one channel per
// kind, first by insertion order when several match). Invalid windows are
// skipped with a warning; kinds without a processed signal contribute no
// columns for this session.
func (e *Extractor) ExtractSession(ctx context.Context, rec *recording.Recording, processed map[recording.SignalKind]*dsp.ProcessedSignal, windows []*window.Window) []Row {
	var rows []Row

	for _, w := range windows {
		if !w.Valid() {
			e.logger.WarnContext(ctx, "skipping invalid window",
				"recording", rec.ID,
				"window", w.Name,
			)
			continue
		}

		row := Row{
			RecordingID:   rec.ID,
			ParticipantID: rec.ParticipantID,
			VisitType:     rec.VisitLabel,
			Phase:         w.Name,
			StartTime:     w.StartTime,
			EndTime:       w.EndTime,
			Duration:      w.Duration(),
			Values:        make(map[string]float64),
		}

		for kind, sig := range processed {
			var vals map[string]float64
			switch kind {
			case recording.KindECG:
				vals = hrvFeatures(sig, w.StartTime, w.EndTime)
			case recording.KindRSP:
				vals = rspFeatures(sig, w.StartTime, w.EndTime)
			case recording.KindEDA:
				vals = edaFeatures(sig, w.StartTime, w.EndTime)
			case recording.KindBP:
				vals = bpFeatures(sig, w.StartTime, w.EndTime)
			default:
				continue
			}
			for k, v := range vals {
				row.Values[k] = v
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// SelectProcessable returns the first channel of each feature-bearing
// signal kind, in insertion order, keyed by kind.
func SelectProcessable(rec *recording.Recording) map[recording.SignalKind]*recording.Channel {
	out := make(map[recording.SignalKind]*recording.Channel)
	for _, kind := range []recording.SignalKind{
		recording.KindECG,
		recording.KindRSP,
		recording.KindEDA,
		recording.KindBP,
	} {
		if ch, ok := rec.FindChannel(recording.OfKind(kind)); ok {
			out[kind] = ch
		}
	}
	return out
}
