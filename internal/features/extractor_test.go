package features

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioqc/internal/dsp"
	"physioqc/internal/recording"
	"physioqc/internal/window"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractSession(t *testing.T) {
	rec, err := recording.New("rec1", nil)
	require.NoError(t, err)
	rec.ParticipantID = "P001"
	rec.VisitLabel = "TSST Visit"

	processed := map[recording.SignalKind]*dsp.ProcessedSignal{
		recording.KindECG: beatSignal(120, 10, []float64{10, 11, 12, 13, 14}, 60),
		recording.KindEDA: beatSignal(120, 10, nil, 0),
	}

	windows := []*window.Window{
		{Name: "Baseline", StartTime: 0, EndTime: 60, Resolution: window.Resolution{Resolved: true}},
		{Name: "Speech", Resolution: window.Resolution{MissingFlag: "Speech Period", MissingOccurrence: 1}},
	}

	rows := NewExtractor(discardLogger()).ExtractSession(context.Background(), rec, processed, windows)
	require.Len(t, rows, 1, "invalid windows are skipped")

	row := rows[0]
	assert.Equal(t, "rec1", row.RecordingID)
	assert.Equal(t, "P001", row.ParticipantID)
	assert.Equal(t, "TSST Visit", row.VisitType)
	assert.Equal(t, "Baseline", row.Phase)
	assert.InDelta(t, 60.0, row.Duration, 1e-9)

	// both kinds contribute their column families to the same row
	assert.Contains(t, row.Values, "hrv_num_beats")
	assert.Contains(t, row.Values, "eda_mean")
	assert.NotContains(t, row.Values, "rsp_mean_rate", "no RSP signal was provided")
	assert.InDelta(t, 5.0, row.Values["hrv_num_beats"], 1e-9)
}

func TestExtractSessionNoProcessedSignals(t *testing.T) {
	rec, err := recording.New("rec1", nil)
	require.NoError(t, err)

	windows := []*window.Window{
		{Name: "Baseline", StartTime: 0, EndTime: 60, Resolution: window.Resolution{Resolved: true}},
	}

	rows := NewExtractor(discardLogger()).ExtractSession(context.Background(), rec, nil, windows)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Values, "row keeps its identity columns even with no signals")
}

func TestSelectProcessable(t *testing.T) {
	rec, err := recording.New("rec1", []*recording.Channel{
		recording.NewChannel("ECG - X", make([]float64, 10), 100),
		recording.NewChannel("ECG - Y", make([]float64, 10), 100),
		recording.NewChannel("EDA", make([]float64, 10), 100),
		recording.NewChannel("Temperature", make([]float64, 10), 100),
	})
	require.NoError(t, err)

	selected := SelectProcessable(rec)
	require.Len(t, selected, 2)
	assert.Equal(t, "ECG - X", selected[recording.KindECG].Name, "first matching channel wins")
	assert.Equal(t, "EDA", selected[recording.KindEDA].Name)
	assert.NotContains(t, selected, recording.KindRSP)
}
