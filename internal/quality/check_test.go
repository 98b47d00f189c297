package quality

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioqc/internal/recording"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRecording builds a 120 s session with an ECG-like sinusoid and a
// flat-lined EDA channel.
func testRecording(t *testing.T) *recording.Recording {
	t.Helper()

	const fs = 100.0
	n := int(120 * fs)
	ecg := make([]float64, n)
	for i := range ecg {
		ecg[i] = math.Sin(2 * math.Pi * 1.2 * float64(i) / fs)
	}
	eda := make([]float64, n)

	rec, err := recording.New("rec-test", []*recording.Channel{
		recording.NewChannel("ECG", ecg, fs),
		recording.NewChannel("EDA", eda, fs),
	})
	require.NoError(t, err)
	rec.ParticipantID = "P001"
	rec.VisitLabel = "TSST Visit"
	return rec
}

func TestCheckRecording(t *testing.T) {
	rec := testRecording(t)
	checker := NewChecker(DefaultParams(), 2, discardLogger())

	report, err := checker.CheckRecording(context.Background(), rec, []string{"ECG"})
	require.NoError(t, err)

	assert.Equal(t, "P001", report.ParticipantID)
	assert.Equal(t, "TSST Visit", report.VisitType)
	require.Contains(t, report.Channels, "ECG")

	cq := report.Channels["ECG"]
	assert.Equal(t, "ECG", cq.ChannelName)
	require.NotNil(t, cq.SNRStats)
	require.NotNil(t, cq.AmplitudeStats)
	assert.NotEqual(t, QualityUnknown, cq.OverallQuality)

	// 120 s signal, 30 s window, 15 s step: cursors 0..75
	assert.Equal(t, 6, cq.SNRStats.TotalWindows)
	assert.Equal(t, 6, cq.AmplitudeStats.TotalWindows)

	// derived overlay channels are appended at the output rate
	snrCh, ok := rec.Channel("ECG" + SNRSuffix)
	require.True(t, ok)
	assert.InDelta(t, 1.0/15.0, snrCh.SamplingRate, 1e-12)
	assert.Len(t, snrCh.Samples, 6)
	assert.Len(t, snrCh.SNRFlags, 6)

	ampCh, ok := rec.Channel("ECG" + AmplitudeSuffix)
	require.True(t, ok)
	assert.Len(t, ampCh.Samples, 6)
	assert.Len(t, ampCh.AmplitudeFlags, 6)

	// the clean sinusoid should not be flagged for SNR
	assert.InDelta(t, 0.0, cq.SNRStats.PercentageFlagged, 1e-9)
}

func TestCheckRecordingAllChannelsByDefault(t *testing.T) {
	rec := testRecording(t)
	checker := NewChecker(DefaultParams(), 1, discardLogger())

	report, err := checker.CheckRecording(context.Background(), rec, nil)
	require.NoError(t, err)
	assert.Contains(t, report.Channels, "ECG")
	require.Contains(t, report.Channels, "EDA")

	// every SNR window of the flat channel fails (zero spectral power):
	// the windows still count, their moments are undefined
	eda := report.Channels["EDA"]
	assert.Equal(t, 6, eda.SNRStats.TotalWindows)
	assert.True(t, math.IsNaN(eda.SNRStats.Mean))
	assert.Equal(t, 0, eda.SNRStats.FlaggedWindows, "NaN scores are never flagged")
}

func TestCheckRecordingMissingChannelSkipped(t *testing.T) {
	rec := testRecording(t)
	checker := NewChecker(DefaultParams(), 1, discardLogger())

	report, err := checker.CheckRecording(context.Background(), rec, []string{"ECG", "Temperature"})
	require.NoError(t, err)
	assert.Contains(t, report.Channels, "ECG")
	assert.NotContains(t, report.Channels, "Temperature")
}
