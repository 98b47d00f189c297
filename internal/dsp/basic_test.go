package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicProviderClean(t *testing.T) {
	const fs = 100.0
	n := int(30 * fs)
	// 1 Hz spiky waveform: sharp positive peaks once per second
	raw := make([]float64, n)
	for i := range raw {
		phase := math.Mod(float64(i)/fs, 1.0)
		if phase < 0.02 {
			raw[i] = 10
		}
	}

	sig, err := NewBasicProvider().Clean(raw, fs)
	require.NoError(t, err)

	require.Len(t, sig.Clean, n)
	require.Len(t, sig.Peaks, n)
	require.Len(t, sig.Rate, n)
	require.Len(t, sig.Amplitude, n)
	assert.InDelta(t, fs, sig.SamplingRate, 1e-9)

	beats := 0
	for _, p := range sig.Peaks {
		beats += p
	}
	assert.InDelta(t, 30, beats, 2, "one event per second for 30 s")

	// rate between detected events should be near 60/min
	mid := sig.Rate[n/2]
	require.False(t, math.IsNaN(mid))
	assert.InDelta(t, 60.0, mid, 10.0)
}

func TestBasicProviderCleanErrors(t *testing.T) {
	p := NewBasicProvider()

	_, err := p.Clean(nil, 100)
	require.Error(t, err)

	_, err = p.Clean([]float64{1, 2, 3}, 0)
	require.Error(t, err)

	_, err = p.Clean([]float64{1, 2, 3}, -5)
	require.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	x := []float64{0, 0, 3, 0, 0}
	out := movingAverage(x, 3)
	require.Len(t, out, 5)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 1.0, out[1], 1e-9)
	assert.InDelta(t, 1.0, out[2], 1e-9)
	assert.InDelta(t, 1.0, out[3], 1e-9)
	assert.InDelta(t, 0.0, out[4], 1e-9)
}

func TestDetectPeaksRefractory(t *testing.T) {
	p := &BasicProvider{PeakThresholdSD: 0.5, MinPeakDistanceSec: 0.5}

	// two candidate maxima 0.2 s apart at 10 Hz: only the taller survives
	x := make([]float64, 40)
	x[10] = 5
	x[12] = 8

	peaks := p.detectPeaks(x, 10)
	assert.Equal(t, 0, peaks[10], "shorter peak inside the refractory span is dropped")
	assert.Equal(t, 1, peaks[12])
}

func TestRateFromPeaks(t *testing.T) {
	peaks := make([]int, 50)
	peaks[10] = 1
	peaks[30] = 1 // 2 s apart at 10 Hz

	rate := rateFromPeaks(peaks, 50, 10)
	assert.True(t, math.IsNaN(rate[0]), "no rate before the first interval")
	assert.InDelta(t, 30.0, rate[20], 1e-9, "2 s interval is 30 events/min")
	assert.InDelta(t, 30.0, rate[30], 1e-9)
	assert.True(t, math.IsNaN(rate[49]))
}

func TestExcursionEnvelope(t *testing.T) {
	x := []float64{0, 1, 0, -1, 0}
	env := excursionEnvelope(x, 5)
	assert.InDelta(t, 2.0, env[2], 1e-9, "full swing visible from the center")
	assert.InDelta(t, 1.0, env[0], 1e-9, "edge window shrinks")
}

func TestProcessedSignalTime(t *testing.T) {
	sig := &ProcessedSignal{SamplingRate: 4, Clean: make([]float64, 5)}
	times := sig.Time()
	require.Len(t, times, 5)
	assert.InDelta(t, 1.0, times[4], 1e-9)
}
