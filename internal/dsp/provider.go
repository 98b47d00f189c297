// Package dsp defines the narrow interface to the external signal
// cleaning and event detection provider, plus a basic in-tree reference
// implementation so the pipeline runs without one.
package dsp

// ProcessedSignal is the provider's output for one channel: the cleaned
// waveform with detected events and derived per-sample series, all aligned
// to the original sample grid.
type ProcessedSignal struct {
	SamplingRate float64

	// Clean is the denoised waveform.
	Clean []float64
	// Peaks marks detected events (R peaks, breaths, SCR onsets) with 1.
	Peaks []int
	// Rate is the instantaneous event rate in events/minute, NaN before
	// the first detected event interval.
	Rate []float64
	// Amplitude is a per-sample excursion envelope (used for respiration
	// depth). NaN where undefined.
	Amplitude []float64
}

// Time returns the derived time vector in seconds.
func (p *ProcessedSignal) Time() []float64 {
	t := make([]float64, len(p.Clean))
	for i := range t {
		t[i] = float64(i) / p.SamplingRate
	}
	return t
}

// Provider cleans a raw channel and detects its events. Implementations
// wrap external DSP libraries; the pipeline treats them as opaque.
type Provider interface {
	Clean(raw []float64, samplingRate float64) (*ProcessedSignal, error)
}
