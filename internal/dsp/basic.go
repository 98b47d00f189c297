package dsp

import (
	"fmt"
	"math"
)

// BasicProvider is the reference Provider: centered moving-average
// smoothing, threshold peak detection with a refractory distance, and
// piecewise-constant event rate between successive peaks. It is good
// enough for pipeline plumbing and tests; production deployments plug in
// a dedicated DSP provider instead.
type BasicProvider struct {
	// SmoothingSec is the moving-average width in seconds.
	SmoothingSec float64
	// PeakThresholdSD flags local maxima above mean + k*std of the
	// cleaned signal.
	PeakThresholdSD float64
	// MinPeakDistanceSec is the refractory period between detected peaks.
	MinPeakDistanceSec float64
	// EnvelopeSec is the window for the excursion envelope.
	EnvelopeSec float64
}

// NewBasicProvider returns a provider with defaults suited to ~1 Hz
// physiological event rates.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		SmoothingSec:       0.05,
		PeakThresholdSD:    1.0,
		MinPeakDistanceSec: 0.3,
		EnvelopeSec:        2.0,
	}
}

// Clean implements Provider.
func (p *BasicProvider) Clean(raw []float64, samplingRate float64) (*ProcessedSignal, error) {
	if samplingRate <= 0 {
		return nil, fmt.Errorf("invalid sampling rate %v", samplingRate)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	clean := movingAverage(raw, widthSamples(p.SmoothingSec, samplingRate))
	peaks := p.detectPeaks(clean, samplingRate)
	rate := rateFromPeaks(peaks, len(clean), samplingRate)
	envelope := excursionEnvelope(clean, widthSamples(p.EnvelopeSec, samplingRate))

	return &ProcessedSignal{
		SamplingRate: samplingRate,
		Clean:        clean,
		Peaks:        peaks,
		Rate:         rate,
		Amplitude:    envelope,
	}, nil
}

func widthSamples(seconds, rate float64) int {
	w := int(seconds * rate)
	if w < 1 {
		w = 1
	}
	if w%2 == 0 {
		w++
	}
	return w
}

// movingAverage smooths with a centered window, shrinking at the edges.
func movingAverage(x []float64, width int) []float64 {
	out := make([]float64, len(x))
	half := width / 2
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(x) {
			hi = len(x)
		}
		sum := 0.0
		for j := lo; j < hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// detectPeaks marks local maxima above mean + k*std, honoring the
// refractory distance. When two candidates fall within the distance the
// taller one wins.
func (p *BasicProvider) detectPeaks(x []float64, rate float64) []int {
	peaks := make([]int, len(x))
	if len(x) < 3 {
		return peaks
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	variance := 0.0
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	threshold := mean + p.PeakThresholdSD*math.Sqrt(variance/float64(len(x)))

	minDist := int(p.MinPeakDistanceSec * rate)
	lastPeak := -1
	for i := 1; i < len(x)-1; i++ {
		if x[i] <= threshold || x[i] < x[i-1] || x[i] <= x[i+1] {
			continue
		}
		if lastPeak >= 0 && i-lastPeak < minDist {
			if x[i] > x[lastPeak] {
				peaks[lastPeak] = 0
				peaks[i] = 1
				lastPeak = i
			}
			continue
		}
		peaks[i] = 1
		lastPeak = i
	}
	return peaks
}

// rateFromPeaks fills a piecewise-constant events-per-minute series: each
// inter-peak span carries 60/interval, samples before the first interval
// are NaN.
func rateFromPeaks(peaks []int, n int, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	prev := -1
	for i, flag := range peaks {
		if flag != 1 {
			continue
		}
		if prev >= 0 {
			interval := float64(i-prev) / rate
			if interval > 0 {
				perMinute := 60 / interval
				for j := prev; j <= i; j++ {
					out[j] = perMinute
				}
			}
		}
		prev = i
	}
	return out
}

// excursionEnvelope is the rolling max-min range over a centered window.
func excursionEnvelope(x []float64, width int) []float64 {
	out := make([]float64, len(x))
	half := width / 2
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(x) {
			hi = len(x)
		}
		minV, maxV := x[lo], x[lo]
		for j := lo + 1; j < hi; j++ {
			if x[j] < minV {
				minV = x[j]
			}
			if x[j] > maxV {
				maxV = x[j]
			}
		}
		out[i] = maxV - minV
	}
	return out
}
