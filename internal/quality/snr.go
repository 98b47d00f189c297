package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// psdEpsilon keeps the geometric mean defined when a PSD bin is zero.
const psdEpsilon = 1e-12

// SNRScorer scores a window segment by spectral flatness of its Welch
// power spectral density. The score is 10*log10(1/flatness) in dB: a flat,
// noise-like spectrum scores low, a peaked, structured spectrum scores
// high. This is a flatness proxy, not a literal signal-to-noise power
// ratio; no noise reference is needed.
type SNRScorer struct {
	SampleRate float64
	Alpha      float64
}

// Score computes the SNR proxy for one segment at the scorer's native
// sampling rate.
func (s SNRScorer) Score(segment []float64) (float64, error) {
	psd, err := welchPSD(segment, s.SampleRate)
	if err != nil {
		return 0, err
	}

	signalPower := floats.Sum(psd) / float64(len(psd))
	if signalPower <= 0 {
		return 0, fmt.Errorf("degenerate spectrum: zero signal power")
	}

	logSum := 0.0
	for _, p := range psd {
		logSum += math.Log(p + psdEpsilon)
	}
	geometricMean := math.Exp(logSum / float64(len(psd)))

	flatness := geometricMean / signalPower
	return 10 * math.Log10(1/flatness), nil
}

// Flag applies the fixed threshold: 1 (poor) iff score < Alpha. NaN scores
// are never flagged.
func (s SNRScorer) Flag(score float64) int {
	if !math.IsNaN(score) && score < s.Alpha {
		return 1
	}
	return 0
}
