package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// welchSegmentLength caps the per-segment FFT size; shorter inputs use a
// single segment of their own length.
const welchSegmentLength = 256

// welchPSD estimates the one-sided power spectral density of x by Welch's
// method: Hann-windowed segments of up to 256 samples with 50% overlap,
// constant detrend per segment, density scaling, averaged across segments.
func welchPSD(x []float64, fs float64) ([]float64, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("segment too short for spectral estimation: %d samples", len(x))
	}
	if fs <= 0 {
		return nil, fmt.Errorf("invalid sampling rate %v", fs)
	}

	nperseg := welchSegmentLength
	if len(x) < nperseg {
		nperseg = len(x)
	}
	step := nperseg - nperseg/2

	win := hann(nperseg)
	winPower := 0.0
	for _, w := range win {
		winPower += w * w
	}
	scale := 1 / (fs * winPower)

	fft := fourier.NewFFT(nperseg)
	nbins := nperseg/2 + 1
	psd := make([]float64, nbins)
	seg := make([]float64, nperseg)
	coeffs := make([]complex128, nbins)

	segments := 0
	for start := 0; start+nperseg <= len(x); start += step {
		copy(seg, x[start:start+nperseg])
		m := floats.Sum(seg) / float64(nperseg)
		for i := range seg {
			seg[i] = (seg[i] - m) * win[i]
		}

		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			p := scale * (real(c)*real(c) + imag(c)*imag(c))
			// One-sided spectrum: double everything except DC and, for
			// even segment lengths, the Nyquist bin.
			if k != 0 && !(nperseg%2 == 0 && k == nbins-1) {
				p *= 2
			}
			psd[k] += p
		}
		segments++
	}

	if segments == 0 {
		return nil, fmt.Errorf("no full segments in %d samples", len(x))
	}
	for k := range psd {
		psd[k] /= float64(segments)
	}
	return psd, nil
}

// hann returns the periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}
