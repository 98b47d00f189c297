package features

import (
	"math"

	"physioqc/internal/dsp"
)

// pNN50 threshold on successive RR interval differences, in milliseconds.
const nn50ThresholdMs = 50

// sliceIndices returns the index range [lo, hi) of samples whose time
// falls in the closed interval [start, end].
func sliceIndices(sig *dsp.ProcessedSignal, start, end float64) (lo, hi int) {
	lo = int(math.Ceil(start * sig.SamplingRate))
	if lo < 0 {
		lo = 0
	}
	hi = int(math.Floor(end*sig.SamplingRate)) + 1
	if hi > len(sig.Clean) {
		hi = len(sig.Clean)
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// hrvFeatures computes heart-rate and heart-rate-variability features from
// a processed ECG within [start, end].
func hrvFeatures(sig *dsp.ProcessedSignal, start, end float64) map[string]float64 {
	f := map[string]float64{
		"hrv_mean_hr":   math.NaN(),
		"hrv_std_hr":    math.NaN(),
		"hrv_min_hr":    math.NaN(),
		"hrv_max_hr":    math.NaN(),
		"hrv_rmssd":     math.NaN(),
		"hrv_sdnn":      math.NaN(),
		"hrv_pnn50":     math.NaN(),
		"hrv_num_beats": 0,
	}

	lo, hi := sliceIndices(sig, start, end)
	if lo == hi {
		return f
	}

	hr := finite(sig.Rate[lo:hi])
	if len(hr) > 0 {
		f["hrv_mean_hr"] = mean(hr)
		f["hrv_std_hr"] = sampleStd(hr)
		f["hrv_min_hr"] = minOf(hr)
		f["hrv_max_hr"] = maxOf(hr)
	}

	var beatTimes []float64
	for i := lo; i < hi; i++ {
		if sig.Peaks[i] == 1 {
			beatTimes = append(beatTimes, float64(i)/sig.SamplingRate)
		}
	}
	f["hrv_num_beats"] = float64(len(beatTimes))
	if len(beatTimes) < 2 {
		return f
	}

	// RR intervals in milliseconds.
	rr := make([]float64, len(beatTimes)-1)
	for i := 1; i < len(beatTimes); i++ {
		rr[i-1] = (beatTimes[i] - beatTimes[i-1]) * 1000
	}
	if len(rr) < 2 {
		return f
	}

	diffs := make([]float64, len(rr)-1)
	nn50 := 0
	var sumSq float64
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		diffs[i-1] = d
		sumSq += d * d
		if math.Abs(d) > nn50ThresholdMs {
			nn50++
		}
	}
	f["hrv_rmssd"] = math.Sqrt(sumSq / float64(len(diffs)))
	f["hrv_sdnn"] = sampleStd(rr)
	f["hrv_pnn50"] = float64(nn50) / float64(len(diffs)) * 100
	return f
}

// rspFeatures computes respiratory rate, depth, and breath count within
// [start, end].
func rspFeatures(sig *dsp.ProcessedSignal, start, end float64) map[string]float64 {
	f := map[string]float64{
		"rsp_mean_rate":      math.NaN(),
		"rsp_std_rate":       math.NaN(),
		"rsp_mean_amplitude": math.NaN(),
		"rsp_std_amplitude":  math.NaN(),
		"rsp_num_breaths":    0,
	}

	lo, hi := sliceIndices(sig, start, end)
	if lo == hi {
		return f
	}

	rate := finite(sig.Rate[lo:hi])
	if len(rate) > 0 {
		f["rsp_mean_rate"] = mean(rate)
		f["rsp_std_rate"] = sampleStd(rate)
	}

	amp := finite(sig.Amplitude[lo:hi])
	if len(amp) > 0 {
		f["rsp_mean_amplitude"] = mean(amp)
		f["rsp_std_amplitude"] = sampleStd(amp)
	}

	breaths := 0
	for i := lo; i < hi; i++ {
		if sig.Peaks[i] == 1 {
			breaths++
		}
	}
	f["rsp_num_breaths"] = float64(breaths)
	return f
}

// edaFeatures computes skin-conductance level and SCR peak count within
// [start, end].
func edaFeatures(sig *dsp.ProcessedSignal, start, end float64) map[string]float64 {
	f := map[string]float64{
		"eda_mean":      math.NaN(),
		"eda_std":       math.NaN(),
		"eda_min":       math.NaN(),
		"eda_max":       math.NaN(),
		"eda_num_peaks": 0,
	}

	lo, hi := sliceIndices(sig, start, end)
	if lo == hi {
		return f
	}

	level := finite(sig.Clean[lo:hi])
	if len(level) > 0 {
		f["eda_mean"] = mean(level)
		f["eda_std"] = sampleStd(level)
		f["eda_min"] = minOf(level)
		f["eda_max"] = maxOf(level)
	}

	peaks := 0
	for i := lo; i < hi; i++ {
		if sig.Peaks[i] == 1 {
			peaks++
		}
	}
	f["eda_num_peaks"] = float64(peaks)
	return f
}

// bpFeatures computes blood-pressure level statistics within [start, end].
func bpFeatures(sig *dsp.ProcessedSignal, start, end float64) map[string]float64 {
	f := map[string]float64{
		"bp_mean": math.NaN(),
		"bp_std":  math.NaN(),
		"bp_min":  math.NaN(),
		"bp_max":  math.NaN(),
	}

	lo, hi := sliceIndices(sig, start, end)
	if lo == hi {
		return f
	}

	level := finite(sig.Clean[lo:hi])
	if len(level) > 0 {
		f["bp_mean"] = mean(level)
		f["bp_std"] = sampleStd(level)
		f["bp_min"] = minOf(level)
		f["bp_max"] = maxOf(level)
	}
	return f
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 normalized standard deviation; NaN below two
// samples.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
