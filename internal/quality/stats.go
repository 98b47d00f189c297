package quality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MetricStats summarizes one quality metric's sliding-window series for a
// channel. Moments are computed over finite scores only; TotalWindows
// counts every emitted window including ones whose score failed to
// compute.
type MetricStats struct {
	Mean              float64 `json:"mean"`
	Std               float64 `json:"std"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Median            float64 `json:"median"`
	TotalWindows      int     `json:"total_windows"`
	FlaggedWindows    int     `json:"flagged_windows"`
	PercentageFlagged float64 `json:"percentage_flagged"`
}

// NewMetricStats computes summary statistics from window scores and their
// binary flags (1 = poor).
func NewMetricStats(scores []float64, flags []int) *MetricStats {
	s := &MetricStats{TotalWindows: len(scores)}

	for _, f := range flags {
		if f == 1 {
			s.FlaggedWindows++
		}
	}
	if s.TotalWindows > 0 {
		s.PercentageFlagged = float64(s.FlaggedWindows) / float64(s.TotalWindows) * 100
	}

	finite := make([]float64, 0, len(scores))
	for _, v := range scores {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		s.Mean, s.Std, s.Min, s.Max, s.Median = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}

	s.Mean = floats.Sum(finite) / float64(len(finite))
	s.Std = popStd(finite, s.Mean)
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.Median = median(finite)
	return s
}

// popStd is the population standard deviation (ddof = 0), matching the
// convention the thresholds were calibrated with.
func popStd(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// median averages the two middle values for even-length input.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
