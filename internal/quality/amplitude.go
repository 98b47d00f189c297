package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// AmplitudeScorer scores a window segment by its energy density: the sum
// of squared samples divided by the window duration (not RMS). Low scores
// indicate flat-lined or disconnected sensors.
type AmplitudeScorer struct {
	WindowSizeSec float64
}

// Score computes the energy density of one segment.
func (s AmplitudeScorer) Score(segment []float64) (float64, error) {
	if len(segment) == 0 {
		return 0, fmt.Errorf("empty segment")
	}
	var sumsq float64
	for _, v := range segment {
		sumsq += v * v
	}
	return sumsq / s.WindowSizeSec, nil
}

// AmplitudeBaseline computes the adaptive flagging floor from the entire
// channel signal, once per run: min(signal^2) + beta * popstd(signal^2).
// The baseline is invariant to window segmentation. A recording with
// uniformly low energy self-calibrates to flag almost nothing; that is a
// known weakness of the adaptive floor, accepted as specified.
func AmplitudeBaseline(signal []float64, beta float64) float64 {
	if len(signal) == 0 {
		return math.NaN()
	}
	squared := make([]float64, len(signal))
	for i, v := range signal {
		squared[i] = v * v
	}
	mean := floats.Sum(squared) / float64(len(squared))
	return floats.Min(squared) + beta*popStd(squared, mean)
}

// FlagBelow applies an adaptive floor: 1 (poor) iff score < baseline. NaN
// scores are never flagged.
func FlagBelow(score, baseline float64) int {
	if !math.IsNaN(score) && score < baseline {
		return 1
	}
	return 0
}
