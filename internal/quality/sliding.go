package quality

import "math"

// Params holds the sliding-window quality configuration shared by both
// scorers.
type Params struct {
	WindowSizeSec float64
	StepSec       float64
	SNRAlpha      float64
	AmplitudeBeta float64
}

// DefaultParams returns the calibrated defaults: 30 s windows advanced in
// 15 s steps, SNR threshold 0.5 dB, amplitude baseline factor 0.5.
func DefaultParams() Params {
	return Params{
		WindowSizeSec: 30,
		StepSec:       15,
		SNRAlpha:      0.5,
		AmplitudeBeta: 0.5,
	}
}

// OutputRate is the sampling rate of a derived quality series. Output
// samples are spaced StepSec apart, so the effective rate is 1/StepSec.
func (p Params) OutputRate() float64 {
	return 1 / p.StepSec
}

// ScoreFunc scores one window segment. An error marks the window's score
// as missing without aborting the series.
type ScoreFunc func(segment []float64) (float64, error)

// Point is one sliding-window result: the score and the window center
// time.
type Point struct {
	Score float64
	Time  float64
}

// Slide walks the (values, times) series in overlapping windows of
// windowSize seconds, advancing the cursor step seconds from t=0 while
// cursor+windowSize < endTime (the final partial window is dropped, not
// padded). Each window takes samples with time in [cursor,
// cursor+windowSize). A window with no samples in range is skipped
// entirely; a window whose scorer fails yields a NaN score at its center
// time. Centers are cursor + windowSize/2, strictly increasing.
func Slide(values, times []float64, endTime, windowSize, step float64, score ScoreFunc) []Point {
	var points []Point
	lo := 0
	for cursor := 0.0; cursor+windowSize < endTime; cursor += step {
		for lo < len(times) && times[lo] < cursor {
			lo++
		}
		hi := lo
		for hi < len(times) && times[hi] < cursor+windowSize {
			hi++
		}

		if hi == lo {
			continue
		}

		center := cursor + windowSize/2
		v, err := score(values[lo:hi])
		if err != nil {
			points = append(points, Point{Score: math.NaN(), Time: center})
			continue
		}
		points = append(points, Point{Score: v, Time: center})
	}
	return points
}
