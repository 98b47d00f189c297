package quality

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"physioqc/internal/recording"
)

// Derived channel name suffixes.
const (
	SNRSuffix       = "_SNR"
	AmplitudeSuffix = "_Amplitude"
)

// ChannelQuality is the per-channel result of a quality-check run.
type ChannelQuality struct {
	ChannelName    string       `json:"channel_name"`
	SNRStats       *MetricStats `json:"snr_stats"`
	AmplitudeStats *MetricStats `json:"amplitude_stats"`
	OverallQuality string       `json:"overall_quality"`
}

// Report collects channel quality for one recording session.
type Report struct {
	ParticipantID string                     `json:"participant_id"`
	VisitType     string                     `json:"visit_type"`
	Channels      map[string]*ChannelQuality `json:"channels"`
}

// Checker runs sliding-window quality scoring across a recording's
// channels.
type Checker struct {
	params      Params
	concurrency int
	logger      *slog.Logger
}

// NewChecker creates a Checker. concurrency bounds the number of channels
// scored in parallel within one recording; values below 1 mean sequential.
func NewChecker(params Params, concurrency int, logger *slog.Logger) *Checker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{params: params, concurrency: concurrency, logger: logger}
}

// CheckRecording scores the named channels of a recording and returns the
// assembled report. An empty channel list means every channel present at
// call time. Channels absent from the recording are skipped with a
// warning; a channel whose scoring fails is logged and omitted from the
// report without aborting the others. Derived quality channels are
// appended to the recording as a side effect.
func (c *Checker) CheckRecording(ctx context.Context, rec *recording.Recording, channelNames []string) (*Report, error) {
	if len(channelNames) == 0 {
		channelNames = rec.ChannelNames()
	}

	report := &Report{
		ParticipantID: rec.ParticipantID,
		VisitType:     rec.VisitLabel,
		Channels:      make(map[string]*ChannelQuality),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, name := range channelNames {
		if !rec.HasChannel(name) {
			c.logger.WarnContext(ctx, "channel not found, skipping",
				"recording", rec.ID,
				"channel", name,
			)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cq, err := c.checkChannel(gctx, rec, name)
			if err != nil {
				c.logger.ErrorContext(gctx, "channel quality check failed",
					"recording", rec.ID,
					"channel", name,
					"error", err,
				)
				return nil // one bad channel must not abort the rest
			}
			mu.Lock()
			report.Channels[name] = cq
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// checkChannel runs both scorers over one channel and appends the derived
// quality channels.
func (c *Checker) checkChannel(ctx context.Context, rec *recording.Recording, name string) (*ChannelQuality, error) {
	ch, ok := rec.Channel(name)
	if !ok {
		return nil, fmt.Errorf("channel %q not found", name)
	}

	times := ch.Time()
	endTime := rec.EndTime()

	snrStats, err := c.computeSNR(rec, ch, times, endTime)
	if err != nil {
		return nil, fmt.Errorf("snr: %w", err)
	}
	ampStats, err := c.computeAmplitude(rec, ch, times, endTime)
	if err != nil {
		return nil, fmt.Errorf("amplitude: %w", err)
	}

	cq := &ChannelQuality{
		ChannelName:    name,
		SNRStats:       snrStats,
		AmplitudeStats: ampStats,
		OverallQuality: OverallQuality(snrStats, ampStats),
	}

	c.logger.InfoContext(ctx, "channel quality computed",
		"recording", rec.ID,
		"channel", name,
		"overall_quality", cq.OverallQuality,
		"snr_flagged_pct", snrStats.PercentageFlagged,
		"amplitude_flagged_pct", ampStats.PercentageFlagged,
	)
	return cq, nil
}

// computeSNR slides the SNR scorer over the channel and appends the
// "<name>_SNR" derived channel.
func (c *Checker) computeSNR(rec *recording.Recording, ch *recording.Channel, times []float64, endTime float64) (*MetricStats, error) {
	scorer := SNRScorer{SampleRate: ch.SamplingRate, Alpha: c.params.SNRAlpha}
	points := Slide(ch.Samples, times, endTime, c.params.WindowSizeSec, c.params.StepSec, scorer.Score)

	scores := make([]float64, len(points))
	flags := make([]int, len(points))
	for i, p := range points {
		scores[i] = p.Score
		flags[i] = scorer.Flag(p.Score)
	}

	derived := recording.NewChannel(ch.Name+SNRSuffix, scores, c.params.OutputRate())
	derived.SNRFlags = flags
	if err := rec.AppendChannel(derived); err != nil {
		return nil, err
	}
	return NewMetricStats(scores, flags), nil
}

// computeAmplitude slides the energy-density scorer over the channel,
// flags windows against the whole-signal adaptive baseline, and appends
// the "<name>_Amplitude" derived channel.
func (c *Checker) computeAmplitude(rec *recording.Recording, ch *recording.Channel, times []float64, endTime float64) (*MetricStats, error) {
	scorer := AmplitudeScorer{WindowSizeSec: c.params.WindowSizeSec}
	points := Slide(ch.Samples, times, endTime, c.params.WindowSizeSec, c.params.StepSec, scorer.Score)

	baseline := AmplitudeBaseline(ch.Samples, c.params.AmplitudeBeta)

	scores := make([]float64, len(points))
	flags := make([]int, len(points))
	for i, p := range points {
		scores[i] = p.Score
		flags[i] = FlagBelow(p.Score, baseline)
	}

	derived := recording.NewChannel(ch.Name+AmplitudeSuffix, scores, c.params.OutputRate())
	derived.AmplitudeFlags = flags
	if err := rec.AppendChannel(derived); err != nil {
		return nil, err
	}
	return NewMetricStats(scores, flags), nil
}
