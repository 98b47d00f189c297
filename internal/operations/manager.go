package operations

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"physioqc/internal/dsp"
	"physioqc/internal/exporter"
	"physioqc/internal/features"
	"physioqc/internal/quality"
	"physioqc/internal/recording"
	"physioqc/internal/window"
)

// LoadFunc loads one recording from disk. Injected so tests can feed
// synthetic recordings without EDF fixtures.
type LoadFunc func(path string) (*recording.Recording, error)

// Options configures a Manager. Zero values fall back to sensible
// defaults in NewManager.
type Options struct {
	// Params are the sliding-window quality parameters.
	Params quality.Params
	// Channels restricts quality checks to these channel names; empty
	// means all channels.
	Channels []string
	// ChannelConcurrency bounds parallel channel scoring per recording.
	ChannelConcurrency int
	// Force reprocesses files even when the tracker says they are done.
	Force bool
	// Load loads one recording; defaults to recording.Load.
	Load LoadFunc
	// Provider cleans signals for feature extraction; defaults to the
	// in-tree basic provider.
	Provider dsp.Provider
	Logger   *slog.Logger
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Discovered int           `json:"discovered"`
	Processed  int           `json:"processed"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Failures   []string      `json:"failures,omitempty"`
}

// Manager runs the batch pipeline over a data directory. Recordings are
// processed sequentially; a failure in one recording is recorded and the
// batch moves on, so a single corrupt file cannot sink a whole study run.
type Manager struct {
	params      quality.Params
	channels    []string
	concurrency int
	force       bool
	load        LoadFunc
	provider    dsp.Provider
	logger      *slog.Logger

	builder   *window.Builder
	checker   *quality.Checker
	extractor *features.Extractor
}

// NewManager creates a Manager from options, filling in defaults.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Load == nil {
		opts.Load = recording.Load
	}
	if opts.Provider == nil {
		opts.Provider = dsp.NewBasicProvider()
	}
	if opts.ChannelConcurrency < 1 {
		opts.ChannelConcurrency = 1
	}
	return &Manager{
		params:      opts.Params,
		channels:    opts.Channels,
		concurrency: opts.ChannelConcurrency,
		force:       opts.Force,
		load:        opts.Load,
		provider:    opts.Provider,
		logger:      opts.Logger,
		builder:     window.NewBuilder(opts.Logger),
		checker:     quality.NewChecker(opts.Params, opts.ChannelConcurrency, opts.Logger),
		extractor:   features.NewExtractor(opts.Logger),
	}
}

// Run discovers recordings under dataDir and processes each one, writing
// per-session outputs and a run-level quality workbook under outputDir.
// Only discovery, tracker, and workbook failures abort the run.
func (m *Manager) Run(ctx context.Context, dataDir, outputDir string) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := m.logger.With("run_id", summary.RunID)

	paths, err := DiscoverRecordings(dataDir)
	if err != nil {
		return nil, NewFatalError("recording discovery failed", err)
	}
	summary.Discovered = len(paths)
	log.InfoContext(ctx, "batch run starting",
		"data_dir", dataDir,
		"recordings", len(paths),
	)

	tracker, err := LoadTracker(outputDir, dataDir)
	if err != nil {
		return nil, NewFatalError("loading tracker failed", err)
	}

	var workbookRows []exporter.SummaryRow
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if !m.force {
			process, err := tracker.ShouldProcess(path)
			if err != nil {
				log.WarnContext(ctx, "tracker check failed, processing anyway",
					"path", path, "error", err)
			} else if !process {
				log.InfoContext(ctx, "already processed, skipping", "path", path)
				summary.Skipped++
				continue
			}
		}

		rec, rows, perr := m.processOne(ctx, path, outputDir)
		if perr != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, perr.Error())
			log.ErrorContext(ctx, "recording failed", "path", path, "error", perr)
			if IsFatal(perr) {
				return summary, perr
			}
			continue
		}
		if err := tracker.MarkProcessed(path, rec.ParticipantID, rec.VisitLabel); err != nil {
			log.WarnContext(ctx, "tracker update failed", "path", path, "error", err)
		}
		workbookRows = append(workbookRows, rows...)
		summary.Processed++
	}

	if err := tracker.Save(); err != nil {
		return summary, NewFatalError("saving tracker failed", err)
	}

	if len(workbookRows) > 0 {
		wbPath := filepath.Join(outputDir, "quality_summary.xlsx")
		if err := exporter.WriteSummaryWorkbook(wbPath, workbookRows); err != nil {
			return summary, NewIOError("export", "", err)
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	log.InfoContext(ctx, "batch run finished",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary, nil
}

// processOne runs the full pipeline for one recording and returns the
// loaded recording with its workbook rows.
func (m *Manager) processOne(ctx context.Context, path, outputDir string) (*recording.Recording, []exporter.SummaryRow, error) {
	rec, err := m.load(path)
	if err != nil {
		return nil, nil, WrapError(err, "load", path)
	}
	log := m.logger.With("recording", rec.ID, "participant", rec.ParticipantID)

	visit := window.ParseVisitType(rec.VisitLabel)
	windows := m.builder.Build(ctx, visit, rec.MarkerIndex(), nil)
	rec.SetWindows(windows)

	report, err := m.checker.CheckRecording(ctx, rec, m.channels)
	if err != nil {
		return nil, nil, WrapError(err, "quality", path)
	}

	processed := make(map[recording.SignalKind]*dsp.ProcessedSignal)
	for kind, ch := range features.SelectProcessable(rec) {
		sig, err := m.provider.Clean(ch.Samples, ch.SamplingRate)
		if err != nil {
			log.WarnContext(ctx, "signal cleaning failed, skipping kind",
				"kind", kind.String(),
				"channel", ch.Name,
				"error", err,
			)
			continue
		}
		processed[kind] = sig
	}

	rows := m.extractor.ExtractSession(ctx, rec, processed, windows)

	outDir := filepath.Join(outputDir, rec.ParticipantID, rec.VisitLabel)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, nil, NewIOError("export", path, err)
	}
	if err := exporter.WriteFeatureCSV(filepath.Join(outDir, "features.csv"), rows); err != nil {
		return nil, nil, NewIOError("export", path, err)
	}
	if err := exporter.WriteQualityReport(filepath.Join(outDir, "quality_report.json"), report); err != nil {
		return nil, nil, NewIOError("export", path, err)
	}

	log.InfoContext(ctx, "recording processed",
		"windows", len(windows),
		"feature_rows", len(rows),
		"channels_checked", len(report.Channels),
	)
	return rec, summaryRows(rec, report), nil
}

// summaryRows flattens a quality report into workbook rows, one per
// channel, sorted by channel name.
func summaryRows(rec *recording.Recording, report *quality.Report) []exporter.SummaryRow {
	names := make([]string, 0, len(report.Channels))
	for name := range report.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]exporter.SummaryRow, 0, len(names))
	for _, name := range names {
		cq := report.Channels[name]
		row := exporter.SummaryRow{
			ParticipantID:  rec.ParticipantID,
			VisitType:      rec.VisitLabel,
			Channel:        name,
			OverallQuality: cq.OverallQuality,
		}
		if cq.SNRStats != nil {
			row.SNRFlaggedPct = cq.SNRStats.PercentageFlagged
		}
		if cq.AmplitudeStats != nil {
			row.AmplitudeFlaggedPct = cq.AmplitudeStats.PercentageFlagged
		}
		rows = append(rows, row)
	}
	return rows
}

