// Command physioqc batch-processes physiological study recordings:
// window construction from event markers, sliding-window signal quality
// checks, and per-phase feature extraction, with results written as CSV,
// JSON, and a run-level workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"physioqc/internal/config"
	"physioqc/internal/infrastructure"
	"physioqc/internal/operations"
	"physioqc/internal/quality"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "config.yaml", "path to the YAML config file (optional)")
	dataDir := flag.String("data", "", "data directory root (overrides config)")
	outputDir := flag.String("output", "", "output directory (overrides config)")
	force := flag.Bool("force", false, "reprocess recordings even when already tracked")
	clearParticipant := flag.String("clear-participant", "", "drop tracker entries for one participant, then exit")
	clearAll := flag.Bool("clear-all", false, "drop all tracker entries, then exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}
	if *force {
		cfg.Processing.Force = true
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.ContextWithTraceID(ctx)

	if *clearParticipant != "" || *clearAll {
		return runClear(ctx, logger, cfg, *clearParticipant, *clearAll)
	}

	manager := operations.NewManager(operations.Options{
		Params: quality.Params{
			WindowSizeSec: cfg.Quality.WindowSizeSec,
			StepSec:       cfg.Quality.StepSec,
			SNRAlpha:      cfg.Quality.SNRAlpha,
			AmplitudeBeta: cfg.Quality.AmplitudeBeta,
		},
		Channels:           cfg.Quality.Channels,
		ChannelConcurrency: cfg.Processing.ChannelConcurrency,
		Force:              cfg.Processing.Force,
		Logger:             logger,
	})

	summary, err := manager.Run(ctx, cfg.Paths.DataDir, cfg.Paths.OutputDir)
	if err != nil {
		logger.ErrorContext(ctx, "batch run aborted", "error", err)
		return 1
	}
	if summary.Failed > 0 {
		logger.WarnContext(ctx, "batch run completed with failures",
			"failed", summary.Failed,
			"processed", summary.Processed,
		)
		return 2
	}
	return 0
}

// runClear handles the tracker maintenance flags.
func runClear(ctx context.Context, logger *slog.Logger, cfg *config.Config, participant string, all bool) int {
	tracker, err := operations.LoadTracker(cfg.Paths.OutputDir, cfg.Paths.DataDir)
	if err != nil {
		logger.ErrorContext(ctx, "loading tracker failed", "error", err)
		return 1
	}

	var removed int
	if all {
		removed = tracker.ClearAll()
	} else {
		removed = tracker.ClearParticipant(participant)
	}

	if err := tracker.Save(); err != nil {
		logger.ErrorContext(ctx, "saving tracker failed", "error", err)
		return 1
	}
	logger.InfoContext(ctx, "tracker entries cleared",
		"removed", removed,
		"remaining", tracker.Len(),
	)
	return 0
}
