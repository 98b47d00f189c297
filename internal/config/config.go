package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Quality    QualityConfig    `yaml:"quality" envconfig:"QUALITY"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
}

// PathsConfig locates the study data and output trees.
type PathsConfig struct {
	// DataDir is the root of the <participant>/<visit>/<file>.edf tree.
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	// OutputDir receives per-session exports and the run workbook.
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// QualityConfig holds the sliding-window quality parameters.
type QualityConfig struct {
	WindowSizeSec float64 `yaml:"window_size_sec" envconfig:"WINDOW_SIZE_SEC" validate:"gt=0"`
	StepSec       float64 `yaml:"step_sec" envconfig:"STEP_SEC" validate:"gt=0"`
	SNRAlpha      float64 `yaml:"snr_alpha" envconfig:"SNR_ALPHA"`
	AmplitudeBeta float64 `yaml:"amplitude_beta" envconfig:"AMPLITUDE_BETA" validate:"gte=0"`
	// Channels restricts quality checks to these names; empty means all.
	Channels []string `yaml:"channels" envconfig:"CHANNELS"`
}

// ProcessingConfig controls batch execution.
type ProcessingConfig struct {
	// ChannelConcurrency bounds parallel channel scoring per recording.
	ChannelConcurrency int `yaml:"channel_concurrency" envconfig:"CHANNEL_CONCURRENCY" validate:"gte=1"`
	// Force reprocesses recordings the tracker has already seen.
	Force bool `yaml:"force" envconfig:"FORCE"`
}

// envPrefix is the environment variable namespace, e.g.
// PHYSIOQC_QUALITY_WINDOW_SIZE_SEC.
const envPrefix = "PHYSIOQC"

// Load builds the configuration in precedence order: built-in defaults,
// then the YAML file when configFile names an existing one, then
// environment overrides, then validation. An empty configFile skips the
// file layer.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configFile, err)
			}
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks structural constraints plus the cross-field rule that
// the window step cannot exceed the window size.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Quality.StepSec > c.Quality.WindowSizeSec {
		return fmt.Errorf("quality step (%v) must not exceed window size (%v)",
			c.Quality.StepSec, c.Quality.WindowSizeSec)
	}
	return nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "output",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/physioqc.log",
		},
		Quality: QualityConfig{
			WindowSizeSec: 30,
			StepSec:       15,
			SNRAlpha:      0.5,
			AmplitudeBeta: 0.5,
		},
		Processing: ProcessingConfig{
			ChannelConcurrency: 4,
		},
	}
}
