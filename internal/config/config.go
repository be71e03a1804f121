// Package config loads the process-wide settings: audio format, analysis defaults and presentation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/farcloser/primordium/format"
	"github.com/spf13/viper"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/nominal"
	"github.com/farcloser/snare/internal/types"
)

const envPrefix = "SNARE"

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	Audio       AudioConfig       `mapstructure:"audio"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Prefetch    PrefetchConfig    `mapstructure:"prefetch"`
}

// AudioConfig is fixed for the lifetime of the process.
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	// SampleWidth in bytes, 2 or 3.
	SampleWidth int `mapstructure:"sample_width"`
	// BlockSize in samples. Zero means ten seconds worth.
	BlockSize int `mapstructure:"block_size"`
}

type AnalysisConfig struct {
	FrequencyWeighting string  `mapstructure:"frequency_weighting"`
	TimeWeighting      string  `mapstructure:"time_weighting"`
	NthOctave          int     `mapstructure:"nth_octave"`
	Resolution         float64 `mapstructure:"resolution"`
	// SettleSeconds of history fed to the level meter ahead of a selection. Zero disables it.
	SettleSeconds float64 `mapstructure:"settle_seconds"`
}

type CalibrationConfig struct {
	ReferenceDb float64 `mapstructure:"reference_db"`
}

type PrefetchConfig struct {
	Workers int `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "console")

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.sample_width", 2)
	v.SetDefault("audio.block_size", 0)

	v.SetDefault("analysis.frequency_weighting", string(types.WeightingA))
	v.SetDefault("analysis.time_weighting", string(types.TimeSlow))
	v.SetDefault("analysis.nth_octave", 3)
	v.SetDefault("analysis.resolution", 10.0)
	v.SetDefault("analysis.settle_seconds", 0.0)

	v.SetDefault("calibration.reference_db", dsp.ReferenceDb)

	v.SetDefault("prefetch.workers", 2)
}

// Load reads the optional configuration file at path, then SNARE_* environment overrides (SNARE_AUDIO_SAMPLE_RATE
// for audio.sample_rate), on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading configuration %q: %w", path, err)
		}

		slog.Debug("config.Load", "file", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if cfg.Audio.BlockSize == 0 {
		cfg.Audio.BlockSize = cfg.Audio.SampleRate * 10
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every value that is not checked again at use.
func Validate(cfg *Config) error {
	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalid)
	}

	if _, err := types.DepthFromWidth(cfg.Audio.SampleWidth); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if cfg.Audio.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be positive", ErrInvalid)
	}

	if _, err := types.ParseFrequencyWeighting(cfg.Analysis.FrequencyWeighting); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := types.ParseTimeWeighting(cfg.Analysis.TimeWeighting); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := nominal.Bands(cfg.Analysis.NthOctave); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if cfg.Analysis.Resolution <= 0 {
		return fmt.Errorf("%w: histogram resolution must be positive", ErrInvalid)
	}

	if cfg.Analysis.SettleSeconds < 0 {
		return fmt.Errorf("%w: settle duration cannot be negative", ErrInvalid)
	}

	if cfg.Calibration.ReferenceDb <= 0 {
		return fmt.Errorf("%w: reference level must be positive", ErrInvalid)
	}

	if cfg.Prefetch.Workers < 0 {
		return fmt.Errorf("%w: prefetch workers cannot be negative", ErrInvalid)
	}

	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := format.GetFormatter(cfg.OutputFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.LogLevel))

	return level, err
}

// PCMFormat is the store format described by the audio section.
func (c *Config) PCMFormat() types.PCMFormat {
	depth, _ := types.DepthFromWidth(c.Audio.SampleWidth)

	return types.PCMFormat{
		SampleRate: c.Audio.SampleRate,
		BitDepth:   depth,
		BlockSize:  c.Audio.BlockSize,
	}
}

// SettleSamples converts the settle duration to samples.
func (c *Config) SettleSamples() int {
	return int(c.Analysis.SettleSeconds * float64(c.Audio.SampleRate))
}
