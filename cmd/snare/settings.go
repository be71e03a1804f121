package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/snare/internal/config"
)

// Flags shared by the commands that read audio.
func audioFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "sample-rate",
			Aliases: []string{"s"},
			Usage:   "Sample rate in Hz; non-wave inputs are resampled to it",
		},
		&cli.IntFlag{
			Name:    "sample-width",
			Aliases: []string{"w"},
			Usage:   "Sample width in bytes (2 or 3)",
		},
		&cli.IntFlag{
			Name:    "channel",
			Aliases: []string{"c"},
			Usage:   "Channel index in the input (0-based)",
		},
		&cli.IntFlag{
			Name:  "stream",
			Usage: "Audio stream index for non-wave inputs (0-based)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
		},
	}
}

// loadConfig reads the configuration, applies the command line overrides and sets the log level.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	if cmd.IsSet("format") {
		cfg.OutputFormat = cmd.String("format")
	}

	if cmd.IsSet("sample-rate") {
		// Block size follows the rate unless it was configured explicitly.
		if cfg.Audio.BlockSize == cfg.Audio.SampleRate*10 {
			cfg.Audio.BlockSize = cmd.Int("sample-rate") * 10
		}

		cfg.Audio.SampleRate = cmd.Int("sample-rate")
	}

	if cmd.IsSet("sample-width") {
		cfg.Audio.SampleWidth = cmd.Int("sample-width")
	}

	if cmd.IsSet("frequency-weighting") {
		cfg.Analysis.FrequencyWeighting = cmd.String("frequency-weighting")
	}

	if cmd.IsSet("time-weighting") {
		cfg.Analysis.TimeWeighting = cmd.String("time-weighting")
	}

	if cmd.IsSet("nth-octave") {
		cfg.Analysis.NthOctave = cmd.Int("nth-octave")
	}

	if cmd.IsSet("resolution") {
		cfg.Analysis.Resolution = cmd.Float("resolution")
	}

	if cmd.IsSet("settle") {
		cfg.Analysis.SettleSeconds = cmd.Float("settle")
	}

	if cmd.IsSet("reference-db") {
		cfg.Calibration.ReferenceDb = cmd.Float("reference-db")
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	level, _ := cfg.Level()
	slog.SetLogLoggerLevel(level)

	return cfg, nil
}
