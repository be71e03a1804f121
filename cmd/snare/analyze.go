//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/snare"
	"github.com/farcloser/snare/internal/config"
	"github.com/farcloser/snare/internal/types"
)

const (
	measurementSelection = "measurement"
	calibratorSelection  = "calibrator"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Measure a selection of one channel of an audio file",
		ArgsUsage: "<file>",
		Flags: append(audioFlags(),
			&cli.StringFlag{
				Name:    "kernel",
				Aliases: []string{"k"},
				Usage:   "Comma-separated kernels: spl, histogram, octave, example",
				Value:   "spl",
			},
			&cli.StringSliceFlag{
				Name:  "select",
				Usage: "Range to measure as start:end in seconds, or samples with an n suffix (repeatable, default: all)",
			},
			&cli.StringFlag{
				Name:  "frequency-weighting",
				Usage: "Frequency weighting: A, B, C, Z",
			},
			&cli.StringFlag{
				Name:  "time-weighting",
				Usage: "Time weighting: slow, fast, impulse",
			},
			&cli.IntFlag{
				Name:  "nth-octave",
				Usage: "Octave fraction of the octave kernel: 1, 3, 6, 12, 24",
			},
			&cli.FloatFlag{
				Name:  "resolution",
				Usage: "Histogram bins per dB",
			},
			&cli.FloatFlag{
				Name:  "settle",
				Usage: "Seconds of preceding audio fed through the filters and discarded",
			},
			&cli.StringFlag{
				Name:  "calibrate",
				Usage: "Range of a calibrator tone on the same channel, as start:end",
			},
			&cli.FloatFlag{
				Name:  "reference-db",
				Usage: "Level of the calibrator tone in dB SPL",
			},
			&cli.FloatFlag{
				Name:  "calibration",
				Usage: "Known calibration factor, in Pascal per sample unit",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"D"},
				Usage:   "Output the raw measurement series",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			kinds, err := parseKinds(cmd.String("kernel"))
			if err != nil {
				return err
			}

			bench := snare.New(ctx, cfg.PCMFormat(), cfg.Prefetch.Workers)
			defer bench.Close()

			inputPath := cmd.Args().First()

			channels, err := openInput(ctx, bench, inputPath, cmd.Int("stream"))
			if err != nil {
				return err
			}

			channel, err := pickChannel(channels, cmd.Int("channel"))
			if err != nil {
				return err
			}

			if err = applyCalibration(bench, cmd, cfg, channel); err != nil {
				return err
			}

			points, err := parseRanges(cmd.StringSlice("select"), cfg.Audio.SampleRate, channel.Length)
			if err != nil {
				return err
			}

			if _, err = bench.Select(channel.ID, measurementSelection, points); err != nil {
				return err
			}

			health, err := bench.Inspect(channel.ID, measurementSelection)
			if err != nil {
				return err
			}

			results, err := bench.AnalyzeAll(ctx, channel.ID, measurementSelection, kinds, options(cfg))
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return outputResults(channel, health, results, cfg.OutputFormat, cmd.Bool("debug"))
		},
	}
}

func parseKinds(raw string) ([]snare.Kind, error) {
	var kinds []snare.Kind

	for name := range strings.SplitSeq(raw, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}

		kind, err := types.ParseKind(name)
		if err != nil {
			return nil, err
		}

		kinds = append(kinds, kind)
	}

	if len(kinds) == 0 {
		return []snare.Kind{snare.KindSPL}, nil
	}

	return kinds, nil
}

func applyCalibration(bench *snare.Workbench, cmd *cli.Command, cfg *config.Config, channel snare.Channel) error {
	if cmd.IsSet("calibration") {
		_, err := bench.SetCalibration(channel.ID, cmd.Float("calibration"))

		return err
	}

	if !cmd.IsSet("calibrate") {
		return nil
	}

	points, err := parseRanges([]string{cmd.String("calibrate")}, cfg.Audio.SampleRate, channel.Length)
	if err != nil {
		return fmt.Errorf("--calibrate: %w", err)
	}

	if _, err = bench.Select(channel.ID, calibratorSelection, points); err != nil {
		return err
	}

	_, err = bench.Calibrate(channel.ID, calibratorSelection, cfg.Calibration.ReferenceDb)

	return err
}

func options(cfg *config.Config) snare.Options {
	// Values were validated by loadConfig.
	frequency, _ := types.ParseFrequencyWeighting(cfg.Analysis.FrequencyWeighting)
	timeWeighting, _ := types.ParseTimeWeighting(cfg.Analysis.TimeWeighting)

	return snare.Options{
		FrequencyWeighting: frequency,
		TimeWeighting:      timeWeighting,
		NthOctave:          cfg.Analysis.NthOctave,
		Resolution:         cfg.Analysis.Resolution,
		SettleSamples:      cfg.SettleSamples(),
	}
}
