//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/snare"
	"github.com/farcloser/snare/internal/calibration"
)

func calibrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "calibrate",
		Usage:     "Derive the calibration factor of a channel from a recorded calibrator tone",
		ArgsUsage: "<file>",
		Flags: append(audioFlags(),
			&cli.StringSliceFlag{
				Name:  "select",
				Usage: "Range of the calibrator tone as start:end in seconds, or samples with an n suffix (default: all)",
			},
			&cli.FloatFlag{
				Name:  "reference-db",
				Usage: "Level of the calibrator tone in dB SPL",
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

			points, err := parseRanges(cmd.StringSlice("select"), cfg.Audio.SampleRate, channel.Length)
			if err != nil {
				return err
			}

			if _, err = bench.Select(channel.ID, calibratorSelection, points); err != nil {
				return err
			}

			factor, err := bench.Calibrate(channel.ID, calibratorSelection, cfg.Calibration.ReferenceDb)
			if err != nil {
				return err
			}

			formatter, err := format.GetFormatter(cfg.OutputFormat)
			if err != nil {
				return err
			}

			data := &format.Data{
				Object: channel.Name,
				Meta: map[string]any{
					"factor":       factor,
					"sensitivity":  calibration.Label(factor, cfg.PCMFormat().BitDepth),
					"reference_db": cfg.Calibration.ReferenceDb,
				},
			}

			return formatter.PrintAll([]*format.Data{data}, os.Stdout)
		},
	}
}
