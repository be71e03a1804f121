//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/kernel"
	"github.com/farcloser/snare/internal/nominal"
)

func bandsCommand() *cli.Command {
	return &cli.Command{
		Name:  "bands",
		Usage: "List the fractional octave bands and the FFT bins they cover",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "nth-octave",
				Usage: "Octave fraction: 1, 3, 6, 12, 24",
			},
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate in Hz",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			rate := float64(cfg.Audio.SampleRate)
			axis := dsp.Linspace(0, rate/2, kernel.FFTSize/2)

			bands, err := kernel.Plan(axis, cfg.Analysis.NthOctave)
			if err != nil {
				return err
			}

			lines := make([]any, 0, len(bands))
			for _, band := range bands {
				lines = append(lines, fmt.Sprintf("%8s Hz  %9.2f .. %9.2f Hz  bins %6d .. %6d",
					nominal.FormatFrequency(band.Nominal), band.Lower, band.Upper, band.LowerBin, band.UpperBin))
			}

			formatter, err := format.GetFormatter(cfg.OutputFormat)
			if err != nil {
				return err
			}

			data := &format.Data{
				Object: fmt.Sprintf("1/%d octave at %d Hz", cfg.Analysis.NthOctave, cfg.Audio.SampleRate),
				Meta: map[string]any{
					"bands": lines,
					"bin":   fmt.Sprintf("%.4f Hz", axis[1]),
				},
			}

			return formatter.PrintAll([]*format.Data{data}, os.Stdout)
		},
	}
}
