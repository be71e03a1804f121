package snare

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/farcloser/snare/internal/kernel"
	"github.com/farcloser/snare/internal/types"
)

// Analysis kinds.
const (
	KindSPL       = types.KindSPL
	KindHistogram = types.KindHistogram
	KindOctaveFFT = types.KindOctaveFFT
	KindExample   = types.KindExample
)

// Analyze runs the kernel of the given kind over a named selection.
//
// The channel calibration is read once, before any decibel conversion: results are in dB SPL when the channel is
// calibrated, in dBFS otherwise. The settle history is read from the samples preceding the first selected range and
// is zero padded when the channel does not have enough of it.
func (w *Workbench) Analyze(
	ctx context.Context,
	id ChannelID,
	name string,
	kind Kind,
	opts Options,
) (*MeasurementResult, error) {
	runner, err := kernel.ForKind(kind)
	if err != nil {
		return nil, err
	}

	if opts.SettleSamples < 0 {
		return nil, fmt.Errorf("%w: settle samples %d", ErrUnsupportedParameter, opts.SettleSamples)
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	prepared, err := w.buffers.Prepare(id, name, opts.SettleSamples)
	if err != nil {
		return nil, err
	}

	params := kernel.Params{
		SampleRate:         w.format.SampleRate,
		Depth:              w.format.BitDepth,
		Calibrated:         prepared.Calibrated,
		FrequencyWeighting: opts.FrequencyWeighting,
		TimeWeighting:      opts.TimeWeighting,
		NthOctave:          opts.NthOctave,
		Resolution:         opts.Resolution,
		Settle:             prepared.Settle,
	}

	slog.Debug("snare.Analyze",
		"channel", id,
		"selection", name,
		"kind", kind,
		"samples", len(prepared.Samples),
		"calibrated", prepared.Calibrated,
	)

	return runner.Run(ctx, prepared.Samples, params)
}

// AnalyzeAll runs every kind in turn over the same selection. It stops at the first error.
func (w *Workbench) AnalyzeAll(
	ctx context.Context,
	id ChannelID,
	name string,
	kinds []Kind,
	opts Options,
) ([]*MeasurementResult, error) {
	results := make([]*MeasurementResult, 0, len(kinds))

	for _, kind := range kinds {
		result, err := w.Analyze(ctx, id, name, kind, opts)
		if err != nil {
			return results, fmt.Errorf("%s: %w", kind, err)
		}

		results = append(results, result)
	}

	return results, nil
}
