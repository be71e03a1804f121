// Package kernel implements the measurement kernels run over a calibrated selection buffer.
//
// Every kernel frequency-weights the linear samples first, then applies its own transform, then converts to
// decibels. Parameters are validated before any computation; numeric edge cases (silence, empty buffers) never
// produce an error. Kernels only observe the context between stages: a single filter or FFT pass always completes.
package kernel

import (
	"context"
	"fmt"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/types"
)

// Params configures a kernel run.
type Params struct {
	SampleRate int
	Depth      types.BitDepth
	// Calibrated selects the dB SPL scale. The buffer is expected to be in Pascal in that case.
	Calibrated         bool
	FrequencyWeighting types.FrequencyWeighting
	TimeWeighting      types.TimeWeighting
	// NthOctave is the band fraction used by the octave kernel (1, 3, 6, 12 or 24).
	NthOctave int
	// Resolution is the number of histogram bins per dB.
	Resolution float64
	// Settle is history fed through the filters ahead of the buffer. The matching outputs are dropped.
	Settle []float64
}

func (p Params) scale() dsp.Scale {
	return dsp.Scale{Calibrated: p.Calibrated, Depth: p.Depth}
}

// Kernel is one measurement algorithm.
type Kernel interface {
	Kind() types.Kind
	Run(ctx context.Context, buffer []float64, params Params) (*types.MeasurementResult, error)
}

//nolint:gochecknoglobals // closed registry
var registry = map[types.Kind]Kernel{
	types.KindSPL:       SPL{},
	types.KindHistogram: Histogram{},
	types.KindOctaveFFT: OctaveFFT{},
	types.KindExample:   Example{},
}

// ForKind returns the kernel registered for kind.
func ForKind(kind types.Kind) (Kernel, error) {
	k, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: kernel %q", types.ErrUnsupportedParameter, kind)
	}

	return k, nil
}

func validate(params Params, timeWeighted, decibels bool) error {
	if params.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", types.ErrUnsupportedParameter, params.SampleRate)
	}

	if !params.FrequencyWeighting.Valid() {
		return fmt.Errorf("%w: frequency weighting %q", types.ErrUnsupportedParameter, params.FrequencyWeighting)
	}

	if timeWeighted {
		if _, err := dsp.TimeConstant(params.TimeWeighting); err != nil {
			return err
		}
	}

	if decibels && !params.Calibrated {
		if _, err := types.DepthFromWidth(params.Depth.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// weighted frequency-weights the settle history followed by the buffer. It returns the number of leading outputs
// that belong to the history.
func weighted(buffer []float64, params Params) ([]float64, int, error) {
	in := buffer
	if len(params.Settle) > 0 {
		in = make([]float64, 0, len(params.Settle)+len(buffer))
		in = append(in, params.Settle...)
		in = append(in, buffer...)
	}

	out, err := dsp.FrequencyWeight(in, params.FrequencyWeighting, params.SampleRate)
	if err != nil {
		return nil, 0, err
	}

	return out, len(params.Settle), nil
}

// levels runs weight, square, time weight and dB conversion, checking ctx between stages.
func levels(ctx context.Context, buffer []float64, params Params) ([]float64, error) {
	values, skip, err := weighted(buffer, params)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	values, err = dsp.TimeWeight(dsp.Square(values), params.TimeWeighting, params.SampleRate)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	return dsp.ToDb(values[skip:], params.scale()), nil
}

func result(kind types.Kind, params Params) *types.MeasurementResult {
	return &types.MeasurementResult{
		Kind:               kind,
		Calibrated:         params.Calibrated,
		Unit:               params.scale().Unit(),
		FrequencyWeighting: params.FrequencyWeighting,
		TimeWeighting:      params.TimeWeighting,
	}
}
