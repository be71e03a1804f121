package kernel

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/nominal"
	"github.com/farcloser/snare/internal/types"
)

// FFTSize gives at least 32 bins in the lowest plotted band.
const FFTSize = 1 << 18

// topOctaveBand is the 16 kHz full-octave band. Its computed upper edge lies beyond Nyquist at the supported sample
// rates, so it is stretched to the last bin instead.
const topOctaveBand = 96

// Band locates one fractional octave band on a frequency axis.
type Band struct {
	Index    int
	Nominal  float64
	Center   float64
	Lower    float64
	Upper    float64
	LowerBin int
	UpperBin int
}

// Plan maps every band of an octave fraction onto the bins of an ascending frequency axis.
func Plan(axis []float64, nthOctave int) ([]Band, error) {
	table, err := nominal.Bands(nthOctave)
	if err != nil {
		return nil, err
	}

	var bands []Band

	for idx := table.Start; idx <= table.Final; idx += nominal.Step(nthOctave) {
		center := nominal.CenterExact(idx, nthOctave)
		lower, upper := nominal.Edges(center, nthOctave)

		band := Band{
			Index:    idx,
			Nominal:  nominal.Frequency(idx),
			Center:   center,
			Lower:    lower,
			Upper:    upper,
			LowerBin: dsp.IndexOfNearest(axis, lower),
		}

		if idx == topOctaveBand && nthOctave == 1 {
			band.UpperBin = len(axis) - 1
		} else {
			band.UpperBin = dsp.IndexOfNearest(axis, upper)
		}

		bands = append(bands, band)
	}

	return bands, nil
}

// BandEnergies sums power over [LowerBin, UpperBin) for each band.
func BandEnergies(power []float64, bands []Band) []float64 {
	out := make([]float64, len(bands))
	for i, b := range bands {
		if b.UpperBin > b.LowerBin {
			out[i] = floats.Sum(power[b.LowerBin:b.UpperBin])
		}
	}

	return out
}

// OctaveFFT computes fractional octave band levels from a single large FFT.
type OctaveFFT struct{}

func (OctaveFFT) Kind() types.Kind {
	return types.KindOctaveFFT
}

func (OctaveFFT) Run(ctx context.Context, buffer []float64, params Params) (*types.MeasurementResult, error) {
	if err := validate(params, false, true); err != nil {
		return nil, err
	}

	table, err := nominal.Bands(params.NthOctave)
	if err != nil {
		return nil, err
	}

	full, labels, err := nominal.Frequencies(params.NthOctave, table.Start, table.EveryNth)
	if err != nil {
		return nil, err
	}

	values, skip, err := weighted(buffer, params)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	power := dsp.PowerSpectrum(values[skip:], FFTSize)
	axis := dsp.Linspace(0, float64(params.SampleRate)/2, FFTSize/2)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	bands, err := Plan(axis, params.NthOctave)
	if err != nil {
		return nil, err
	}

	res := result(types.KindOctaveFFT, params)
	res.TimeWeighting = ""
	res.NthOctave = params.NthOctave
	res.X = full
	res.Labels = labels
	res.Y = dsp.ToDb(BandEnergies(power, bands), params.scale())

	return res, nil
}
