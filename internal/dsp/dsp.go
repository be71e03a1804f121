//nolint:staticcheck // too dumb on Db vs. DB
package dsp

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/snare/internal/dsp/filter"
	"github.com/farcloser/snare/internal/nominal"
	"github.com/farcloser/snare/internal/types"
)

const (
	// P0 is the reference sound pressure, in Pascal.
	P0 = 20e-6
	// ReferenceDb is the level of a calibrator tone, in dB SPL.
	ReferenceDb = 94.0
	// zeroFloor replaces exact zeros before a calibrated log conversion.
	zeroFloor = 1e-12
)

// FrequencyWeight applies an A, B or C weighting filter to linear (not squared) samples.
// Z weighting returns an unmodified copy.
func FrequencyWeight(values []float64, label types.FrequencyWeighting, sampleRate int) ([]float64, error) {
	if label == types.WeightingZ {
		out := make([]float64, len(values))
		copy(out, values)

		return out, nil
	}

	b, a, err := nominal.Weighting(label, sampleRate)
	if err != nil {
		return nil, err
	}

	return filter.LFilter(b, a, values), nil
}

// TimeConstant returns the integration time of a time weighting, in seconds.
func TimeConstant(label types.TimeWeighting) (float64, error) {
	switch label {
	case types.TimeSlow:
		return 1.000, nil
	case types.TimeFast:
		return 0.125, nil
	case types.TimeImpulse:
		return 0.035, nil
	default:
		return 0, fmt.Errorf("%w: time weighting %q", types.ErrUnsupportedParameter, label)
	}
}

// TimeWeight integrates squared samples with a one-pole low-pass at -1/tau (bilinear transform at sampleRate), then
// scales the output by 1/tau so that a constant input settles at its own value.
func TimeWeight(squared []float64, label types.TimeWeighting, sampleRate int) ([]float64, error) {
	tau, err := TimeConstant(label)
	if err != nil {
		return nil, err
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", types.ErrUnsupportedParameter, sampleRate)
	}

	b, a := filter.Bilinear([]float64{1}, []float64{1, 1 / tau}, float64(sampleRate))
	out := filter.LFilter(b, a, squared)
	floats.Scale(1/tau, out)

	return out, nil
}

// Square returns the element-wise square of values.
func Square(values []float64) []float64 {
	out := make([]float64, len(values))
	floats.MulTo(out, values, values)

	return out
}

// Scale selects the decibel reference used by ToDb.
type Scale struct {
	// Calibrated selects dB SPL (values in Pascal squared). Otherwise dB full scale.
	Calibrated bool
	// Depth is the sample width used as the full scale reference.
	Depth types.BitDepth
}

// Unit is the decibel unit produced under this scale.
func (s Scale) Unit() types.Unit {
	if s.Calibrated {
		return types.UnitDbSPL
	}

	return types.UnitDbFS
}

// ToDb converts energetic (squared) values to decibels. The input is not modified.
//
// Uncalibrated: 10*log10(8a / (2^bits)^2), so a full scale sine reads 0 dBFS.
// Calibrated: 10*log10(a / p0^2), with exact zeros replaced by 1e-12 and negative levels clamped to 0.
func ToDb(energy []float64, scale Scale) []float64 {
	out := make([]float64, len(energy))

	if !scale.Calibrated {
		full := math.Pow(math.Pow(2, float64(scale.Depth.Bytes())*8), 2)
		for i, a := range energy {
			out[i] = 10 * math.Log10(8*a/full)
		}

		return out
	}

	for i, a := range energy {
		if a == 0 {
			a = zeroFloor
		}

		db := 10 * math.Log10(a/(P0*P0))
		if db < 0 {
			db = 0
		}

		out[i] = db
	}

	return out
}

// RMS returns sqrt(mean(a^2)). It is zero for an empty input.
func RMS(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}

	return math.Sqrt(floats.Dot(a, a) / float64(len(a)))
}

// DbSplToPascal converts a sound pressure level to Pascal.
func DbSplToPascal(db float64) float64 {
	return P0 * math.Pow(10, db/20)
}

// IndexOfNearest returns the index of the element of the ascending slice closest to value. On an exact tie the
// lower index wins. Values outside the range map to the first or last index. Panics on an empty slice.
func IndexOfNearest(sorted []float64, value float64) int {
	if len(sorted) == 0 {
		panic("dsp: IndexOfNearest on empty slice")
	}

	idx := sort.SearchFloat64s(sorted, value)

	switch {
	case idx == 0:
		return 0
	case idx == len(sorted):
		return len(sorted) - 1
	case math.Abs(value-sorted[idx-1]) <= math.Abs(value-sorted[idx]):
		return idx - 1
	default:
		return idx
	}
}

// Linspace returns n evenly spaced values from start to stop, both included.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	default:
		return floats.Span(make([]float64, n), start, stop)
	}
}

// TimeAxis returns i/sampleRate for i in [0, n).
func TimeAxis(n, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(sampleRate)
	}

	return out
}
