// Package nominal holds IEC 61672-1 reference data: frequency weighting filters, fractional octave band tables and
// nominal center frequencies.
package nominal

import (
	"fmt"
	"math"

	"github.com/farcloser/snare/internal/dsp/filter"
	"github.com/farcloser/snare/internal/types"
)

// Taps is the fixed length of the weighting coefficient sequences.
const Taps = 10

// Pole frequencies of the IEC 61672-1 analog weighting prototypes, in Hz.
const (
	f1 = 20.598997
	f2 = 107.65265
	f3 = 158.48932
	f4 = 737.86223
	f5 = 12194.217
)

// Gains in dB that bring each curve to 0 dB at 1 kHz.
const (
	gainA1000 = 1.9997
	gainB1000 = 0.1696
	gainC1000 = 0.0619
)

// Weighting returns the digital IIR coefficients (b, a) of the A, B or C weighting curve at the given sample rate.
// Z weighting is an identity pass that callers handle without a lookup, so it is rejected here.
func Weighting(label types.FrequencyWeighting, sampleRate int) ([]float64, []float64, error) {
	if sampleRate <= 0 {
		return nil, nil, fmt.Errorf("%w: sample rate %d", types.ErrUnsupportedParameter, sampleRate)
	}

	num, den, err := analog(label)
	if err != nil {
		return nil, nil, err
	}

	b, a := filter.Bilinear(num, den, float64(sampleRate))

	return filter.Pad(b, Taps), filter.Pad(a, Taps), nil
}

// analog returns the s-domain prototype of a weighting curve.
func analog(label types.FrequencyWeighting) ([]float64, []float64, error) {
	w1 := 2 * math.Pi * f1
	w5 := 2 * math.Pi * f5

	// Shared low and high double poles.
	den := filter.Polymul([]float64{1, 2 * w5, w5 * w5}, []float64{1, 2 * w1, w1 * w1})

	switch label {
	case types.WeightingA:
		den = filter.Polymul(filter.Polymul(den, []float64{1, 2 * math.Pi * f4}), []float64{1, 2 * math.Pi * f2})

		return []float64{w5 * w5 * math.Pow(10, gainA1000/20), 0, 0, 0, 0}, den, nil
	case types.WeightingB:
		den = filter.Polymul(den, []float64{1, 2 * math.Pi * f3})

		return []float64{w5 * w5 * math.Pow(10, gainB1000/20), 0, 0, 0}, den, nil
	case types.WeightingC:
		return []float64{w5 * w5 * math.Pow(10, gainC1000/20), 0, 0}, den, nil
	default:
		return nil, nil, fmt.Errorf("%w: no weighting coefficients for %q", types.ErrUnsupportedParameter, label)
	}
}
