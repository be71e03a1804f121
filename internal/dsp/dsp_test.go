package dsp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/types"
)

func sine(freq, amplitude float64, n, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}

	return out
}

func TestFrequencyWeightZIsIdentity(t *testing.T) {
	x := sine(440, 0.3, 512, 44100)
	x[7] = math.Inf(1)

	out, err := dsp.FrequencyWeight(x, types.WeightingZ, 44100)
	require.NoError(t, err)
	assert.Equal(t, x, out)

	out[0] = 42
	assert.NotEqual(t, 42.0, x[0])
}

func TestFrequencyWeightA1kHzUnity(t *testing.T) {
	const sr = 48000

	x := sine(1000, 1, sr, sr)

	out, err := dsp.FrequencyWeight(x, types.WeightingA, sr)
	require.NoError(t, err)
	assert.InDelta(t, dsp.RMS(x[sr/2:]), dsp.RMS(out[sr/2:]), 0.01)
}

func TestFrequencyWeightUnsupported(t *testing.T) {
	_, err := dsp.FrequencyWeight([]float64{1}, "X", 44100)
	require.ErrorIs(t, err, types.ErrUnsupportedParameter)
}

func TestTimeConstants(t *testing.T) {
	for label, want := range map[types.TimeWeighting]float64{
		types.TimeSlow:    1,
		types.TimeFast:    0.125,
		types.TimeImpulse: 0.035,
	} {
		got, err := dsp.TimeConstant(label)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 0)
	}

	_, err := dsp.TimeConstant("peak")
	require.ErrorIs(t, err, types.ErrUnsupportedParameter)

	_, err = dsp.TimeWeight([]float64{1}, "peak", 44100)
	require.ErrorIs(t, err, types.ErrUnsupportedParameter)
}

func TestTimeWeightSettlesToInput(t *testing.T) {
	const sr = 8000

	in := make([]float64, sr*2)
	for i := range in {
		in[i] = 0.25
	}

	out, err := dsp.TimeWeight(in, types.TimeFast, sr)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out[len(out)-1], 1e-6)
	assert.Less(t, out[0], out[sr/10])

	// Slow integrates more slowly than fast.
	slow, err := dsp.TimeWeight(in, types.TimeSlow, sr)
	require.NoError(t, err)
	assert.Less(t, slow[sr/10], out[sr/10])
}

func TestToDbFullScale(t *testing.T) {
	// Mean square of a full scale 16-bit sine.
	a := 32768.0 * 32768.0 / 2

	db := dsp.ToDb([]float64{a}, dsp.Scale{Depth: types.Depth16})
	assert.InDelta(t, 0.0, db[0], 1e-12)

	db = dsp.ToDb([]float64{0}, dsp.Scale{Depth: types.Depth24})
	assert.True(t, math.IsInf(db[0], -1))
}

func TestToDbCalibrated(t *testing.T) {
	in := []float64{0, dsp.P0 * dsp.P0, 1, dsp.P0 * dsp.P0 / 100}

	db := dsp.ToDb(in, dsp.Scale{Calibrated: true, Depth: types.Depth16})
	assert.InDelta(t, 0.0, db[0], 0)
	assert.InDelta(t, 0.0, db[1], 1e-12)
	assert.InDelta(t, 93.979, db[2], 1e-3)
	assert.InDelta(t, 0.0, db[3], 0)

	// The input is left untouched.
	assert.InDelta(t, 0.0, in[0], 0)
}

func TestCalibrationAnchor(t *testing.T) {
	reference := sine(1000, 1234, 44100, 44100)
	rms := dsp.RMS(reference)
	factor := dsp.DbSplToPascal(dsp.ReferenceDb) / rms

	db := dsp.ToDb([]float64{rms * rms * factor * factor}, dsp.Scale{Calibrated: true})
	assert.InDelta(t, 94.0, db[0], 1e-9)
}

func TestScaleUnit(t *testing.T) {
	assert.Equal(t, types.UnitDbSPL, dsp.Scale{Calibrated: true}.Unit())
	assert.Equal(t, types.UnitDbFS, dsp.Scale{}.Unit())
}

func TestRMS(t *testing.T) {
	assert.InDelta(t, 0.0, dsp.RMS(nil), 0)
	assert.InDelta(t, 2.0, dsp.RMS([]float64{2, -2, 2, -2}), 1e-15)
}

func TestIndexOfNearest(t *testing.T) {
	axis := []float64{10, 20}
	assert.Equal(t, 0, dsp.IndexOfNearest(axis, 15))
	assert.Equal(t, 1, dsp.IndexOfNearest(axis, 16))
	assert.Equal(t, 0, dsp.IndexOfNearest(axis, 14))
	assert.Equal(t, 0, dsp.IndexOfNearest(axis, -5))
	assert.Equal(t, 1, dsp.IndexOfNearest(axis, 500))
	assert.Equal(t, 1, dsp.IndexOfNearest(axis, 20))

	assert.Equal(t, 2, dsp.IndexOfNearest([]float64{0, 1, 2, 3}, 2.2))
	assert.Panics(t, func() { dsp.IndexOfNearest(nil, 1) })
}

func TestLinspace(t *testing.T) {
	assert.Empty(t, dsp.Linspace(0, 1, 0))
	assert.Equal(t, []float64{3}, dsp.Linspace(3, 9, 1))
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, dsp.Linspace(0, 1, 3), 1e-15)
}

func TestTimeAxis(t *testing.T) {
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75}, dsp.TimeAxis(4, 4), 1e-15)
}

func TestPowerSpectrumBinCenteredTone(t *testing.T) {
	const (
		size = 1024
		sr   = 1024
		bin  = 64
	)

	p := dsp.PowerSpectrum(sine(bin, 3, size, sr), size)
	require.Len(t, p, size/2)
	assert.InDelta(t, 9.0, p[bin], 1e-9)
	assert.InDelta(t, 0.0, p[bin+5], 1e-9)
}

func TestPowerSpectrumPadsAndTruncates(t *testing.T) {
	short := dsp.PowerSpectrum([]float64{1}, 8)
	require.Len(t, short, 4)

	// A single unit impulse has a flat spectrum of (2/8)^2.
	for _, v := range short {
		assert.InDelta(t, 1.0/16, v, 1e-15)
	}

	long := dsp.PowerSpectrum(make([]float64, 100), 8)
	assert.Len(t, long, 4)
}

func TestFFTHermitian(t *testing.T) {
	spectrum := dsp.FFT([]float64{1, 2, 3, 4, 5}, 8)
	require.Len(t, spectrum, 8)
	assert.InDelta(t, 15.0, real(spectrum[0]), 1e-12)

	for k := 1; k < 8; k++ {
		assert.InDelta(t, real(spectrum[k]), real(spectrum[8-k]), 1e-12)
		assert.InDelta(t, imag(spectrum[k]), -imag(spectrum[8-k]), 1e-12)
	}
}
