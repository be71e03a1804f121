package filter_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/snare/internal/dsp/filter"
)

func TestLFilterImpulseResponse(t *testing.T) {
	// y[n] = x[n] + 0.5*y[n-1]
	out := filter.LFilter([]float64{1}, []float64{1, -0.5}, []float64{1, 0, 0, 0})
	assert.InDeltaSlice(t, []float64{1, 0.5, 0.25, 0.125}, out, 1e-15)
}

func TestLFilterNormalizesByA0(t *testing.T) {
	out := filter.LFilter([]float64{2, 2}, []float64{2}, []float64{1, 2, 3})
	assert.InDeltaSlice(t, []float64{1, 3, 5}, out, 1e-15)
}

func TestLFilterDoesNotMutateInput(t *testing.T) {
	in := []float64{1, -1, 1}
	_ = filter.LFilter([]float64{0.5, 0.5}, []float64{1, -0.2}, in)
	assert.Equal(t, []float64{1, -1, 1}, in)
}

func TestLFilterTrailingZeroTaps(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	b := []float64{0.3, 0.2}
	a := []float64{1, -0.1}

	want := filter.LFilter(b, a, x)
	got := filter.LFilter(filter.Pad(b, 10), filter.Pad(a, 10), x)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestBilinearOnePole(t *testing.T) {
	// 1/(s+p) maps to b = [1, 1]/(2fs+p), a = [1, (p-2fs)/(2fs+p)].
	const fs, p = 100.0, 8.0

	b, a := filter.Bilinear([]float64{1}, []float64{1, p}, fs)
	require.Len(t, b, 2)
	require.Len(t, a, 2)

	k := 2*fs + p
	assert.InDelta(t, 1/k, b[0], 1e-15)
	assert.InDelta(t, 1/k, b[1], 1e-15)
	assert.InDelta(t, 1.0, a[0], 1e-15)
	assert.InDelta(t, (p-2*fs)/k, a[1], 1e-15)

	// DC gain of the analog prototype is 1/p.
	assert.InDelta(t, 1/p, real(filter.Response(b, a, 0, fs)), 1e-12)
}

func TestPolymul(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 2}, filter.Polymul([]float64{1, 1}, []float64{1, 2}))
	assert.Nil(t, filter.Polymul(nil, []float64{1}))
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, filter.MagnitudeDB([]float64{1}, []float64{1}, 1000, 48000), 1e-12)
	assert.InDelta(t, 20*math.Log10(0.5), filter.MagnitudeDB([]float64{0.5}, []float64{1}, 10, 48000), 1e-12)
}
