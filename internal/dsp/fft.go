package dsp

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT returns the full complex spectrum of values, zero-padded or truncated to size points.
func FFT(values []float64, size int) []complex128 {
	if size <= 0 {
		return []complex128{}
	}

	in := fit(values, size)
	half := fourier.NewFFT(size).Coefficients(nil, in)

	out := make([]complex128, size)
	copy(out, half)

	for k := len(half); k < size; k++ {
		out[k] = cmplx.Conj(out[size-k])
	}

	return out
}

// PowerSpectrum returns the single-sided power spectrum of values over size/2 bins: (2*|X[k]|/size)^2.
func PowerSpectrum(values []float64, size int) []float64 {
	if size <= 1 {
		return []float64{}
	}

	coeffs := fourier.NewFFT(size).Coefficients(nil, fit(values, size))

	out := make([]float64, size/2)
	for k := range out {
		y := 2 * cmplx.Abs(coeffs[k]) / float64(size)
		out[k] = y * y
	}

	return out
}

func fit(values []float64, size int) []float64 {
	in := make([]float64, size)
	copy(in, values)

	return in
}
