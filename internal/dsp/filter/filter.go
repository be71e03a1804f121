// Package filter implements rational IIR filters: analog to digital design and direct-form application.
package filter

import (
	"math"
	"math/cmplx"
)

// LFilter filters x with the rational transfer function b(z)/a(z) using the transposed direct form II
// difference equation, starting from zero state. Coefficients are normalized by a[0]. The input is not modified.
func LFilter(b, a, x []float64) []float64 {
	order := max(len(a), len(b))
	nb := pad(b, order)
	na := pad(a, order)

	a0 := na[0]
	for i := range order {
		nb[i] /= a0
		na[i] /= a0
	}

	out := make([]float64, len(x))
	if order == 1 {
		for i, v := range x {
			out[i] = nb[0] * v
		}

		return out
	}

	z := make([]float64, order-1)

	for i, in := range x {
		y := nb[0]*in + z[0]
		for k := 1; k < order-1; k++ {
			z[k-1] = nb[k]*in + z[k] - na[k]*y
		}

		z[order-2] = nb[order-1]*in - na[order-1]*y
		out[i] = y
	}

	return out
}

// Bilinear maps an analog filter, given as polynomial coefficients in descending powers of s, to a digital
// filter through s = 2*fs*(1-z^-1)/(1+z^-1). The result is normalized so that a[0] == 1.
func Bilinear(b, a []float64, fs float64) ([]float64, []float64) {
	d := len(a) - 1
	n := len(b) - 1
	m := max(n, d)

	bz := make([]float64, m+1)
	az := make([]float64, m+1)

	for j := 0; j <= m; j++ {
		for i := 0; i <= n; i++ {
			for k := 0; k <= i; k++ {
				l := j - k
				if l < 0 || l > m-i {
					continue
				}

				bz[j] += binomial(i, k) * binomial(m-i, l) * b[n-i] * math.Pow(2*fs, float64(i)) * sign(k)
			}
		}

		for i := 0; i <= d; i++ {
			for k := 0; k <= i; k++ {
				l := j - k
				if l < 0 || l > m-i {
					continue
				}

				az[j] += binomial(i, k) * binomial(m-i, l) * a[d-i] * math.Pow(2*fs, float64(i)) * sign(k)
			}
		}
	}

	a0 := az[0]
	for i := range bz {
		bz[i] /= a0
		az[i] /= a0
	}

	return bz, az
}

// Polymul multiplies two polynomials given in descending powers.
func Polymul(p, q []float64) []float64 {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}

	out := make([]float64, len(p)+len(q)-1)
	for i, pv := range p {
		for j, qv := range q {
			out[i+j] += pv * qv
		}
	}

	return out
}

// Response evaluates b(z)/a(z) at the given frequency.
func Response(b, a []float64, freq, fs float64) complex128 {
	w := 2 * math.Pi * freq / fs
	zInv := cmplx.Exp(complex(0, -w))

	var num, den complex128

	p := complex(1, 0)
	for i := range max(len(a), len(b)) {
		if i < len(b) {
			num += complex(b[i], 0) * p
		}

		if i < len(a) {
			den += complex(a[i], 0) * p
		}

		p *= zInv
	}

	return num / den
}

// MagnitudeDB returns 20*log10(|H|) at the given frequency.
func MagnitudeDB(b, a []float64, freq, fs float64) float64 {
	return 20 * math.Log10(cmplx.Abs(Response(b, a, freq, fs)))
}

// Pad returns a copy of c zero-extended (or truncated) to n taps.
func Pad(c []float64, n int) []float64 {
	return pad(c, n)
}

func pad(c []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, c)

	return out
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}

	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}

	return r
}

func sign(k int) float64 {
	if k%2 == 1 {
		return -1
	}

	return 1
}
