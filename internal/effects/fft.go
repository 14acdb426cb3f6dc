package effects

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// directConvolveLimit is the work size below which time-domain convolution
// is cheaper than going through the FFT.
const directConvolveLimit = 1 << 15

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// convolve returns the first len(x) samples of the linear convolution of x
// and h.
func convolve(x, h []float64) []float64 {
	if len(x) == 0 || len(h) == 0 {
		return make([]float64, len(x))
	}
	if len(x)*len(h) <= directConvolveLimit {
		return convolveDirect(x, h)
	}

	n := nextPow2(len(x) + len(h) - 1)
	fft := fourier.NewFFT(n)
	xp := make([]float64, n)
	copy(xp, x)
	hp := make([]float64, n)
	copy(hp, h)

	xc := fft.Coefficients(nil, xp)
	hc := fft.Coefficients(nil, hp)
	for i := range xc {
		xc[i] *= hc[i]
	}
	// gonum's inverse is unnormalised.
	y := fft.Sequence(nil, xc)
	scale := 1 / float64(n)
	out := make([]float64, len(x))
	for i := range out {
		out[i] = y[i] * scale
	}
	return out
}

func convolveDirect(x, h []float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		var acc float64
		for j := 0; j < len(h) && j <= i; j++ {
			acc += x[i-j] * h[j]
		}
		out[i] = acc
	}
	return out
}

// autocorrelation returns r[0..maxLag] of x.
func autocorrelation(x []float64, maxLag int) []float64 {
	if maxLag >= len(x) {
		maxLag = len(x) - 1
	}
	if maxLag < 0 {
		return nil
	}
	n := nextPow2(2 * len(x))
	fft := fourier.NewFFT(n)
	xp := make([]float64, n)
	copy(xp, x)
	xc := fft.Coefficients(nil, xp)
	for i, c := range xc {
		xc[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	y := fft.Sequence(nil, xc)
	scale := 1 / float64(n)
	r := make([]float64, maxLag+1)
	for i := range r {
		r[i] = y[i] * scale
	}
	return r
}
