package effects

import (
	"fmt"
	"math"
)

// maxReverbSeconds is the impulse response length at full intensity.
const maxReverbSeconds = 3.0

// reverb convolves each channel with a synthetic exponential decay of
// amount*3 seconds and crossfades dry and wet by amount.
func reverb(x []float64, rate, channels int, amount float64) ([]float64, error) {
	ir := impulseResponse(amount*maxReverbSeconds, rate)
	if len(ir) == 0 {
		return nil, fmt.Errorf("reverb impulse response is empty at %d Hz", rate)
	}

	chans := deinterleave(x, channels)
	for c, dry := range chans {
		wet := convolve(dry, ir)
		mixed := make([]float64, len(dry))
		for i := range dry {
			mixed[i] = dry[i]*(1-amount) + wet[i]*amount
		}
		chans[c] = mixed
	}
	return interleave(chans), nil
}

// impulseResponse returns exp(-t) sampled at n evenly spaced points from 0
// to seconds inclusive, n = seconds*rate.
func impulseResponse(seconds float64, rate int) []float64 {
	n := int(seconds * float64(rate))
	if n <= 0 {
		return nil
	}
	ir := make([]float64, n)
	if n == 1 {
		ir[0] = 1
		return ir
	}
	step := seconds / float64(n-1)
	for i := range ir {
		ir[i] = math.Exp(-float64(i) * step)
	}
	return ir
}
