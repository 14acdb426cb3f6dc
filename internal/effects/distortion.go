package effects

import "math"

// distortionHeadroom scales the shaped signal so the tanh output peaks
// below full scale.
const distortionHeadroom = 0.9

// distort hard-limits the input to a threshold that tightens with amount,
// then drives it into tanh saturation.
func distort(x []float64, _, _ int, amount float64) ([]float64, error) {
	threshold := 1.0 - amount*0.9
	drive := 1.0 + amount*10
	out := make([]float64, len(x))
	for i, v := range x {
		if v > threshold {
			v = threshold
		} else if v < -threshold {
			v = -threshold
		}
		out[i] = math.Tanh(v*drive) * distortionHeadroom
	}
	return out, nil
}
