package effects

import "fmt"

// echoFeedback is the gain of the single delayed copy.
const echoFeedback = 0.6

// echo adds one copy of the signal delayed by amount seconds (0-1s) at 0.6
// gain. Nothing is normalised: loud input plus its echo may exceed full
// scale and is only clamped when encoded for the device.
func echo(x []float64, rate, channels int, amount float64) ([]float64, error) {
	delay := int(amount * float64(rate))
	if delay <= 0 {
		return nil, fmt.Errorf("echo delay rounds to %d frames at %d Hz", delay, rate)
	}
	d := delay * channels
	out := make([]float64, len(x))
	copy(out, x)
	for i := d; i < len(x); i++ {
		out[i] += x[i-d] * echoFeedback
	}
	return out, nil
}
