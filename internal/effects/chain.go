package effects

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Mavwarf/soundboard/internal/audio"
)

// ErrProcessing wraps any failure inside a single stage. The chain logs it
// and carries on with that stage's input.
var ErrProcessing = errors.New("effect processing error")

// stageFunc transforms interleaved samples. amount is intensity/100 and is
// always in (0, 1]. Implementations must not modify x.
type stageFunc func(x []float64, rate, channels int, amount float64) ([]float64, error)

// stages holds the implementation of each Kind, indexed by Kind so the
// processing order is the Kind order.
var stages = [numKinds]stageFunc{
	PitchCorrection: pitchCorrect,
	Echo:            echo,
	Reverb:          reverb,
	Distortion:      distort,
}

// Chain runs the four stages over a buffer. It holds no parameters of its
// own; every Process call is driven entirely by the Snapshot it is given.
type Chain struct {
	log *slog.Logger
}

// NewChain creates a Chain that reports stage failures to log.
func NewChain(log *slog.Logger) *Chain {
	if log == nil {
		log = slog.Default()
	}
	return &Chain{log: log}
}

// Process applies pitch correction, echo, reverb and distortion in that
// order, skipping every stage whose intensity in s is 0. The input buffer is
// never modified; with everything bypassed the result is an exact copy.
func (c *Chain) Process(buf *audio.Buffer, s Snapshot) *audio.Buffer {
	out := buf.Clone()
	if s.Bypassed() || buf.Channels <= 0 || len(buf.Samples) == 0 {
		return out
	}
	for _, k := range Kinds() {
		v := Clamp(s.Get(k))
		if v == 0 {
			continue
		}
		out = out.WithSamples(c.run(k, stages[k], out, v))
	}
	return out
}

// run executes one stage and falls back to its input on error, panic or
// non-finite output.
func (c *Chain) run(k Kind, fn stageFunc, buf *audio.Buffer, intensity int) (result []float64) {
	start := time.Now()
	fail := func(err error) {
		c.log.Error("effect stage failed, passing input through",
			"effect", k.String(),
			"intensity", intensity,
			"sound", buf.Name,
			"err", fmt.Errorf("%w: %s: %w", ErrProcessing, k, err))
		result = buf.Samples
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
	}()

	out, err := fn(buf.Samples, buf.SampleRate, buf.Channels, float64(intensity)/100)
	if err == nil {
		err = checkOutput(out, len(buf.Samples))
	}
	if err != nil {
		fail(err)
		return result
	}
	c.log.Debug("effect applied", "effect", k.String(), "intensity", intensity, "sound", buf.Name, "took", time.Since(start))
	return out
}

func checkOutput(out []float64, n int) error {
	if len(out) != n {
		return fmt.Errorf("output length %d, want %d", len(out), n)
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite sample at %d", i)
		}
	}
	return nil
}

// deinterleave splits interleaved samples into one slice per channel.
func deinterleave(x []float64, channels int) [][]float64 {
	frames := len(x) / channels
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
		for i := 0; i < frames; i++ {
			out[c][i] = x[i*channels+c]
		}
	}
	return out
}

// interleave is the inverse of deinterleave.
func interleave(chans [][]float64) []float64 {
	if len(chans) == 0 {
		return nil
	}
	frames := len(chans[0])
	out := make([]float64, frames*len(chans))
	for c, ch := range chans {
		for i, v := range ch {
			out[i*len(chans)+c] = v
		}
	}
	return out
}
