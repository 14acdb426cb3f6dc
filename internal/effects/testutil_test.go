package effects

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/Mavwarf/soundboard/internal/audio"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func sine(freq float64, rate int, seconds float64, amp float64) []float64 {
	n := int(float64(rate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func toneBuffer(freq float64, seconds float64) *audio.Buffer {
	return &audio.Buffer{
		Name:       "tone",
		Samples:    sine(freq, audio.DeviceRate, seconds, 0.8),
		SampleRate: audio.DeviceRate,
		Channels:   1,
	}
}

// noise returns deterministic white noise in [-amp, amp].
func noise(n int, amp float64) []float64 {
	out := make([]float64, n)
	var s uint32 = 12345
	for i := range out {
		s = s*1664525 + 1013904223
		out[i] = amp * (float64(s)/float64(math.MaxUint32)*2 - 1)
	}
	return out
}

func assertClose(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", what, got, want, tol)
	}
}
