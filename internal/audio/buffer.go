package audio

import (
	"math"
	"time"
)

// DeviceRate is the sample rate every buffer is converted to before it is
// handed to the output device.
const DeviceRate = 44100

// Buffer is a decoded sound: interleaved float64 samples in [-1, 1] at the
// file's native sample rate. A Buffer returned by the Loader is shared
// between triggers and must not be modified; effects work on copies.
type Buffer struct {
	Name       string
	Samples    []float64
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playing time of the buffer at its native rate.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// WithSamples returns a copy of b's metadata carrying the given samples.
func (b *Buffer) WithSamples(samples []float64) *Buffer {
	return &Buffer{
		Name:       b.Name,
		Samples:    samples,
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	s := make([]float64, len(b.Samples))
	copy(s, b.Samples)
	return b.WithSamples(s)
}

// EncodeStereo16 converts b to stereo 16-bit signed LE PCM at the given rate,
// the format the output device is opened with. Mono is duplicated to both
// sides, extra channels beyond two are dropped. Samples outside [-1, 1] are
// clamped here, which is the only limiting the signal path applies.
func EncodeStereo16(b *Buffer, rate int) []byte {
	frames := b.Frames()
	if frames == 0 {
		return nil
	}

	stereo := make([]float64, frames*2)
	for i := 0; i < frames; i++ {
		left := b.Samples[i*b.Channels]
		right := left
		if b.Channels > 1 {
			right = b.Samples[i*b.Channels+1]
		}
		stereo[i*2] = left
		stereo[i*2+1] = right
	}

	if b.SampleRate != rate && b.SampleRate > 0 {
		stereo = resampleLinear(stereo, b.SampleRate, rate)
		frames = len(stereo) / 2
	}

	pcm := make([]byte, frames*4) // 2 channels * 2 bytes
	for i := 0; i < frames; i++ {
		left := clamp16(stereo[i*2])
		right := clamp16(stereo[i*2+1])
		pcm[i*4] = byte(left)
		pcm[i*4+1] = byte(left >> 8)
		pcm[i*4+2] = byte(right)
		pcm[i*4+3] = byte(right >> 8)
	}
	return pcm
}

// resampleLinear resamples stereo float64 pairs from srcRate to dstRate using linear interpolation.
func resampleLinear(samples []float64, srcRate, dstRate int) []float64 {
	srcFrames := len(samples) / 2
	ratio := float64(srcRate) / float64(dstRate)
	dstFrames := int(math.Ceil(float64(srcFrames) / ratio))
	out := make([]float64, dstFrames*2)

	for i := 0; i < dstFrames; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		if idx+1 < srcFrames {
			out[i*2] = samples[idx*2]*(1-frac) + samples[(idx+1)*2]*frac
			out[i*2+1] = samples[idx*2+1]*(1-frac) + samples[(idx+1)*2+1]*frac
		} else if idx < srcFrames {
			out[i*2] = samples[idx*2]
			out[i*2+1] = samples[idx*2+1]
		}
	}

	return out
}

// clamp16 converts a float64 in [-1, 1] to int16, clamping to avoid overflow.
// NaN maps to silence.
func clamp16(f float64) int16 {
	if math.IsNaN(f) {
		return 0
	}
	s := f * 32767.0
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
