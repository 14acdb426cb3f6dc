// Package output hands rendered PCM to the audio device. Each sound that
// plays gets its own Voice so overlapping sounds mix in the device layer
// and can be stopped or re-levelled independently.
package output

import "time"

// Format of every PCM buffer passed to a Sink: interleaved stereo, signed
// 16-bit little endian.
const (
	ChannelCount   = 2
	BytesPerSample = 2
	FrameSize      = ChannelCount * BytesPerSample
)

// Voice is one playing sound.
type Voice interface {
	Play()
	SetVolume(v float64)
	Volume() float64
	IsPlaying() bool
	Close() error
}

// Sink creates voices on an output device.
type Sink interface {
	NewVoice(pcm []byte) (Voice, error)
	SampleRate() int
	Close() error
}

// PCMDuration returns how long pcm plays at rate.
func PCMDuration(pcm []byte, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	frames := len(pcm) / FrameSize
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

// finished reports whether a sink can stop tracking a voice: it was
// closed, or it was started and has nothing left to play. A voice that was
// created but not yet started is still owed to its channel.
func finished(started, closed, playing bool) bool {
	return closed || (started && !playing)
}

var (
	_ Sink = (*Oto)(nil)
	_ Sink = (*Memory)(nil)
)
