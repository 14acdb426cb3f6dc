package output

import (
	"errors"
	"sync"
	"time"
)

// Memory is a Sink with no device behind it. Voices report playing for the
// real duration of their PCM, which keeps timing behaviour realistic for
// tests and for running without a sound card. Finished voices are dropped
// each time a new one is created.
type Memory struct {
	rate int
	now  func() time.Time

	mu     sync.Mutex
	voices []*MemoryVoice
	closed bool
}

// NewMemory creates a Memory sink at rate.
func NewMemory(rate int) *Memory {
	return &Memory{rate: rate, now: time.Now}
}

func (m *Memory) NewVoice(pcm []byte) (Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("output closed")
	}
	v := &MemoryVoice{
		PCM:      pcm,
		duration: PCMDuration(pcm, m.rate),
		now:      m.now,
		volume:   1,
	}
	m.prune()
	m.voices = append(m.voices, v)
	return v, nil
}

func (m *Memory) SampleRate() int {
	return m.rate
}

// prune drops finished voices and their PCM. Callers hold m.mu.
func (m *Memory) prune() {
	live := m.voices[:0]
	for _, v := range m.voices {
		if !v.done() {
			live = append(live, v)
		}
	}
	clear(m.voices[len(live):])
	m.voices = live
}

// Voices returns the voices the sink still tracks, oldest first.
func (m *Memory) Voices() []*MemoryVoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MemoryVoice(nil), m.voices...)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for _, v := range m.voices {
		v.Close()
	}
	return nil
}

// MemoryVoice is a Voice created by Memory.
type MemoryVoice struct {
	PCM []byte

	duration time.Duration
	now      func() time.Time

	mu      sync.Mutex
	started time.Time
	volume  float64
	playing bool
	closed  bool
}

func (v *MemoryVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.playing {
		return
	}
	v.playing = true
	v.started = v.now()
}

func (v *MemoryVoice) SetVolume(vol float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = vol
}

func (v *MemoryVoice) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

func (v *MemoryVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && !v.closed && v.now().Sub(v.started) < v.duration
}

// Started reports whether Play was ever called.
func (v *MemoryVoice) Started() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// Closed reports whether the voice was stopped.
func (v *MemoryVoice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *MemoryVoice) done() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	playing := v.playing && v.now().Sub(v.started) < v.duration
	return finished(v.playing, v.closed, playing)
}

func (v *MemoryVoice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}
