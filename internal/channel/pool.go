// Package channel manages the fixed pool of playback slots. Slots are handed
// out round-robin; claiming a slot that is still playing cuts that sound off.
package channel

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/Mavwarf/soundboard/internal/output"
)

var (
	// ErrIndexOutOfRange is returned for a channel index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("channel index out of range")
	// ErrSuperseded is returned by Assign when a later allocation of the
	// same channel has already been assigned. The rejected voice is closed.
	ErrSuperseded = errors.New("channel claimed by a newer sound")
)

const (
	// DefaultCount is the pool size when none is configured.
	DefaultCount = 16
	// DefaultVolume is the initial level of every channel.
	DefaultVolume = 100
	// MaxVolume is the top of the per-channel range.
	MaxVolume = 100
)

// Channel is one playback slot.
type Channel struct {
	index  int
	volume atomic.Int32
	master *atomic.Uint64

	mu    sync.Mutex
	voice output.Voice
	sound string
	seq   uint64 // allocation sequence of the current voice
}

// Index returns the channel's position in the pool.
func (c *Channel) Index() int {
	return c.index
}

// Volume returns the channel level in [0, 100].
func (c *Channel) Volume() int {
	return int(c.volume.Load())
}

// Sound returns the name of the last sound assigned, or "".
func (c *Channel) Sound() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sound
}

// Busy reports whether the channel is currently rendering.
func (c *Channel) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice != nil && c.voice.IsPlaying()
}

// Assign stops whatever the channel was playing and starts v at the current
// channel and master volume. seq is the sequence Allocate returned; if a
// voice from a later allocation already holds the channel, v is closed
// unplayed and ErrSuperseded is returned.
func (c *Channel) Assign(seq uint64, sound string, v output.Voice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.seq {
		v.Close()
		return fmt.Errorf("%w: channel %d", ErrSuperseded, c.index)
	}
	var err error
	if c.voice != nil {
		err = c.voice.Close()
	}
	c.voice = v
	c.sound = sound
	c.seq = seq
	v.SetVolume(c.gain())
	v.Play()
	if err != nil {
		return fmt.Errorf("channel %d: stopping previous voice: %w", c.index, err)
	}
	return nil
}

// Stop silences the channel.
func (c *Channel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voice == nil {
		return nil
	}
	err := c.voice.Close()
	c.voice = nil
	return err
}

func (c *Channel) setVolume(v int) int {
	v = clampVolume(v)
	c.volume.Store(int32(v))
	c.refresh()
	return v
}

// refresh pushes the current gain to the live voice.
func (c *Channel) refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voice != nil {
		c.voice.SetVolume(c.gain())
	}
}

// gain is master × channel level. Callers hold c.mu.
func (c *Channel) gain() float64 {
	master := math.Float64frombits(c.master.Load())
	return master * float64(c.volume.Load()) / MaxVolume
}

// Pool is a fixed set of channels.
type Pool struct {
	channels []*Channel
	next     atomic.Uint64
	master   atomic.Uint64
}

// NewPool creates n channels at DefaultVolume with master volume 1.0.
// n < 1 selects DefaultCount.
func NewPool(n int) *Pool {
	if n < 1 {
		n = DefaultCount
	}
	p := &Pool{channels: make([]*Channel, n)}
	p.master.Store(math.Float64bits(1))
	for i := range p.channels {
		c := &Channel{index: i, master: &p.master}
		c.volume.Store(DefaultVolume)
		p.channels[i] = c
	}
	return p
}

// Len returns the pool size.
func (p *Pool) Len() int {
	return len(p.channels)
}

// Allocate returns the next channel in round-robin order, whether or not
// it is still playing, and the allocation's sequence number for Assign.
// Sequence numbers start at 1 and increase with every call.
func (p *Pool) Allocate() (*Channel, uint64) {
	seq := p.next.Add(1)
	return p.channels[(seq-1)%uint64(len(p.channels))], seq
}

// Allocations returns how many times Allocate has been called.
func (p *Pool) Allocations() uint64 {
	return p.next.Load()
}

// Channel returns channel i.
func (p *Pool) Channel(i int) (*Channel, error) {
	if i < 0 || i >= len(p.channels) {
		return nil, fmt.Errorf("%w: %d (pool has %d)", ErrIndexOutOfRange, i, len(p.channels))
	}
	return p.channels[i], nil
}

// SetChannelVolume clamps v to [0, 100] and applies it to channel i
// immediately, playing or not. It returns the stored level.
func (p *Pool) SetChannelVolume(i, v int) (int, error) {
	c, err := p.Channel(i)
	if err != nil {
		return 0, err
	}
	return c.setVolume(v), nil
}

// SetMasterVolume clamps v to [0, 1] and rescales every channel. NaN is
// ignored. It returns the stored value.
func (p *Pool) SetMasterVolume(v float64) float64 {
	if math.IsNaN(v) {
		return p.MasterVolume()
	}
	v = math.Max(0, math.Min(1, v))
	p.master.Store(math.Float64bits(v))
	for _, c := range p.channels {
		c.refresh()
	}
	return v
}

// MasterVolume returns the master level in [0, 1].
func (p *Pool) MasterVolume() float64 {
	return math.Float64frombits(p.master.Load())
}

// Active returns the number of channels currently rendering.
func (p *Pool) Active() int {
	n := 0
	for _, c := range p.channels {
		if c.Busy() {
			n++
		}
	}
	return n
}

// StopAll silences every channel.
func (p *Pool) StopAll() error {
	var errs []error
	for _, c := range p.channels {
		if err := c.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Status describes one channel for display.
type Status struct {
	Index  int
	Volume int
	Sound  string
	Busy   bool
}

// Status returns a snapshot of every channel.
func (p *Pool) Status() []Status {
	out := make([]Status, len(p.channels))
	for i, c := range p.channels {
		out[i] = Status{Index: i, Volume: c.Volume(), Sound: c.Sound(), Busy: c.Busy()}
	}
	return out
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
