package output

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoCtx     *oto.Context
	otoRate    int
	otoOnce    sync.Once
	otoInitErr error
)

func getContext(rate int, bufferSize time.Duration) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferSize,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-readyChan
			otoRate = rate
		}
	})
	if otoInitErr == nil && otoRate != rate {
		return nil, fmt.Errorf("audio already initialized at %d Hz", otoRate)
	}
	return otoCtx, otoInitErr
}

// Oto plays voices through the system default device using oto.
type Oto struct {
	ctx  *oto.Context
	rate int

	mu     sync.Mutex
	voices []*otoVoice
	closed bool
}

// otoVoice remembers whether its player was ever started, since a paused
// new player and a drained one look alike to oto.
type otoVoice struct {
	*oto.Player
	started atomic.Bool
	closed  atomic.Bool
}

func (v *otoVoice) Play() {
	v.started.Store(true)
	v.Player.Play()
}

func (v *otoVoice) Close() error {
	v.closed.Store(true)
	return v.Player.Close()
}

func (v *otoVoice) done() bool {
	playing := v.IsPlaying() || v.BufferedSize() > 0
	return finished(v.started.Load(), v.closed.Load(), playing)
}

// OtoOptions configures NewOto.
type OtoOptions struct {
	SampleRate int
	// Device is the configured output device name. oto always uses the
	// system default, so a non-empty value is only reported.
	Device     string
	BufferSize time.Duration
	Log        *slog.Logger
}

// NewOto opens the audio device.
func NewOto(opts OtoOptions) (*Oto, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", opts.SampleRate)
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	ctx, err := getContext(opts.SampleRate, opts.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}
	if opts.Device != "" && opts.Device != "default" {
		log.Warn("output device selection not supported, using system default", "device", opts.Device)
	}
	return &Oto{ctx: ctx, rate: opts.SampleRate}, nil
}

// NewVoice wraps pcm in a paused oto player.
func (o *Oto) NewVoice(pcm []byte) (Voice, error) {
	if len(pcm)%FrameSize != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of %d", len(pcm), FrameSize)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, errors.New("output closed")
	}
	o.prune()
	v := &otoVoice{Player: o.ctx.NewPlayer(bytes.NewReader(pcm))}
	o.voices = append(o.voices, v)
	return v, nil
}

// prune drops finished players from the tracking list. Players not yet
// started stay so Close can still stop them. Callers hold o.mu.
func (o *Oto) prune() {
	live := o.voices[:0]
	for _, v := range o.voices {
		if !v.done() {
			live = append(live, v)
		}
	}
	clear(o.voices[len(live):])
	o.voices = live
}

func (o *Oto) SampleRate() int {
	return o.rate
}

// Close stops every voice still playing. The oto context itself stays
// alive until the process exits.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	var errs []error
	for _, v := range o.voices {
		if v.closed.Load() {
			continue
		}
		v.Pause()
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.voices = nil
	return errors.Join(errs...)
}
