// Package engine is the soundboard's playback core. Play returns at once;
// decoding, effects and channel dispatch run on a goroutine per request so
// a slow file never holds up other triggers or parameter changes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Mavwarf/soundboard/internal/audio"
	"github.com/Mavwarf/soundboard/internal/channel"
	"github.com/Mavwarf/soundboard/internal/effects"
	"github.com/Mavwarf/soundboard/internal/eventlog"
	"github.com/Mavwarf/soundboard/internal/output"
	"github.com/Mavwarf/soundboard/internal/relay"
)

// Transport actions the engine forwards instead of playing.
const (
	ActionResume = "play_pause"
	ActionStop   = "stop"
)

// drainPoll is how often Drain checks for silent channels.
const drainPoll = 10 * time.Millisecond

// Source resolves a sound name to decoded audio. *audio.Loader is the
// production implementation.
type Source interface {
	Load(name string) (*audio.Buffer, error)
}

// Options wires an Engine. Source and Sink are required; the rest default
// to a 16-channel pool, zeroed effects, an offline relay and no history.
type Options struct {
	Source  Source
	Sink    output.Sink
	Pool    *channel.Pool
	Params  *effects.Params
	Relay   relay.Relay
	History eventlog.Store
	Log     *slog.Logger
}

// Request is one play in flight.
type Request struct {
	ID      string
	Sound   string
	Effects effects.Snapshot
	Start   time.Time
}

// Stats counts what the engine has done since it was created.
type Stats struct {
	Played      uint64
	Dropped     uint64
	Superseded  uint64 // rendered, but a newer sound took the channel first
	Commands    uint64
	Allocations uint64
	Active      int
}

// Engine orchestrates loading, effects and channel dispatch.
type Engine struct {
	source  Source
	sink    output.Sink
	pool    *channel.Pool
	params  *effects.Params
	chain   *effects.Chain
	relay   relay.Relay
	history eventlog.Store
	log     *slog.Logger

	mu       sync.RWMutex // guards closed against wg.Add racing Close
	closed   bool
	wg       sync.WaitGroup
	played     atomic.Uint64
	dropped    atomic.Uint64
	superseded atomic.Uint64
	commands   atomic.Uint64
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Source == nil {
		return nil, errors.New("engine: source is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("engine: sink is required")
	}
	e := &Engine{
		source:  opts.Source,
		sink:    opts.Sink,
		pool:    opts.Pool,
		params:  opts.Params,
		relay:   opts.Relay,
		history: opts.History,
		log:     opts.Log,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.pool == nil {
		e.pool = channel.NewPool(channel.DefaultCount)
	}
	if e.params == nil {
		e.params = effects.NewParams(effects.Snapshot{})
	}
	if e.relay == nil {
		e.relay = relay.NewOffline(e.log)
	}
	e.chain = effects.NewChain(e.log)
	return e, nil
}

// Pool returns the channel pool.
func (e *Engine) Pool() *channel.Pool {
	return e.pool
}

// Params returns the live effect parameters.
func (e *Engine) Params() *effects.Params {
	return e.params
}

// Play starts sound in the background. The effect parameters in force at
// this call are the ones applied, whatever changes while it decodes. An
// empty name resumes the external player instead. Failures are logged and
// the request is dropped; Play itself never blocks on I/O.
func (e *Engine) Play(sound string) {
	if sound == "" {
		e.Command(ActionResume)
		return
	}
	req := Request{
		ID:      uuid.NewString(),
		Sound:   sound,
		Effects: e.params.Snapshot(),
		Start:   time.Now(),
	}
	if !e.track(func() { e.render(req) }) {
		e.log.Warn("engine closed, play ignored", "sound", sound)
	}
}

// track runs fn on a goroutine counted by Wait, unless the engine is closed.
func (e *Engine) track(fn func()) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
	return true
}

func (e *Engine) render(req Request) {
	log := e.log.With("request", req.ID, "sound", req.Sound)

	buf, err := e.source.Load(req.Sound)
	if err != nil {
		e.drop(log, req, "load failed", err)
		return
	}
	if !req.Effects.Bypassed() {
		buf = e.chain.Process(buf, req.Effects)
	}

	pcm := audio.EncodeStereo16(buf, e.sink.SampleRate())
	if len(pcm) == 0 {
		e.drop(log, req, "nothing to play", fmt.Errorf("%s decoded to zero frames", req.Sound))
		return
	}
	voice, err := e.sink.NewVoice(pcm)
	if err != nil {
		e.drop(log, req, "output rejected voice", err)
		return
	}

	ch, seq := e.pool.Allocate()
	if err := ch.Assign(seq, req.Sound, voice); err != nil {
		if errors.Is(err, channel.ErrSuperseded) {
			e.superseded.Add(1)
			log.Info("cut off before start by a newer sound", "channel", ch.Index())
			return
		}
		log.Warn("previous voice did not close cleanly", "channel", ch.Index(), "err", err)
	}
	e.played.Add(1)

	latency := time.Since(req.Start)
	log.Info("playing",
		"channel", ch.Index(),
		"effects", req.Effects.String(),
		"duration", output.PCMDuration(pcm, e.sink.SampleRate()),
		"latency", latency)
	if e.history != nil {
		if err := e.history.LogPlay(eventlog.Play{
			Request: req.ID,
			Sound:   req.Sound,
			Channel: ch.Index(),
			Effects: req.Effects.String(),
			Latency: latency,
		}); err != nil {
			log.Warn("history write failed", "err", err)
		}
	}
}

func (e *Engine) drop(log *slog.Logger, req Request, msg string, err error) {
	e.dropped.Add(1)
	log.Error("sound dropped: "+msg, "err", err)
	if e.history != nil {
		if herr := e.history.LogDrop(req.ID, req.Sound, err.Error()); herr != nil {
			log.Warn("history write failed", "err", herr)
		}
	}
}

// Stop forwards the stop transport action to the relay. Channels already
// playing are left alone; use StopAll to silence them.
func (e *Engine) Stop() {
	e.Command(ActionStop)
}

// StopAll silences every channel.
func (e *Engine) StopAll() {
	if err := e.pool.StopAll(); err != nil {
		e.log.Warn("stopping channels", "err", err)
	}
}

// Command sends action to the relay without waiting for it.
func (e *Engine) Command(action string) {
	sent := e.track(func() {
		err := e.relay.Send(action)
		if err != nil {
			if errors.Is(err, relay.ErrUnknownCommand) {
				e.log.Warn("unknown command ignored", "action", action)
			} else {
				e.log.Error("command relay failed", "action", action, "err", err)
			}
		} else {
			e.commands.Add(1)
		}
		if e.history != nil {
			if herr := e.history.LogCommand(action, err); herr != nil {
				e.log.Warn("history write failed", "err", herr)
			}
		}
	})
	if !sent {
		e.log.Warn("engine closed, command ignored", "action", action)
	}
}

// SetVolume sets the master volume, clamped to [0, 1], and applies it to
// every channel immediately. It returns the stored value.
func (e *Engine) SetVolume(v float64) float64 {
	if math.IsNaN(v) {
		e.log.Warn("master volume NaN ignored")
		return e.pool.MasterVolume()
	}
	got := e.pool.SetMasterVolume(v)
	if got != v {
		e.log.Warn("master volume clamped", "requested", v, "applied", got)
	}
	return got
}

// SetChannelVolume sets channel i to v, clamped to [0, 100]. An index
// outside the pool is logged and ignored; ok reports whether anything
// changed.
func (e *Engine) SetChannelVolume(i, v int) (applied int, ok bool) {
	got, err := e.pool.SetChannelVolume(i, v)
	if err != nil {
		e.log.Warn("channel volume ignored", "channel", i, "volume", v, "err", err)
		return 0, false
	}
	if got != v {
		e.log.Warn("channel volume clamped", "channel", i, "requested", v, "applied", got)
	}
	return got, true
}

// SetEffectParam sets one effect's intensity, clamped to [0, 100]. It is
// picked up by the next Play. Unknown effect names are logged and ignored.
func (e *Engine) SetEffectParam(name string, v int) (applied int, ok bool) {
	k, err := effects.ParseKind(name)
	if err != nil {
		e.log.Warn("effect parameter ignored", "effect", name, "value", v, "err", err)
		return 0, false
	}
	got := e.params.Set(k, v)
	if got != v {
		e.log.Warn("effect parameter clamped", "effect", k.String(), "requested", v, "applied", got)
	}
	e.log.Debug("effect parameter set", "effect", k.String(), "value", got)
	return got, true
}

// Stats returns counters and the number of channels currently rendering.
func (e *Engine) Stats() Stats {
	return Stats{
		Played:      e.played.Load(),
		Dropped:     e.dropped.Load(),
		Superseded:  e.superseded.Load(),
		Commands:    e.commands.Load(),
		Allocations: e.pool.Allocations(),
		Active:      e.pool.Active(),
	}
}

// Wait blocks until every Play and Command issued so far has been
// dispatched or dropped. It does not wait for audio to finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Drain waits for in-flight requests and then for every channel to go
// silent, or for ctx to end.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for e.pool.Active() > 0 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close rejects new requests, waits for in-flight ones, silences every
// channel and closes the relay. The sink and history store belong to the
// caller.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
	return errors.Join(e.pool.StopAll(), e.relay.Close())
}
