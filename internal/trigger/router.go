package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/Mavwarf/soundboard/internal/config"
	"github.com/Mavwarf/soundboard/internal/cooldown"
	"github.com/Mavwarf/soundboard/internal/input"
)

// Target receives the calls a trigger resolves to. *engine.Engine
// satisfies it.
type Target interface {
	Play(sound string)
	Command(action string)
	StopAll()
	SetVolume(v float64) float64
	SetChannelVolume(i, v int) (int, bool)
	SetEffectParam(name string, v int) (int, bool)
}

// Router dispatches presses to a Target. Repeat presses of the same
// trigger inside the debounce window are dropped.
type Router struct {
	buttons map[string]Action
	gpio    map[string]Action
	gate    *cooldown.Gate
	target  Target
	log     *slog.Logger
}

// NewRouter parses every binding in cfg. All malformed actions are
// reported together.
func NewRouter(cfg config.Config, target Target, log *slog.Logger) (*Router, error) {
	if target == nil {
		return nil, errors.New("trigger: target is required")
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		buttons: make(map[string]Action, len(cfg.Buttons)),
		gpio:    make(map[string]Action, len(cfg.GPIOActions)),
		gate:    cooldown.New(time.Duration(cfg.DebounceMS) * time.Millisecond),
		target:  target,
		log:     log,
	}

	var errs []error
	for id, s := range cfg.Buttons {
		a, err := ParseAction(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("buttons.%s: %w", id, err))
			continue
		}
		r.buttons[id] = a
	}

	watched := make(map[string]bool, len(cfg.GPIOPins))
	for _, p := range cfg.GPIOPins {
		watched[strconv.Itoa(p)] = true
	}
	for pin, s := range cfg.GPIOActions {
		if len(watched) > 0 && !watched[pin] {
			log.Warn("gpio action for unwatched pin ignored", "pin", pin, "action", s)
			continue
		}
		a, err := ParseAction(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("gpio_actions.%s: %w", pin, err))
			continue
		}
		r.gpio[pin] = a
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Buttons returns the bound button ids in order.
func (r *Router) Buttons() []string {
	return sortedKeys(r.buttons)
}

// Pins returns the bound GPIO pins in order.
func (r *Router) Pins() []string {
	return sortedKeys(r.gpio)
}

// Lookup returns the action bound to a button id.
func (r *Router) Lookup(id string) (Action, bool) {
	a, ok := r.buttons[id]
	return a, ok
}

// Sounds returns every distinct sound bound to a button or pin, for preloading.
func (r *Router) Sounds() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range []map[string]Action{r.buttons, r.gpio} {
		for _, a := range m {
			if a.Kind == KindSound && !seen[a.Sound] {
				seen[a.Sound] = true
				out = append(out, a.Sound)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Button handles a press of button id. It reports whether anything ran.
func (r *Router) Button(id string) bool {
	return r.fire("button:"+id, r.buttons, id)
}

// GPIO handles a press on pin.
func (r *Router) GPIO(pin string) bool {
	return r.fire("gpio:"+pin, r.gpio, pin)
}

// Handle routes one input event.
func (r *Router) Handle(ev input.Event) bool {
	if ev.Source == input.SourceGPIO {
		return r.GPIO(ev.ID)
	}
	return r.Button(ev.ID)
}

// Run handles events until ctx ends or events is closed.
func (r *Router) Run(ctx context.Context, events <-chan input.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Handle(ev)
		}
	}
}

func (r *Router) fire(key string, m map[string]Action, id string) bool {
	a, ok := m[id]
	if !ok {
		r.log.Debug("unbound trigger", "trigger", key)
		return false
	}
	if !r.gate.Allow(key) {
		r.log.Debug("trigger debounced", "trigger", key)
		return false
	}
	r.log.Debug("trigger", "trigger", key, "action", a.Raw, "kind", a.Kind.String())
	r.Dispatch(a)
	return true
}

// Dispatch runs a without debouncing.
func (r *Router) Dispatch(a Action) {
	switch a.Kind {
	case KindSound:
		r.target.Play(a.Sound)
	case KindCommand:
		r.target.Command(a.Command)
	case KindStopAll:
		r.target.StopAll()
	case KindVolume:
		r.target.SetVolume(a.Volume)
	case KindChannelVolume:
		r.target.SetChannelVolume(a.Channel, a.Value)
	case KindEffect:
		r.target.SetEffectParam(a.Effect, a.Value)
	}
}

func sortedKeys(m map[string]Action) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
