// Package input turns physical key presses into trigger events. Readers run
// on their own goroutine and deliver Events over a channel; they never call
// into the engine directly.
package input

import (
	"context"
	"errors"
	"io"
	"time"
)

// Source says where an event came from.
type Source int

const (
	SourceButton Source = iota
	SourceGPIO
)

func (s Source) String() string {
	if s == SourceGPIO {
		return "gpio"
	}
	return "button"
}

// Event is one trigger: a button id or a GPIO pin number, as a string.
type Event struct {
	Source Source
	ID     string
	Time   time.Time
}

// ErrQuit is returned by Keyboard when the user asks to exit.
var ErrQuit = errors.New("quit requested")

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// Keyboard reads single key presses from r (a terminal in raw mode) and
// emits a button event for every key found in keys, which maps the key to
// a button id. q, Esc and Ctrl-C end the loop with ErrQuit.
func Keyboard(ctx context.Context, r io.Reader, keys map[string]string, out chan<- Event) error {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k := buf[0]
			if k == 'q' || k == keyEsc || k == keyCtrlC {
				return ErrQuit
			}
			if id, ok := keys[string(k)]; ok {
				select {
				case out <- Event{Source: SourceButton, ID: id, Time: time.Now()}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
