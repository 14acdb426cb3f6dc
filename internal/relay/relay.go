// Package relay forwards transport commands (play/pause, next, volume up...)
// to the companion receiver. The soundboard never waits on a relay for
// sound playback; commands are fire-and-forget.
package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrUnknownCommand is returned by Send for an action with no command code.
var ErrUnknownCommand = errors.New("unknown command")

// Command codes understood by the receiver.
const (
	CodePlayPause  byte = 0x01
	CodeNext       byte = 0x02
	CodePrevious   byte = 0x03
	CodeVolumeUp   byte = 0x04
	CodeVolumeDown byte = 0x05
	CodeStop       byte = 0x06
)

// Codes maps action names to their wire code.
var Codes = map[string]byte{
	"play_pause":  CodePlayPause,
	"next":        CodeNext,
	"previous":    CodePrevious,
	"volume_up":   CodeVolumeUp,
	"volume_down": CodeVolumeDown,
	"stop":        CodeStop,
}

// Code returns the wire code for action.
func Code(action string) (byte, bool) {
	c, ok := Codes[normalize(action)]
	return c, ok
}

// Actions returns the known action names sorted by code.
func Actions() []string {
	out := make([]string, len(Codes))
	for name, code := range Codes {
		out[code-1] = name
	}
	return out
}

func normalize(action string) string {
	a := strings.ToLower(strings.TrimSpace(action))
	return strings.ReplaceAll(a, "-", "_")
}

// Relay sends a command to the receiver.
type Relay interface {
	Send(action string) error
	Close() error
}

// Type names accepted by New.
const (
	TypeOffline = "offline"
	TypeMQTT    = "mqtt"
)

// Options selects and configures a relay.
type Options struct {
	Type     string
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retain   bool
	Username string
	Password string
	Payload  string
	Timeout  time.Duration
	Log      *slog.Logger
}

// New creates the relay described by opts. An empty type selects Offline.
func New(opts Options) (Relay, error) {
	switch strings.ToLower(opts.Type) {
	case "", TypeOffline:
		return NewOffline(opts.Log), nil
	case TypeMQTT:
		return NewMQTT(opts)
	}
	return nil, fmt.Errorf("relay: unknown type %q (want offline or mqtt)", opts.Type)
}

// Offline stands in when no receiver is configured. Known commands are
// logged and dropped.
type Offline struct {
	log *slog.Logger
}

// NewOffline creates an Offline relay.
func NewOffline(log *slog.Logger) *Offline {
	if log == nil {
		log = slog.Default()
	}
	return &Offline{log: log}
}

func (o *Offline) Send(action string) error {
	code, ok := Code(action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, action)
	}
	o.log.Debug("relay offline, command not sent", "action", normalize(action), "code", code)
	return nil
}

func (o *Offline) Close() error { return nil }
