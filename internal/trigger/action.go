// Package trigger maps button and GPIO presses to engine calls according
// to the configuration.
package trigger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Mavwarf/soundboard/internal/audio"
	"github.com/Mavwarf/soundboard/internal/effects"
)

// ActionKind says what a configured action does.
type ActionKind int

const (
	KindSound ActionKind = iota
	KindCommand
	KindEffect
	KindVolume
	KindChannelVolume
	KindStopAll
)

var kindNames = [...]string{"sound", "command", "effect", "volume", "channel", "stop_all"}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Action prefixes. Anything without one is a sound file (by suffix) or a
// transport command for the relay.
const (
	prefixSound   = "sound:"
	prefixEffect  = "effect:"
	prefixVolume  = "volume:"
	prefixChannel = "channel:"
	actionStopAll = "stop_all"
)

// Action is one parsed button binding.
type Action struct {
	Kind    ActionKind
	Raw     string
	Sound   string  // KindSound
	Command string  // KindCommand
	Effect  string  // KindEffect
	Channel int     // KindChannelVolume
	Value   int     // KindEffect, KindChannelVolume
	Volume  float64 // KindVolume
}

// ParseAction reads an action string:
//
//	airhorn.wav            play a file from the sounds directory
//	sound:chime            play a built-in clip (or any name)
//	effect:echo=40         set an effect intensity
//	volume:0.5             set the master volume
//	channel:3=80           set one channel's volume
//	stop_all               silence every channel
//	play_pause, next, ...  send a transport command
//
// An empty action resumes the external player, as an empty sound does.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	a := Action{Raw: s}
	switch {
	case s == "":
		a.Kind = KindCommand
		a.Command = "play_pause"
	case s == actionStopAll:
		a.Kind = KindStopAll
	case strings.HasPrefix(s, prefixSound):
		a.Kind = KindSound
		a.Sound = strings.TrimPrefix(s, prefixSound)
		if a.Sound == "" {
			return Action{}, fmt.Errorf("action %q: missing sound name", s)
		}
	case strings.HasPrefix(s, prefixEffect):
		name, val, err := splitAssign(strings.TrimPrefix(s, prefixEffect))
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", s, err)
		}
		k, err := effects.ParseKind(name)
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", s, err)
		}
		a.Kind = KindEffect
		a.Effect = k.String()
		a.Value = val
	case strings.HasPrefix(s, prefixVolume):
		v, err := strconv.ParseFloat(strings.TrimPrefix(s, prefixVolume), 64)
		if err != nil || math.IsNaN(v) {
			return Action{}, fmt.Errorf("action %q: invalid volume", s)
		}
		a.Kind = KindVolume
		a.Volume = v
	case strings.HasPrefix(s, prefixChannel):
		idx, val, err := splitAssign(strings.TrimPrefix(s, prefixChannel))
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", s, err)
		}
		ch, err := strconv.Atoi(idx)
		if err != nil {
			return Action{}, fmt.Errorf("action %q: invalid channel %q", s, idx)
		}
		a.Kind = KindChannelVolume
		a.Channel = ch
		a.Value = val
	case audio.IsAudioFile(s):
		a.Kind = KindSound
		a.Sound = s
	default:
		a.Kind = KindCommand
		a.Command = s
	}
	return a, nil
}

// splitAssign parses "name=int".
func splitAssign(s string) (string, int, error) {
	name, val, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("want name=value")
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return "", 0, fmt.Errorf("invalid value %q", val)
	}
	return strings.TrimSpace(name), n, nil
}
