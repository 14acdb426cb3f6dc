// Package effects implements the soundboard's fixed-order effect chain:
// pitch correction, echo, reverb and distortion, each driven by a single
// intensity in [0, 100] where 0 bypasses the stage.
package effects

import (
	"fmt"
	"strings"
)

// Kind identifies one effect stage. The set is closed; the numeric order is
// the processing order.
type Kind int

const (
	PitchCorrection Kind = iota
	Echo
	Reverb
	Distortion

	numKinds
)

var kindNames = [numKinds]string{
	PitchCorrection: "pitch-correction",
	Echo:            "echo",
	Reverb:          "reverb",
	Distortion:      "distortion",
}

// kindAliases accepts the names older configs and button labels used.
var kindAliases = map[string]Kind{
	"autotune":         PitchCorrection,
	"pitch":            PitchCorrection,
	"pitch_correction": PitchCorrection,
	"delay":            Echo,
}

// Kinds returns every effect kind in processing order.
func Kinds() []Kind {
	return []Kind{PitchCorrection, Echo, Reverb, Distortion}
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("effect(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the four stages.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// ParseKind maps a name such as "echo" or "pitch-correction" to its Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, kn := range kindNames {
		if n == kn {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[n]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown effect %q (want pitch-correction, echo, reverb or distortion)", name)
}
