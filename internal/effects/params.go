package effects

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const (
	// MinIntensity bypasses a stage.
	MinIntensity = 0
	// MaxIntensity is full strength.
	MaxIntensity = 100
)

// Snapshot is an immutable copy of every effect intensity, taken once per
// play request so a concurrent Set cannot mix two values of one effect into
// the same buffer.
type Snapshot struct {
	PitchCorrection int `json:"pitch_correction" yaml:"pitch_correction"`
	Echo            int `json:"echo" yaml:"echo"`
	Reverb          int `json:"reverb" yaml:"reverb"`
	Distortion      int `json:"distortion" yaml:"distortion"`
}

// Get returns the intensity recorded for k.
func (s Snapshot) Get(k Kind) int {
	switch k {
	case PitchCorrection:
		return s.PitchCorrection
	case Echo:
		return s.Echo
	case Reverb:
		return s.Reverb
	case Distortion:
		return s.Distortion
	}
	return 0
}

// Bypassed reports whether every stage is at 0.
func (s Snapshot) Bypassed() bool {
	return s.PitchCorrection == 0 && s.Echo == 0 && s.Reverb == 0 && s.Distortion == 0
}

// String lists the active stages as "echo=30,reverb=20", or "bypass".
func (s Snapshot) String() string {
	var parts []string
	for _, k := range Kinds() {
		if v := s.Get(k); v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, v))
		}
	}
	if len(parts) == 0 {
		return "bypass"
	}
	return strings.Join(parts, ",")
}

// Params is the live, process-wide parameter set. Each field is an
// independent atomic: writers update one effect without a global lock and
// readers never block.
type Params struct {
	values [numKinds]atomic.Int32
}

// NewParams creates a parameter set seeded from init (values are clamped).
func NewParams(init Snapshot) *Params {
	p := &Params{}
	for _, k := range Kinds() {
		p.Set(k, init.Get(k))
	}
	return p
}

// Set clamps v to [0, 100], stores it for k and returns the stored value.
// Invalid kinds are ignored and return -1.
func (p *Params) Set(k Kind, v int) int {
	if !k.Valid() {
		return -1
	}
	v = Clamp(v)
	p.values[k].Store(int32(v))
	return v
}

// Get returns the current intensity for k.
func (p *Params) Get(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return int(p.values[k].Load())
}

// Snapshot reads every field once.
func (p *Params) Snapshot() Snapshot {
	return Snapshot{
		PitchCorrection: p.Get(PitchCorrection),
		Echo:            p.Get(Echo),
		Reverb:          p.Get(Reverb),
		Distortion:      p.Get(Distortion),
	}
}

// Clamp limits v to [MinIntensity, MaxIntensity].
func Clamp(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}
