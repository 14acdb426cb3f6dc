package audio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ToneSegment defines a single tone burst with frequency, duration, and volume.
type ToneSegment struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64 // 0.0 to 1.0
}

// SoundDefinition describes a named built-in clip composed of one or more tone segments.
type SoundDefinition struct {
	Name        string
	Description string
	Segments    []ToneSegment
}

// tonePrefix selects a synthetic sine clip, e.g. "tone:440" or "tone:440:250ms".
const tonePrefix = "tone:"

// defaultToneDuration applies when a tone: name carries no duration.
const defaultToneDuration = time.Second

// Sounds is the registry of built-in clips. They resolve without touching
// the sounds directory, which makes them handy for checking the wiring of a
// new button grid or output device.
var Sounds = map[string]SoundDefinition{
	"beep": {
		Name:        "beep",
		Description: "Single clean 880 Hz beep",
		Segments: []ToneSegment{
			{Frequency: 880, Duration: 200 * time.Millisecond, Volume: 0.5},
		},
	},
	"chime": {
		Name:        "chime",
		Description: "Ascending major chord chime",
		Segments: []ToneSegment{
			{Frequency: 523.25, Duration: 120 * time.Millisecond, Volume: 0.6}, // C5
			{Frequency: 659.25, Duration: 120 * time.Millisecond, Volume: 0.6}, // E5
			{Frequency: 783.99, Duration: 250 * time.Millisecond, Volume: 0.7}, // G5
		},
	},
	"buzz": {
		Name:        "buzz",
		Description: "Low descending game-show buzzer",
		Segments: []ToneSegment{
			{Frequency: 400, Duration: 200 * time.Millisecond, Volume: 0.8},
			{Frequency: 300, Duration: 200 * time.Millisecond, Volume: 0.8},
			{Frequency: 200, Duration: 300 * time.Millisecond, Volume: 0.9},
		},
	},
	"alert": {
		Name:        "alert",
		Description: "Rapid high-pitched attention signal",
		Segments: []ToneSegment{
			{Frequency: 1200, Duration: 80 * time.Millisecond, Volume: 0.7},
			{Frequency: 0, Duration: 40 * time.Millisecond, Volume: 0},
			{Frequency: 1200, Duration: 80 * time.Millisecond, Volume: 0.7},
			{Frequency: 0, Duration: 40 * time.Millisecond, Volume: 0},
			{Frequency: 1200, Duration: 80 * time.Millisecond, Volume: 0.7},
		},
	},
	"rimshot": {
		Name:        "rimshot",
		Description: "Ba-dum-tss in three short hits",
		Segments: []ToneSegment{
			{Frequency: 180, Duration: 90 * time.Millisecond, Volume: 0.8},
			{Frequency: 0, Duration: 60 * time.Millisecond, Volume: 0},
			{Frequency: 140, Duration: 90 * time.Millisecond, Volume: 0.8},
			{Frequency: 0, Duration: 60 * time.Millisecond, Volume: 0},
			{Frequency: 3200, Duration: 300 * time.Millisecond, Volume: 0.4},
		},
	},
}

// Builtin returns the built-in clip for name, or false when name is neither
// a registry entry nor a tone: specification.
func Builtin(name string) (*Buffer, bool, error) {
	if def, ok := Sounds[name]; ok {
		buf := GenerateBuffer(def)
		buf.Name = name
		return buf, true, nil
	}
	if !strings.HasPrefix(name, tonePrefix) {
		return nil, false, nil
	}
	def, err := parseTone(strings.TrimPrefix(name, tonePrefix))
	if err != nil {
		return nil, true, err
	}
	buf := GenerateBuffer(def)
	buf.Name = name
	return buf, true, nil
}

// parseTone reads "<hz>[:<duration>]", e.g. "440" or "440:250ms".
func parseTone(arg string) (SoundDefinition, error) {
	parts := strings.SplitN(arg, ":", 2)
	hz, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || hz < 0 || hz > DeviceRate/2 {
		return SoundDefinition{}, fmt.Errorf("tone: invalid frequency %q", parts[0])
	}
	d := defaultToneDuration
	if len(parts) == 2 {
		d, err = time.ParseDuration(parts[1])
		if err != nil || d <= 0 || d > time.Minute {
			return SoundDefinition{}, fmt.Errorf("tone: invalid duration %q", parts[1])
		}
	}
	return SoundDefinition{
		Name:     tonePrefix + arg,
		Segments: []ToneSegment{{Frequency: hz, Duration: d, Volume: 1.0}},
	}, nil
}

// GenerateBuffer renders def as a mono Buffer at DeviceRate. Each segment
// gets a 5ms fade in/out to avoid clicks, except full-volume tone: clips
// which are left as a pure sine for measurement.
func GenerateBuffer(def SoundDefinition) *Buffer {
	totalSamples := 0
	for _, seg := range def.Segments {
		totalSamples += int(float64(DeviceRate) * seg.Duration.Seconds())
	}
	samples := make([]float64, 0, totalSamples)
	pure := strings.HasPrefix(def.Name, tonePrefix)

	for _, seg := range def.Segments {
		numSamples := int(float64(DeviceRate) * seg.Duration.Seconds())
		fadeSamples := DeviceRate * 5 / 1000

		for i := 0; i < numSamples; i++ {
			t := float64(i) / float64(DeviceRate)

			envelope := 1.0
			if !pure {
				if i < fadeSamples {
					envelope = float64(i) / float64(fadeSamples)
				} else if i > numSamples-fadeSamples {
					envelope = float64(numSamples-i) / float64(fadeSamples)
				}
			}

			var val float64
			if seg.Frequency > 0 {
				val = math.Sin(2*math.Pi*seg.Frequency*t) * seg.Volume * envelope
			}
			samples = append(samples, val)
		}
	}

	return &Buffer{
		Name:       def.Name,
		Samples:    samples,
		SampleRate: DeviceRate,
		Channels:   1,
	}
}
