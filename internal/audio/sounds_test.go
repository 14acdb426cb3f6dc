package audio

import (
	"testing"
	"time"
)

func TestSoundsRegistryComplete(t *testing.T) {
	expected := []string{"beep", "chime", "buzz", "alert", "rimshot"}
	for _, name := range expected {
		if _, ok := Sounds[name]; !ok {
			t.Errorf("missing sound %q in registry", name)
		}
	}
}

func TestGenerateBufferLength(t *testing.T) {
	def := SoundDefinition{
		Segments: []ToneSegment{
			{Frequency: 440, Duration: 100 * time.Millisecond, Volume: 0.5},
		},
	}
	buf := GenerateBuffer(def)
	// 44100 * 0.1s = 4410 mono samples
	if len(buf.Samples) != 4410 {
		t.Errorf("len(Samples) = %d, want 4410", len(buf.Samples))
	}
	if buf.Channels != 1 || buf.SampleRate != DeviceRate {
		t.Errorf("format = %dch %dHz", buf.Channels, buf.SampleRate)
	}
}

func TestGenerateBufferSilence(t *testing.T) {
	def := SoundDefinition{
		Segments: []ToneSegment{
			{Frequency: 0, Duration: 50 * time.Millisecond, Volume: 0},
		},
	}
	for i, s := range GenerateBuffer(def).Samples {
		if s != 0 {
			t.Fatalf("expected silence, got sample %v at %d", s, i)
		}
	}
}

func TestGenerateBufferMultipleSegments(t *testing.T) {
	def := SoundDefinition{
		Segments: []ToneSegment{
			{Frequency: 440, Duration: 50 * time.Millisecond, Volume: 0.5},
			{Frequency: 880, Duration: 50 * time.Millisecond, Volume: 0.5},
		},
	}
	want := int(float64(DeviceRate)*0.05) * 2
	if got := len(GenerateBuffer(def).Samples); got != want {
		t.Errorf("len(Samples) = %d, want %d", got, want)
	}
}

func TestBuiltinTone(t *testing.T) {
	buf, ok, err := Builtin("tone:440:500ms")
	if !ok || err != nil {
		t.Fatalf("Builtin(tone:440:500ms) = ok %v, err %v", ok, err)
	}
	if buf.Frames() != DeviceRate/2 {
		t.Errorf("Frames() = %d, want %d", buf.Frames(), DeviceRate/2)
	}
	// Pure tone: no fade, so the peak reaches full scale.
	peak := 0.0
	for _, s := range buf.Samples {
		if s > peak {
			peak = s
		}
	}
	if peak < 0.999 {
		t.Errorf("peak = %v, want ~1.0", peak)
	}
}

func TestBuiltinToneDefaultDuration(t *testing.T) {
	buf, ok, err := Builtin("tone:220")
	if !ok || err != nil {
		t.Fatalf("Builtin(tone:220) = ok %v, err %v", ok, err)
	}
	if buf.Duration() != time.Second {
		t.Errorf("Duration() = %s, want 1s", buf.Duration())
	}
}

func TestBuiltinToneInvalid(t *testing.T) {
	for _, name := range []string{"tone:abc", "tone:-5", "tone:440:forever", "tone:440:2h"} {
		if _, ok, err := Builtin(name); !ok || err == nil {
			t.Errorf("Builtin(%q) = ok %v, err %v; want ok with error", name, ok, err)
		}
	}
}

func TestBuiltinUnknown(t *testing.T) {
	if _, ok, _ := Builtin("applause"); ok {
		t.Error("unknown name should not resolve as built-in")
	}
}
