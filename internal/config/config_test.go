package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnmarshalDefaults(t *testing.T) {
	data := []byte(`{"buttons": {"0": "airhorn.wav"}}`)

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if cfg.Audio.Volume != DefaultVolume {
		t.Errorf("Volume = %v, want %v", cfg.Audio.Volume, DefaultVolume)
	}
	if cfg.Audio.Channels != DefaultChannels {
		t.Errorf("Channels = %d, want %d", cfg.Audio.Channels, DefaultChannels)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Audio.MaxClipSeconds != DefaultMaxClipSeconds {
		t.Errorf("MaxClipSeconds = %d, want %d", cfg.Audio.MaxClipSeconds, DefaultMaxClipSeconds)
	}
	if cfg.DebounceMS != DefaultDebounceMS {
		t.Errorf("DebounceMS = %d, want %d", cfg.DebounceMS, DefaultDebounceMS)
	}
	if cfg.Relay.Type != "offline" {
		t.Errorf("Relay.Type = %q, want offline", cfg.Relay.Type)
	}
	if !cfg.Effects.Bypassed() {
		t.Errorf("Effects = %+v, want all zero", cfg.Effects)
	}
	if cfg.Buttons["0"] != "airhorn.wav" {
		t.Errorf("Buttons[0] = %q, want airhorn.wav", cfg.Buttons["0"])
	}
}

func TestUnmarshalOverrides(t *testing.T) {
	data := []byte(`{
		"buttons": {"0": "a.wav", "1": "next"},
		"gpio_pins": [17, 27],
		"gpio_actions": {"17": "play_pause"},
		"audio_settings": {"volume": 0.4, "channels": 8},
		"effects": {"echo": 30, "pitch_correction": 100},
		"relay": {"type": "mqtt", "broker": "tcp://pi:1883", "qos": 1},
		"debounce_ms": 0
	}`)

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Audio.Volume != 0.4 {
		t.Errorf("Volume = %v, want 0.4", cfg.Audio.Volume)
	}
	if cfg.Audio.Channels != 8 {
		t.Errorf("Channels = %d, want 8", cfg.Audio.Channels)
	}
	// Fields absent from audio_settings keep their defaults.
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Effects.Echo != 30 || cfg.Effects.PitchCorrection != 100 {
		t.Errorf("Effects = %+v", cfg.Effects)
	}
	if cfg.Relay.Type != "mqtt" || cfg.Relay.Broker != "tcp://pi:1883" || cfg.Relay.QoS != 1 {
		t.Errorf("Relay = %+v", cfg.Relay)
	}
	if cfg.DebounceMS != 0 {
		t.Errorf("DebounceMS = %d, want explicit 0", cfg.DebounceMS)
	}
	if len(cfg.GPIOPins) != 2 || cfg.GPIOActions["17"] != "play_pause" {
		t.Errorf("GPIO = %v %v", cfg.GPIOPins, cfg.GPIOActions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Buttons["0"] != "sound1.wav" || cfg.GPIOActions["27"] != "volume_up" {
		t.Errorf("Default buttons = %v, gpio = %v", cfg.Buttons, cfg.GPIOActions)
	}
	if cfg.Audio.OutputDevice != DefaultOutputDevice {
		t.Errorf("OutputDevice = %q, want %q", cfg.Audio.OutputDevice, DefaultOutputDevice)
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Audio.Volume = 2
	cfg.Audio.Channels = 0
	cfg.Effects.Reverb = 101
	cfg.Relay.Type = "mqtt"
	cfg.GPIOActions["left"] = "next"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate = nil, want errors")
	}
	for _, want := range []string{"volume", "channels", "effects.reverb", "relay.broker", `"left"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadExplicitJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "board.json")
	os.WriteFile(p, []byte(`{"buttons": {"3": "rimshot"}, "audio_settings": {"sounds_dir": "clips"}}`), 0644)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons["3"] != "rimshot" {
		t.Errorf("Buttons[3] = %q, want rimshot", cfg.Buttons["3"])
	}
	if cfg.Path() != p {
		t.Errorf("Path = %q, want %q", cfg.Path(), p)
	}
	if got, want := cfg.SoundsRoot(), filepath.Join(dir, "clips"); got != want {
		t.Errorf("SoundsRoot = %q, want %q", got, want)
	}
}

func TestLoadExplicitYAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "board.yaml")
	os.WriteFile(p, []byte(`
buttons:
  "0": sting.mp3
gpio_pins: [5]
gpio_actions:
  "5": next
audio_settings:
  volume: 0.7
effects:
  reverb: 25
`), 0644)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons["0"] != "sting.mp3" {
		t.Errorf("Buttons[0] = %q, want sting.mp3", cfg.Buttons["0"])
	}
	if cfg.Audio.Volume != 0.7 {
		t.Errorf("Volume = %v, want 0.7", cfg.Audio.Volume)
	}
	if cfg.Audio.Channels != DefaultChannels {
		t.Errorf("Channels = %d, want default %d", cfg.Audio.Channels, DefaultChannels)
	}
	if cfg.Effects.Reverb != 25 {
		t.Errorf("Reverb = %d, want 25", cfg.Effects.Reverb)
	}
	if len(cfg.GPIOPins) != 1 || cfg.GPIOPins[0] != 5 {
		t.Errorf("GPIOPins = %v, want [5]", cfg.GPIOPins)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load(missing explicit path) = nil error")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"buttons": [`), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("Load(bad json) = nil error")
	}
	badYAML := filepath.Join(dir, "bad.yml")
	os.WriteFile(badYAML, []byte("buttons: [unclosed"), 0644)
	if _, err := Load(badYAML); err == nil {
		t.Error("Load(bad yaml) = nil error")
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q, want empty for defaults", cfg.Path())
	}
	if cfg.Buttons["0"] != "sound1.wav" {
		t.Errorf("Buttons = %v, want defaults", cfg.Buttons)
	}
}

func TestLoadFromDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", "")
	p := filepath.Join(home, ".config", "soundboard", "soundboard-config.yaml")
	os.MkdirAll(filepath.Dir(p), 0755)
	os.WriteFile(p, []byte("debounce_ms: 120\n"), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebounceMS != 120 {
		t.Errorf("DebounceMS = %d, want 120", cfg.DebounceMS)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		p := filepath.Join(t.TempDir(), "nested", name)
		want := Default()
		want.Effects.Distortion = 40
		want.Relay.Payload = "msgpack"
		if err := Save(p, want); err != nil {
			t.Fatalf("%s: Save: %v", name, err)
		}
		got, err := Load(p)
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if got.Effects != want.Effects {
			t.Errorf("%s: Effects = %+v, want %+v", name, got.Effects, want.Effects)
		}
		if got.Relay.Payload != "msgpack" {
			t.Errorf("%s: Relay.Payload = %q", name, got.Relay.Payload)
		}
		if got.Buttons["1"] != "sound2.wav" || got.Keys["2"] != "1" {
			t.Errorf("%s: Buttons = %v, Keys = %v", name, got.Buttons, got.Keys)
		}
		if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("%s: temp file left behind", name)
		}
	}
}

func TestSoundsRootDefault(t *testing.T) {
	cfg := Default()
	if got := cfg.SoundsRoot(); got != "sounds" {
		t.Errorf("SoundsRoot = %q, want sounds", got)
	}
	cfg.Audio.SoundsDir = "/srv/sounds"
	if got := cfg.SoundsRoot(); got != "/srv/sounds" {
		t.Errorf("SoundsRoot = %q, want /srv/sounds", got)
	}
}
