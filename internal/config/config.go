package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/Mavwarf/soundboard/internal/effects"
	"github.com/Mavwarf/soundboard/internal/paths"
)

const (
	// DefaultVolume is the master volume (0.0-1.0).
	DefaultVolume = 1.0
	// DefaultChannels is the size of the playback pool.
	DefaultChannels = 16
	// DefaultSampleRate is the output device rate.
	DefaultSampleRate = 44100
	// DefaultMaxClipSeconds caps the decoded length of one sound.
	DefaultMaxClipSeconds = 60
	// DefaultDebounceMS ignores repeat triggers of one button within this window.
	DefaultDebounceMS = 50
	// DefaultOutputDevice leaves device choice to the system.
	DefaultOutputDevice = "default"
)

// AudioSettings holds output and decode settings.
type AudioSettings struct {
	OutputDevice   string  `json:"output_device" yaml:"output_device"`
	Volume         float64 `json:"volume" yaml:"volume"`
	SoundsDir      string  `json:"sounds_dir" yaml:"sounds_dir"`
	Channels       int     `json:"channels" yaml:"channels"`
	SampleRate     int     `json:"sample_rate" yaml:"sample_rate"`
	MaxClipSeconds int     `json:"max_clip_seconds" yaml:"max_clip_seconds"`
	Preload        bool    `json:"preload,omitempty" yaml:"preload,omitempty"`
}

// RelaySettings selects where transport commands go.
type RelaySettings struct {
	Type     string `json:"type" yaml:"type"` // "offline" | "mqtt"
	Broker   string `json:"broker,omitempty" yaml:"broker,omitempty"`
	ClientID string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Topic    string `json:"topic,omitempty" yaml:"topic,omitempty"`
	QoS      byte   `json:"qos,omitempty" yaml:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty" yaml:"retain,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Payload  string `json:"payload,omitempty" yaml:"payload,omitempty"` // "byte" | "text" | "msgpack"
}

// Config is the soundboard configuration file.
type Config struct {
	// Buttons maps an on-screen or keyboard button id to an action: a sound
	// file name, a transport command or a control action.
	Buttons map[string]string `json:"buttons" yaml:"buttons"`
	// GPIOPins lists the input key codes to watch on the GPIO input device.
	GPIOPins []int `json:"gpio_pins" yaml:"gpio_pins"`
	// GPIOActions maps a pin (as a string) to an action.
	GPIOActions map[string]string `json:"gpio_actions" yaml:"gpio_actions"`
	// Keys maps a keyboard key to a button id for the terminal pad.
	Keys map[string]string `json:"keys,omitempty" yaml:"keys,omitempty"`
	// InputDevice is the evdev node the GPIO buttons appear on.
	InputDevice string `json:"input_device,omitempty" yaml:"input_device,omitempty"`

	Audio   AudioSettings    `json:"audio_settings" yaml:"audio_settings"`
	Effects effects.Snapshot `json:"effects" yaml:"effects"`
	Relay   RelaySettings    `json:"relay" yaml:"relay"`

	DebounceMS int    `json:"debounce_ms" yaml:"debounce_ms"`
	Log        bool   `json:"log,omitempty" yaml:"log,omitempty"`
	LogFile    string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// path is where the config was read from; empty for Default().
	path string
}

func setDefaults(c *Config) {
	c.Audio = AudioSettings{
		OutputDevice:   DefaultOutputDevice,
		Volume:         DefaultVolume,
		SoundsDir:      paths.SoundsDirName,
		Channels:       DefaultChannels,
		SampleRate:     DefaultSampleRate,
		MaxClipSeconds: DefaultMaxClipSeconds,
	}
	c.Relay = RelaySettings{Type: "offline"}
	c.DebounceMS = DefaultDebounceMS
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	setDefaults(c)
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// Default returns the configuration written by "soundboard init": two
// sample buttons and two GPIO pins, as on the reference hardware.
func Default() Config {
	var c Config
	setDefaults(&c)
	c.Buttons = map[string]string{
		"0": "sound1.wav",
		"1": "sound2.wav",
	}
	c.GPIOPins = []int{17, 27}
	c.GPIOActions = map[string]string{
		"17": "play_pause",
		"27": "volume_up",
	}
	c.Keys = map[string]string{
		"1": "0",
		"2": "1",
	}
	return c
}

// Path returns the file the config was loaded from, or "".
func (c Config) Path() string {
	return c.path
}

// SoundsRoot resolves Audio.SoundsDir. Relative paths are taken relative to
// the config file's directory, or the working directory for Default().
func (c Config) SoundsRoot() string {
	dir := c.Audio.SoundsDir
	if dir == "" {
		dir = paths.SoundsDirName
	}
	if filepath.IsAbs(dir) || c.path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.path), dir)
}

// Validate reports every problem in c at once.
func (c Config) Validate() error {
	var errs []error
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio_settings.volume %v out of range [0, 1]", c.Audio.Volume))
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 256 {
		errs = append(errs, fmt.Errorf("audio_settings.channels %d out of range [1, 256]", c.Audio.Channels))
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio_settings.sample_rate %d out of range [8000, 192000]", c.Audio.SampleRate))
	}
	if c.Audio.MaxClipSeconds < 1 {
		errs = append(errs, fmt.Errorf("audio_settings.max_clip_seconds must be positive"))
	}
	for _, k := range effects.Kinds() {
		if v := c.Effects.Get(k); v != effects.Clamp(v) {
			errs = append(errs, fmt.Errorf("effects.%s %d out of range [0, 100]", k, v))
		}
	}
	if c.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must not be negative"))
	}
	switch c.Relay.Type {
	case "", "offline":
	case "mqtt":
		if c.Relay.Broker == "" {
			errs = append(errs, fmt.Errorf("relay.broker is required for mqtt"))
		}
	default:
		errs = append(errs, fmt.Errorf("relay.type %q unknown (want offline or mqtt)", c.Relay.Type))
	}
	for pin := range c.GPIOActions {
		if _, err := strconv.Atoi(pin); err != nil {
			errs = append(errs, fmt.Errorf("gpio_actions key %q is not a pin number", pin))
		}
	}
	return errors.Join(errs...)
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. soundboard-config.json or .yaml next to the running binary
//  3. the same names in paths.DataDir()
//
// If nothing is found, Default() is returned with a nil error.
func Load(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, paths.DataDir())

	for _, dir := range dirs {
		for _, name := range []string{paths.ConfigFileName, paths.ConfigYAMLName} {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return readConfig(p)
			}
		}
	}
	return Default(), nil
}

// DefaultPath is where "soundboard init" writes when no path is given.
func DefaultPath() string {
	return filepath.Join(paths.DataDir(), paths.ConfigFileName)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if isYAML(path) {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes c to path atomically, as YAML for .yaml/.yml and indented
// JSON otherwise.
func Save(path string, c Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := paths.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
