package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/soundboard/internal/audio"
	"github.com/Mavwarf/soundboard/internal/channel"
	"github.com/Mavwarf/soundboard/internal/config"
	"github.com/Mavwarf/soundboard/internal/effects"
	"github.com/Mavwarf/soundboard/internal/engine"
	"github.com/Mavwarf/soundboard/internal/eventlog"
	"github.com/Mavwarf/soundboard/internal/output"
	"github.com/Mavwarf/soundboard/internal/paths"
	"github.com/Mavwarf/soundboard/internal/relay"
	"github.com/Mavwarf/soundboard/internal/trigger"
)

// outputBuffer is the device buffer requested from oto. Short enough that
// a trigger is heard promptly.
const outputBuffer = 50 * time.Millisecond

// app holds everything a playing command needs.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	loader  *audio.Loader
	sink    output.Sink
	history eventlog.Store
	engine  *engine.Engine
	router  *trigger.Router

	closers []io.Closer
}

// loadConfig reads and validates the configuration.
func loadConfig(g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config %s:\n%w", cfg.Path(), err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to the file named by the
// flag or config when set, stderr otherwise.
func newLogger(g *globalFlags, cfg config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	w := stderr
	var closer io.Closer
	path := g.logFile
	if path == "" {
		path = cfg.LogFile
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, paths.FilePerm)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

// newApp wires config, loader, output, relay, history, engine and router.
func newApp(g *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	log, logCloser, err := newLogger(g, cfg, stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	if logCloser != nil {
		a.closers = append(a.closers, logCloser)
	}
	if err := a.wire(g); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(g *globalFlags) error {
	cfg := a.cfg
	a.loader = audio.NewLoader(cfg.SoundsRoot(),
		audio.WithMaxDuration(time.Duration(cfg.Audio.MaxClipSeconds)*time.Second),
		audio.WithLogger(a.log))

	if g.noAudio {
		a.sink = output.NewMemory(cfg.Audio.SampleRate)
	} else {
		sink, err := output.NewOto(output.OtoOptions{
			SampleRate: cfg.Audio.SampleRate,
			Device:     cfg.Audio.OutputDevice,
			BufferSize: outputBuffer,
			Log:        a.log,
		})
		if err != nil {
			return err
		}
		a.sink = sink
	}
	a.closers = append(a.closers, a.sink)

	rl, err := newRelay(cfg, a.log)
	if err != nil {
		return err
	}

	if cfg.Log {
		store, err := eventlog.NewSQLiteStore(paths.HistoryPath())
		if err != nil {
			a.log.Warn("history disabled", "err", err)
		} else {
			a.history = store
		}
	}

	a.engine, err = engine.New(engine.Options{
		Source:  a.loader,
		Sink:    a.sink,
		Pool:    channel.NewPool(cfg.Audio.Channels),
		Params:  effects.NewParams(cfg.Effects),
		Relay:   rl,
		History: a.history,
		Log:     a.log,
	})
	if err != nil {
		rl.Close()
		return err
	}
	a.engine.SetVolume(cfg.Audio.Volume)

	a.router, err = trigger.NewRouter(cfg, a.engine, a.log)
	if err != nil {
		return fmt.Errorf("invalid bindings:\n%w", err)
	}
	if cfg.Audio.Preload {
		n := a.loader.Preload(a.router.Sounds())
		a.log.Info("sounds preloaded", "count", n, "dir", a.loader.Root())
	}
	return nil
}

func newRelay(cfg config.Config, log *slog.Logger) (relay.Relay, error) {
	return relay.New(relay.Options{
		Type:     cfg.Relay.Type,
		Broker:   cfg.Relay.Broker,
		ClientID: cfg.Relay.ClientID,
		Topic:    cfg.Relay.Topic,
		QoS:      cfg.Relay.QoS,
		Retain:   cfg.Relay.Retain,
		Username: cfg.Relay.Username,
		Password: cfg.Relay.Password,
		Payload:  cfg.Relay.Payload,
		Log:      log,
	})
}

// Close shuts down the engine first so in-flight plays finish against a
// live sink, then the sink, history and log file.
func (a *app) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}
