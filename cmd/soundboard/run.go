package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mavwarf/soundboard/internal/input"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	var noKeyboard bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Listen for button and GPIO presses",
		Long: `Listen for button and GPIO presses until interrupted.

Keys configured under "keys" act as buttons while the terminal is in
focus; q, Esc or Ctrl-C quits. GPIO buttons are read from the evdev node
in "input_device" (for example the gpio-keys device on a Raspberry Pi).
If stdin is not a terminal, key presses are read from it until EOF and
the command exits once every sound has finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdin := cmd.InOrStdin()
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			fd, tty := terminalFD(stdin)
			raw := !noKeyboard && tty
			if raw {
				stdout, stderr = crlfWriter{stdout}, crlfWriter{stderr}
			}

			a, err := newApp(g, stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if noKeyboard && a.cfg.InputDevice == "" {
				return errors.New("nothing to listen on: keyboard disabled and no input_device configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if raw {
				restore, err := input.RawTerminal(fd)
				if err != nil {
					return err
				}
				defer restore()
			}
			printBanner(stdout, a, !noKeyboard)
			err = listen(ctx, a, stdin, !noKeyboard)
			printSummary(stdout, a)
			return err
		},
	}
	cmd.Flags().BoolVar(&noKeyboard, "no-keyboard", false, "ignore key presses on stdin")
	return cmd
}

// listen feeds keyboard and GPIO events to the router until ctx ends or
// the user quits.
func listen(ctx context.Context, a *app, stdin io.Reader, keyboard bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan input.Event, 16)
	var drain atomic.Bool

	if keyboard {
		go func() {
			err := input.Keyboard(ctx, stdin, a.cfg.Keys, events)
			switch {
			case err == nil:
				drain.Store(true)
			case errors.Is(err, input.ErrQuit), errors.Is(err, context.Canceled):
			default:
				a.log.Error("keyboard input stopped", "err", err)
			}
			cancel()
		}()
	}
	if a.cfg.InputDevice != "" {
		go func() {
			err := input.Evdev(ctx, a.cfg.InputDevice, a.cfg.GPIOPins, input.DefaultPollInterval, events)
			if err != nil && ctx.Err() == nil {
				a.log.Error("gpio input stopped", "device", a.cfg.InputDevice, "err", err)
			}
		}()
	}

	a.log.Info("soundboard ready",
		"buttons", len(a.router.Buttons()),
		"pins", len(a.router.Pins()),
		"channels", a.engine.Pool().Len(),
		"sounds", a.loader.Root())

	err := a.router.Run(ctx, events)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if drain.Load() {
		// Presses read just before EOF may still be queued.
		for pending := true; pending; {
			select {
			case ev := <-events:
				a.router.Handle(ev)
			default:
				pending = false
			}
		}
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if derr := a.engine.Drain(sigCtx); derr != nil {
			a.log.Warn("drain interrupted", "err", derr)
		}
	}
	return err
}

func printBanner(w io.Writer, a *app, keyboard bool) {
	fmt.Fprintln(w, bold("soundboard")+" "+dim(version))
	if keyboard && len(a.cfg.Keys) > 0 {
		keys := make([]string, 0, len(a.cfg.Keys))
		for k := range a.cfg.Keys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			id := a.cfg.Keys[k]
			action, _ := a.router.Lookup(id)
			fmt.Fprintf(w, "  %s  %s\n", cyan(k), action.Raw)
		}
		fmt.Fprintln(w, dim("  q to quit"))
	}
	if a.cfg.InputDevice != "" {
		fmt.Fprintf(w, "  gpio: %s\n", a.cfg.InputDevice)
	}
}

// printSummary reports what the session played and where each channel
// was left.
func printSummary(w io.Writer, a *app) {
	s := a.engine.Stats()
	a.log.Info("session ended",
		"played", s.Played,
		"dropped", s.Dropped,
		"superseded", s.Superseded,
		"allocations", s.Allocations,
		"cached", a.loader.Cached())
	fmt.Fprintf(w, "%s  played %s  dropped %s  cut off %s  cached %s\n",
		bold("session"),
		fmtNum(int(s.Played)), fmtNum(int(s.Dropped)), fmtNum(int(s.Superseded)), fmtNum(a.loader.Cached()))
	for _, c := range a.engine.Pool().Status() {
		state := dim(padR("idle", 7))
		if c.Busy {
			state = green(padR("playing", 7))
		}
		sound := c.Sound
		if sound == "" {
			sound = "-"
		}
		fmt.Fprintf(w, "  ch%-2d %s %s  %s\n", c.Index, padL(strconv.Itoa(c.Volume), 3), state, sound)
	}
}

func terminalFD(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// crlfWriter restores carriage returns for output written while the
// terminal is in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
