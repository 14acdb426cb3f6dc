package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mavwarf/soundboard/internal/trigger"
)

func newPlayCmd(g *globalFlags) *cobra.Command {
	var (
		effectArgs []string
		buttons    []string
		volume     float64
	)
	cmd := &cobra.Command{
		Use:   "play [action]...",
		Short: "Play sounds or button bindings once and exit",
		Long: `Play sounds or button bindings once and exit.

Each argument is an action as written in the config: a sound file from the
sounds directory, sound:<built-in>, a transport command or a control
action such as effect:echo=40. The command returns when every sound has
finished playing.

Examples:
  soundboard play airhorn.wav
  soundboard play -e echo=40 -e reverb=20 sound:chime
  soundboard play --no-audio sound:tone:440:500ms
  soundboard play -b 0 -b 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(buttons) == 0 {
				return fmt.Errorf("nothing to play")
			}
			var actions []trigger.Action
			for _, e := range effectArgs {
				a, err := trigger.ParseAction("effect:" + e)
				if err != nil {
					return err
				}
				actions = append(actions, a)
			}
			for _, s := range args {
				a, err := trigger.ParseAction(s)
				if err != nil {
					return err
				}
				actions = append(actions, a)
			}

			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("volume") {
				a.engine.SetVolume(volume)
			}
			for _, id := range buttons {
				b, ok := a.router.Lookup(id)
				if !ok {
					return fmt.Errorf("button %q is not bound", id)
				}
				actions = append(actions, b)
			}
			for _, act := range actions {
				a.router.Dispatch(act)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := a.engine.Drain(ctx); err != nil && err != context.Canceled {
				return err
			}
			if st := a.engine.Stats(); st.Dropped > 0 {
				return fmt.Errorf("%d of %d sounds dropped", st.Dropped, st.Dropped+st.Played)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&effectArgs, "effect", "e", nil, "effect intensity as name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&buttons, "button", "b", nil, "press a configured button id (repeatable)")
	cmd.Flags().Float64Var(&volume, "volume", 1, "master volume 0.0-1.0")
	return cmd
}
