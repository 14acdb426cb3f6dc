package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mavwarf/soundboard/internal/relay"
)

func newSendCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send <action>",
		Short: "Relay one transport command",
		Long: `Relay one transport command to the configured receiver.

Actions: play_pause, next, previous, volume_up, volume_down, stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(g, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			r, err := newRelay(cfg, log)
			if err != nil {
				return err
			}
			defer r.Close()
			if err := r.Send(args[0]); err != nil {
				return err
			}
			typ := cfg.Relay.Type
			if typ == "" {
				typ = relay.TypeOffline
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s (%s)\n", args[0], typ)
			return nil
		},
	}
}
