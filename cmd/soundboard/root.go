package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	noAudio    bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "soundboard",
		Short: "Soundboard playback and effects engine",
		Long: `Soundboard playback and effects engine.

Sounds are triggered by buttons (keyboard keys in the terminal pad) or GPIO
keys, run through pitch correction, echo, reverb and distortion, and played
on one of a fixed pool of channels. Actions that are not sound files are
relayed to a receiver over MQTT.`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: search next to binary, then data dir)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&g.noAudio, "no-audio", false, "render without an output device")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newRunCmd(g),
		newPlayCmd(g),
		newListCmd(g),
		newSendCmd(g),
		newHistoryCmd(g),
		newInitCmd(g),
	)
	return root
}
