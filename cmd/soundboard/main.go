// Command soundboard plays sound clips with live effects from buttons,
// GPIO keys or the command line, and relays transport commands to a
// remote media player.
//
// Usage:
//
//	soundboard [flags] <command> [args]
//
// Commands:
//
//	run      listen for button and GPIO presses
//	play     play sounds or button bindings once and exit
//	list     show bindings, effects and available sounds
//	send     relay one transport command
//	history  show, summarize or clean the play history
//	init     write a default configuration file
package main

import (
	"fmt"
	"os"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
