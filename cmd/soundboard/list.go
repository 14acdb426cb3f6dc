package main

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mavwarf/soundboard/internal/audio"
	"github.com/Mavwarf/soundboard/internal/config"
	"github.com/Mavwarf/soundboard/internal/effects"
	"github.com/Mavwarf/soundboard/internal/relay"
	"github.com/Mavwarf/soundboard/internal/trigger"
)

const colName = 18

func newListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show bindings, effects and available sounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printList(w io.Writer, cfg config.Config) {
	src := cfg.Path()
	if src == "" {
		src = "built-in defaults"
	}
	fmt.Fprintf(w, "%s %s\n\n", bold("Config:"), src)

	fmt.Fprintln(w, bold("Buttons:"))
	printBindings(w, cfg.Buttons)

	fmt.Fprintln(w, bold("Keys:"))
	keys := sortedIDs(cfg.Keys)
	if len(keys) == 0 {
		fmt.Fprintln(w, dim("  (none)"))
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %s -> button %s\n", cyan(padR(k, colName)), cfg.Keys[k])
	}

	dev := cfg.InputDevice
	if dev == "" {
		dev = "no input_device"
	}
	fmt.Fprintf(w, "%s %s\n", bold("GPIO:"), dim(dev))
	printBindings(w, cfg.GPIOActions)

	fmt.Fprintln(w, bold("Effects:"))
	for _, k := range effects.Kinds() {
		fmt.Fprintf(w, "  %s %3d\n", padR(k.String(), colName), cfg.Effects.Get(k))
	}

	fmt.Fprintln(w, bold("Built-in sounds:"))
	names := make([]string, 0, len(audio.Sounds))
	for name := range audio.Sounds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s %s\n", padR("sound:"+name, colName), dim(audio.Sounds[name].Description))
	}

	root := cfg.SoundsRoot()
	fmt.Fprintf(w, "%s %s\n", bold("Sound files:"), root)
	files, err := soundFiles(root)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  %s\n", yellow(err.Error()))
	case len(files) == 0:
		fmt.Fprintln(w, dim("  (none)"))
	}
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", f)
	}

	typ := cfg.Relay.Type
	if typ == "" {
		typ = relay.TypeOffline
	}
	fmt.Fprintf(w, "%s %s", bold("Relay:"), typ)
	if typ == relay.TypeMQTT {
		topic := cfg.Relay.Topic
		if topic == "" {
			topic = relay.DefaultTopic
		}
		fmt.Fprintf(w, " %s %s", cfg.Relay.Broker, topic)
	}
	fmt.Fprintf(w, "\n  %s\n", dim(strings.Join(relay.Actions(), ", ")))
}

func printBindings(w io.Writer, m map[string]string) {
	ids := sortedIDs(m)
	if len(ids) == 0 {
		fmt.Fprintln(w, dim("  (none)"))
	}
	for _, id := range ids {
		a, err := trigger.ParseAction(m[id])
		kind := dim(a.Kind.String())
		if err != nil {
			kind = yellow("invalid: " + err.Error())
		}
		fmt.Fprintf(w, "  %s %s %s\n", cyan(padR(id, 6)), padR(m[id], colName), kind)
	}
}

// soundFiles lists decodable files under root, relative to it.
func soundFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !audio.IsAudioFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// sortedIDs orders numeric ids numerically and the rest lexically after them.
func sortedIDs(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
