package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mavwarf/soundboard/internal/config"
	"github.com/Mavwarf/soundboard/internal/paths"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	var (
		force   bool
		useYAML bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file and create its sounds directory.

The file goes to --config if given, otherwise to the data directory
(~/.config/soundboard or %APPDATA%\soundboard).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveInitPath(g.configPath, useYAML)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			sounds := filepath.Join(filepath.Dir(path), cfg.Audio.SoundsDir)
			if err := os.MkdirAll(sounds, paths.DirPerm); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote default config to %s\n", path)
			fmt.Fprintf(out, "Put sound files in %s and bind them under \"buttons\".\n", sounds)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&useYAML, "yaml", false, "write YAML instead of JSON")
	return cmd
}

func resolveInitPath(configPath string, useYAML bool) string {
	if configPath != "" {
		return configPath
	}
	if useYAML {
		return filepath.Join(paths.DataDir(), paths.ConfigYAMLName)
	}
	return config.DefaultPath()
}
