package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mavwarf/soundboard/internal/eventlog"
	"github.com/Mavwarf/soundboard/internal/paths"
)

// Table layout.
const (
	colSound  = 28
	colNumber = 7
	colGap    = 2
)

const noHistory = `No history found. Enable it with "log": true in the config.`

func newHistoryCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [count]",
		Short: "Show the most recent plays, drops and commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 10
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("count must be a positive integer")
				}
				count = n
			}
			return withHistory(cmd.OutOrStdout(), func(s eventlog.Store) error {
				entries, err := s.Entries(0)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is empty.")
					return nil
				}
				if len(entries) > count {
					entries = entries[len(entries)-count:]
				}
				for _, e := range entries {
					fmt.Fprintln(cmd.OutOrStdout(), formatEntry(e))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary [days|all]",
		Short: "Totals per sound and command (default: last 7 days)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) == 1 {
				if args[0] == "all" {
					days = 0
				} else {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("days must be a positive integer or \"all\"")
					}
					days = n
				}
			}
			return withHistory(cmd.OutOrStdout(), func(s eventlog.Store) error {
				entries, err := s.Entries(days)
				if err != nil {
					return err
				}
				counts := eventlog.Summarize(entries)
				if len(counts) == 0 {
					if days == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No activity found.")
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "No activity in the last", days, "days.")
					}
					return nil
				}
				renderSummary(cmd.OutOrStdout(), counts)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clean <days>",
		Short: "Remove entries older than the given number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[0])
			if err != nil || days <= 0 {
				return fmt.Errorf("days must be a positive integer")
			}
			return withHistory(cmd.OutOrStdout(), func(s eventlog.Store) error {
				n, err := s.Clean(days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s entries older than %d days.\n", fmtNum(n), days)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.OutOrStdout(), func(s eventlog.Store) error {
				if err := s.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			})
		},
	})
	return cmd
}

// withHistory opens the history database if it exists and runs fn on it.
func withHistory(w io.Writer, fn func(eventlog.Store) error) error {
	path := paths.HistoryPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(w, noHistory)
			return nil
		}
		return err
	}
	s, err := eventlog.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func formatEntry(e eventlog.Entry) string {
	ts := dim(e.Time.Local().Format("2006-01-02 15:04:05"))
	kind := padR(eventlog.KindString(e.Kind), 8)
	switch e.Kind {
	case eventlog.KindPlay:
		return fmt.Sprintf("%s  %s %s ch %-2d %s %s", ts, green(kind), padR(e.Name, colSound),
			e.Channel, padR(e.Effects, 24), dim(e.Latency.String()))
	case eventlog.KindDrop:
		return fmt.Sprintf("%s  %s %s %s", ts, red(kind), padR(e.Name, colSound), e.Detail)
	default:
		line := fmt.Sprintf("%s  %s %s", ts, cyan(kind), e.Name)
		if e.Detail != "" {
			line += "  " + yellow(e.Detail)
		}
		return line
	}
}

func renderSummary(w io.Writer, counts []eventlog.Counts) {
	gap := padR("", colGap)
	fmt.Fprintf(w, "%s%s%s%s%s%s%s\n", bold(padR("Name", colSound)),
		gap, bold(padL("Plays", colNumber)),
		gap, bold(padL("Drops", colNumber)),
		gap, bold(padL("Cmds", colNumber)))
	var plays, drops, cmds int
	for _, c := range counts {
		fmt.Fprintf(w, "%s%s%s%s%s%s%s\n", padR(c.Name, colSound),
			gap, padL(fmtNum(c.Plays), colNumber),
			gap, padL(fmtNum(c.Drops), colNumber),
			gap, padL(fmtNum(c.Commands), colNumber))
		plays += c.Plays
		drops += c.Drops
		cmds += c.Commands
	}
	fmt.Fprintf(w, "%s%s%s%s%s%s%s\n", dim(padR("Total", colSound)),
		gap, padL(fmtNum(plays), colNumber),
		gap, padL(fmtNum(drops), colNumber),
		gap, padL(fmtNum(cmds), colNumber))
}
