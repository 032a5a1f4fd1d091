package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/history"
	"github.com/yfreeman/term-agent/internal/output"
)

var execCmd = &cobra.Command{
	Use:   "exec SESSION COMMAND",
	Short: "Dispatch a shell command to a session",
	Long: `Send a shell command to a session, writing a transcript marker first
so the output can be captured later with 'term-agent capture'.

Examples:
  # Run tests in a session
  term-agent exec myproj "make test"

  # Target a specific window by name or index
  term-agent exec myproj "npm run build" --window build`,
	Args: cobra.ExactArgs(2),
	RunE: runExec,
}

var execWindow string

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVarP(&execWindow, "window", "w", "", "Target window by name or index")
}

func runExec(cmd *cobra.Command, args []string) error {
	session := args[0]
	command := args[1]

	a, err := newAgent()
	if err != nil {
		return err
	}

	res, err := a.ExecuteCommand(session, execWindow, command)

	if cfg.History.Enabled {
		markerID := ""
		if res != nil {
			markerID = res.MarkerID
		}
		entry := history.NewEntry(session, execWindow, command, markerID)
		if err != nil {
			entry.SetError(err)
		} else {
			entry.SetSuccess()
		}
		if appendErr := history.Append(entry); appendErr != nil {
			fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", appendErr)
		} else if cfg.History.MaxEntries > 0 {
			if n, _ := history.Count(); n > cfg.History.MaxEntries {
				history.Prune(cfg.History.MaxEntries)
			}
		}
	}

	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(res, func(w io.Writer) error {
		fmt.Fprintf(w, "Dispatched to %s (marker %s)\n", res.Target, res.MarkerID)
		if res.Warning != "" {
			fmt.Fprintf(w, "Warning: %s\n", res.Warning)
		}
		return nil
	})
}
