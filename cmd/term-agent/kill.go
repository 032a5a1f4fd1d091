package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/output"
)

var killCmd = &cobra.Command{
	Use:   "kill SESSION",
	Short: "Terminate a session",
	Long: `Kill a tmux session. Its transcript file is removed by default;
pass --keep-log to preserve it for later inspection.

Examples:
  # Kill a session and its transcript
  term-agent kill myproj

  # Kill but keep the transcript
  term-agent kill myproj --keep-log`,
	Args: cobra.ExactArgs(1),
	RunE: runKill,
}

var killKeepLog bool

func init() {
	rootCmd.AddCommand(killCmd)

	killCmd.Flags().BoolVar(&killKeepLog, "keep-log", false, "Keep the transcript file")
}

func runKill(cmd *cobra.Command, args []string) error {
	session := args[0]

	a, err := newAgent()
	if err != nil {
		return err
	}

	if err := a.KillSession(session, killKeepLog); err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(map[string]interface{}{
		"action":   "kill",
		"session":  session,
		"keep_log": killKeepLog,
		"success":  true,
	}, func(w io.Writer) error {
		fmt.Fprintf(w, "Session %q killed.\n", session)
		return nil
	})
}
