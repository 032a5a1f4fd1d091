package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions with their metadata",
	Long: `List all tmux sessions visible to the agent, with task type and
description metadata where recorded.

Examples:
  # List sessions as a table
  term-agent list

  # Machine-readable listing
  term-agent list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newAgent()
	if err != nil {
		return err
	}

	sessions, err := a.ListSessions()
	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}, func(w io.Writer) error {
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No sessions found.")
			return nil
		}
		table := output.NewTable(w, "NAME", "WINDOWS", "ATTACHED", "TASK", "DESCRIPTION")
		for _, s := range sessions {
			table.AddRow(s.Name, strconv.Itoa(s.Windows), yesNo(s.Attached), s.TaskType, s.Description)
		}
		table.Render()
		return nil
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
