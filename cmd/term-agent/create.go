package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/agent"
	"github.com/yfreeman/term-agent/internal/output"
)

var createCmd = &cobra.Command{
	Use:   "create [NAME]",
	Short: "Create a session (or return an existing one)",
	Long: `Create a tmux session with transcript logging enabled. If the session
already exists it is returned as-is. Without a name, one of the form
agent-<8 hex chars> is generated.

Examples:
  # Create a named session
  term-agent create myproj

  # Create with task metadata
  term-agent create watch-logs --task-type watcher --description "tail app logs"

  # Auto-generated name
  term-agent create`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

var (
	createTaskType    string
	createDescription string
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createTaskType, "task-type", "t", "", "Task type: interactive, background, watcher, oneshot")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Human-readable session description")
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	a, err := newAgent()
	if err != nil {
		return err
	}

	info, err := a.GetOrCreateSession(name, agent.CreateOptions{
		TaskType:    createTaskType,
		Description: createDescription,
	})
	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(info, func(w io.Writer) error {
		if info.Created {
			fmt.Fprintf(w, "Created session %q\n", info.Name)
		} else {
			fmt.Fprintf(w, "Session %q already exists\n", info.Name)
		}
		if info.Transcript != "" {
			fmt.Fprintf(w, "Transcript: %s\n", info.Transcript)
		}
		return nil
	})
}
