package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/output"
)

var metaCmd = &cobra.Command{
	Use:   "meta SESSION",
	Short: "Get or set session metadata",
	Long: `Read or write metadata stored on a session or window: task_type,
description, created_at, created_by. Setting task_type to "background"
or "watcher" makes 'term-agent wait' return immediately with a snapshot.

Examples:
  # Show all metadata
  term-agent meta myproj

  # Read one key
  term-agent meta myproj --get task_type

  # Mark a window as a watcher
  term-agent meta myproj --window logs --set task_type=watcher`,
	Args: cobra.ExactArgs(1),
	RunE: runMeta,
}

var (
	metaWindow string
	metaGet    string
	metaSet    []string
)

func init() {
	rootCmd.AddCommand(metaCmd)

	metaCmd.Flags().StringVarP(&metaWindow, "window", "w", "", "Scope to a window by name or index")
	metaCmd.Flags().StringVarP(&metaGet, "get", "g", "", "Read a single key")
	metaCmd.Flags().StringArrayVarP(&metaSet, "set", "s", nil, "Set key=value (repeatable)")
}

func runMeta(cmd *cobra.Command, args []string) error {
	session := args[0]

	a, err := newAgent()
	if err != nil {
		return err
	}

	if len(metaSet) > 0 {
		values := make(map[string]string, len(metaSet))
		for _, kv := range metaSet {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid --set %q: expected key=value", kv)
			}
			values[key] = value
		}
		if err := a.SetMetadata(session, metaWindow, values); err != nil {
			return err
		}
	}

	meta, err := a.GetMetadata(session, metaWindow)
	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)

	if metaGet != "" {
		value := meta[metaGet]
		return formatter.OutputData(map[string]string{metaGet: value}, func(w io.Writer) error {
			fmt.Fprintln(w, value)
			return nil
		})
	}

	return formatter.OutputData(meta, func(w io.Writer) error {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s = %s\n", k, meta[k])
		}
		return nil
	})
}
