package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/output"
)

var captureCmd = &cobra.Command{
	Use:   "capture SESSION",
	Short: "Capture output of a dispatched command",
	Long: `Retrieve the output of a previously dispatched command from the
session transcript. Long output is summarized around error lines; use
--full to get everything.

Without --marker, the session's most recent marker is used. When the
transcript or marker is unavailable the live pane content is shown
instead.

Examples:
  # Capture output of the last dispatched command
  term-agent capture myproj

  # Capture a specific command's output in full
  term-agent capture myproj --marker a1b2c3d4e5f6 --full`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

var (
	captureMarker string
	captureFull   bool
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureMarker, "marker", "m", "", "Marker id from a previous exec")
	captureCmd.Flags().BoolVarP(&captureFull, "full", "f", false, "Return full output, never summarize")
}

func runCapture(cmd *cobra.Command, args []string) error {
	a, err := newAgent()
	if err != nil {
		return err
	}

	res, err := a.CaptureOutput(args[0], captureMarker, captureFull)
	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(res, func(w io.Writer) error {
		for _, line := range res.Lines {
			fmt.Fprintln(w, line)
		}
		if res.Message != "" {
			fmt.Fprintf(w, "[%s]\n", res.Message)
		}
		return nil
	})
}
