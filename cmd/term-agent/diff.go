package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/output"
	"github.com/yfreeman/term-agent/internal/transcript"
)

var diffCmd = &cobra.Command{
	Use:   "diff SESSION MARKER1 MARKER2",
	Short: "Compare the output of two dispatched commands",
	Long: `Extract the full output regions of two markers from a session's
transcript and show a line diff between them. Useful for comparing a
failing run against a passing one.

Examples:
  term-agent diff myproj a1b2c3d4e5f6 0f9e8d7c6b5a`,
	Args: cobra.ExactArgs(3),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	session, marker1, marker2 := args[0], args[1], args[2]

	a, err := newAgent()
	if err != nil {
		return err
	}

	path, err := a.TranscriptFile(session)
	if err != nil {
		return err
	}

	res1 := transcript.Extract(path, marker1, 0, true)
	if res1.Method == transcript.MethodNoFile || res1.Method == transcript.MethodMarkerNotFound {
		return fmt.Errorf("marker %s not found in transcript for '%s'", marker1, session)
	}
	res2 := transcript.Extract(path, marker2, 0, true)
	if res2.Method == transcript.MethodMarkerNotFound {
		return fmt.Errorf("marker %s not found in transcript for '%s'", marker2, session)
	}

	diff := output.ComputeDiff(
		marker1, strings.Join(res1.Lines, "\n"),
		marker2, strings.Join(res2.Lines, "\n"),
	)

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(diff, func(w io.Writer) error {
		fmt.Fprintf(w, "Similarity: %.1f%%\n", diff.Similarity*100)
		fmt.Fprint(w, diff.UnifiedDiff)
		return nil
	})
}
