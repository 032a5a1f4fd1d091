package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/agent"
	"github.com/yfreeman/term-agent/internal/output"
	"github.com/yfreeman/term-agent/internal/util"
)

var waitCmd = &cobra.Command{
	Use:   "wait SESSION",
	Short: "Wait for a command to finish",
	Long: `Poll a session's pane until an idle shell prompt appears or the
timeout expires. Background and watcher sessions short-circuit with a
single snapshot and status "running".

Timeout never kills the command: the process keeps running, only the
wait stops. Exit code is 0 on completion, 1 on timeout.

Examples:
  # Wait up to the configured timeout
  term-agent wait myproj

  # Custom timeout and poll interval
  term-agent wait myproj --timeout 10m --poll-interval 5s

  # Poll a background session anyway
  term-agent wait daemons --ignore-metadata`,
	Args: cobra.ExactArgs(1),
	RunE: runWait,
}

var (
	waitWindow         string
	waitTimeout        string
	waitPollInterval   string
	waitIgnoreMetadata bool
)

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().StringVarP(&waitWindow, "window", "w", "", "Target window by name or index")
	waitCmd.Flags().StringVarP(&waitTimeout, "timeout", "t", "", "Maximum wait (e.g. 30s, 5m); default from config")
	waitCmd.Flags().StringVarP(&waitPollInterval, "poll-interval", "p", "", "Pause between samples; default from config")
	waitCmd.Flags().BoolVar(&waitIgnoreMetadata, "ignore-metadata", false, "Poll even for background/watcher sessions")
}

func runWait(cmd *cobra.Command, args []string) error {
	opts := agent.WaitOptions{
		Window:         waitWindow,
		Timeout:        time.Duration(cfg.Wait.TimeoutSeconds * float64(time.Second)),
		PollInterval:   time.Duration(cfg.Wait.PollIntervalSeconds * float64(time.Second)),
		IgnoreMetadata: waitIgnoreMetadata,
	}
	if waitTimeout != "" {
		d, err := util.ParseDurationWithDefault(waitTimeout, time.Second, "--timeout")
		if err != nil {
			return err
		}
		opts.Timeout = d
	}
	if waitPollInterval != "" {
		d, err := util.ParseDurationWithDefault(waitPollInterval, time.Second, "--poll-interval")
		if err != nil {
			return err
		}
		opts.PollInterval = d
	}

	a, err := newAgent()
	if err != nil {
		return err
	}

	res, err := a.Wait(args[0], opts)
	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	if err := formatter.OutputData(res, func(w io.Writer) error {
		fmt.Fprintf(w, "Status: %s (%.2fs)\n", res.Status, res.Elapsed)
		for _, line := range res.Output {
			fmt.Fprintln(w, line)
		}
		return nil
	}); err != nil {
		return err
	}

	if res.TimedOut {
		os.Exit(1)
	}
	return nil
}
