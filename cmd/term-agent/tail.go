package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/util"
	"github.com/yfreeman/term-agent/internal/watcher"
)

var tailCmd = &cobra.Command{
	Use:   "tail SESSION",
	Short: "Follow a session's transcript",
	Long: `Stream new transcript lines for a session as pane output arrives,
like tail -f. Runs until interrupted.

Examples:
  # Follow new output
  term-agent tail myproj

  # Replay the whole transcript first, then follow
  term-agent tail myproj --from-start

  # Poll instead of inotify (for network filesystems)
  term-agent tail myproj --poll 500ms`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

var (
	tailFromStart bool
	tailPoll      string
)

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false, "Replay existing transcript content first")
	tailCmd.Flags().StringVar(&tailPoll, "poll", "", "Use polling at this interval instead of file events")
}

func runTail(cmd *cobra.Command, args []string) error {
	a, err := newAgent()
	if err != nil {
		return err
	}

	path, err := a.TranscriptFile(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no transcript yet for session '%s' (run a command first)", args[0])
	}

	opts := []watcher.TailOption{
		watcher.TailErrorHandler(func(err error) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}),
	}
	if tailFromStart {
		opts = append(opts, watcher.TailFromStart())
	}
	if tailPoll != "" {
		interval, err := util.ParseDurationWithDefault(tailPoll, time.Millisecond, "--poll")
		if err != nil {
			return err
		}
		opts = append(opts, watcher.TailPolling(interval))
	}

	tail, err := watcher.Follow(path, func(lines []string) {
		for _, line := range lines {
			fmt.Println(line)
		}
	}, opts...)
	if err != nil {
		return err
	}
	defer tail.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
