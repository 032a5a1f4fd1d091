package agent

import (
	"fmt"
	"math"
	"time"

	"github.com/yfreeman/term-agent/internal/status"
)

// WaitOptions configures completion polling.
type WaitOptions struct {
	Window         string
	Timeout        time.Duration
	PollInterval   time.Duration
	IgnoreMetadata bool // Poll even for background/watcher task types
}

// DefaultPollInterval is the pause between completion samples.
const DefaultPollInterval = 2 * time.Second

// Wait blocks until the target pane shows a shell prompt, the timeout
// expires, or the task type short-circuits polling. The underlying process
// is never signaled: on timeout the command keeps running, only
// observation stops.
func (a *Agent) Wait(session string, opts WaitOptions) (*WaitResult, error) {
	if !a.term.SessionExists(session) {
		return nil, NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", session),
			"Use 'term-agent list' to see available sessions")
	}

	target := session
	if opts.Window != "" {
		win, err := a.term.FindWindow(session, opts.Window)
		if err != nil || win == nil {
			return nil, NewError(ErrCodeWindowNotFound,
				fmt.Sprintf("window '%s' not found in session '%s'", opts.Window, session), "")
		}
		target = windowTarget(session, win.Index)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	taskType := a.taskTypeFor(session, opts.Window)

	// Background and watcher tasks never show a prompt; polling would
	// always run out the clock. Return one immediate snapshot instead.
	if !opts.IgnoreMetadata && longRunning(taskType) {
		lines, err := a.term.CapturePane(target)
		if err != nil {
			return nil, NewError(ErrCodePaneNotFound,
				fmt.Sprintf("capturing pane for '%s': %v", target, err), "")
		}
		return &WaitResult{
			Session:  session,
			Status:   StatusRunning,
			Output:   lines,
			Elapsed:  0,
			TaskType: taskType,
		}, nil
	}

	start := a.nowFn()

	// Sample at least once, even with a zero timeout.
	for {
		lines, err := a.term.CapturePane(target)
		if err != nil {
			return nil, NewError(ErrCodePaneNotFound,
				fmt.Sprintf("capturing pane for '%s': %v", target, err), "")
		}

		if status.DetectPrompt(lines) {
			return &WaitResult{
				Session:  session,
				Status:   StatusCompleted,
				Output:   lines,
				Elapsed:  roundSeconds(a.nowFn().Sub(start)),
				TaskType: taskType,
			}, nil
		}

		if a.nowFn().Sub(start) >= opts.Timeout {
			return &WaitResult{
				Session:  session,
				Status:   StatusTimeout,
				Output:   lines,
				Elapsed:  roundSeconds(a.nowFn().Sub(start)),
				TimedOut: true,
				TaskType: taskType,
			}, nil
		}

		a.sleepFn(opts.PollInterval)
	}
}

// roundSeconds reports a duration as seconds with two decimal places.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
