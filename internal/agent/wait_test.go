package agent

import (
	"testing"
	"time"

	"github.com/yfreeman/term-agent/internal/tmux"
)

func waitTestAgent(t *testing.T, term Terminal) (*Agent, *fakeClock) {
	t.Helper()
	a := New(term, t.TempDir())
	clock := newFakeClock()
	a.nowFn = clock.Now
	a.sleepFn = clock.Sleep
	return a, clock
}

func TestWaitCompletesOnPrompt(t *testing.T) {
	term := newFakeTerminal("work")
	term.paneLines["work"] = []string{"build ok", "", "user@host:~/proj$ "}
	a, clock := waitTestAgent(t, term)

	res, err := a.Wait("work", WaitOptions{Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", res.Status, StatusCompleted)
	}
	if res.TimedOut {
		t.Error("timed_out should be false")
	}
	if res.Elapsed != 0 {
		t.Errorf("elapsed = %v, want 0 for first-sample completion", res.Elapsed)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("slept %d times, want 0", len(clock.sleeps))
	}
	if len(res.Output) != 3 || res.Output[0] != "build ok" {
		t.Errorf("output = %v", res.Output)
	}
}

func TestWaitTimeout(t *testing.T) {
	term := newFakeTerminal("work")
	term.paneLines["work"] = []string{"still compiling..."}
	a, clock := waitTestAgent(t, term)

	res, err := a.Wait("work", WaitOptions{
		Timeout:      1 * time.Second,
		PollInterval: 500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != StatusTimeout || !res.TimedOut {
		t.Errorf("status = %q timed_out = %v, want timeout/true", res.Status, res.TimedOut)
	}
	if res.Elapsed < 1.0 || res.Elapsed >= 1.5 {
		t.Errorf("elapsed = %v, want within [1.0, 1.5)", res.Elapsed)
	}
	if len(clock.sleeps) != 2 {
		t.Errorf("slept %d times, want 2", len(clock.sleeps))
	}
}

func TestWaitZeroTimeoutSamplesOnce(t *testing.T) {
	term := newFakeTerminal("work")
	term.paneLines["work"] = []string{"output line"}
	a, clock := waitTestAgent(t, term)

	res, err := a.Wait("work", WaitOptions{Timeout: 0})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != StatusTimeout {
		t.Errorf("status = %q, want %q", res.Status, StatusTimeout)
	}
	if len(res.Output) != 1 || res.Output[0] != "output line" {
		t.Errorf("output = %v, want the single sampled snapshot", res.Output)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("slept %d times, want 0", len(clock.sleeps))
	}
}

func TestWaitShortCircuitsLongRunning(t *testing.T) {
	for _, taskType := range []string{"background", "watcher"} {
		t.Run(taskType, func(t *testing.T) {
			term := newFakeTerminal("work")
			term.sessOpts["work"] = map[string]string{MetaTaskType: taskType}
			term.paneLines["work"] = []string{"[watching for changes]"}
			a, clock := waitTestAgent(t, term)

			res, err := a.Wait("work", WaitOptions{Timeout: 10 * time.Second})
			if err != nil {
				t.Fatalf("Wait: %v", err)
			}
			if res.Status != StatusRunning {
				t.Errorf("status = %q, want %q", res.Status, StatusRunning)
			}
			if res.Elapsed != 0 {
				t.Errorf("elapsed = %v, want 0", res.Elapsed)
			}
			if res.TaskType != taskType {
				t.Errorf("task type = %q", res.TaskType)
			}
			if len(res.Output) != 1 {
				t.Errorf("expected one snapshot, got %v", res.Output)
			}
			if len(clock.sleeps) != 0 {
				t.Errorf("slept %d times, want 0", len(clock.sleeps))
			}
		})
	}
}

func TestWaitIgnoreMetadataPollsAnyway(t *testing.T) {
	term := newFakeTerminal("work")
	term.sessOpts["work"] = map[string]string{MetaTaskType: "background"}
	term.paneLines["work"] = []string{"server listening", "$ "}
	a, _ := waitTestAgent(t, term)

	res, err := a.Wait("work", WaitOptions{Timeout: time.Second, IgnoreMetadata: true})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Errorf("status = %q, want %q with metadata ignored", res.Status, StatusCompleted)
	}
}

func TestWaitWindowScope(t *testing.T) {
	term := newFakeTerminal("work")
	term.windows["work"] = []tmux.Window{{Index: 3, Name: "logs"}}
	term.paneLines["work:3"] = []string{"done", "% "}
	a, _ := waitTestAgent(t, term)

	res, err := a.Wait("work", WaitOptions{Window: "logs", Timeout: time.Second})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Errorf("status = %q", res.Status)
	}
}

func TestWaitPromptLatecomer(t *testing.T) {
	term := newFakeTerminal("work")
	samples := [][]string{
		{"compiling..."},
		{"compiling..."},
		{"build ok", "zsh% "},
	}
	n := 0
	term.captureFn = func(target string) ([]string, error) {
		lines := samples[n]
		if n < len(samples)-1 {
			n++
		}
		return lines, nil
	}
	a, clock := waitTestAgent(t, term)

	res, err := a.Wait("work", WaitOptions{
		Timeout:      time.Minute,
		PollInterval: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Errorf("status = %q", res.Status)
	}
	if res.Elapsed != 4.0 {
		t.Errorf("elapsed = %v, want 4.0 after two poll intervals", res.Elapsed)
	}
	if len(clock.sleeps) != 2 {
		t.Errorf("slept %d times, want 2", len(clock.sleeps))
	}
}

func TestWaitUnknownSession(t *testing.T) {
	a, _ := waitTestAgent(t, newFakeTerminal())

	_, err := a.Wait("ghost", WaitOptions{Timeout: time.Second})
	if CodeOf(err) != ErrCodeSessionNotFound {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeSessionNotFound)
	}
}
