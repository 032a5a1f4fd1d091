// Package agent orchestrates terminal sessions for AI coding agents: it
// dispatches commands with transcript markers, extracts and summarizes the
// resulting output, and polls panes for command completion.
package agent

import (
	"time"

	"github.com/yfreeman/term-agent/internal/tmux"
)

// Terminal is the narrow surface the agent needs from the multiplexer.
// *tmux.Client implements it; tests substitute a fake.
type Terminal interface {
	SessionExists(name string) bool
	ListSessions() ([]tmux.Session, error)
	CreateSession(name string) error
	KillSession(name string) error
	ListWindows(session string) ([]tmux.Window, error)
	FindWindow(session, name string) (*tmux.Window, error)
	SendKeys(target, keys string, enter bool) error
	CapturePane(target string) ([]string, error)
	SetSessionOption(session, key, value string) error
	GetSessionOption(session, key string) (string, error)
	SetWindowOption(session, window, key, value string) error
	GetWindowOption(session, window, key string) (string, error)
	PipePaneToFile(target, path string) error
	ClosePipePane(target string) error
}

var _ Terminal = (*tmux.Client)(nil)

// Agent coordinates sessions, transcripts, and completion polling.
type Agent struct {
	term     Terminal
	logDir   string
	maxLines int

	// Injectable clock, swapped in tests for deterministic timing.
	nowFn   func() time.Time
	sleepFn func(time.Duration)
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxLines sets the summarization threshold for captured output.
func WithMaxLines(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxLines = n
		}
	}
}

// New creates an Agent that drives term and stores transcripts under logDir.
func New(term Terminal, logDir string, opts ...Option) *Agent {
	a := &Agent{
		term:    term,
		logDir:  logDir,
		nowFn:   time.Now,
		sleepFn: time.Sleep,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
