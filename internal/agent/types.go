package agent

import (
	"fmt"

	"github.com/yfreeman/term-agent/internal/transcript"
)

// TaskType classifies what a session or window is running. The wait
// operation short-circuits for long-running types instead of polling.
type TaskType string

const (
	TaskInteractive TaskType = "interactive"
	TaskBackground  TaskType = "background"
	TaskWatcher     TaskType = "watcher"
	TaskOneshot     TaskType = "oneshot"
)

// ValidTaskType reports whether s is a known task type.
func ValidTaskType(s string) bool {
	switch TaskType(s) {
	case TaskInteractive, TaskBackground, TaskWatcher, TaskOneshot:
		return true
	}
	return false
}

// longRunning reports whether a task type never produces a shell prompt,
// so waiting for one would always time out.
func longRunning(s string) bool {
	return TaskType(s) == TaskBackground || TaskType(s) == TaskWatcher
}

// Metadata keys stored as tmux user options (@-prefixed on the wire).
const (
	MetaTaskType    = "task_type"
	MetaDescription = "description"
	MetaCreatedAt   = "created_at"
	MetaCreatedBy   = "created_by"

	// Internal bookkeeping, not part of user-facing metadata.
	metaLastMarker = "last_marker"
	metaLogFile    = "log_file"
)

// metadataKeys are the user-facing keys returned by GetMetadata.
var metadataKeys = []string{MetaTaskType, MetaDescription, MetaCreatedAt, MetaCreatedBy}

// Wait status values. Timeout is a normal outcome, not an error.
const (
	StatusCompleted = "completed"
	StatusRunning   = "running"
	StatusTimeout   = "timeout"
)

// SessionInfo describes a session for listing and creation results.
type SessionInfo struct {
	Name        string `json:"name"`
	ID          string `json:"id,omitempty"`
	Windows     int    `json:"windows"`
	Attached    bool   `json:"attached"`
	Created     bool   `json:"created,omitempty"`
	TaskType    string `json:"task_type,omitempty"`
	Description string `json:"description,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// ExecResult reports a dispatched command.
type ExecResult struct {
	Session       string `json:"session"`
	Window        string `json:"window,omitempty"`
	Target        string `json:"-"`
	Command       string `json:"command"`
	MarkerID      string `json:"marker_id"`
	Transcript    string `json:"transcript"`
	MarkerWritten bool   `json:"marker_written"`
	Warning       string `json:"warning,omitempty"`
}

// CaptureResult reports extracted or live-captured output.
type CaptureResult struct {
	Session  string `json:"session"`
	MarkerID string `json:"marker_id,omitempty"`
	transcript.Result
}

// MethodCapturePane marks output taken from the live pane because the
// transcript had no usable marker region.
const MethodCapturePane = "capture_pane"

// WaitResult reports the outcome of waiting for command completion.
type WaitResult struct {
	Session  string   `json:"session"`
	Status   string   `json:"status"`
	Output   []string `json:"output"`
	Elapsed  float64  `json:"elapsed"`
	TimedOut bool     `json:"timed_out"`
	TaskType string   `json:"task_type,omitempty"`
}

// windowTarget formats a tmux target for a window index within a session.
func windowTarget(session string, index int) string {
	return fmt.Sprintf("%s:%d", session, index)
}
