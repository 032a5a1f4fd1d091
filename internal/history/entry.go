// Package history provides dispatch history storage and retrieval.
// Every command executed through the agent is recorded as a JSONL entry
// so past dispatches can be listed, searched, and replayed.
package history

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"
)

// Entry represents a single command dispatched to a session.
type Entry struct {
	ID        string    `json:"id"`                  // Unique ID (timestamp-random)
	Timestamp time.Time `json:"ts"`                  // When dispatched
	Session   string    `json:"session"`             // Session name
	Window    string    `json:"window,omitempty"`    // Window name or index, if targeted
	Command   string    `json:"command"`             // Full command text
	MarkerID  string    `json:"marker_id,omitempty"` // Transcript marker for output retrieval
	Cwd       string    `json:"cwd,omitempty"`       // Working directory at dispatch time
	Success   bool      `json:"success"`             // Whether the dispatch succeeded
	Error     string    `json:"error,omitempty"`     // Error message if failed
}

// NewEntry creates a new history entry with generated ID and timestamp.
func NewEntry(session, window, command, markerID string) *Entry {
	cwd, _ := os.Getwd()
	return &Entry{
		ID:        newID(),
		Timestamp: time.Now().UTC(),
		Session:   session,
		Window:    window,
		Command:   command,
		MarkerID:  markerID,
		Cwd:       cwd,
	}
}

// SetSuccess marks the entry as successful.
func (e *Entry) SetSuccess() {
	e.Success = true
}

// SetError marks the entry as failed with an error message.
func (e *Entry) SetError(err error) {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
}

// newID generates a unique, sortable ID.
// Format: timestamp (ms) + random suffix for uniqueness
func newID() string {
	ms := time.Now().UnixMilli()
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%d-%x", ms, b)
}
