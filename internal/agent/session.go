package agent

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yfreeman/term-agent/internal/logdir"
	"github.com/yfreeman/term-agent/internal/tmux"
)

// CreateOptions configures session creation.
type CreateOptions struct {
	TaskType    string
	Description string
}

// ListSessions returns all sessions with their metadata.
func (a *Agent) ListSessions() ([]SessionInfo, error) {
	sessions, err := a.term.ListSessions()
	if err != nil {
		return nil, NewError(ErrCodeInternalError, fmt.Sprintf("listing sessions: %v", err), "")
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		info := SessionInfo{
			Name:     s.Name,
			ID:       s.ID,
			Windows:  s.Windows,
			Attached: s.Attached,
		}
		// Metadata reads are best-effort: a session without options is
		// still a valid session.
		info.TaskType, _ = a.term.GetSessionOption(s.Name, MetaTaskType)
		info.Description, _ = a.term.GetSessionOption(s.Name, MetaDescription)
		info.Transcript, _ = a.term.GetSessionOption(s.Name, metaLogFile)
		infos = append(infos, info)
	}
	return infos, nil
}

// GetOrCreateSession returns the named session, creating it if missing.
// An empty name generates one of the form agent-<8 hex chars>.
func (a *Agent) GetOrCreateSession(name string, opts CreateOptions) (*SessionInfo, error) {
	if name == "" {
		name = generateSessionName()
	}
	if err := tmux.ValidateSessionName(name); err != nil {
		return nil, NewError(ErrCodeInvalidSessionName, err.Error(),
			"Session names cannot contain ':' or '.'")
	}
	if opts.TaskType != "" && !ValidTaskType(opts.TaskType) {
		return nil, NewError(ErrCodeInvalidTaskType,
			fmt.Sprintf("invalid task_type '%s'", opts.TaskType),
			"Valid task types: interactive, background, watcher, oneshot")
	}

	if a.term.SessionExists(name) {
		info := SessionInfo{Name: name}
		info.TaskType, _ = a.term.GetSessionOption(name, MetaTaskType)
		info.Description, _ = a.term.GetSessionOption(name, MetaDescription)
		info.Transcript, _ = a.term.GetSessionOption(name, metaLogFile)
		return &info, nil
	}

	if err := a.term.CreateSession(name); err != nil {
		return nil, NewError(ErrCodeInternalError,
			fmt.Sprintf("creating session '%s': %v", name, err), "")
	}

	a.term.SetSessionOption(name, MetaCreatedAt, a.nowFn().UTC().Format(time.RFC3339))
	a.term.SetSessionOption(name, MetaCreatedBy, "term-agent")
	if opts.TaskType != "" {
		a.term.SetSessionOption(name, MetaTaskType, opts.TaskType)
	}
	if opts.Description != "" {
		a.term.SetSessionOption(name, MetaDescription, opts.Description)
	}

	info := SessionInfo{
		Name:        name,
		Created:     true,
		TaskType:    opts.TaskType,
		Description: opts.Description,
	}

	// Transcript logging failures degrade the session rather than abort
	// creation: capture falls back to live pane snapshots.
	path, err := a.enableTranscript(name)
	if err == nil {
		info.Transcript = path
	} else {
		fmt.Fprintf(os.Stderr, "warning: transcript logging disabled for '%s': %v\n", name, err)
	}

	return &info, nil
}

// KillSession terminates a session. The transcript is removed unless
// keepLog is set.
func (a *Agent) KillSession(name string, keepLog bool) error {
	if !a.term.SessionExists(name) {
		return NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", name),
			"Use 'term-agent list' to see available sessions")
	}

	logFile, _ := a.term.GetSessionOption(name, metaLogFile)

	// Stop the transcript pipe before killing so the file is not left
	// with a half-written final chunk.
	if logFile != "" {
		a.term.ClosePipePane(name)
	}

	if err := a.term.KillSession(name); err != nil {
		return NewError(ErrCodeInternalError,
			fmt.Sprintf("killing session '%s': %v", name, err), "")
	}

	if !keepLog && logFile != "" {
		if err := os.Remove(logFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: could not remove transcript %s: %v\n", logFile, err)
		}
	}
	return nil
}

// enableTranscript starts pipe-pane logging for the session and records
// the transcript path in session options.
func (a *Agent) enableTranscript(session string) (string, error) {
	dir, err := logdir.Resolve(a.logDir)
	if err != nil {
		return "", err
	}
	path := logdir.TranscriptPath(dir, session)
	if err := a.term.PipePaneToFile(session, path); err != nil {
		return "", err
	}
	a.term.SetSessionOption(session, metaLogFile, path)
	return path, nil
}

// TranscriptFile returns the transcript path for an existing session.
func (a *Agent) TranscriptFile(session string) (string, error) {
	if !a.term.SessionExists(session) {
		return "", NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", session),
			"Use 'term-agent list' to see available sessions")
	}
	path := a.transcriptPath(session)
	if path == "" {
		return "", NewError(ErrCodeInternalError,
			fmt.Sprintf("no transcript location for session '%s'", session), "")
	}
	return path, nil
}

// transcriptPath returns the session's transcript path, deriving the
// default when no option is recorded.
func (a *Agent) transcriptPath(session string) string {
	if path, err := a.term.GetSessionOption(session, metaLogFile); err == nil && path != "" {
		return path
	}
	dir, err := logdir.Resolve(a.logDir)
	if err != nil {
		return ""
	}
	return logdir.TranscriptPath(dir, session)
}

// generateSessionName returns a fresh auto-generated session name.
func generateSessionName() string {
	id := uuid.New()
	return "agent-" + hex.EncodeToString(id[:])[:8]
}
