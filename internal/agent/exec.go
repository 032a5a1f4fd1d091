package agent

import (
	"fmt"
	"os"

	"github.com/yfreeman/term-agent/internal/transcript"
)

// ExecuteCommand dispatches a shell command to a session, writing a
// transcript marker first so the output can be retrieved later. A marker
// write failure is absorbed: the command is still sent, and capture falls
// back to a live pane snapshot.
func (a *Agent) ExecuteCommand(session, window, command string) (*ExecResult, error) {
	if !a.term.SessionExists(session) {
		return nil, NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", session),
			"Use 'term-agent list' to see available sessions")
	}

	target := session
	if window != "" {
		win, err := a.term.FindWindow(session, window)
		if err != nil || win == nil {
			return nil, NewError(ErrCodeWindowNotFound,
				fmt.Sprintf("window '%s' not found in session '%s'", window, session),
				"Window can be given by name or index")
		}
		target = windowTarget(session, win.Index)
	}

	// Make sure pane output is flowing to the transcript before the
	// marker lands, otherwise the marker has no region to delimit.
	path, err := a.term.GetSessionOption(session, metaLogFile)
	if err != nil || path == "" {
		path, err = a.enableTranscript(session)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: transcript logging unavailable for '%s': %v\n", session, err)
			path = ""
		}
	}

	result := &ExecResult{
		Session:    session,
		Window:     window,
		Target:     target,
		Command:    command,
		Transcript: path,
	}

	if path != "" {
		markerID, err := transcript.WriteMarker(path, command)
		result.MarkerID = markerID
		if err != nil {
			result.Warning = fmt.Sprintf("marker not written: %v", err)
			fmt.Fprintf(os.Stderr, "warning: %s\n", result.Warning)
		} else {
			result.MarkerWritten = true
		}
	} else {
		result.MarkerID = transcript.NewMarkerID()
		result.Warning = "no transcript; output will come from live capture only"
	}

	// Record the marker regardless of write success so a later capture
	// can try the transcript and fall back cleanly.
	a.term.SetSessionOption(session, metaLastMarker, result.MarkerID)

	if err := a.term.SendKeys(target, command, true); err != nil {
		return nil, NewError(ErrCodeInternalError,
			fmt.Sprintf("sending command to '%s': %v", target, err), "")
	}

	return result, nil
}
