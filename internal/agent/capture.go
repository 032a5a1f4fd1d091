package agent

import (
	"fmt"

	"github.com/yfreeman/term-agent/internal/status"
	"github.com/yfreeman/term-agent/internal/transcript"
)

// CaptureOutput retrieves the output of a previously dispatched command.
// With an empty markerID the session's last recorded marker is used.
// When the transcript or the marker is missing the result degrades to a
// live pane snapshot instead of failing.
func (a *Agent) CaptureOutput(session, markerID string, forceFull bool) (*CaptureResult, error) {
	if !a.term.SessionExists(session) {
		return nil, NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", session),
			"Use 'term-agent list' to see available sessions")
	}

	if markerID == "" {
		markerID, _ = a.term.GetSessionOption(session, metaLastMarker)
	}

	result := &CaptureResult{Session: session, MarkerID: markerID}

	if markerID != "" {
		path := a.transcriptPath(session)
		if path != "" {
			res := transcript.Extract(path, markerID, a.maxLines, forceFull)
			if res.Method != transcript.MethodNoFile && res.Method != transcript.MethodMarkerNotFound {
				result.Result = res
				return result, nil
			}
		}
	}

	// Degraded path: snapshot the visible pane.
	lines, err := a.term.CapturePane(session)
	if err != nil {
		return nil, NewError(ErrCodePaneNotFound,
			fmt.Sprintf("capturing pane for '%s': %v", session, err), "")
	}
	for i, line := range lines {
		lines[i] = status.StripANSI(line)
	}
	result.Result = transcript.Result{
		Lines:     lines,
		LineCount: len(lines),
		Method:    MethodCapturePane,
		Message:   "marker not found in transcript; showing live pane content",
	}
	return result, nil
}
