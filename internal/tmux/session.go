package tmux

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// fieldSep keeps tmux -F output splittable even when names contain spaces.
const fieldSep = "|===|"

// Session represents a tmux session.
type Session struct {
	Name     string
	ID       string
	Windows  int
	Attached bool
}

// Window represents a window within a session.
type Window struct {
	Index  int
	Name   string
	Panes  int
	Active bool
}

// Pane represents a pane within a window.
type Pane struct {
	ID     string
	Index  int
	Title  string
	Width  int
	Height int
	Active bool
}

// ValidateSessionName checks if a session name is usable as a tmux target
// and as a transcript file name.
func ValidateSessionName(name string) error {
	if name == "" {
		return errors.New("session name cannot be empty")
	}
	if strings.ContainsAny(name, ":.\t\n") {
		return errors.New("session name cannot contain ':', '.', or whitespace control characters")
	}
	return nil
}

// SessionExists checks if a session exists.
func (c *Client) SessionExists(name string) bool {
	return c.RunSilent("has-session", "-t", name) == nil
}

// ListSessions returns all tmux sessions. A missing server is reported as
// an empty list, not an error.
func (c *Client) ListSessions() ([]Session, error) {
	format := fmt.Sprintf("#{session_name}%[1]s#{session_id}%[1]s#{session_windows}%[1]s#{session_attached}", fieldSep)
	output, err := c.Run("list-sessions", "-F", format)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "no server running") ||
			strings.Contains(errMsg, "no sessions") ||
			strings.Contains(errMsg, "No such file or directory") ||
			strings.Contains(errMsg, "error connecting to") {
			return nil, nil
		}
		return nil, err
	}
	if output == "" {
		return nil, nil
	}

	var sessions []Session
	for _, line := range strings.Split(output, "\n") {
		parts := strings.Split(line, fieldSep)
		if len(parts) < 4 {
			continue
		}
		windows, _ := strconv.Atoi(parts[2])
		sessions = append(sessions, Session{
			Name:     parts[0],
			ID:       parts[1],
			Windows:  windows,
			Attached: parts[3] == "1",
		})
	}
	return sessions, nil
}

// GetSession returns info about one session.
func (c *Client) GetSession(name string) (*Session, error) {
	sessions, err := c.ListSessions()
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Name == name {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("session '%s' not found", name)
}

// CreateSession creates a new detached session.
func (c *Client) CreateSession(name string) error {
	return c.RunSilent("new-session", "-d", "-s", name)
}

// KillSession kills a session.
func (c *Client) KillSession(name string) error {
	return c.RunSilent("kill-session", "-t", name)
}

// ListWindows returns all windows in a session.
func (c *Client) ListWindows(session string) ([]Window, error) {
	format := fmt.Sprintf("#{window_index}%[1]s#{window_name}%[1]s#{window_panes}%[1]s#{window_active}", fieldSep)
	output, err := c.Run("list-windows", "-t", session, "-F", format)
	if err != nil {
		return nil, err
	}

	var windows []Window
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, fieldSep)
		if len(parts) < 4 {
			continue
		}
		index, _ := strconv.Atoi(parts[0])
		panes, _ := strconv.Atoi(parts[2])
		windows = append(windows, Window{
			Index:  index,
			Name:   parts[1],
			Panes:  panes,
			Active: parts[3] == "1",
		})
	}
	return windows, nil
}

// FindWindow returns the window with the given name, or an error when the
// session has no such window.
func (c *Client) FindWindow(session, name string) (*Window, error) {
	windows, err := c.ListWindows(session)
	if err != nil {
		return nil, err
	}
	for i := range windows {
		if windows[i].Name == name {
			return &windows[i], nil
		}
	}
	return nil, fmt.Errorf("window '%s' not found in session '%s'", name, session)
}

// ActiveWindow returns the session's active window.
func (c *Client) ActiveWindow(session string) (*Window, error) {
	windows, err := c.ListWindows(session)
	if err != nil {
		return nil, err
	}
	for i := range windows {
		if windows[i].Active {
			return &windows[i], nil
		}
	}
	if len(windows) > 0 {
		return &windows[0], nil
	}
	return nil, fmt.Errorf("session '%s' has no windows", session)
}

// GetPanes returns all panes in a window, addressed as session:windowIndex.
func (c *Client) GetPanes(session string, windowIndex int) ([]Pane, error) {
	target := fmt.Sprintf("%s:%d", session, windowIndex)
	format := fmt.Sprintf("#{pane_id}%[1]s#{pane_index}%[1]s#{pane_title}%[1]s#{pane_width}%[1]s#{pane_height}%[1]s#{pane_active}", fieldSep)
	output, err := c.Run("list-panes", "-t", target, "-F", format)
	if err != nil {
		return nil, err
	}

	var panes []Pane
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, fieldSep)
		if len(parts) < 6 {
			continue
		}
		index, _ := strconv.Atoi(parts[1])
		width, _ := strconv.Atoi(parts[3])
		height, _ := strconv.Atoi(parts[4])
		panes = append(panes, Pane{
			ID:     parts[0],
			Index:  index,
			Title:  parts[2],
			Width:  width,
			Height: height,
			Active: parts[5] == "1",
		})
	}
	return panes, nil
}

// SendKeys sends literal text to a pane target, optionally followed by
// Enter. Large payloads are chunked to stay under ARG_MAX.
func (c *Client) SendKeys(target, keys string, enter bool) error {
	const chunkSize = 4096

	if len(keys) <= chunkSize {
		if err := c.RunSilent("send-keys", "-t", target, "-l", "--", keys); err != nil {
			return err
		}
	} else {
		for i := 0; i < len(keys); i += chunkSize {
			end := i + chunkSize
			if end > len(keys) {
				end = len(keys)
			}
			if err := c.RunSilent("send-keys", "-t", target, "-l", "--", keys[i:end]); err != nil {
				return err
			}
		}
	}

	if enter {
		return c.RunSilent("send-keys", "-t", target, "C-m")
	}
	return nil
}

// CapturePane returns the pane's currently visible content as lines. Cost
// is bounded by the terminal dimensions, not by scrollback length.
func (c *Client) CapturePane(target string) ([]string, error) {
	output, err := c.Run("capture-pane", "-p", "-t", target)
	if err != nil {
		return nil, err
	}
	return strings.Split(output, "\n"), nil
}

// CapturePaneRange captures pane content between scrollback positions,
// passed straight through to capture-pane -S/-E.
func (c *Client) CapturePaneRange(target string, start, end int) ([]string, error) {
	output, err := c.Run("capture-pane", "-p", "-t", target,
		"-S", strconv.Itoa(start), "-E", strconv.Itoa(end))
	if err != nil {
		return nil, err
	}
	return strings.Split(output, "\n"), nil
}
