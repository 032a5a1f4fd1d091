package agent

import "fmt"

// SetMetadata stores metadata values on a session, or on a window within
// it when window is non-empty. task_type is validated here, at the write
// boundary; readers trust stored values.
func (a *Agent) SetMetadata(session, window string, values map[string]string) error {
	if !a.term.SessionExists(session) {
		return NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", session),
			"Use 'term-agent list' to see available sessions")
	}

	if tt, ok := values[MetaTaskType]; ok && !ValidTaskType(tt) {
		return NewError(ErrCodeInvalidTaskType,
			fmt.Sprintf("invalid task_type '%s'", tt),
			"Valid task types: interactive, background, watcher, oneshot")
	}

	if window != "" {
		win, err := a.term.FindWindow(session, window)
		if err != nil || win == nil {
			return NewError(ErrCodeWindowNotFound,
				fmt.Sprintf("window '%s' not found in session '%s'", window, session), "")
		}
		for key, value := range values {
			if err := a.term.SetWindowOption(session, window, key, value); err != nil {
				return NewError(ErrCodeInternalError,
					fmt.Sprintf("setting window option %s: %v", key, err), "")
			}
		}
		return nil
	}

	for key, value := range values {
		if err := a.term.SetSessionOption(session, key, value); err != nil {
			return NewError(ErrCodeInternalError,
				fmt.Sprintf("setting session option %s: %v", key, err), "")
		}
	}
	return nil
}

// GetMetadata reads the user-facing metadata keys for a session or window.
// Absent keys are omitted from the result.
func (a *Agent) GetMetadata(session, window string) (map[string]string, error) {
	if !a.term.SessionExists(session) {
		return nil, NewError(ErrCodeSessionNotFound,
			fmt.Sprintf("session '%s' not found", session),
			"Use 'term-agent list' to see available sessions")
	}

	if window != "" {
		if win, err := a.term.FindWindow(session, window); err != nil || win == nil {
			return nil, NewError(ErrCodeWindowNotFound,
				fmt.Sprintf("window '%s' not found in session '%s'", window, session), "")
		}
	}

	meta := make(map[string]string)
	for _, key := range metadataKeys {
		var value string
		if window != "" {
			value, _ = a.term.GetWindowOption(session, window, key)
		} else {
			value, _ = a.term.GetSessionOption(session, key)
		}
		if value != "" {
			meta[key] = value
		}
	}
	return meta, nil
}

// taskTypeFor resolves the effective task type for a wait target: the
// window's value wins over the session's.
func (a *Agent) taskTypeFor(session, window string) string {
	if window != "" {
		if tt, err := a.term.GetWindowOption(session, window, MetaTaskType); err == nil && tt != "" {
			return tt
		}
	}
	tt, _ := a.term.GetSessionOption(session, MetaTaskType)
	return tt
}
