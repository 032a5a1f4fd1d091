package agent

import "errors"

// Machine-readable error codes. AI agents consume these programmatically,
// so codes are stable strings rather than sentinel errors.
const (
	// ErrCodeSessionNotFound indicates the requested session doesn't exist.
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"

	// ErrCodeWindowNotFound indicates the requested window doesn't exist.
	ErrCodeWindowNotFound = "WINDOW_NOT_FOUND"

	// ErrCodePaneNotFound indicates the requested pane doesn't exist.
	ErrCodePaneNotFound = "PANE_NOT_FOUND"

	// ErrCodeInvalidTaskType indicates a task type outside the known set.
	ErrCodeInvalidTaskType = "INVALID_TASK_TYPE"

	// ErrCodeInvalidSessionName indicates a session name tmux cannot accept.
	ErrCodeInvalidSessionName = "INVALID_SESSION_NAME"

	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout = "TIMEOUT"

	// ErrCodePermissionDenied indicates insufficient permissions.
	ErrCodePermissionDenied = "PERMISSION_DENIED"

	// ErrCodeInternalError indicates an unexpected internal error.
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Error is a structured operation error with a machine-readable code and an
// actionable hint for the caller.
type Error struct {
	Code    string `json:"error_code"`
	Message string `json:"error"`
	Hint    string `json:"hint,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a structured error.
func NewError(code, message, hint string) *Error {
	return &Error{Code: code, Message: message, Hint: hint}
}

// CodeOf returns the error code of err, or ErrCodeInternalError for plain
// errors. Returns "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Code
	}
	return ErrCodeInternalError
}

// HintOf returns the hint attached to err, if any.
func HintOf(err error) string {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Hint
	}
	return ""
}
