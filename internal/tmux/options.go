package tmux

import "strings"

// User options are tmux's free-form key/value store: any option whose name
// starts with '@' is accepted and persisted for the life of the scope. The
// agent keeps session and window metadata there so the tool itself stays
// stateless.

// SetSessionOption sets a user option on a session.
func (c *Client) SetSessionOption(session, key, value string) error {
	return c.RunSilent("set-option", "-t", session, userKey(key), value)
}

// GetSessionOption reads a user option from a session. A missing option is
// returned as an empty string, not an error.
func (c *Client) GetSessionOption(session, key string) (string, error) {
	return c.Run("show-options", "-qv", "-t", session, userKey(key))
}

// SetWindowOption sets a user option on a window, addressed session:window.
func (c *Client) SetWindowOption(session, window, key, value string) error {
	return c.RunSilent("set-option", "-w", "-t", session+":"+window, userKey(key), value)
}

// GetWindowOption reads a user option from a window.
func (c *Client) GetWindowOption(session, window, key string) (string, error) {
	return c.Run("show-options", "-w", "-qv", "-t", session+":"+window, userKey(key))
}

func userKey(key string) string {
	if strings.HasPrefix(key, "@") {
		return key
	}
	return "@" + key
}
