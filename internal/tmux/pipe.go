package tmux

import "fmt"

// PipePaneToFile starts a continuous copy of a pane's output stream into
// the file at path. The -o flag makes the pipe append-only and idempotent:
// re-running it for an already-piped pane toggles rather than duplicates,
// so callers should check pipe state (or the file's existence) first.
func (c *Client) PipePaneToFile(target, path string) error {
	return c.RunSilent("pipe-pane", "-t", target, "-o", fmt.Sprintf("cat >> %s", ShellQuote(path)))
}

// ClosePipePane stops any output copy for the pane.
func (c *Client) ClosePipePane(target string) error {
	return c.RunSilent("pipe-pane", "-t", target)
}
