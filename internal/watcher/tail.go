package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LineHandler receives complete lines appended to a followed file.
type LineHandler func(lines []string)

// Tail follows a transcript file and delivers lines appended after the
// follow starts. Truncation (the transcript being rotated or rewritten)
// resets the read offset to the start of the file.
type Tail struct {
	path    string
	watcher *Watcher
	handler LineHandler

	mu      sync.Mutex
	offset  int64
	partial string
	closed  bool
}

// TailOption configures a Tail.
type TailOption func(*tailConfig)

type tailConfig struct {
	fromStart    bool
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	errorHandler ErrorHandler
}

// TailFromStart delivers existing file content before following new writes.
func TailFromStart() TailOption {
	return func(c *tailConfig) { c.fromStart = true }
}

// TailDebounce sets the event coalescing window.
func TailDebounce(d time.Duration) TailOption {
	return func(c *tailConfig) { c.debounce = d }
}

// TailPolling forces polling mode with the given interval.
func TailPolling(interval time.Duration) TailOption {
	return func(c *tailConfig) {
		c.forcePoll = true
		c.pollInterval = interval
	}
}

// TailErrorHandler sets the handler for watch errors.
func TailErrorHandler(h ErrorHandler) TailOption {
	return func(c *tailConfig) { c.errorHandler = h }
}

// Follow starts following path, calling handler with each batch of complete
// lines appended to the file. The file must exist when Follow is called.
func Follow(path string, handler LineHandler, opts ...TailOption) (*Tail, error) {
	cfg := tailConfig{
		debounce:     100 * time.Millisecond,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	t := &Tail{
		path:    absPath,
		handler: handler,
	}
	if !cfg.fromStart {
		t.offset = info.Size()
	}

	wOpts := []Option{
		WithEventFilter(Create | Write),
		WithDebounceDuration(cfg.debounce),
	}
	if cfg.errorHandler != nil {
		wOpts = append(wOpts, WithErrorHandler(cfg.errorHandler))
	}
	if cfg.forcePoll {
		wOpts = append(wOpts, WithPolling(true), WithPollInterval(cfg.pollInterval))
	}

	w, err := New(t.onEvents, wOpts...)
	if err != nil {
		return nil, err
	}
	t.watcher = w

	// Watch the parent directory: editors and pipe-pane replace or append
	// to the file, and directory watches survive both.
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return nil, err
	}

	if cfg.fromStart {
		t.drain()
	}

	return t, nil
}

// Path returns the followed file path.
func (t *Tail) Path() string {
	return t.path
}

// Close stops following the file.
func (t *Tail) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return t.watcher.Close()
}

// onEvents reacts to watcher events for the followed file.
func (t *Tail) onEvents(events []Event) {
	relevant := false
	for _, ev := range events {
		if ev.Path == t.path {
			relevant = true
			break
		}
	}
	if !relevant {
		return
	}
	t.drain()
}

// drain reads everything appended since the last read and delivers
// complete lines to the handler.
func (t *Tail) drain() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}

	// Truncated or rotated: start over from the beginning
	if info.Size() < t.offset {
		t.offset = 0
		t.partial = ""
	}

	if info.Size() == t.offset {
		return
	}

	if _, err := f.Seek(t.offset, 0); err != nil {
		return
	}

	buf := make([]byte, info.Size()-t.offset)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return
	}
	t.offset += int64(n)

	data := t.partial + string(buf[:n])
	lines := strings.Split(data, "\n")
	// The final element is either empty (data ended on a newline) or an
	// incomplete line to carry into the next read.
	t.partial = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	if len(lines) > 0 && t.handler != nil {
		t.handler(lines)
	}
}
