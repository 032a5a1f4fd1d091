// Package watcher follows transcript log files for changes using fsnotify,
// with a polling fallback for filesystems that do not deliver events.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned from operations on a closed Watcher.
var ErrClosed = errors.New("watcher: watcher is closed")

// DefaultPollInterval is the scan cadence in polling mode.
const DefaultPollInterval = time.Second

// EventType is a bitmask of file change kinds.
type EventType uint32

const (
	Create EventType = 1 << iota
	Write
	Remove
	Rename
	Chmod

	All = Create | Write | Remove | Rename | Chmod
)

// opMap translates fsnotify operation bits to EventType bits.
var opMap = []struct {
	op fsnotify.Op
	t  EventType
}{
	{fsnotify.Create, Create},
	{fsnotify.Write, Write},
	{fsnotify.Remove, Remove},
	{fsnotify.Rename, Rename},
	{fsnotify.Chmod, Chmod},
}

func eventTypeFromFsnotify(op fsnotify.Op) EventType {
	var t EventType
	for _, m := range opMap {
		if op.Has(m.op) {
			t |= m.t
		}
	}
	return t
}

// Event is one observed file change.
type Event struct {
	Path string
	Type EventType
}

// Handler receives debounced batches of events.
type Handler func(events []Event)

// ErrorHandler receives watch errors that cannot be returned to a caller.
type ErrorHandler func(err error)

// snapshot holds the stat fields compared between polling scans.
type snapshot struct {
	modTime time.Time
	size    int64
	mode    os.FileMode
}

func snapOf(fi os.FileInfo) snapshot {
	return snapshot{modTime: fi.ModTime(), size: fi.Size(), mode: fi.Mode()}
}

// Watcher observes files and flat directories. Transcript logs all live in
// one directory, so there is no recursive mode.
type Watcher struct {
	fsw          *fsnotify.Watcher
	debouncer    *Debouncer
	handler      Handler
	errorHandler ErrorHandler
	filter       EventType

	polling      bool
	forcePoll    bool
	pollInterval time.Duration
	done         chan struct{}

	mu        sync.Mutex
	roots     map[string]bool
	snapshots map[string]snapshot
	queue     []Event
	closed    bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the settle window for coalescing events.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debouncer = NewDebouncer(d)
		}
	}
}

// WithEventFilter restricts which event types are delivered.
func WithEventFilter(filter EventType) Option {
	return func(w *Watcher) {
		w.filter = filter
	}
}

// WithErrorHandler sets the sink for asynchronous watch errors.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(w *Watcher) {
		w.errorHandler = handler
	}
}

// WithPollInterval sets the scan cadence used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithPolling forces polling mode. Tests use it for determinism, and it
// helps on filesystems with unreliable inotify (network mounts, some
// containers).
func WithPolling(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// New starts a watcher delivering debounced event batches to handler.
// When fsnotify cannot be initialized the watcher degrades to polling and
// reports the downgrade through the error handler.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		debouncer:    NewDebouncer(DefaultDebounceDuration),
		handler:      handler,
		filter:       All,
		roots:        make(map[string]bool),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.polling = w.forcePoll
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			if w.errorHandler != nil {
				w.errorHandler(fmt.Errorf("fsnotify unavailable, using polling fallback: %w", err))
			}
			w.polling = true
		} else {
			w.fsw = fsw
		}
	}

	if w.polling {
		w.snapshots = make(map[string]snapshot)
		w.done = make(chan struct{})
		go w.pollLoop()
	} else {
		go w.eventLoop()
	}
	return w, nil
}

// Add watches a file or flat directory. Adding a watched path again is a
// no-op.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if w.roots[abs] {
		return nil
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}

	if w.polling {
		seed, err := statTree(abs)
		if err != nil {
			return err
		}
		for p, s := range seed {
			w.snapshots[p] = s
		}
	} else if err := w.fsw.Add(abs); err != nil {
		return err
	}

	w.roots[abs] = true
	return nil
}

// Remove stops watching a path.
func (w *Watcher) Remove(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !w.roots[abs] {
		return nil
	}

	if !w.polling {
		if err := w.fsw.Remove(abs); err != nil {
			return err
		}
	}
	delete(w.roots, abs)
	delete(w.snapshots, abs)
	return nil
}

// Close stops delivery and releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.debouncer.Cancel()

	if w.polling {
		close(w.done)
		return nil
	}
	return w.fsw.Close()
}

// WatchedPaths lists the currently watched roots.
func (w *Watcher) WatchedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.roots))
	for p := range w.roots {
		paths = append(paths, p)
	}
	return paths
}

// enqueue appends events passing the filter and schedules a flush.
func (w *Watcher) enqueue(events ...Event) {
	kept := events[:0]
	for _, ev := range events {
		if ev.Type&w.filter != 0 {
			kept = append(kept, ev)
		}
	}
	if len(kept) == 0 {
		return
	}

	w.mu.Lock()
	w.queue = append(w.queue, kept...)
	w.mu.Unlock()
	w.debouncer.Trigger(w.flush)
}

// flush hands the queued batch to the handler.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	batch := w.queue
	w.queue = nil
	w.mu.Unlock()

	if len(batch) > 0 && w.handler != nil {
		w.handler(batch)
	}
}

// eventLoop drains fsnotify until Close.
func (w *Watcher) eventLoop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			t := eventTypeFromFsnotify(ev.Op)
			if t&(Remove|Rename) != 0 {
				w.mu.Lock()
				delete(w.roots, ev.Name)
				w.mu.Unlock()
			}
			w.enqueue(Event{Path: ev.Name, Type: t})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.errorHandler != nil {
				w.errorHandler(err)
			}
		}
	}
}

// pollLoop rescans watched roots on a ticker until Close.
func (w *Watcher) pollLoop() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.scan()
		case <-w.done:
			return
		}
	}
}

// scan diffs the current stat state of all roots against the previous
// snapshot and emits Create/Write/Chmod/Remove events accordingly.
func (w *Watcher) scan() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	roots := make([]string, 0, len(w.roots))
	for p := range w.roots {
		roots = append(roots, p)
	}
	w.mu.Unlock()

	current := make(map[string]snapshot)
	for _, root := range roots {
		tree, err := statTree(root)
		if err != nil {
			if !os.IsNotExist(err) && w.errorHandler != nil {
				w.errorHandler(err)
			}
			continue
		}
		for p, s := range tree {
			current[p] = s
		}
	}

	var events []Event

	w.mu.Lock()
	for path, now := range current {
		prev, known := w.snapshots[path]
		switch {
		case !known:
			events = append(events, Event{Path: path, Type: Create})
		case now != prev:
			t := EventType(0)
			if now.modTime != prev.modTime || now.size != prev.size {
				t |= Write
			}
			if now.mode != prev.mode {
				t |= Chmod
			}
			events = append(events, Event{Path: path, Type: t})
		}
		w.snapshots[path] = now
	}
	for path := range w.snapshots {
		if _, ok := current[path]; !ok {
			events = append(events, Event{Path: path, Type: Remove})
			delete(w.snapshots, path)
		}
	}
	w.mu.Unlock()

	w.enqueue(events...)
}

// statTree stats a root and, for directories, its immediate children.
func statTree(root string) (map[string]snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	tree := map[string]snapshot{root: snapOf(info)}
	if !info.IsDir() {
		return tree, nil
	}

	children, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		fi, err := child.Info()
		if err != nil {
			continue
		}
		tree[filepath.Join(root, child.Name())] = snapOf(fi)
	}
	return tree, nil
}
