package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default settle window. Pipe-pane flushes
// transcript output in bursts, so events are coalesced before delivery.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer collapses a burst of triggers into one callback, fired after
// the window elapses with no further trigger.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
}

// NewDebouncer returns a debouncer with the given window, or the default
// when duration is zero.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{duration: duration}
}

// Trigger (re)schedules callback to run once the window elapses. A trigger
// arriving before then replaces the pending callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, callback)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the settle window.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
