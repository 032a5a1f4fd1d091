package watcher

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) handle(lines []string) {
	c.mu.Lock()
	c.lines = append(c.lines, lines...)
	c.mu.Unlock()
}

func (c *lineCollector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *lineCollector) waitFor(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got := c.snapshot()
		if len(got) >= n {
			return got
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d lines, have %v", n, c.snapshot())
	return nil
}

func tailOpts() []TailOption {
	// Polling keeps the tests deterministic on filesystems with flaky
	// inotify support (containers, network mounts).
	return []TailOption{
		TailPolling(20 * time.Millisecond),
		TailDebounce(10 * time.Millisecond),
	}
}

func TestFollowAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, []byte("existing line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var c lineCollector
	tail, err := Follow(path, c.handle, tailOpts()...)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	defer tail.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("line one\nline two\n")
	f.Close()

	got := c.waitFor(t, 2)
	want := []string{"line one", "line two"}
	if !reflect.DeepEqual(got[:2], want) {
		t.Errorf("lines = %v, want %v", got, want)
	}

	// Content from before the follow started must not be replayed.
	for _, line := range got {
		if line == "existing line" {
			t.Error("existing content was replayed")
		}
	}
}

func TestFollowFromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, []byte("first\nsecond\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var c lineCollector
	opts := append(tailOpts(), TailFromStart())
	tail, err := Follow(path, c.handle, opts...)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	defer tail.Close()

	got := c.waitFor(t, 2)
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("lines = %v", got)
	}
}

func TestFollowPartialLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var c lineCollector
	tail, err := Follow(path, c.handle, tailOpts()...)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	defer tail.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// A write without a trailing newline stays buffered until completed.
	f.WriteString("incompl")
	time.Sleep(150 * time.Millisecond)
	if got := c.snapshot(); len(got) != 0 {
		t.Errorf("partial line delivered early: %v", got)
	}

	f.WriteString("ete line\n")
	got := c.waitFor(t, 1)
	if got[0] != "incomplete line" {
		t.Errorf("line = %q, want 'incomplete line'", got[0])
	}
}

func TestFollowTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, []byte("old content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var c lineCollector
	tail, err := Follow(path, c.handle, tailOpts()...)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	defer tail.Close()

	// Rewrite the file shorter than the current offset
	if err := os.WriteFile(path, []byte("fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := c.waitFor(t, 1)
	if got[0] != "fresh" {
		t.Errorf("line after truncation = %q, want 'fresh'", got[0])
	}
}

func TestFollowMissingFile(t *testing.T) {
	if _, err := Follow(filepath.Join(t.TempDir(), "absent.log"), func([]string) {}); err == nil {
		t.Error("expected error for missing file")
	}
}
