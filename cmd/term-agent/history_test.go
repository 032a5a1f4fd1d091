package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/yfreeman/term-agent/internal/history"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	buf.ReadFrom(r)
	if runErr != nil {
		t.Fatalf("command failed: %v", runErr)
	}
	return buf.String()
}

func TestHistorySearchResolvesMarker(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	history.Clear()

	older := history.NewEntry("work", "", "echo deadbeef1234", "aaa111bbb222")
	older.SetSuccess()
	if err := history.Append(older); err != nil {
		t.Fatal(err)
	}
	target := history.NewEntry("work", "", "pytest tests/api", "deadbeef1234")
	target.SetSuccess()
	if err := history.Append(target); err != nil {
		t.Fatal(err)
	}

	out := captureStdout(t, func() error {
		return runHistorySearch(historySearchCmd, []string{"deadbeef1234"})
	})

	if !strings.Contains(out, "pytest tests/api") {
		t.Errorf("expected the dispatch behind the marker, got %q", out)
	}
	// The older entry mentions the marker id in its command text. A marker
	// match must win over the substring path, not mix with it.
	if strings.Contains(out, "echo deadbeef1234") {
		t.Errorf("marker lookup fell through to substring search: %q", out)
	}
}

func TestHistorySearchSubstringFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	history.Clear()

	entry := history.NewEntry("work", "", "make build", "bbb222ccc333")
	entry.SetSuccess()
	if err := history.Append(entry); err != nil {
		t.Fatal(err)
	}

	out := captureStdout(t, func() error {
		return runHistorySearch(historySearchCmd, []string{"build"})
	})
	if !strings.Contains(out, "make build") {
		t.Errorf("expected substring match, got %q", out)
	}
}
