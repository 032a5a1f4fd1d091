package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/yfreeman/term-agent/internal/tmux"
	"github.com/yfreeman/term-agent/internal/transcript"
)

type sentKeys struct {
	target string
	keys   string
	enter  bool
}

// fakeTerminal is an in-memory Terminal for tests.
type fakeTerminal struct {
	sessions  map[string]bool
	windows   map[string][]tmux.Window
	sessOpts  map[string]map[string]string
	winOpts   map[string]map[string]string
	paneLines map[string][]string
	captureFn func(target string) ([]string, error)
	sent      []sentKeys
	piped     map[string]string
	killed    []string
}

func newFakeTerminal(sessions ...string) *fakeTerminal {
	f := &fakeTerminal{
		sessions:  make(map[string]bool),
		windows:   make(map[string][]tmux.Window),
		sessOpts:  make(map[string]map[string]string),
		winOpts:   make(map[string]map[string]string),
		paneLines: make(map[string][]string),
		piped:     make(map[string]string),
	}
	for _, s := range sessions {
		f.sessions[s] = true
	}
	return f
}

func (f *fakeTerminal) SessionExists(name string) bool { return f.sessions[name] }

func (f *fakeTerminal) ListSessions() ([]tmux.Session, error) {
	var out []tmux.Session
	for name := range f.sessions {
		out = append(out, tmux.Session{Name: name, Windows: 1})
	}
	return out, nil
}

func (f *fakeTerminal) CreateSession(name string) error {
	f.sessions[name] = true
	return nil
}

func (f *fakeTerminal) KillSession(name string) error {
	delete(f.sessions, name)
	f.killed = append(f.killed, name)
	return nil
}

func (f *fakeTerminal) ListWindows(session string) ([]tmux.Window, error) {
	return f.windows[session], nil
}

func (f *fakeTerminal) FindWindow(session, name string) (*tmux.Window, error) {
	for _, w := range f.windows[session] {
		if w.Name == name || fmt.Sprintf("%d", w.Index) == name {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("window '%s' not found", name)
}

func (f *fakeTerminal) SendKeys(target, keys string, enter bool) error {
	f.sent = append(f.sent, sentKeys{target, keys, enter})
	return nil
}

func (f *fakeTerminal) CapturePane(target string) ([]string, error) {
	if f.captureFn != nil {
		return f.captureFn(target)
	}
	lines, ok := f.paneLines[target]
	if !ok {
		return nil, errors.New("no such pane")
	}
	return lines, nil
}

func (f *fakeTerminal) SetSessionOption(session, key, value string) error {
	if f.sessOpts[session] == nil {
		f.sessOpts[session] = make(map[string]string)
	}
	f.sessOpts[session][key] = value
	return nil
}

func (f *fakeTerminal) GetSessionOption(session, key string) (string, error) {
	return f.sessOpts[session][key], nil
}

func (f *fakeTerminal) SetWindowOption(session, window, key, value string) error {
	k := session + ":" + window
	if f.winOpts[k] == nil {
		f.winOpts[k] = make(map[string]string)
	}
	f.winOpts[k][key] = value
	return nil
}

func (f *fakeTerminal) GetWindowOption(session, window, key string) (string, error) {
	return f.winOpts[session+":"+window][key], nil
}

func (f *fakeTerminal) PipePaneToFile(target, path string) error {
	f.piped[target] = path
	return nil
}

func (f *fakeTerminal) ClosePipePane(target string) error {
	delete(f.piped, target)
	return nil
}

// fakeClock drives the wait loop without real sleeping.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
}

func newTestAgent(t *testing.T, term Terminal) *Agent {
	t.Helper()
	return New(term, t.TempDir())
}

func TestGetOrCreateSessionGeneratesName(t *testing.T) {
	term := newFakeTerminal()
	a := newTestAgent(t, term)

	info, err := a.GetOrCreateSession("", CreateOptions{})
	if err != nil {
		t.Fatalf("GetOrCreateSession: %v", err)
	}
	if !info.Created {
		t.Error("expected created=true for a fresh session")
	}
	if matched, _ := regexp.MatchString(`^agent-[0-9a-f]{8}$`, info.Name); !matched {
		t.Errorf("generated name %q does not match agent-<8 hex>", info.Name)
	}
	if !term.sessions[info.Name] {
		t.Error("session was not created in the terminal")
	}
	if term.sessOpts[info.Name][MetaCreatedBy] != "term-agent" {
		t.Errorf("created_by = %q", term.sessOpts[info.Name][MetaCreatedBy])
	}
	if info.Transcript == "" {
		t.Error("expected transcript logging to be enabled")
	}
	if term.piped[info.Name] != info.Transcript {
		t.Errorf("pipe-pane target mismatch: %q vs %q", term.piped[info.Name], info.Transcript)
	}
}

func TestGetOrCreateSessionExisting(t *testing.T) {
	term := newFakeTerminal("myproj")
	term.sessOpts["myproj"] = map[string]string{MetaTaskType: "interactive"}
	a := newTestAgent(t, term)

	info, err := a.GetOrCreateSession("myproj", CreateOptions{})
	if err != nil {
		t.Fatalf("GetOrCreateSession: %v", err)
	}
	if info.Created {
		t.Error("expected created=false for an existing session")
	}
	if info.TaskType != "interactive" {
		t.Errorf("task type = %q", info.TaskType)
	}
}

func TestGetOrCreateSessionInvalidTaskType(t *testing.T) {
	a := newTestAgent(t, newFakeTerminal())

	_, err := a.GetOrCreateSession("x", CreateOptions{TaskType: "daemon"})
	if CodeOf(err) != ErrCodeInvalidTaskType {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeInvalidTaskType)
	}
}

func TestGetOrCreateSessionInvalidName(t *testing.T) {
	a := newTestAgent(t, newFakeTerminal())

	_, err := a.GetOrCreateSession("bad:name", CreateOptions{})
	if CodeOf(err) != ErrCodeInvalidSessionName {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeInvalidSessionName)
	}
}

func TestExecuteCommandWritesMarker(t *testing.T) {
	term := newFakeTerminal("work")
	a := newTestAgent(t, term)

	res, err := a.ExecuteCommand("work", "", "make test")
	if err != nil {
		t.Fatalf("ExecuteCommand: %v", err)
	}

	if len(res.MarkerID) != transcript.MarkerIDLen {
		t.Errorf("marker id %q has wrong length", res.MarkerID)
	}
	if !res.MarkerWritten {
		t.Error("expected marker to be written")
	}

	data, err := os.ReadFile(res.Transcript)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	wantLine := fmt.Sprintf("%s %s", transcript.StartSentinel, res.MarkerID)
	if !strings.Contains(string(data), wantLine) {
		t.Errorf("transcript missing marker line %q:\n%s", wantLine, data)
	}

	if term.sessOpts["work"][metaLastMarker] != res.MarkerID {
		t.Errorf("last marker option = %q, want %q", term.sessOpts["work"][metaLastMarker], res.MarkerID)
	}

	if len(term.sent) != 1 {
		t.Fatalf("sent %d key batches, want 1", len(term.sent))
	}
	if term.sent[0].target != "work" || term.sent[0].keys != "make test" || !term.sent[0].enter {
		t.Errorf("sent = %+v", term.sent[0])
	}
}

func TestExecuteCommandSessionNotFound(t *testing.T) {
	a := newTestAgent(t, newFakeTerminal())

	_, err := a.ExecuteCommand("ghost", "", "ls")
	if CodeOf(err) != ErrCodeSessionNotFound {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeSessionNotFound)
	}
	if HintOf(err) == "" {
		t.Error("expected a hint on the error")
	}
}

func TestExecuteCommandWindowTarget(t *testing.T) {
	term := newFakeTerminal("work")
	term.windows["work"] = []tmux.Window{{Index: 0, Name: "shell"}, {Index: 2, Name: "build"}}
	a := newTestAgent(t, term)

	res, err := a.ExecuteCommand("work", "build", "make")
	if err != nil {
		t.Fatalf("ExecuteCommand: %v", err)
	}
	if res.Target != "work:2" {
		t.Errorf("target = %q, want 'work:2'", res.Target)
	}

	_, err = a.ExecuteCommand("work", "missing", "make")
	if CodeOf(err) != ErrCodeWindowNotFound {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeWindowNotFound)
	}
}

func TestCaptureOutputFromTranscript(t *testing.T) {
	term := newFakeTerminal("work")
	a := newTestAgent(t, term)

	res, err := a.ExecuteCommand("work", "", "echo done")
	if err != nil {
		t.Fatal(err)
	}

	// Simulate pane output flowing into the transcript after the marker.
	f, err := os.OpenFile(res.Transcript, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("done\n")
	f.Close()

	cap, err := a.CaptureOutput("work", "", false)
	if err != nil {
		t.Fatalf("CaptureOutput: %v", err)
	}
	if cap.MarkerID != res.MarkerID {
		t.Errorf("capture used marker %q, want last marker %q", cap.MarkerID, res.MarkerID)
	}
	if cap.Method != transcript.MethodFull {
		t.Errorf("method = %q, want %q", cap.Method, transcript.MethodFull)
	}
	if len(cap.Lines) != 1 || cap.Lines[0] != "done" {
		t.Errorf("lines = %v", cap.Lines)
	}
}

func TestCaptureOutputFallsBackToLivePane(t *testing.T) {
	term := newFakeTerminal("work")
	term.paneLines["work"] = []string{"\x1b[32mrunning\x1b[0m", "$ "}
	a := newTestAgent(t, term)

	// No marker was ever recorded and no transcript exists.
	cap, err := a.CaptureOutput("work", "", false)
	if err != nil {
		t.Fatalf("CaptureOutput: %v", err)
	}
	if cap.Method != MethodCapturePane {
		t.Errorf("method = %q, want %q", cap.Method, MethodCapturePane)
	}
	if cap.Lines[0] != "running" {
		t.Errorf("ANSI not stripped from live capture: %q", cap.Lines[0])
	}
}

func TestCaptureOutputUnknownSession(t *testing.T) {
	a := newTestAgent(t, newFakeTerminal())

	_, err := a.CaptureOutput("ghost", "", false)
	if CodeOf(err) != ErrCodeSessionNotFound {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeSessionNotFound)
	}
}

func TestSetMetadataValidation(t *testing.T) {
	term := newFakeTerminal("work")
	a := newTestAgent(t, term)

	err := a.SetMetadata("work", "", map[string]string{MetaTaskType: "cron"})
	if CodeOf(err) != ErrCodeInvalidTaskType {
		t.Errorf("error code = %q, want %q", CodeOf(err), ErrCodeInvalidTaskType)
	}

	if err := a.SetMetadata("work", "", map[string]string{
		MetaTaskType:    "background",
		MetaDescription: "long build",
	}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	meta, err := a.GetMetadata("work", "")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta[MetaTaskType] != "background" || meta[MetaDescription] != "long build" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestMetadataWindowScope(t *testing.T) {
	term := newFakeTerminal("work")
	term.windows["work"] = []tmux.Window{{Index: 1, Name: "daemon"}}
	a := newTestAgent(t, term)

	if err := a.SetMetadata("work", "daemon", map[string]string{MetaTaskType: "watcher"}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	meta, err := a.GetMetadata("work", "daemon")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta[MetaTaskType] != "watcher" {
		t.Errorf("window task type = %q", meta[MetaTaskType])
	}

	// Session scope stays untouched
	sessMeta, _ := a.GetMetadata("work", "")
	if sessMeta[MetaTaskType] != "" {
		t.Errorf("session task type leaked: %q", sessMeta[MetaTaskType])
	}
}

func TestKillSessionRemovesTranscript(t *testing.T) {
	term := newFakeTerminal("work")
	logFile := filepath.Join(t.TempDir(), "work.log")
	if err := os.WriteFile(logFile, []byte("data\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	term.sessOpts["work"] = map[string]string{metaLogFile: logFile}
	a := newTestAgent(t, term)

	if err := a.KillSession("work", false); err != nil {
		t.Fatalf("KillSession: %v", err)
	}
	if _, err := os.Stat(logFile); !os.IsNotExist(err) {
		t.Error("transcript should have been removed")
	}
}

func TestKillSessionKeepLog(t *testing.T) {
	term := newFakeTerminal("work")
	logFile := filepath.Join(t.TempDir(), "work.log")
	if err := os.WriteFile(logFile, []byte("data\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	term.sessOpts["work"] = map[string]string{metaLogFile: logFile}
	a := newTestAgent(t, term)

	if err := a.KillSession("work", true); err != nil {
		t.Fatalf("KillSession: %v", err)
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("transcript should have been kept: %v", err)
	}
}

func TestListSessionsIncludesMetadata(t *testing.T) {
	term := newFakeTerminal("alpha")
	term.sessOpts["alpha"] = map[string]string{
		MetaTaskType:    "oneshot",
		MetaDescription: "migration",
	}
	a := newTestAgent(t, term)

	infos, err := a.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d sessions", len(infos))
	}
	if infos[0].TaskType != "oneshot" || infos[0].Description != "migration" {
		t.Errorf("info = %+v", infos[0])
	}
}
