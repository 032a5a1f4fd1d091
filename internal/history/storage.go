package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const historyFileName = "history.jsonl"

// localMu serializes access within the process; acquireLock adds flock on
// top for cross-process safety.
var localMu sync.Mutex

// StoragePath returns the history file location: $XDG_DATA_HOME or
// ~/.local/share, under term-agent/.
func StoragePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return historyFileName
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "term-agent", historyFileName)
}

// Append records one dispatch. The entry is written as a single JSONL line
// in one write call, so concurrent appenders never interleave.
func Append(entry *Entry) error {
	unlock, err := acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	path := StoragePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// decodeLines parses JSONL content, dropping lines that fail to decode.
// A torn final line from a crashed writer must not poison the whole file.
func decodeLines(data []byte) []Entry {
	entries := []Entry{}
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// ReadAll returns every recorded dispatch, oldest first. A missing file is
// an empty history, not an error.
func ReadAll() ([]Entry, error) {
	unlock, err := acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return readAllLocked()
}

func readAllLocked() ([]Entry, error) {
	data, err := os.ReadFile(StoragePath())
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	return decodeLines(data), nil
}

// ReadRecent returns the newest n entries without reading the whole file:
// a tail window is read and doubled until it spans at least n lines.
func ReadRecent(n int) ([]Entry, error) {
	unlock, err := acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if n <= 0 {
		return []Entry{}, nil
	}

	f, err := os.Open(StoragePath())
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size == 0 {
		return []Entry{}, nil
	}

	window := int64(16 * 1024)
	for {
		if window > size {
			window = size
		}
		buf := make([]byte, window)
		if _, err := f.ReadAt(buf, size-window); err != nil {
			return nil, err
		}

		complete := buf
		if window < size {
			// The window may start mid-line; skip to the first newline.
			idx := bytes.IndexByte(buf, '\n')
			if idx < 0 {
				complete = nil
			} else {
				complete = buf[idx+1:]
			}
		}

		entries := decodeLines(complete)
		if len(entries) >= n || window == size {
			if len(entries) > n {
				entries = entries[len(entries)-n:]
			}
			return entries, nil
		}
		window *= 2
	}
}

// ReadForSession returns all dispatches recorded for one session.
func ReadForSession(session string) ([]Entry, error) {
	entries, err := ReadAll()
	if err != nil {
		return nil, err
	}

	matched := []Entry{}
	for _, e := range entries {
		if e.Session == session {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// FindByMarker returns the newest entry carrying the given marker id, or
// nil when no dispatch used it.
func FindByMarker(markerID string) (*Entry, error) {
	entries, err := ReadAll()
	if err != nil {
		return nil, err
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].MarkerID == markerID {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// Count returns the number of recorded dispatches.
func Count() (int, error) {
	unlock, err := acquireLock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	data, err := os.ReadFile(StoragePath())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return bytes.Count(data, []byte{'\n'}), nil
}

// Clear deletes the history file.
func Clear() error {
	unlock, err := acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(StoragePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// rewriteLocked replaces the history file with the given entries via a
// temp file and rename, so readers never see a half-written file. Caller
// must hold the lock.
func rewriteLocked(entries []Entry) error {
	path := StoragePath()
	tmp, err := os.CreateTemp(filepath.Dir(path), "history-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			continue
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Prune keeps only the newest keep entries and reports how many were
// removed.
func Prune(keep int) (int, error) {
	unlock, err := acquireLock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	entries, err := readAllLocked()
	if err != nil {
		return 0, err
	}
	if len(entries) <= keep {
		return 0, nil
	}

	removed := len(entries) - keep
	if err := rewriteLocked(entries[removed:]); err != nil {
		return 0, err
	}
	return removed, nil
}

// PruneByTime removes entries at or older than the cutoff and reports how
// many were removed.
func PruneByTime(cutoff time.Time) (int, error) {
	unlock, err := acquireLock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	entries, err := readAllLocked()
	if err != nil {
		return 0, err
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := rewriteLocked(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Search returns entries whose command contains the query, case
// insensitively.
func Search(query string) ([]Entry, error) {
	entries, err := ReadAll()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := []Entry{}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Command), q) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Exists reports whether any history has been recorded.
func Exists() bool {
	info, err := os.Stat(StoragePath())
	return err == nil && info.Size() > 0
}

// Stats summarizes the recorded history.
type Stats struct {
	TotalEntries   int   `json:"total_entries"`
	SuccessCount   int   `json:"success_count"`
	FailureCount   int   `json:"failure_count"`
	UniqueSessions int   `json:"unique_sessions"`
	FileSizeBytes  int64 `json:"file_size_bytes"`
}

// GetStats computes summary statistics over the whole history.
func GetStats() (*Stats, error) {
	entries, err := ReadAll()
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalEntries: len(entries)}
	sessions := make(map[string]struct{})
	for _, e := range entries {
		if e.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		sessions[e.Session] = struct{}{}
	}
	stats.UniqueSessions = len(sessions)

	if info, err := os.Stat(StoragePath()); err == nil {
		stats.FileSizeBytes = info.Size()
	}
	return stats, nil
}
