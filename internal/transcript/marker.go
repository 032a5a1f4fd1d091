// Package transcript implements the marker protocol over pipe-pane log
// files: a delimiter line written before each dispatched command, and the
// extraction that later turns the delimited region into a bounded excerpt.
package transcript

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Sentinels delimiting one command's output region inside a transcript.
// The end sentinel is recognized on read but no write path emits it, so
// regions normally run to end of file.
const (
	StartSentinel = "===TERM-AGENT-CMD-START==="
	EndSentinel   = "===TERM-AGENT-CMD-END==="
)

// MarkerIDLen is the length of a marker identifier in hex characters.
const MarkerIDLen = 12

// NewMarkerID returns a fresh 12-character lowercase hex token. Randomness
// is cryptographic (UUIDv4); collisions are not handled, they are made
// negligible within a session's practical lifetime.
func NewMarkerID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:MarkerIDLen]
}

// WriteMarker appends a start marker for command to the transcript at path,
// creating the file if needed, and returns the marker id. The marker is one
// write so a concurrent reader never observes a partial line. The id is
// returned even when the write fails; callers decide whether a failed write
// is fatal (for dispatch it is not).
func WriteMarker(path, command string) (string, error) {
	id := NewMarkerID()
	line := fmt.Sprintf("\n%s %s %d %s\n", StartSentinel, id, time.Now().Unix(), command)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return id, fmt.Errorf("opening transcript %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(line)); err != nil {
		return id, fmt.Errorf("writing marker to %s: %w", path, err)
	}

	// Restrictive-but-readable permissions, set exactly once at creation.
	// The marker being the file's entire content means we just created it.
	if info, err := f.Stat(); err == nil && info.Size() == int64(len(line)) {
		_ = f.Chmod(0644)
	}

	return id, nil
}
