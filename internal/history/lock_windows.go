//go:build windows

package history

import (
	"os"
	"path/filepath"
)

// acquireLock takes the thread-level mutex guarding the dispatch-history
// JSONL file. There is no flock on Windows, so writes are serialized only
// within a single term-agent process. Returns an unlock function.
func acquireLock() (func(), error) {
	localMu.Lock()

	if err := os.MkdirAll(filepath.Dir(StoragePath()), 0755); err != nil {
		localMu.Unlock()
		return nil, err
	}

	return func() {
		localMu.Unlock()
	}, nil
}
