// Package logdir resolves where session transcripts live and guarantees a
// writable location exists, falling back to the system temp directory when
// the preferred location is not writable.
package logdir

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnvLogDir overrides the resolved log directory when set.
const EnvLogDir = "TERM_AGENT_LOG_DIR"

// projectIndicators mark a working directory as a project root, which makes
// transcripts project-local instead of living under the home directory.
var projectIndicators = []string{
	".git",
	".term-agent",
	"pyproject.toml",
	"package.json",
	"Cargo.toml",
	"go.mod",
	"pom.xml",
}

// Resolve picks the transcript directory and creates it. Priority: the
// explicit argument, then $TERM_AGENT_LOG_DIR, then ./.term-agent/logs when
// the working directory looks like a project, then ~/.term-agent/logs.
// Permission failures fall back to a temp-dir location rather than erroring.
func Resolve(explicit string) (string, error) {
	dir := explicit
	if dir == "" {
		dir = os.Getenv(EnvLogDir)
	}
	if dir == "" {
		if cwd, err := os.Getwd(); err == nil && IsProjectDir(cwd) {
			dir = filepath.Join(cwd, ".term-agent", "logs")
		}
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fallbackDir()
		}
		dir = filepath.Join(home, ".term-agent", "logs")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fallbackDir()
		}
		return "", err
	}

	if strings.Contains(dir, ".term-agent") {
		ensureGitignore()
	}

	return dir, nil
}

func fallbackDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "term-agent-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// IsProjectDir reports whether dir contains one of the project indicators.
func IsProjectDir(dir string) bool {
	for _, indicator := range projectIndicators {
		if _, err := os.Stat(filepath.Join(dir, indicator)); err == nil {
			return true
		}
	}
	return false
}

// TranscriptPath returns the transcript file for a session within dir.
// Session names are sanitized so they always map to a single flat file.
func TranscriptPath(dir, session string) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(session)
	return filepath.Join(dir, safe+".log")
}

// ensureGitignore appends .term-agent/ to the working directory's .gitignore
// when the directory is a git checkout. Best effort: failures are ignored,
// transcripts still work without the ignore entry.
func ensureGitignore() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	if _, err := os.Stat(filepath.Join(cwd, ".git")); err != nil {
		return
	}

	gitignore := filepath.Join(cwd, ".gitignore")
	content := ""
	if data, err := os.ReadFile(gitignore); err == nil {
		content = string(data)
		if strings.Contains(content, ".term-agent") {
			return
		}
	}

	f, err := os.OpenFile(gitignore, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	entry := "\n# Term Agent logs\n.term-agent/\n"
	if content != "" && !strings.HasSuffix(content, "\n") {
		entry = "\n" + entry
	}
	_, _ = f.WriteString(entry)
}
