// Package status analyzes raw pane text: ANSI stripping and shell prompt
// detection used as the completion signal for dispatched commands.
package status

import (
	"regexp"
	"strings"
)

// ansiEscapeRegex matches ANSI escape sequences for stripping.
// Covers CSI sequences (with private mode ?), OSC sequences (title setting
// etc), and single-character escapes like ESC-M.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\a\x1b]*(\a|\x1b\\)|\x1b[@-Z\\-_]`)

// PromptPattern describes one way an idle shell prompt can look.
type PromptPattern struct {
	Regex *regexp.Regexp
	// Description explains what this pattern matches (for debugging)
	Description string
}

// promptPatterns contains the known idle-prompt shapes. A pane whose last
// visible lines match any of these is considered to be waiting for input.
var promptPatterns = []PromptPattern{
	{Regex: regexp.MustCompile(`[$%>#]\s*$`), Description: "standard shell prompt"},
	{Regex: regexp.MustCompile(`❯\s*$`), Description: "starship/modern prompt"},
	{Regex: regexp.MustCompile(`➜\s*$`), Description: "oh-my-zsh arrow prompt"},
	{Regex: regexp.MustCompile(`~.*[$%>#]\s*$`), Description: "prompt with path"},
}

// StripANSI removes ANSI escape sequences from a string.
func StripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// IsPromptLine checks if a single line looks like an idle shell prompt.
func IsPromptLine(line string) bool {
	line = StripANSI(line)
	line = strings.TrimSpace(line)

	if line == "" {
		return false
	}

	for _, p := range promptPatterns {
		if p.Regex.MatchString(line) {
			return true
		}
	}
	return false
}

// promptWindow is how many trailing lines are inspected for a prompt.
// A prompt can sit above trailing blank lines or a partial status line,
// so a single-line check misses real completions.
const promptWindow = 3

// DetectPrompt reports whether the tail of the visible pane content shows
// an idle shell prompt. Only the last promptWindow lines are considered.
func DetectPrompt(lines []string) bool {
	if len(lines) == 0 {
		return false
	}

	start := len(lines) - promptWindow
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:] {
		if IsPromptLine(line) {
			return true
		}
	}
	return false
}
