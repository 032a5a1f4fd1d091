package transcript

import (
	"fmt"
	"regexp"
)

// Summary is the outcome of compressing a long output region.
type Summary struct {
	Lines  []string
	Method string
}

// Placeholder separates non-contiguous sections of a summarized excerpt.
const Placeholder = "..."

// errorSignature pairs a line predicate with the label it reports.
type errorSignature struct {
	re    *regexp.Regexp
	label string
}

// errorSignatures is checked in order against each line. The first
// signature matched by the first matching line fixes the reported label;
// every matched line contributes a context window regardless of which
// signature it hit. Order is load-bearing for deterministic labels.
var errorSignatures = []errorSignature{
	{regexp.MustCompile(`(?i)Traceback \(most recent call last\)`), "python_traceback"},
	{regexp.MustCompile(`(?i)Error:`), "generic_error"},
	{regexp.MustCompile(`(?i)Exception:`), "exception"},
	{regexp.MustCompile(`(?i)error:`), "compilation_error"},
	{regexp.MustCompile(`(?i)FAILED`), "test_failure"},
	{regexp.MustCompile(`(?i)AssertionError`), "assertion_error"},
	{regexp.MustCompile(`(?i)SyntaxError`), "syntax_error"},
	{regexp.MustCompile(`(?i)TypeError`), "type_error"},
	{regexp.MustCompile(`(?i)at .+:\d+:\d+`), "javascript_error"},
}

const (
	contextBefore = 10
	contextAfter  = 20
	headTailLines = 10
	closingTail   = 5
)

// Summarize compresses a line sequence into a bounded excerpt. Lines
// matching an error signature get context windows around them; error-free
// output gets a head/tail excerpt. Pure and total: identical input yields
// identical output, and no input fails.
func Summarize(lines []string) Summary {
	var matched []int
	label := ""

	for i, line := range lines {
		for _, sig := range errorSignatures {
			if sig.re.MatchString(line) {
				matched = append(matched, i)
				if label == "" {
					label = sig.label
				}
				break
			}
		}
	}

	if len(matched) > 0 {
		return summarizeErrors(lines, matched, label)
	}
	return summarizeHeadTail(lines)
}

// summarizeErrors emits a context window for each matched line: up to
// contextBefore preceding lines, the match, and up to contextAfter following
// lines. Windows with identical bounds are emitted once.
func summarizeErrors(lines []string, matched []int, label string) Summary {
	out := []string{}
	seen := make(map[[2]int]bool)

	for _, idx := range matched {
		start := idx - contextBefore
		if start < 0 {
			start = 0
		}
		end := idx + contextAfter
		if end > len(lines) {
			end = len(lines)
		}

		bounds := [2]int{start, end}
		if seen[bounds] {
			continue
		}
		seen[bounds] = true

		if len(out) > 0 && out[len(out)-1] != Placeholder {
			out = append(out, Placeholder, "")
		}
		out = append(out, lines[start:end]...)
	}

	// Closing context: when output continues well past the last match,
	// show how the region ended.
	if len(lines)-matched[len(matched)-1] > contextAfter {
		out = append(out, Placeholder, "")
		out = append(out, lines[len(lines)-closingTail:]...)
	}

	return Summary{Lines: out, Method: ErrorMethodPrefix + label}
}

// summarizeHeadTail emits the first and last headTailLines lines around an
// omission placeholder.
func summarizeHeadTail(lines []string) Summary {
	head := headTailLines
	if head > len(lines) {
		head = len(lines)
	}
	tailStart := len(lines) - headTailLines
	if tailStart < 0 {
		tailStart = 0
	}

	out := make([]string, 0, 2*headTailLines+3)
	out = append(out, lines[:head]...)
	out = append(out, "", fmt.Sprintf("... (%d lines omitted) ...", len(lines)-2*headTailLines), "")
	out = append(out, lines[tailStart:]...)

	return Summary{Lines: out, Method: MethodFirstLast}
}
