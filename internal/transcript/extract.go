package transcript

import (
	"fmt"
	"os"
	"strings"

	"github.com/yfreeman/term-agent/internal/status"
)

// Extraction method labels reported in Result.Method.
const (
	MethodFull           = "full"
	MethodNoFile         = "no_file"
	MethodMarkerNotFound = "marker_not_found"
	MethodFirstLast      = "first_last"

	// ErrorMethodPrefix precedes the error label for error-focused excerpts,
	// e.g. "error_extraction_python_traceback".
	ErrorMethodPrefix = "error_extraction_"
)

// DefaultMaxLines is the region size at or below which output is returned
// verbatim instead of summarized.
const DefaultMaxLines = 20

// Result is the outcome of extracting one command's output region.
type Result struct {
	Lines             []string `json:"lines"`
	LineCount         int      `json:"line_count"`
	OriginalLineCount int      `json:"original_line_count,omitempty"`
	Method            string   `json:"extraction_method"`
	Truncated         bool     `json:"truncated"`
	ForcedFull        bool     `json:"forced_full,omitempty"`
	Message           string   `json:"message,omitempty"`
}

// Extract locates markerID in the transcript at path and returns its output
// region, cleaned of ANSI escapes and bounded by maxLines (summarized when
// longer, unless forceFull). A missing file or marker is not an error:
// callers fall back to a live pane snapshot.
func Extract(path, markerID string, maxLines int, forceFull bool) Result {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Lines: []string{}, Method: MethodNoFile}
	}

	lines := strings.Split(string(data), "\n")
	// A trailing newline is a terminator, not an empty final line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	startMarker := StartSentinel + " " + markerID
	start := -1
	for i, line := range lines {
		if strings.Contains(line, startMarker) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return Result{Lines: []string{}, Method: MethodMarkerNotFound}
	}

	endMarker := EndSentinel + " " + markerID
	region := []string{}
	for _, line := range lines[start:] {
		if strings.Contains(line, endMarker) {
			break
		}
		region = append(region, status.StripANSI(strings.TrimRight(line, " \t\r\n")))
	}

	count := len(region)
	if forceFull || count <= maxLines {
		return Result{
			Lines:      region,
			LineCount:  count,
			Method:     MethodFull,
			ForcedFull: forceFull,
		}
	}

	sum := Summarize(region)
	return Result{
		Lines:             sum.Lines,
		LineCount:         count,
		OriginalLineCount: count,
		Method:            sum.Method,
		Truncated:         true,
		Message:           fmt.Sprintf("Output has %d lines, showing %d relevant lines", count, len(sum.Lines)),
	}
}
