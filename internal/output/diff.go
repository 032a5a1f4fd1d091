package output

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResult holds the result of comparing two output regions.
type DiffResult struct {
	Label1      string  `json:"label1"`
	Label2      string  `json:"label2"`
	LineCount1  int     `json:"lines1"`
	LineCount2  int     `json:"lines2"`
	Similarity  float64 `json:"similarity"`
	UnifiedDiff string  `json:"diff,omitempty"`
}

// ComputeDiff compares two output regions, typically the extracted output
// of two commands from the same transcript.
func ComputeDiff(label1, content1, label2, content2 string) *DiffResult {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(content1, content2, true)

	// Similarity in [0,1] from Levenshtein distance over the longer input.
	dist := dmp.DiffLevenshtein(diffs)
	maxLen := len(content1)
	if len(content2) > maxLen {
		maxLen = len(content2)
	}
	similarity := 0.0
	if maxLen > 0 {
		similarity = 1.0 - (float64(dist) / float64(maxLen))
	}

	patches := dmp.PatchMake(content1, diffs)

	return &DiffResult{
		Label1:      label1,
		Label2:      label2,
		LineCount1:  len(strings.Split(content1, "\n")),
		LineCount2:  len(strings.Split(content2, "\n")),
		Similarity:  similarity,
		UnifiedDiff: dmp.PatchToText(patches),
	}
}
