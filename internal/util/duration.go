// Package util holds small helpers shared across term-agent commands.
package util

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// unitSuffixes extends Go's duration syntax with day and week units, which
// show up naturally in history pruning ("7d", "1w").
var unitSuffixes = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseDuration parses durations like 30s, 5m, 1h, 1d, 1w. Anything that
// is not a single integer-plus-suffix falls through to time.ParseDuration,
// so compound Go forms (1h30m, 500ms) keep working.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	if unit, ok := unitSuffixes[s[len(s)-1]]; ok {
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil {
			return time.Duration(n) * unit, nil
		}
	}
	return time.ParseDuration(s)
}

// ParseDurationWithDefault additionally accepts a bare number, scaled by
// defaultUnit, printing a deprecation warning that names the flag. Flags
// that used to take raw seconds or milliseconds keep working this way.
func ParseDurationWithDefault(s string, defaultUnit time.Duration, flagName string) (time.Duration, error) {
	if d, err := ParseDuration(s); err == nil {
		return d, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s (use units like 30s, 5m, 1h)", s)
	}

	fmt.Fprintf(os.Stderr, "Warning: bare number '%s' for %s is deprecated; use %s=%d%s\n",
		s, flagName, flagName, n, unitName(defaultUnit))
	return time.Duration(n) * defaultUnit, nil
}

// unitName maps a scale back to its suffix for the deprecation message.
func unitName(d time.Duration) string {
	for suffix, unit := range unitSuffixes {
		if unit == d {
			return string(suffix)
		}
	}
	if d == time.Millisecond {
		return "ms"
	}
	return "s"
}
