package util

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1h30m", 90 * time.Minute},
		{"500ms", 500 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDuration(tc.in)
			if err != nil {
				t.Fatalf("ParseDuration(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "x", "abc", "10x", "s30"} {
		if _, err := ParseDuration(in); err == nil {
			t.Errorf("ParseDuration(%q) succeeded, want error", in)
		}
	}
}

func TestParseDurationWithDefault(t *testing.T) {
	got, err := ParseDurationWithDefault("45s", time.Second, "--timeout")
	if err != nil || got != 45*time.Second {
		t.Errorf("unit form: got %v, %v", got, err)
	}

	// Bare number scales by the default unit (with a stderr warning).
	got, err = ParseDurationWithDefault("30", time.Second, "--timeout")
	if err != nil || got != 30*time.Second {
		t.Errorf("bare seconds: got %v, %v", got, err)
	}
	got, err = ParseDurationWithDefault("250", time.Millisecond, "--poll")
	if err != nil || got != 250*time.Millisecond {
		t.Errorf("bare milliseconds: got %v, %v", got, err)
	}

	if _, err := ParseDurationWithDefault("soon", time.Second, "--timeout"); err == nil {
		t.Error("non-numeric input succeeded, want error")
	}
}

func TestUnitName(t *testing.T) {
	cases := map[time.Duration]string{
		time.Millisecond: "ms",
		time.Second:      "s",
		time.Minute:      "m",
		time.Hour:        "h",
		3 * time.Second:  "s",
	}
	for d, want := range cases {
		if got := unitName(d); got != want {
			t.Errorf("unitName(%v) = %q, want %q", d, got, want)
		}
	}
}
