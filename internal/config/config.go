package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration
type Config struct {
	LogDir  string        `toml:"log_dir"` // Transcript log directory (optional, overrides auto-detection)
	Wait    WaitConfig    `toml:"wait"`
	Capture CaptureConfig `toml:"capture"`
	History HistoryConfig `toml:"history"`
}

// WaitConfig holds defaults for the wait command
type WaitConfig struct {
	TimeoutSeconds      float64 `toml:"timeout_seconds"`       // Default wait timeout
	PollIntervalSeconds float64 `toml:"poll_interval_seconds"` // Seconds between prompt checks
}

// CaptureConfig holds defaults for output capture
type CaptureConfig struct {
	MaxLines int `toml:"max_lines"` // Max lines before summarization kicks in
}

// HistoryConfig holds dispatch history settings
type HistoryConfig struct {
	Enabled    bool `toml:"enabled"`     // Record executed commands
	MaxEntries int  `toml:"max_entries"` // Entries kept before rotation (0 = unlimited)
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "term-agent", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "term-agent", "config.toml")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogDir: "",
		Wait: WaitConfig{
			TimeoutSeconds:      300,
			PollIntervalSeconds: 2,
		},
		Capture: CaptureConfig{
			MaxLines: 20,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
	}
}

// Load loads configuration from a file. A missing file is not an error:
// defaults are returned so the tool works with zero setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides(Default()), nil
		}
		return nil, err
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults for missing values
	defaults := Default()
	if cfg.Wait.TimeoutSeconds == 0 {
		cfg.Wait.TimeoutSeconds = defaults.Wait.TimeoutSeconds
	}
	if cfg.Wait.PollIntervalSeconds == 0 {
		cfg.Wait.PollIntervalSeconds = defaults.Wait.PollIntervalSeconds
	}
	if cfg.Capture.MaxLines == 0 {
		cfg.Capture.MaxLines = defaults.Capture.MaxLines
	}
	// enabled decodes to false both when absent and when written as false,
	// so the decode metadata decides whether the user said anything at all.
	if !meta.IsDefined("history") {
		cfg.History = defaults.History
	} else {
		if !meta.IsDefined("history", "enabled") {
			cfg.History.Enabled = defaults.History.Enabled
		}
		if !meta.IsDefined("history", "max_entries") {
			cfg.History.MaxEntries = defaults.History.MaxEntries
		}
	}

	return applyEnvOverrides(&cfg), nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) *Config {
	if dir := os.Getenv("TERM_AGENT_LOG_DIR"); dir != "" {
		cfg.LogDir = dir
	}
	if timeout := os.Getenv("TERM_AGENT_WAIT_TIMEOUT"); timeout != "" {
		var t float64
		if _, err := fmt.Sscanf(timeout, "%g", &t); err == nil && t > 0 {
			cfg.Wait.TimeoutSeconds = t
		}
	}
	if interval := os.Getenv("TERM_AGENT_POLL_INTERVAL"); interval != "" {
		var i float64
		if _, err := fmt.Sscanf(interval, "%g", &i); err == nil && i > 0 {
			cfg.Wait.PollIntervalSeconds = i
		}
	}
	if maxLines := os.Getenv("TERM_AGENT_MAX_LINES"); maxLines != "" {
		var n int
		if _, err := fmt.Sscanf(maxLines, "%d", &n); err == nil && n > 0 {
			cfg.Capture.MaxLines = n
		}
	}
	return cfg
}

// CreateDefault creates a default config file
func CreateDefault() (string, error) {
	path := DefaultPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Print(Default(), f); err != nil {
		return "", err
	}

	return path, nil
}

// Print writes config to a writer in TOML format
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# Term Agent Configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Transcript log directory (optional)")
	fmt.Fprintln(w, "# When unset, the log directory is auto-detected: TERM_AGENT_LOG_DIR env,")
	fmt.Fprintln(w, "# then <project>/.term-agent/logs, then ~/.term-agent/logs")
	if cfg.LogDir != "" {
		fmt.Fprintf(w, "log_dir = %q\n", cfg.LogDir)
	} else {
		fmt.Fprintln(w, "# log_dir = \"~/.term-agent/logs\"")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[wait]")
	fmt.Fprintln(w, "# Defaults for the wait command")
	fmt.Fprintf(w, "timeout_seconds = %g       # Maximum seconds to wait for completion\n", cfg.Wait.TimeoutSeconds)
	fmt.Fprintf(w, "poll_interval_seconds = %g # Seconds between prompt checks\n", cfg.Wait.PollIntervalSeconds)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[capture]")
	fmt.Fprintf(w, "max_lines = %d # Outputs longer than this get summarized\n", cfg.Capture.MaxLines)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[history]")
	fmt.Fprintln(w, "# Dispatch history recorded per executed command")
	fmt.Fprintf(w, "enabled = %t\n", cfg.History.Enabled)
	fmt.Fprintf(w, "max_entries = %d # Oldest entries pruned past this count\n", cfg.History.MaxEntries)

	return nil
}
