package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/agent"
	"github.com/yfreeman/term-agent/internal/config"
	"github.com/yfreeman/term-agent/internal/output"
	"github.com/yfreeman/term-agent/internal/tmux"
)

var rootCmd = &cobra.Command{
	Use:   "term-agent",
	Short: "Terminal session agent - dispatch commands and harvest output",
	Long: `term-agent runs shell commands inside tmux sessions on behalf of an
automated agent and retrieves their output reliably.

Each dispatched command is preceded by a marker written to the session's
transcript, so later captures can extract exactly the output that belongs
to that command, summarize long output around error lines, and poll for
completion by watching for an idle shell prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	jsonFlag   bool
	logDirFlag string
	configFlag string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&logDirFlag, "log-dir", "", "Transcript directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file path")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		return err
	}
}

// newAgent builds the agent over a live tmux client using the loaded config.
func newAgent() (*agent.Agent, error) {
	client := tmux.NewClient()
	if err := client.EnsureInstalled(); err != nil {
		return nil, err
	}
	logDir := logDirFlag
	if logDir == "" {
		logDir = cfg.LogDir
	}
	return agent.New(client, logDir, agent.WithMaxLines(cfg.Capture.MaxLines)), nil
}

// asCLIError converts structured agent errors into the styled CLI error so
// the code and hint survive to the terminal.
func asCLIError(err error) error {
	if err == nil {
		return nil
	}
	code := agent.CodeOf(err)
	if code == "" {
		return err
	}
	cliErr := output.NewCLIError(err.Error()).WithCode(code)
	if hint := agent.HintOf(err); hint != "" {
		cliErr = cliErr.WithHint(hint)
	}
	return cliErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(asCLIError(err))
		os.Exit(2)
	}
}
