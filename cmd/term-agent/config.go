package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/config"
	"github.com/yfreeman/term-agent/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration term-agent is running with, after merging
the config file, environment overrides, and defaults.

Examples:
  term-agent config
  term-agent config init`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(cfg, func(w io.Writer) error {
		return config.Print(cfg, w)
	})
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.CreateDefault()
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
