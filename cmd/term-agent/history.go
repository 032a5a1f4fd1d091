package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yfreeman/term-agent/internal/history"
	"github.com/yfreeman/term-agent/internal/output"
	"github.com/yfreeman/term-agent/internal/util"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect dispatch history",
	Long: `Show, search, and prune the record of commands dispatched through
'term-agent exec'.

Examples:
  # Last 20 dispatches
  term-agent history list

  # Find past test runs
  term-agent history search pytest

  # Keep only the newest 500 entries
  term-agent history prune --keep 500

  # Drop everything older than a week
  term-agent history prune --before 1w`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent dispatches",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historySearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search dispatched commands, or look one up by marker id",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Trim old history entries",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

var (
	historyLimit   int
	historySession string
	pruneKeep      int
	pruneBefore    string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historySearchCmd, historyStatsCmd, historyClearCmd, historyPruneCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	historyListCmd.Flags().StringVarP(&historySession, "session", "s", "", "Only entries for this session")
	historyPruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "Keep only the newest N entries")
	historyPruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Remove entries older than this (e.g. 7d, 1w)")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	var entries []history.Entry
	var err error
	if historySession != "" {
		entries, err = history.ReadForSession(historySession)
		if err == nil && historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[len(entries)-historyLimit:]
		}
	} else {
		entries, err = history.ReadRecent(historyLimit)
	}
	if err != nil {
		return err
	}
	return printEntries(entries)
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	// A query that is an exact marker id resolves to the dispatch that
	// produced it, so `capture --marker` output can be traced back.
	if entry, err := history.FindByMarker(args[0]); err == nil && entry != nil {
		return printEntries([]history.Entry{*entry})
	}

	entries, err := history.Search(args[0])
	if err != nil {
		return err
	}
	return printEntries(entries)
}

func printEntries(entries []history.Entry) error {
	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	}, func(w io.Writer) error {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No history entries.")
			return nil
		}
		for _, e := range entries {
			status := "ok"
			if !e.Success {
				status = "failed"
			}
			fmt.Fprintf(w, "%s  %-8s %-16s %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), status, e.Session, e.Command)
		}
		return nil
	})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	stats, err := history.GetStats()
	if err != nil {
		return err
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(stats, func(w io.Writer) error {
		fmt.Fprintf(w, "Entries:   %d (%d ok, %d failed)\n",
			stats.TotalEntries, stats.SuccessCount, stats.FailureCount)
		fmt.Fprintf(w, "Sessions:  %d\n", stats.UniqueSessions)
		fmt.Fprintf(w, "File size: %d bytes\n", stats.FileSizeBytes)
		return nil
	})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	if err := history.Clear(); err != nil {
		return err
	}
	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(map[string]interface{}{
		"action":  "clear",
		"success": true,
	}, func(w io.Writer) error {
		fmt.Fprintln(w, "History cleared.")
		return nil
	})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if pruneKeep <= 0 && pruneBefore == "" {
		return fmt.Errorf("prune needs --keep N or --before DURATION")
	}

	removed := 0
	if pruneBefore != "" {
		d, err := util.ParseDuration(pruneBefore)
		if err != nil {
			return err
		}
		n, err := history.PruneByTime(time.Now().Add(-d))
		if err != nil {
			return err
		}
		removed += n
	}
	if pruneKeep > 0 {
		n, err := history.Prune(pruneKeep)
		if err != nil {
			return err
		}
		removed += n
	}

	formatter := output.DefaultFormatter(jsonFlag)
	return formatter.OutputData(map[string]interface{}{
		"action":  "prune",
		"removed": removed,
	}, func(w io.Writer) error {
		fmt.Fprintf(w, "Removed %d entries.\n", removed)
		return nil
	})
}
