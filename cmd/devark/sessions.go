package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/devark-ai/devark/internal/parser"
)

var sessionsLimit int

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20,
		"maximum number of sessions to list")
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List local coding sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var entries []parser.IndexEntry
		for _, r := range a.readers {
			entries = append(entries, r.ReadIndex(
				parser.ReadOptions{Limit: sessionsLimit},
			)...)
		}
		if len(entries) == 0 {
			fmt.Println("No local sessions found.")
			return nil
		}
		if len(entries) > sessionsLimit {
			entries = entries[:sessionsLimit]
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf(
			"%-22s %-10s %-9s %-8s %s",
			"WHEN", "TOOL", "DURATION", "PROMPTS", "PROJECT",
		)))
		for _, e := range entries {
			fmt.Printf("%-22s %-10s %-9s %-8d %s\n",
				humanize.Time(e.Timestamp),
				e.Source,
				formatDuration(e.Duration),
				e.PromptCount,
				e.WorkspaceName,
			)
		}
		return nil
	},
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", seconds)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%02dm",
		int(d.Hours()), int(d.Minutes())%60)
}
