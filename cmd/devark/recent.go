package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/devark-ai/devark/internal/timeutil"
)

var recentLimit int

func init() {
	recentCmd.Flags().IntVar(&recentLimit, "limit", 10,
		"maximum number of sessions to show")
	rootCmd.AddCommand(recentCmd)
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently uploaded sessions and your streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if !a.auth.IsAuthenticated(ctx) {
			fmt.Println(warnStyle.Render(
				"Not logged in — run 'devark login'.",
			))
			return nil
		}

		if streak, err := a.client.GetStreak(ctx); err == nil &&
			streak.Current > 0 {
			fmt.Printf("Streak: %d day(s) (longest %d)\n\n",
				streak.Current, streak.Longest)
		}

		sessions, err := a.client.GetRecentSessions(ctx, recentLimit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("Nothing uploaded yet — run 'devark sync'.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf(
			"%-22s %-10s %-9s %s",
			"WHEN", "TOOL", "DURATION", "PROJECT",
		)))
		for _, s := range sessions {
			when := s.Timestamp
			if ts := timeutil.Parse(s.Timestamp); !ts.IsZero() {
				when = humanize.Time(ts)
			}
			fmt.Printf("%-22s %-10s %-9s %s\n",
				when, s.Tool, formatDuration(s.Duration), s.Project)
		}
		return nil
	},
}
