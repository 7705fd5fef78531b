package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	devsync "github.com/devark-ai/devark/internal/sync"
)

var (
	syncProject string
	syncForce   bool
	syncDryRun  bool
	syncSince   time.Duration
)

func init() {
	syncCmd.Flags().StringVar(&syncProject, "project", "",
		"only sync sessions under this project path")
	syncCmd.Flags().BoolVar(&syncForce, "force", false,
		"re-upload everything, ignoring the stored cutoff")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false,
		"show what would be uploaded without uploading")
	syncCmd.Flags().DurationVar(&syncSince, "since", 0,
		"only sync sessions newer than this age (e.g. 24h)")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload new coding sessions to devark",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		opts := devsync.Options{
			ProjectPath: syncProject,
			Force:       syncForce,
			DryRun:      syncDryRun,
			OnProgress: func(current, total int) {
				fmt.Printf("\rUploading sessions... %d/%d",
					current, total)
				if current == total {
					fmt.Println()
				}
			},
		}
		if syncSince > 0 {
			opts.Since = time.Now().Add(-syncSince)
		}

		result := a.engine.Sync(cmd.Context(), opts)
		printSyncResult(result, syncDryRun)
		if !result.Success {
			return fmt.Errorf("sync failed")
		}
		return nil
	},
}

func printSyncResult(result *devsync.Result, dryRun bool) {
	for _, e := range result.Errors {
		switch e {
		case devsync.ErrNotAuthenticated:
			fmt.Println(errorStyle.Render(
				"Not logged in — run 'devark login' first.",
			))
			return
		case devsync.ErrTokenInvalid:
			fmt.Println(errorStyle.Render(
				"Your session has expired — run 'devark login' again.",
			))
			return
		}
	}

	if dryRun {
		fmt.Printf("%d session(s) would be uploaded, %d skipped\n",
			result.SessionsUploaded, result.SessionsSkipped)
		return
	}

	if result.Success {
		fmt.Println(successStyle.Render(fmt.Sprintf(
			"Synced %d session(s) across %d project(s)",
			result.SessionsUploaded, result.ProjectsSynced,
		)))
	} else {
		fmt.Println(errorStyle.Render("Sync failed"))
	}
	if result.SessionsSkipped > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf(
			"%d short session(s) skipped", result.SessionsSkipped,
		)))
	}
	for _, e := range result.Errors {
		fmt.Println(warnStyle.Render("warning: " + e))
	}

	if up := result.UploadResult; up != nil {
		if up.Created > 0 || up.Duplicates > 0 {
			fmt.Printf("%d new, %d already uploaded\n",
				up.Created, up.Duplicates)
		}
		if up.Streak != nil && up.Streak.Current > 0 {
			fmt.Printf("Current streak: %d day(s)\n",
				up.Streak.Current)
		}
		if up.PointsEarned != nil && up.PointsEarned.Total > 0 {
			fmt.Printf("Points earned: %d\n", up.PointsEarned.Total)
		}
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local vs. uploaded session counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		status := a.engine.GetSyncStatus()
		fmt.Println(headerStyle.Render("Sync status"))
		fmt.Printf("  Local sessions:   %d\n", status.LocalSessions)
		fmt.Printf("  Uploaded total:   %d\n", status.SyncedSessions)
		fmt.Printf("  Pending upload:   %d\n", status.PendingUploads)
		if status.LastSynced.IsZero() {
			fmt.Printf("  Last synced:      %s\n",
				dimStyle.Render("never"))
		} else {
			fmt.Printf("  Last synced:      %s\n",
				humanize.Time(status.LastSynced))
		}

		if doc := a.store.GetState(); doc.LastError != nil {
			fmt.Printf("  Last error:       %s\n",
				errorStyle.Render(fmt.Sprintf("%s (%s)",
					doc.LastError.Message, doc.LastError.Code)))
		}
		return nil
	},
}
