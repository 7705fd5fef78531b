package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	devsync "github.com/devark-ai/devark/internal/sync"
)

const (
	watchDebounce = 5 * time.Second
	// watchInterval catches sessions the watcher missed, e.g.
	// files written while a transient watch error dropped events.
	watchInterval = 15 * time.Minute
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously sync as new sessions are written",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(
			cmd.Context(), syscall.SIGINT, syscall.SIGTERM,
		)
		defer stop()

		if !a.auth.IsAuthenticated(ctx) {
			fmt.Println(errorStyle.Render(
				"Not logged in — run 'devark login' first.",
			))
			return fmt.Errorf("not authenticated")
		}

		var tracker devsync.ProgressTracker
		runSync := func() {
			tracker.Reset()
			result := a.engine.Sync(ctx, devsync.Options{
				OnProgress: tracker.Callback(func(current, total int) {
					p := tracker.Current()
					if total > 1 && !p.Done() {
						log.Printf("uploading batch %d/%d (%.0f%%)",
							current, total, p.Percent())
					}
				}),
			})
			if result.SessionsUploaded > 0 {
				log.Printf("synced %d session(s)",
					result.SessionsUploaded)
			}
			for _, e := range result.Errors {
				log.Printf("sync: %s", e)
			}
		}

		watcher, err := devsync.NewWatcher(
			watchDebounce,
			func(paths []string) { runSync() },
		)
		if err != nil {
			return err
		}
		for _, dir := range a.cfg.ResolveClaudeDirs() {
			watched, _, err := watcher.WatchRecursive(dir)
			if err != nil {
				return err
			}
			log.Printf("watching %s (%d dir(s))", dir, watched)
		}
		watcher.Start()
		defer watcher.Stop()

		// Initial catch-up, then periodic safety-net syncs.
		runSync()
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nStopping.")
				return nil
			case <-ticker.C:
				runSync()
			}
		}
	},
}
