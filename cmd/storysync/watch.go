package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storysync/syncer"

	"github.com/spf13/cobra"
)

// newWatchCmd creates the watch command: a long-running foreground
// process that syncs on an interval until interrupted.
func newWatchCmd() *cobra.Command {
	var interval time.Duration

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run periodic sync until interrupted",
		Long: `Run a full sync immediately, then keep syncing on an interval
until the process receives SIGINT or SIGTERM. On shutdown a final
best-effort push uploads any records that went pending during the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp()
			if app.config.Sync == nil || !app.config.Sync.Enabled {
				return fmt.Errorf("sync is not enabled in configuration")
			}

			service, local, creds, err := app.buildService()
			if err != nil {
				return err
			}
			defer local.Close()

			schedCfg := syncer.DefaultSchedulerConfig()
			schedCfg.Logger = app.logger
			if interval > 0 {
				schedCfg.Interval = interval
			} else if app.config.Sync.IntervalSeconds > 0 {
				schedCfg.Interval = time.Duration(app.config.Sync.IntervalSeconds) * time.Second
			}

			scheduler := syncer.NewScheduler(service, creds.UserID, schedCfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := scheduler.Bootstrap(ctx); err != nil {
				app.logger.Printf("initial sync failed: %v", err)
			}

			fmt.Printf("Watching for changes, syncing every %s (Ctrl+C to stop)\n", schedCfg.Interval)
			if err := scheduler.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}

			if app.config.Sync.PushOnExit {
				scheduler.Flush(10 * time.Second)
			}
			return nil
		},
	}

	watchCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "sync interval (overrides config)")
	return watchCmd
}
