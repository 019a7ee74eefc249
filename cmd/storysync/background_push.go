package main

import (
	"context"
	"time"

	"storysync/internal/background"

	"github.com/spf13/cobra"
)

// newBackgroundPushCmd creates the hidden command run by the detached
// process background.SpawnPush starts. Failures are logged to the
// background log file, never fatal: pending records stay pending and the
// next sync picks them up.
func newBackgroundPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:    background.PushCommand,
		Hidden: true,
		Short:  "Internal command for background push (do not call directly)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := background.Logger()
			if err == nil {
				defer closeLog()
			}

			app := NewApp()
			if logger != nil {
				app.logger = logger
			}
			if app.config.Sync == nil || !app.config.Sync.Enabled {
				return nil
			}

			service, local, creds, err := app.buildService()
			if err != nil {
				if logger != nil {
					logger.Printf("setup failed: %v", err)
				}
				return nil
			}
			defer local.Close()

			// Give the parent process a moment to exit.
			time.Sleep(100 * time.Millisecond)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := service.PushAll(ctx, creds.UserID); err != nil {
				if logger != nil {
					logger.Printf("push error: %v", err)
				}
			}
			return nil
		},
	}
}
