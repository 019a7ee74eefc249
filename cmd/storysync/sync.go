package main

import (
	"context"
	"fmt"
	"time"

	"storysync/internal/background"

	"github.com/spf13/cobra"
)

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	var pushOnly bool
	var pullOnly bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize local data with the remote backend",
		Long: `Synchronize the local SQLite store with the remote backend.

A full sync pushes pending local records first, then pulls the remote
state back down. The pull is skipped whenever the push fails, so
pending local edits are never overwritten by stale remote data.

Examples:
  storysync sync               # Push then pull
  storysync sync --push-only   # Upload pending records only
  storysync sync --pull-only   # Download remote state only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pushOnly && pullOnly {
				return fmt.Errorf("--push-only and --pull-only are mutually exclusive")
			}

			app := NewApp()
			service, local, creds, err := app.buildService()
			if err != nil {
				return err
			}
			defer local.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			start := time.Now()
			switch {
			case pushOnly:
				err = service.PushAll(ctx, creds.UserID)
			case pullOnly:
				err = service.PullAll(ctx, creds.UserID)
			default:
				err = service.FullSync(ctx, creds.UserID)
			}
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			pending, countErr := service.CountPending(ctx, creds.UserID)
			fmt.Printf("Sync complete in %s\n", time.Since(start).Round(time.Millisecond))
			if countErr == nil {
				fmt.Printf("Pending records: %d\n", pending)
			}
			return nil
		},
	}

	syncCmd.Flags().BoolVar(&pushOnly, "push-only", false, "upload pending local records without pulling")
	syncCmd.Flags().BoolVar(&pullOnly, "pull-only", false, "download remote state without pushing")

	return syncCmd
}

// newMigrateCmd creates the migrate command.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Claim anonymous local data for the signed-in user",
		Long: `Transfer ownership of locally created records to the signed-in user.

Migration runs at most once per account: if the remote backend already
holds any data for this user, or the local store has no projects, the
command is a no-op. Claimed records are marked pending so the next sync
uploads them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp()
			service, local, creds, err := app.buildService()
			if err != nil {
				return err
			}
			defer local.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			migrated, err := service.Migrate(ctx, creds.UserID)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if !migrated {
				fmt.Println("Nothing to migrate")
				return nil
			}

			// Upload the claimed records without making the user wait.
			if err := background.SpawnPush(); err != nil {
				fmt.Println("Local data claimed; run 'storysync sync' to upload it")
				return nil
			}
			fmt.Println("Local data claimed; uploading in the background")
			return nil
		},
	}
}
