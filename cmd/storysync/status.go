package main

import (
	"context"
	"fmt"
	"time"

	"storysync/internal/credentials"
	"storysync/syncer"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	statusHeaderStyle  = lipgloss.NewStyle().Bold(true)
	statusPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// newStatusCmd creates the status command. It never touches the
// network, so it works offline.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local sync state",
		Long: `Display the local sync state: who is signed in, where the
database lives, and how many records are waiting to be uploaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp()

			local, err := app.openStore()
			if err != nil {
				return err
			}
			defer local.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			fmt.Println(statusHeaderStyle.Render("storysync status"))

			userID := app.config.UserID
			creds, credErr := credentials.NewResolver().Resolve(userID)
			if credErr != nil {
				fmt.Println("Account: not signed in")
			} else {
				fmt.Printf("Account: %s (token from %s)\n", creds.UserID, creds.Source)
				userID = creds.UserID
			}

			fmt.Printf("Database: %s\n", app.config.ExpandedDatabasePath())
			if app.config.RemoteURL != "" {
				fmt.Printf("Remote: %s\n", app.config.RemoteURL)
			} else {
				fmt.Println("Remote: not configured")
			}

			engine := syncer.NewEngine(local, nil, app.logger)
			counts, err := engine.PendingByKind(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to count pending records: %w", err)
			}

			total := 0
			for _, n := range counts {
				total += n
			}

			fmt.Println()
			if total == 0 {
				fmt.Println(statusOKStyle.Render("Everything is synced"))
				return nil
			}

			fmt.Println(statusPendingStyle.Render(fmt.Sprintf("%d records pending upload:", total)))
			for _, kind := range syncer.Kinds() {
				if n := counts[kind.Collection]; n > 0 {
					fmt.Printf("  %-20s %d\n", kind.Name, n)
				}
			}
			return nil
		},
	}
}
