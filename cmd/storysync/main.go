package main

import (
	"fmt"
	"log"
	"os"

	"storysync/internal/config"
	"storysync/internal/credentials"
	"storysync/remote/postgrest"
	"storysync/store/sqlite"
	"storysync/syncer"

	"github.com/spf13/cobra"
)

// App holds everything a command needs: resolved config, the local
// store and the remote-backed sync service. Commands that run fully
// offline (status) only open the store; the service is built lazily.
type App struct {
	config *config.Config
	logger *log.Logger
}

func NewApp() *App {
	return &App{
		config: config.GetConfig(),
		logger: log.New(os.Stderr, "[storysync] ", log.LstdFlags),
	}
}

// openStore opens the local SQLite store at the configured path.
func (a *App) openStore() (*sqlite.Store, error) {
	return sqlite.Open(a.config.ExpandedDatabasePath())
}

// buildService wires store, remote authority and credentials into a
// sync service. Requires remote_url configured and a resolvable token.
func (a *App) buildService() (*syncer.Service, *sqlite.Store, *credentials.Credentials, error) {
	if a.config.RemoteURL == "" {
		return nil, nil, nil, fmt.Errorf("remote_url not configured: edit %s", mustConfigPath())
	}

	creds, err := credentials.NewResolver().Resolve(a.config.UserID)
	if err != nil {
		return nil, nil, nil, err
	}

	local, err := a.openStore()
	if err != nil {
		return nil, nil, nil, err
	}

	authority := postgrest.New(a.config.RemoteURL, a.config.RemoteAnonKey, creds.Token)
	service := syncer.NewService(local, authority, a.logger)
	return service, local, creds, nil
}

func mustConfigPath() string {
	path, err := config.ConfigPath()
	if err != nil {
		return "config"
	}
	return path
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "storysync",
		Short: "Offline-first sync for your writing projects",
		Long: `storysync keeps a local SQLite copy of your writing data and
synchronizes it with the remote backend when you are signed in.

All writes land locally first and are marked pending; sync pushes
pending records up and pulls the remote state back down.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				config.SetCustomConfigPath(configPath)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newBackgroundPushCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
