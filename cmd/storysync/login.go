package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"storysync/internal/config"
	"storysync/internal/credentials"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newLoginCmd creates the login command: stores the remote access
// token in the OS keyring and remembers the user id in config.
func newLoginCmd() *cobra.Command {
	var userID string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the remote access token",
		Long: `Store the remote access token in the OS keyring and remember the
user id in the config file. The token is prompted for without echo;
it is never written to disk in plain text.

On headless machines without a keyring, set ` + credentials.EnvToken + ` and
` + credentials.EnvUserID + ` instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp()

			if userID == "" {
				userID = app.config.UserID
			}
			if userID == "" {
				fmt.Print("User ID: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read user id: %w", err)
				}
				userID = strings.TrimSpace(line)
			}
			if userID == "" {
				return fmt.Errorf("user id cannot be empty")
			}

			token, err := readToken()
			if err != nil {
				return err
			}

			if !credentials.IsAvailable() {
				return fmt.Errorf("OS keyring is not available; set %s instead", credentials.EnvToken)
			}
			if err := credentials.Set(userID, token); err != nil {
				return err
			}

			if app.config.UserID != userID {
				app.config.UserID = userID
				if err := config.Save(app.config); err != nil {
					return fmt.Errorf("token stored, but failed to save config: %w", err)
				}
			}

			fmt.Printf("Signed in as %s\n", userID)
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&userID, "user", "u", "", "user id to sign in as")
	return loginCmd
}

// newLogoutCmd creates the logout command: removes the stored token.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored remote access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp()
			if app.config.UserID == "" {
				return fmt.Errorf("no user is signed in")
			}

			if err := credentials.Delete(app.config.UserID); err != nil {
				return err
			}

			fmt.Printf("Signed out %s\n", app.config.UserID)
			return nil
		},
	}
}

// readToken prompts for the token without echoing it. Falls back to a
// plain line read when stdin is not a terminal (piped input).
func readToken() (string, error) {
	fmt.Print("Access token: ")
	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		token := strings.TrimSpace(string(raw))
		if token == "" {
			return "", fmt.Errorf("token cannot be empty")
		}
		return token, nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return token, nil
}
