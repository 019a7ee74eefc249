// Package credentials resolves the remote access token for the
// authenticated user, preferring the OS keyring over environment
// variables.
package credentials

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service name for storysync tokens.
const KeyringService = "storysync-remote"

// Set stores a user's remote access token in the OS keyring.
func Set(userID, token string) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := keyring.Set(KeyringService, userID, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Get retrieves a user's remote access token from the OS keyring.
func Get(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id cannot be empty")
	}

	token, err := keyring.Get(KeyringService, userID)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("no token found in keyring for user %q", userID)
		}
		return "", fmt.Errorf("failed to retrieve token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes a user's token from the OS keyring.
func Delete(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	if err := keyring.Delete(KeyringService, userID); err != nil {
		if err == keyring.ErrNotFound {
			return fmt.Errorf("no token found in keyring for user %q", userID)
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the keyring is accessible. A probe for a
// non-existent item returning ErrNotFound means the keyring itself works.
func IsAvailable() bool {
	_, err := keyring.Get("storysync-keyring-test", "test")
	return err == nil || err == keyring.ErrNotFound
}
