package credentials

import "os"

// Environment variable names honored as a keyring fallback. Useful for
// headless machines and CI where no keyring daemon is running.
const (
	EnvToken  = "STORYSYNC_TOKEN"
	EnvUserID = "STORYSYNC_USER_ID"
)

// TokenFromEnv returns the remote access token from the environment,
// or empty string when unset.
func TokenFromEnv() string {
	return os.Getenv(EnvToken)
}

// UserIDFromEnv returns the user id from the environment, or empty
// string when unset.
func UserIDFromEnv() string {
	return os.Getenv(EnvUserID)
}
