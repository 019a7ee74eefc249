package credentials

import "fmt"

// Source indicates where credentials were found.
type Source string

const (
	SourceKeyring Source = "keyring"
	SourceEnv     Source = "env"
	SourceNone    Source = "none"
)

// Credentials represents the resolved remote identity: the user id the
// sync engine scopes every request to, and the bearer token sent to
// the remote authority.
type Credentials struct {
	UserID string
	Token  string
	Source Source
}

// Resolver locates credentials in priority order: keyring first, then
// environment variables.
type Resolver struct{}

// NewResolver creates a credential resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve finds a token for the given user id. The user id itself may
// come from configuration or from STORYSYNC_USER_ID; when both are
// empty resolution fails before any lookup.
func (r *Resolver) Resolve(userID string) (*Credentials, error) {
	if userID == "" {
		userID = UserIDFromEnv()
	}
	if userID == "" {
		return nil, fmt.Errorf("no user id configured: set user_id in config or %s", EnvUserID)
	}

	// 1. OS keyring
	if IsAvailable() {
		if token, err := Get(userID); err == nil && token != "" {
			return &Credentials{
				UserID: userID,
				Token:  token,
				Source: SourceKeyring,
			}, nil
		}
	}

	// 2. Environment variable
	if token := TokenFromEnv(); token != "" {
		return &Credentials{
			UserID: userID,
			Token:  token,
			Source: SourceEnv,
		}, nil
	}

	return nil, fmt.Errorf("no token found for user %q: run 'storysync login' or set %s", userID, EnvToken)
}
