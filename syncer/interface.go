package syncer

import (
	"context"
	"log"

	"storysync/remote"
	"storysync/store"
)

// Runner is the trigger contract exposed to the scheduler and UI layer.
// All mutating calls need nothing beyond the authenticated user id, are
// idempotent, and are individually retriable; failures surface to the
// caller rather than being retried internally.
type Runner interface {
	// Migrate claims anonymous local records for userID, exactly once.
	// Returns true iff migration occurred; the caller must then push.
	Migrate(ctx context.Context, userID string) (bool, error)

	// PushAll uploads all pending records owned by userID.
	PushAll(ctx context.Context, userID string) error

	// PullAll downloads the user's remote records and overwrites local
	// copies in one transaction.
	PullAll(ctx context.Context, userID string) error

	// FullSync pushes, then pulls, in that order.
	FullSync(ctx context.Context, userID string) error

	// CountPending reports how many local records await upload.
	CountPending(ctx context.Context, userID string) (int, error)
}

// Service bundles the engine and the migration coordinator behind the
// Runner contract.
type Service struct {
	*Engine
	*Migrator
}

var _ Runner = (*Service)(nil)

// NewService creates the engine and migrator over shared dependencies.
func NewService(local store.Store, authority remote.Authority, logger *log.Logger) *Service {
	return &Service{
		Engine:   NewEngine(local, authority, logger),
		Migrator: NewMigrator(local, authority, logger),
	}
}
