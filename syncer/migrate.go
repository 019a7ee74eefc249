package syncer

import (
	"context"
	"fmt"
	"log"
	"os"

	"storysync/remote"
	"storysync/store"
)

// Migrator performs the one-time ownership migration: claiming anonymous
// local records for an authenticated identity.
type Migrator struct {
	local  store.Store
	remote remote.Authority
	kinds  []Kind
	logger *log.Logger
}

// NewMigrator creates a migration coordinator. If logger is nil, a default
// logger writing to stderr is used.
func NewMigrator(local store.Store, authority remote.Authority, logger *log.Logger) *Migrator {
	if logger == nil {
		logger = log.New(os.Stderr, "[migrate] ", log.LstdFlags)
	}
	return &Migrator{
		local:  local,
		remote: authority,
		kinds:  Kinds(),
		logger: logger,
	}
}

// Migrate claims all local records for userID, exactly once. It returns
// true iff migration occurred.
//
// Migration is skipped (false, nil) when the remote authority already
// holds any record for the user — that user was provisioned from another
// device, or already migrated — or when there is nothing to migrate
// locally. The remote check probes only the primary kind's table
// (projects, limit 1) as a proxy for "user has any remote data"; this
// mirrors how records are created (no entity exists without a project)
// rather than querying all twelve tables.
//
// On success every local record of every kind is owned by userID and
// pending; the caller should push immediately. The claiming update is a
// single transaction: a failure rolls the whole migration back and is
// returned, never swallowed, so the caller can retry on next login.
func (m *Migrator) Migrate(ctx context.Context, userID string) (bool, error) {
	primary := m.kinds[0]

	rows, err := m.remote.Select(ctx, primary.Table, remote.Query{
		UserID:         userID,
		IncludeDeleted: true,
		Limit:          1,
	})
	if err != nil {
		return false, fmt.Errorf("provisioning check: %w", err)
	}
	if len(rows) > 0 {
		m.logger.Printf("user already has remote data, skipping migration")
		return false, nil
	}

	localProjects, err := m.local.Count(ctx, primary.Collection, store.Filter{})
	if err != nil {
		return false, fmt.Errorf("failed to count local projects: %w", err)
	}
	if localProjects == 0 {
		m.logger.Printf("no local data to migrate")
		return false, nil
	}

	claimed := 0
	err = m.local.Transaction(ctx, func(tx store.Store) error {
		for _, kind := range m.kinds {
			records, err := tx.Query(ctx, kind.Collection, store.Filter{})
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", kind.Collection, err)
			}
			if len(records) == 0 {
				continue
			}

			pending := store.StatusPending
			notDeleted := false
			updates := make([]store.BulkChange, len(records))
			for i, rec := range records {
				updates[i] = store.BulkChange{
					ID: rec.ID,
					Changes: store.Changes{
						UserID:  &userID,
						Status:  &pending,
						Deleted: &notDeleted,
					},
				}
			}

			if err := tx.BulkUpdate(ctx, kind.Collection, updates); err != nil {
				return fmt.Errorf("failed to claim %s: %w", kind.Collection, err)
			}
			claimed += len(records)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}

	m.logger.Printf("migrated %d records to user", claimed)
	return true, nil
}
