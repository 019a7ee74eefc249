package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"storysync/remote"
	"storysync/store"
)

// Engine orchestrates push and pull across all entity kinds.
type Engine struct {
	local  store.Store
	remote remote.Authority
	kinds  []Kind
	logger *log.Logger
	now    func() time.Time
}

// NewEngine creates a sync engine over the given local store and remote
// authority. If logger is nil, a default logger writing to stderr is used.
func NewEngine(local store.Store, authority remote.Authority, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Engine{
		local:  local,
		remote: authority,
		kinds:  Kinds(),
		logger: logger,
		now:    time.Now,
	}
}

// PushAll uploads every pending record owned by userID, one entity kind at
// a time. Kinds with no pending records are skipped without a network
// call. A kind whose upsert fails keeps its records pending; the other
// kinds are still attempted, and the combined error is returned so the
// caller knows synchronization is incomplete.
func (e *Engine) PushAll(ctx context.Context, userID string) error {
	var errs []error
	for _, kind := range e.kinds {
		if err := e.pushKind(ctx, kind, userID); err != nil {
			e.logger.Printf("push %s failed: %v", kind.Collection, err)
			errs = append(errs, fmt.Errorf("push %s: %w", kind.Name, err))
		}
	}
	return errors.Join(errs...)
}

// pushKind pushes one entity kind's pending records. The batch is marked
// synced only after the remote upsert reports success.
func (e *Engine) pushKind(ctx context.Context, kind Kind, userID string) error {
	pending := store.StatusPending
	records, err := e.local.Query(ctx, kind.Collection, store.Filter{
		Status: &pending,
		UserID: &userID,
	})
	if err != nil {
		return fmt.Errorf("failed to query pending records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	syncedAt := e.now().UTC()
	rows := make([]remote.Row, len(records))
	for i, rec := range records {
		rows[i] = ToRemote(rec, userID, syncedAt, kind)
	}

	if err := e.remote.Upsert(ctx, kind.Table, rows); err != nil {
		return err
	}

	synced := store.StatusSynced
	updates := make([]store.BulkChange, len(records))
	for i, rec := range records {
		updates[i] = store.BulkChange{
			ID: rec.ID,
			Changes: store.Changes{
				Status:       &synced,
				LastSyncedAt: &syncedAt,
			},
		}
	}
	if err := e.local.BulkUpdate(ctx, kind.Collection, updates); err != nil {
		return fmt.Errorf("failed to mark records synced: %w", err)
	}

	e.logger.Printf("pushed %d %s records", len(records), kind.Name)
	return nil
}

// PullAll downloads every non-deleted remote record owned by userID and
// overwrites the local copies. All remote reads happen first; the local
// writes for all twelve collections then commit in a single transaction,
// so a failure leaves local data untouched and the fetched rows are
// discarded.
func (e *Engine) PullAll(ctx context.Context, userID string) error {
	fetched := make(map[string][]store.Record, len(e.kinds))
	total := 0

	for _, kind := range e.kinds {
		rows, err := e.remote.Select(ctx, kind.Table, remote.Query{UserID: userID})
		if err != nil {
			return fmt.Errorf("pull %s: %w", kind.Name, err)
		}
		fetched[kind.Collection] = FromRemote(rows, kind)
		total += len(rows)
	}

	err := e.local.Transaction(ctx, func(tx store.Store) error {
		for _, kind := range e.kinds {
			records := fetched[kind.Collection]
			if len(records) == 0 {
				continue
			}
			if err := tx.BulkPut(ctx, kind.Collection, records); err != nil {
				return fmt.Errorf("apply %s: %w", kind.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pull transaction failed: %w", err)
	}

	e.logger.Printf("pulled %d records", total)
	return nil
}

// FullSync runs PushAll to completion, then PullAll. If the push fails the
// pull is not attempted: pending local changes must never be clobbered by
// a pull that races ahead of an unflushed push.
func (e *Engine) FullSync(ctx context.Context, userID string) error {
	if err := e.PushAll(ctx, userID); err != nil {
		return err
	}
	return e.PullAll(ctx, userID)
}

// CountPending sums the pending records owned by userID across all entity
// kinds. Read-only and safe to call concurrently with push/pull.
func (e *Engine) CountPending(ctx context.Context, userID string) (int, error) {
	pending := store.StatusPending
	total := 0
	for _, kind := range e.kinds {
		n, err := e.local.Count(ctx, kind.Collection, store.Filter{
			Status: &pending,
			UserID: &userID,
		})
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", kind.Name, err)
		}
		total += n
	}
	return total, nil
}

// PendingByKind returns the pending count per entity kind, keyed by
// collection name. Used by the status display.
func (e *Engine) PendingByKind(ctx context.Context, userID string) (map[string]int, error) {
	pending := store.StatusPending
	counts := make(map[string]int, len(e.kinds))
	for _, kind := range e.kinds {
		n, err := e.local.Count(ctx, kind.Collection, store.Filter{
			Status: &pending,
			UserID: &userID,
		})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", kind.Name, err)
		}
		counts[kind.Collection] = n
	}
	return counts, nil
}
