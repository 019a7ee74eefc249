package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no record matches the id.
var ErrNotFound = errors.New("record not found")

// Filter selects records by indexed envelope fields. Nil predicates match
// everything.
type Filter struct {
	Status  *Status
	UserID  *string
	Deleted *bool
}

// Changes is a partial update of a record's envelope and payload. Nil
// fields are left untouched; Fields entries are merged into the existing
// payload.
type Changes struct {
	UserID       *string
	Status       *Status
	Deleted      *bool
	LastSyncedAt *time.Time
	Fields       map[string]any
}

// BulkChange pairs a record id with the changes to apply to it.
type BulkChange struct {
	ID      string
	Changes Changes
}

// Store is the local record store consumed by the sync engine.
//
// Implementations must provide atomic multi-collection transactions:
// everything done through the Store passed to a Transaction callback
// commits or rolls back as one unit, across all collections.
type Store interface {
	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)

	// Query returns all records in the collection matching the filter.
	Query(ctx context.Context, collection string, f Filter) ([]Record, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, collection string, f Filter) (int, error)

	// Update applies partial changes to a single record. A local mutation
	// through Update marks nothing on its own; callers wanting the record
	// re-pushed set Status back to StatusPending in the same change.
	// Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, collection, id string, ch Changes) error

	// BulkPut inserts or wholly overwrites records by id.
	BulkPut(ctx context.Context, collection string, records []Record) error

	// BulkUpdate applies partial changes to many records. It fails (and
	// rolls back inside a transaction) if any target record is missing.
	BulkUpdate(ctx context.Context, collection string, updates []BulkChange) error

	// Transaction runs fn against a transactional view of the store.
	// If fn returns an error the whole transaction is rolled back and the
	// error is returned.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
