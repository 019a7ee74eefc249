// Package remote defines the contract for the remote authority: the
// multi-tenant relational store that holds each user's synced records.
//
// Tables are scoped by a user_id owner column and a deleted soft-delete
// column. Rows travel as loosely-typed maps because the twelve entity
// tables share an envelope but differ in payload; the syncer's transcoder
// owns the mapping between rows and local records.
package remote

import "context"

// Row is a single remote table row in remote (snake_case) field naming.
type Row = map[string]any

// Query filters a Select. UserID is required; the remote store scopes
// every read by owner.
type Query struct {
	// UserID selects rows owned by this identity.
	UserID string

	// IncludeDeleted includes soft-deleted rows. Pull leaves this false;
	// the migration provisioning probe sets it, since any row at all means
	// the user has remote state.
	IncludeDeleted bool

	// Limit restricts the number of rows returned (0 = no limit).
	Limit int
}

// Authority is the remote store consumed by the sync engine and the
// migration coordinator. Implementations must provide upsert-by-id
// semantics: re-sending an unchanged row must not create duplicates or
// change observable state.
type Authority interface {
	// Select returns the rows in table matching the query.
	Select(ctx context.Context, table string, q Query) ([]Row, error)

	// Upsert inserts or updates rows by primary key. Per-row upsert is
	// atomic; the batch as a whole is not guaranteed atomic.
	Upsert(ctx context.Context, table string, rows []Row) error
}
