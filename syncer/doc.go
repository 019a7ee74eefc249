// Package syncer implements the synchronization engine: the protocol that
// pushes locally mutated records to the remote authority, pulls remote
// state down, and performs one-time ownership migration when anonymous
// local data is first attached to an authenticated identity.
//
// # Model
//
// Every record carries a sync status. A local mutation marks its record
// pending; push uploads all pending records owned by the user and marks
// exactly the uploaded batch synced; pull downloads every non-deleted
// remote record for the user and overwrites local copies unconditionally.
// Conflict resolution is last-writer-wins at whole-record granularity —
// there is no field-level merge.
//
// # Failure domains
//
// Push treats each entity kind independently: one kind's remote rejection
// does not stop the other kinds, but PushAll still reports failure so the
// caller knows synchronization is incomplete. Pull is all-or-nothing at
// the local transaction boundary: a failure leaves local data exactly as
// it was. No operation retries internally; errors surface to the caller
// and retries happen on the next natural trigger.
//
// # Concurrency
//
// Triggers can legitimately overlap (a focus event fires while a periodic
// sync is in flight). The engine is safe under concurrent invocation for
// the same user: overlapping pushes over already-synced records are
// idempotent no-ops, and pull/migration serialize on the local store's
// transaction. Re-entrancy guards, if stricter serialization is wanted,
// belong to the embedding caller.
package syncer
