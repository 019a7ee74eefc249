// Package store defines the record model shared by every synchronizable
// collection and the contract the local record store must satisfy.
//
// storysync keeps twelve entity collections (projects, characters, scenes,
// canvas elements, connections, plot holes, conversations, manuscripts,
// chapters, writing sessions, story seeds, custom card types) in a single
// local transactional store. Each record carries a common envelope used by
// the sync engine plus an opaque payload owned by the entity's business
// logic.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks whether a record's local value has reached the remote
// authority.
type Status string

const (
	// StatusPending means the local copy is newer than (or never reached)
	// the remote authority.
	StatusPending Status = "pending"

	// StatusSynced means local and remote are known equal as of the last
	// successful push or pull.
	StatusSynced Status = "synced"
)

// Record is a single synchronizable record of any entity kind.
//
// The envelope fields are owned by the sync engine (except CreatedAt and
// UpdatedAt, which belong to business logic and are only transcoded).
// Fields holds the kind-specific payload in local (camelCase) naming.
type Record struct {
	// ID is globally unique within the record's collection, assigned at
	// creation and immutable.
	ID string

	// UserID is the owning identity. Empty before authentication and
	// migration; set permanently once migrated.
	UserID string

	// Status is the record's sync status.
	Status Status

	// Deleted is the soft-delete flag. Deleted records are excluded from
	// pull results but never physically purged by the sync engine.
	Deleted bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// LastSyncedAt is set by the engine on successful push of this record.
	// Zero means the record has never been pushed.
	LastSyncedAt time.Time

	// Fields is the kind-specific payload.
	Fields map[string]any
}

// NewRecord creates an unowned pending record with a fresh id and
// timestamps. The fields map is taken as-is (not copied).
func NewRecord(fields map[string]any) Record {
	now := time.Now()
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Fields:    fields,
	}
}

// Clone returns a copy of the record with its own payload map, so callers
// can mutate the copy without touching the original.
func (r Record) Clone() Record {
	out := r
	out.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}
