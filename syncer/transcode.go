package syncer

import (
	"time"

	"storysync/remote"
	"storysync/store"
)

// Envelope columns shared by every remote table. sync status is local
// bookkeeping and never leaves the local store.
const (
	colID           = "id"
	colUserID       = "user_id"
	colDeleted      = "deleted"
	colCreatedAt    = "created_at"
	colUpdatedAt    = "updated_at"
	colLastSyncedAt = "last_synced_at"
)

// ToRemote converts a local record to a remote row: the owner column is
// injected (overwriting any local value), registered foreign-key fields
// are renamed per the kind's field map, timestamps are formatted RFC3339,
// and syncedAt is attached as last_synced_at. The input record is not
// modified; unregistered payload fields pass through unchanged.
func ToRemote(rec store.Record, userID string, syncedAt time.Time, kind Kind) remote.Row {
	row := remote.Row{
		colID:           rec.ID,
		colUserID:       userID,
		colDeleted:      rec.Deleted,
		colCreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		colUpdatedAt:    rec.UpdatedAt.UTC().Format(time.RFC3339),
		colLastSyncedAt: syncedAt.UTC().Format(time.RFC3339),
	}

	for field, value := range rec.Fields {
		if remoteName, ok := kind.FieldMap[field]; ok {
			row[remoteName] = value
		} else {
			row[field] = value
		}
	}

	return row
}

// FromRemote converts remote rows back to local records: envelope columns
// are lifted into the record, timestamp strings are parsed, registered
// foreign-key columns are renamed back to their local names, and sync
// status is forced to synced (a pulled record matches the remote by
// definition). The input rows are not modified.
func FromRemote(rows []remote.Row, kind Kind) []store.Record {
	localName := make(map[string]string, len(kind.FieldMap))
	for local, remoteCol := range kind.FieldMap {
		localName[remoteCol] = local
	}

	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		rec := store.Record{
			Status: store.StatusSynced,
			Fields: make(map[string]any),
		}

		for col, value := range row {
			switch col {
			case colID:
				rec.ID, _ = value.(string)
			case colUserID:
				rec.UserID, _ = value.(string)
			case colDeleted:
				rec.Deleted, _ = value.(bool)
			case colCreatedAt:
				rec.CreatedAt = parseTimestamp(value)
			case colUpdatedAt:
				rec.UpdatedAt = parseTimestamp(value)
			case colLastSyncedAt:
				rec.LastSyncedAt = parseTimestamp(value)
			default:
				if local, ok := localName[col]; ok {
					rec.Fields[local] = value
				} else {
					rec.Fields[col] = value
				}
			}
		}

		records = append(records, rec)
	}

	return records
}

// parseTimestamp parses an RFC3339 timestamp column. Absent or malformed
// values become the zero time rather than failing the pull.
func parseTimestamp(value any) time.Time {
	s, ok := value.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
