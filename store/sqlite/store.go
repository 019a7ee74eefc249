// Package sqlite implements store.Store on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
//
// The database runs in WAL mode so status reads (pending counts) stay cheap
// while a push or pull is writing. One database file holds every collection,
// which makes the multi-collection transactions required by pull and
// migration a single SQLite transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"storysync/store"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite-backed record store. The zero value is not usable;
// use Open.
type Store struct {
	db *sql.DB // nil when this view wraps a transaction
	q  querier
}

var _ store.Store = (*Store)(nil)

// Open creates (or opens) the database at path and ensures the schema
// exists. The caller must Close the store when done.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL keeps readers unblocked during push/pull writes. The busy
	// timeout covers overlapping sync triggers hitting the same file.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, q: db}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range AllTableSchemas() {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	_, err := s.q.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)",
		SchemaVersion, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

const recordColumns = "id, user_id, sync_status, deleted, created_at, updated_at, last_synced_at, fields"

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Record, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE collection = ? AND id = ?",
		collection, id)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to get record %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// Query implements store.Store.
func (s *Store) Query(ctx context.Context, collection string, f store.Filter) ([]store.Record, error) {
	where, args := buildFilter(collection, f)

	rows, err := s.q.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}
	return records, nil
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context, collection string, f store.Filter) (int, error) {
	where, args := buildFilter(collection, f)

	var count int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return count, nil
}

// Update implements store.Store. Payload fields are merged via json_patch,
// so the whole update is a single statement.
func (s *Store) Update(ctx context.Context, collection, id string, ch store.Changes) error {
	set, args := buildChanges(ch)
	if len(set) == 0 {
		return nil
	}

	args = append(args, collection, id)
	res, err := s.q.ExecContext(ctx,
		"UPDATE records SET "+strings.Join(set, ", ")+" WHERE collection = ? AND id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update record %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// BulkPut implements store.Store. Existing records are overwritten whole,
// envelope and payload both (last-writer-wins at record granularity).
func (s *Store) BulkPut(ctx context.Context, collection string, records []store.Record) error {
	return s.inTx(ctx, func(q querier) error {
		const query = `
		INSERT INTO records (collection, id, user_id, sync_status, deleted, created_at, updated_at, last_synced_at, fields)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			user_id = excluded.user_id,
			sync_status = excluded.sync_status,
			deleted = excluded.deleted,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			last_synced_at = excluded.last_synced_at,
			fields = excluded.fields
		`

		for _, rec := range records {
			fieldsJSON, err := json.Marshal(rec.Fields)
			if err != nil {
				return fmt.Errorf("failed to marshal fields for %s: %w", rec.ID, err)
			}

			_, err = q.ExecContext(ctx, query,
				collection,
				rec.ID,
				rec.UserID,
				string(rec.Status),
				boolToInt(rec.Deleted),
				rec.CreatedAt.Unix(),
				rec.UpdatedAt.Unix(),
				timeToNullInt64(rec.LastSyncedAt),
				string(fieldsJSON),
			)
			if err != nil {
				return fmt.Errorf("failed to put record %s/%s: %w", collection, rec.ID, err)
			}
		}
		return nil
	})
}

// BulkUpdate implements store.Store. A missing target record fails the
// whole batch.
func (s *Store) BulkUpdate(ctx context.Context, collection string, updates []store.BulkChange) error {
	return s.inTx(ctx, func(q querier) error {
		for _, u := range updates {
			set, args := buildChanges(u.Changes)
			if len(set) == 0 {
				continue
			}

			args = append(args, collection, u.ID)
			res, err := q.ExecContext(ctx,
				"UPDATE records SET "+strings.Join(set, ", ")+" WHERE collection = ? AND id = ?", args...)
			if err != nil {
				return fmt.Errorf("failed to update record %s/%s: %w", collection, u.ID, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("update target %s/%s: %w", collection, u.ID, store.ErrNotFound)
			}
		}
		return nil
	})
}

// Transaction implements store.Store. Nested calls reuse the enclosing
// transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Store{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// inTx runs fn inside the current transaction if there is one, otherwise in
// a fresh transaction, so bulk writes are atomic either way.
func (s *Store) inTx(ctx context.Context, fn func(q querier) error) error {
	if s.db == nil {
		return fn(s.q)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// buildFilter turns a store.Filter into a WHERE clause and its arguments.
func buildFilter(collection string, f store.Filter) (string, []any) {
	conditions := []string{"collection = ?"}
	args := []any{collection}

	if f.Status != nil {
		conditions = append(conditions, "sync_status = ?")
		args = append(args, string(*f.Status))
	}
	if f.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Deleted != nil {
		conditions = append(conditions, "deleted = ?")
		args = append(args, boolToInt(*f.Deleted))
	}

	return strings.Join(conditions, " AND "), args
}

// buildChanges turns store.Changes into SET fragments and arguments.
func buildChanges(ch store.Changes) ([]string, []any) {
	var set []string
	var args []any

	if ch.UserID != nil {
		set = append(set, "user_id = ?")
		args = append(args, *ch.UserID)
	}
	if ch.Status != nil {
		set = append(set, "sync_status = ?")
		args = append(args, string(*ch.Status))
	}
	if ch.Deleted != nil {
		set = append(set, "deleted = ?")
		args = append(args, boolToInt(*ch.Deleted))
	}
	if ch.LastSyncedAt != nil {
		set = append(set, "last_synced_at = ?")
		args = append(args, ch.LastSyncedAt.Unix())
	}
	if len(ch.Fields) > 0 {
		patch, err := json.Marshal(ch.Fields)
		if err == nil {
			set = append(set, "fields = json_patch(fields, ?)")
			args = append(args, string(patch))
		}
	}

	return set, args
}

// scanRecord reads a record from a row scanner in recordColumns order.
func scanRecord(scan func(dest ...any) error) (store.Record, error) {
	var rec store.Record
	var status string
	var deleted int
	var createdAt, updatedAt int64
	var lastSyncedAt sql.NullInt64
	var fieldsJSON string

	err := scan(&rec.ID, &rec.UserID, &status, &deleted, &createdAt, &updatedAt, &lastSyncedAt, &fieldsJSON)
	if err != nil {
		return store.Record{}, err
	}

	rec.Status = store.Status(status)
	rec.Deleted = deleted != 0
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	if lastSyncedAt.Valid {
		rec.LastSyncedAt = time.Unix(lastSyncedAt.Int64, 0)
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return store.Record{}, fmt.Errorf("failed to unmarshal fields: %w", err)
	}

	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeToNullInt64(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
