package syncer

import (
	"context"
	"fmt"
	"testing"

	"storysync/remote"
	"storysync/store"
)

func TestMigrate_ClaimsAllLocalRecords(t *testing.T) {
	local := openTestStore(t)
	authority := newFakeAuthority()
	migrator := NewMigrator(local, authority, quietLogger())
	ctx := context.Background()

	// Anonymous records across several kinds.
	seedPending(t, local, "projects", "p1", "", map[string]any{"title": "Draft"})
	seedPending(t, local, "characters", "c1", "", nil)
	seedPending(t, local, "scenes", "s1", "", nil)

	migrated, err := migrator.Migrate(ctx, "alice")
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !migrated {
		t.Fatal("Migrate() = false, want true")
	}

	for _, probe := range []struct{ collection, id string }{
		{"projects", "p1"},
		{"characters", "c1"},
		{"scenes", "s1"},
	} {
		rec, err := local.Get(ctx, probe.collection, probe.id)
		if err != nil {
			t.Fatalf("Get(%s/%s) error = %v", probe.collection, probe.id, err)
		}
		if rec.UserID != "alice" {
			t.Errorf("%s/%s UserID = %q, want %q", probe.collection, probe.id, rec.UserID, "alice")
		}
		if rec.Status != store.StatusPending {
			t.Errorf("%s/%s Status = %q, want pending for upload", probe.collection, probe.id, rec.Status)
		}
	}
}

func TestMigrate_ProbesPrimaryTableIncludingDeleted(t *testing.T) {
	local := openTestStore(t)
	authority := newFakeAuthority()
	migrator := NewMigrator(local, authority, quietLogger())

	seedPending(t, local, "projects", "p1", "", nil)

	if _, err := migrator.Migrate(context.Background(), "alice"); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	q, ok := authority.lastQueries["projects"]
	if !ok {
		t.Fatal("no provisioning probe against projects table")
	}
	if !q.IncludeDeleted {
		t.Error("probe IncludeDeleted = false, want true: a deleted remote row still means the user was provisioned")
	}
	if q.Limit != 1 {
		t.Errorf("probe Limit = %d, want 1", q.Limit)
	}
}

func TestMigrate_SkipsWhenRemoteHasData(t *testing.T) {
	local := openTestStore(t)
	authority := newFakeAuthority()
	migrator := NewMigrator(local, authority, quietLogger())
	ctx := context.Background()

	seedPending(t, local, "projects", "p1", "", nil)
	authority.seed("projects", remote.Row{
		"id": "remote-p", "user_id": "alice", "deleted": true,
	})

	migrated, err := migrator.Migrate(ctx, "alice")
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if migrated {
		t.Fatal("Migrate() = true, want skip: user already has remote data")
	}

	// Local records stay unclaimed.
	rec, _ := local.Get(ctx, "projects", "p1")
	if rec.UserID != "" {
		t.Errorf("UserID = %q, want still anonymous", rec.UserID)
	}
}

func TestMigrate_SkipsWhenNothingLocal(t *testing.T) {
	local := openTestStore(t)
	authority := newFakeAuthority()
	migrator := NewMigrator(local, authority, quietLogger())

	migrated, err := migrator.Migrate(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if migrated {
		t.Error("Migrate() = true with empty store, want false")
	}
}

func TestMigrate_RunsAtMostOnce(t *testing.T) {
	local := openTestStore(t)
	authority := newFakeAuthority()
	service := NewService(local, authority, quietLogger())
	ctx := context.Background()

	seedPending(t, local, "projects", "p1", "", nil)

	migrated, err := service.Migrate(ctx, "alice")
	if err != nil || !migrated {
		t.Fatalf("first Migrate() = %v, %v; want true, nil", migrated, err)
	}
	if err := service.PushAll(ctx, "alice"); err != nil {
		t.Fatalf("PushAll() error = %v", err)
	}

	// The push provisioned the remote; a repeat login must not migrate.
	migrated, err = service.Migrate(ctx, "alice")
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if migrated {
		t.Error("second Migrate() = true, want false after remote is provisioned")
	}
}

func TestMigrate_ProbeFailureSurfaces(t *testing.T) {
	local := openTestStore(t)
	authority := newFakeAuthority()
	authority.failSelect["projects"] = fmt.Errorf("network down")
	migrator := NewMigrator(local, authority, quietLogger())
	ctx := context.Background()

	seedPending(t, local, "projects", "p1", "", nil)

	migrated, err := migrator.Migrate(ctx, "alice")
	if err == nil {
		t.Fatal("Migrate() error = nil, want probe failure surfaced")
	}
	if migrated {
		t.Error("Migrate() = true despite probe failure")
	}

	// Nothing claimed; a later retry still sees anonymous records.
	rec, _ := local.Get(ctx, "projects", "p1")
	if rec.UserID != "" {
		t.Errorf("UserID = %q, want still anonymous after failed probe", rec.UserID)
	}
}
