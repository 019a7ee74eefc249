package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storysync/remote"
)

func TestSelect_BuildsQueryAndHeaders(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotHeaders = r.Header
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","user_id":"alice","title":"Draft"}]`))
	}))
	defer server.Close()

	client := New(server.URL, "anon-key", "user-token")
	rows, err := client.Select(context.Background(), "projects", remote.Query{UserID: "alice"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if gotPath != "/projects" {
		t.Errorf("path = %q, want %q", gotPath, "/projects")
	}
	if got := gotQuery["select"]; len(got) != 1 || got[0] != "*" {
		t.Errorf("select param = %v, want [*]", got)
	}
	if got := gotQuery["user_id"]; len(got) != 1 || got[0] != "eq.alice" {
		t.Errorf("user_id param = %v, want [eq.alice]", got)
	}
	if got := gotQuery["deleted"]; len(got) != 1 || got[0] != "is.false" {
		t.Errorf("deleted param = %v, want [is.false]", got)
	}
	if _, ok := gotQuery["limit"]; ok {
		t.Error("limit param present, want absent when Limit is 0")
	}

	if got := gotHeaders.Get("apikey"); got != "anon-key" {
		t.Errorf("apikey header = %q, want %q", got, "anon-key")
	}
	if got := gotHeaders.Get("Authorization"); got != "Bearer user-token" {
		t.Errorf("Authorization header = %q, want bearer token", got)
	}

	if len(rows) != 1 {
		t.Fatalf("Select() returned %d rows, want 1", len(rows))
	}
	if rows[0]["id"] != "p1" {
		t.Errorf("rows[0][id] = %v, want %q", rows[0]["id"], "p1")
	}
}

func TestSelect_IncludeDeletedAndLimit(t *testing.T) {
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL, "anon-key", "user-token")
	_, err := client.Select(context.Background(), "projects", remote.Query{
		UserID:         "alice",
		IncludeDeleted: true,
		Limit:          1,
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if _, ok := gotQuery["deleted"]; ok {
		t.Error("deleted param present, want absent when IncludeDeleted is set")
	}
	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("limit param = %v, want [1]", got)
	}
}

func TestSelect_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer server.Close()

	client := New(server.URL, "anon-key", "stale-token")
	_, err := client.Select(context.Background(), "projects", remote.Query{UserID: "alice"})
	if err == nil {
		t.Fatal("Select() error = nil, want unauthorized error")
	}

	var remoteErr *remote.Error
	if !errors.As(err, &remoteErr) {
		t.Fatalf("Select() error type = %T, want *remote.Error", err)
	}
	if !remoteErr.IsUnauthorized() {
		t.Errorf("IsUnauthorized() = false, StatusCode = %d", remoteErr.StatusCode)
	}
	if remoteErr.Table != "projects" {
		t.Errorf("Table = %q, want %q", remoteErr.Table, "projects")
	}
	if remoteErr.Body == "" {
		t.Error("Body is empty, want response body captured")
	}
}

func TestUpsert_SendsRowsWithMergePreference(t *testing.T) {
	var gotPrefer string
	var gotContentType string
	var gotBody []remote.Row

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, "anon-key", "user-token")
	rows := []remote.Row{
		{"id": "p1", "user_id": "alice", "title": "Draft"},
		{"id": "p2", "user_id": "alice", "title": "Outline"},
	}
	if err := client.Upsert(context.Background(), "projects", rows); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if gotPrefer != "resolution=merge-duplicates,return=minimal" {
		t.Errorf("Prefer header = %q, want merge-duplicates", gotPrefer)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if len(gotBody) != 2 {
		t.Fatalf("request body had %d rows, want 2", len(gotBody))
	}
	if gotBody[1]["id"] != "p2" {
		t.Errorf("body[1][id] = %v, want %q", gotBody[1]["id"], "p2")
	}
}

func TestUpsert_EmptyBatchSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := New(server.URL, "anon-key", "user-token")
	if err := client.Upsert(context.Background(), "projects", nil); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if called {
		t.Error("Upsert() with no rows hit the network, want no request")
	}
}

func TestUpsert_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "anon-key", "user-token")
	err := client.Upsert(context.Background(), "projects", []remote.Row{{"id": "p1"}})

	var remoteErr *remote.Error
	if !errors.As(err, &remoteErr) {
		t.Fatalf("Upsert() error type = %T, want *remote.Error", err)
	}
	if !remoteErr.IsServerError() {
		t.Errorf("IsServerError() = false, StatusCode = %d", remoteErr.StatusCode)
	}
}

func TestSelect_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(server.URL, "anon-key", "user-token")
	if _, err := client.Select(ctx, "projects", remote.Query{UserID: "alice"}); err == nil {
		t.Fatal("Select() error = nil, want context error")
	}
}
