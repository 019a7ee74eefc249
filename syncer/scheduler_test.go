package syncer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeRunner records calls and returns scripted results.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string

	migrateResult bool
	migrateErr    error
	pushErr       error
	fullSyncErr   error
}

func (f *fakeRunner) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRunner) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeRunner) Migrate(ctx context.Context, userID string) (bool, error) {
	f.record("migrate")
	return f.migrateResult, f.migrateErr
}

func (f *fakeRunner) PushAll(ctx context.Context, userID string) error {
	f.record("push")
	return f.pushErr
}

func (f *fakeRunner) PullAll(ctx context.Context, userID string) error {
	f.record("pull")
	return nil
}

func (f *fakeRunner) FullSync(ctx context.Context, userID string) error {
	f.record("fullsync")
	return f.fullSyncErr
}

func (f *fakeRunner) CountPending(ctx context.Context, userID string) (int, error) {
	f.record("count")
	return 0, nil
}

func testSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval: 10 * time.Millisecond,
		Logger:   quietLogger(),
	}
}

func TestBootstrap_MigrationThenPush(t *testing.T) {
	runner := &fakeRunner{migrateResult: true}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	want := []string{"migrate", "push"}
	got := runner.callLog()
	if len(got) != len(want) {
		t.Fatalf("call log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBootstrap_NoMigrationRunsFullSync(t *testing.T) {
	runner := &fakeRunner{migrateResult: false}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	got := runner.callLog()
	if len(got) != 2 || got[0] != "migrate" || got[1] != "fullsync" {
		t.Errorf("call log = %v, want [migrate fullsync]", got)
	}
}

func TestBootstrap_MigrationErrorStopsSequence(t *testing.T) {
	runner := &fakeRunner{migrateErr: fmt.Errorf("probe failed")}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	if err := s.Bootstrap(context.Background()); err == nil {
		t.Fatal("Bootstrap() error = nil, want migration error")
	}

	got := runner.callLog()
	if len(got) != 1 || got[0] != "migrate" {
		t.Errorf("call log = %v, want migration only", got)
	}
	if s.LastError() == nil {
		t.Error("LastError() = nil, want migration error recorded")
	}
}

func TestRun_FiresOnInterval(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if len(runner.callLog()) >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for interval syncs")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	for _, call := range runner.callLog() {
		if call != "fullsync" {
			t.Errorf("unexpected call %q, interval trigger should run full syncs", call)
		}
	}
}

func TestNotify_RunsIndependentAttempt(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	s.Notify(TriggerFocus)
	s.Notify(TriggerOnline)
	s.wg.Wait()

	got := runner.callLog()
	if len(got) != 2 {
		t.Fatalf("call log = %v, want 2 attempts (overlap never suppressed)", got)
	}
}

func TestNotify_FailureLandsInLastError(t *testing.T) {
	runner := &fakeRunner{fullSyncErr: fmt.Errorf("offline")}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	s.Notify(TriggerManual)
	s.wg.Wait()

	if s.LastError() == nil {
		t.Error("LastError() = nil, want sync failure recorded")
	}

	// A later success clears it.
	runner.fullSyncErr = nil
	s.Notify(TriggerManual)
	s.wg.Wait()

	if err := s.LastError(); err != nil {
		t.Errorf("LastError() = %v after success, want nil", err)
	}
}

func TestFlush_PushesWithoutReturningError(t *testing.T) {
	runner := &fakeRunner{pushErr: fmt.Errorf("unreachable")}
	s := NewScheduler(runner, "alice", testSchedulerConfig())

	// Flush swallows the failure: records stay pending for the next run.
	s.Flush(100 * time.Millisecond)

	got := runner.callLog()
	if len(got) != 1 || got[0] != "push" {
		t.Errorf("call log = %v, want a single push", got)
	}
}
