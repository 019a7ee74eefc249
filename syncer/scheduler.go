package syncer

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// Trigger identifies what caused a sync attempt.
type Trigger string

const (
	// TriggerInterval is the periodic timer.
	TriggerInterval Trigger = "interval"
	// TriggerFocus is a window-focus or visibility event.
	TriggerFocus Trigger = "focus"
	// TriggerOnline is a connectivity-restored event.
	TriggerOnline Trigger = "online"
	// TriggerManual is an explicit user action.
	TriggerManual Trigger = "manual"
)

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	// Interval is how often the periodic sync fires.
	Interval time.Duration

	// Logger for scheduler activity
	Logger *log.Logger
}

// DefaultSchedulerConfig returns sensible defaults.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval: 30 * time.Second,
		Logger:   log.New(os.Stderr, "[scheduler] ", log.LstdFlags),
	}
}

// Scheduler owns the triggering contract: a periodic timer, externally
// notified events (focus, connectivity, user action), and the best-effort
// teardown push. Overlapping triggers are not suppressed — each starts an
// independent attempt that succeeds or fails on its own, which is safe
// because the engine's operations are idempotent.
type Scheduler struct {
	runner Runner
	userID string
	config *SchedulerConfig

	mu      sync.Mutex
	runCtx  context.Context
	lastErr error

	wg sync.WaitGroup
}

// NewScheduler creates a scheduler driving the runner for one user
// session. If config is nil, defaults are used.
func NewScheduler(runner Runner, userID string, config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[scheduler] ", log.LstdFlags)
	}
	return &Scheduler{
		runner: runner,
		userID: userID,
		config: config,
		runCtx: context.Background(),
	}
}

// Bootstrap runs the first-login sequence: attempt migration, then push the
// newly claimed records, or — when migration did not occur — run a normal
// full sync so a returning user's remote data reaches the local store.
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	migrated, err := s.runner.Migrate(ctx, s.userID)
	if err != nil {
		s.setLastError(err)
		return err
	}

	if migrated {
		s.config.Logger.Printf("migration complete, pushing claimed records")
		err = s.runner.PushAll(ctx, s.userID)
	} else {
		err = s.runner.FullSync(ctx, s.userID)
	}
	s.setLastError(err)
	return err
}

// Run fires a full sync every interval until ctx is cancelled. It blocks;
// cancellation waits for in-flight attempts before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	s.config.Logger.Printf("periodic sync every %s", s.config.Interval)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.launch(ctx, TriggerInterval)
		}
	}
}

// Notify starts a sync attempt for an external trigger. It returns
// immediately; the attempt runs in the background and its outcome lands in
// LastError.
func (s *Scheduler) Notify(trigger Trigger) {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()

	s.launch(ctx, trigger)
}

func (s *Scheduler) launch(ctx context.Context, trigger Trigger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.syncOnce(ctx, trigger)
	}()
}

func (s *Scheduler) syncOnce(ctx context.Context, trigger Trigger) {
	err := s.runner.FullSync(ctx, s.userID)
	s.setLastError(err)
	if err != nil {
		s.config.Logger.Printf("sync (%s) failed: %v", trigger, err)
		return
	}
	s.config.Logger.Printf("sync (%s) complete", trigger)
}

// Flush issues a best-effort push on teardown, bounded by timeout. No
// error is returned: after teardown there is no user-visible recovery, so
// a failure is only logged.
func (s *Scheduler) Flush(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.runner.PushAll(ctx, s.userID); err != nil {
		s.config.Logger.Printf("teardown push failed: %v", err)
	}
}

// LastError returns the outcome of the most recent attempt (nil after a
// success). Surfaced as a status indicator by the UI layer.
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Scheduler) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
