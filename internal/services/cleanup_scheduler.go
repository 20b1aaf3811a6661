package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PruneFunc removes anything older than cutoff from a retention-bounded
// store and reports how many entries were removed.
type PruneFunc func(ctx context.Context, cutoff time.Time) (removed int, err error)

// CleanupScheduler manages periodic retention pruning of completed
// timetable runs held by the in-memory store, with hybrid execution:
// scheduled interval sweeps plus on-demand debounced triggers fired after
// a burst of deletes.
type CleanupScheduler struct {
	prune            PruneFunc
	retention        time.Duration
	interval         time.Duration
	lastRun          time.Time
	running          bool
	mu               sync.RWMutex
	debounceTimer    *time.Timer
	debounceDuration time.Duration
	stopChan         chan struct{}
	wg               sync.WaitGroup
}

// NewCleanupScheduler creates a scheduler that prunes entries older than
// retention, sweeping every intervalMinutes.
func NewCleanupScheduler(prune PruneFunc, retention time.Duration, intervalMinutes int) *CleanupScheduler {
	return &CleanupScheduler{
		prune:            prune,
		retention:        retention,
		interval:         time.Duration(intervalMinutes) * time.Minute,
		debounceDuration: 5 * time.Second,
		stopChan:         make(chan struct{}),
	}
}

// Start begins the background cleanup scheduler. Runs immediately on
// startup, then at the configured interval.
func (s *CleanupScheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)

	slog.Info("cleanup scheduler started",
		"interval_minutes", s.interval.Minutes(),
		"retention_hours", s.retention.Hours(),
		"debounce_seconds", s.debounceDuration.Seconds())
}

func (s *CleanupScheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	s.runCleanup(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup scheduler shutting down")
			return
		case <-s.stopChan:
			slog.Info("cleanup scheduler stopping")
			return
		case <-ticker.C:
			s.runCleanup(ctx)
		}
	}
}

// TriggerDebounced schedules a cleanup after the debounce window. Multiple
// rapid calls (e.g. a burst of timetable deletions) collapse into a
// single sweep.
func (s *CleanupScheduler) TriggerDebounced() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	s.debounceTimer = time.AfterFunc(s.debounceDuration, func() {
		s.runCleanup(context.Background())
		slog.Debug("debounced cleanup completed")
	})

	slog.Debug("debounced cleanup scheduled", "delay_seconds", s.debounceDuration.Seconds())
}

// TriggerImmediate runs a cleanup sweep synchronously and returns how many
// entries it removed. No HTTP endpoint calls it.
func (s *CleanupScheduler) TriggerImmediate(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("cleanup already running, skipping immediate trigger")
		return 0, nil
	}
	s.mu.Unlock()

	return s.runCleanupWithError(ctx)
}

func (s *CleanupScheduler) runCleanup(ctx context.Context) {
	_, _ = s.runCleanupWithError(ctx)
}

func (s *CleanupScheduler) runCleanupWithError(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Debug("cleanup already in progress, skipping")
		return 0, nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.lastRun = time.Now()
		s.mu.Unlock()
	}()

	start := time.Now()
	cutoff := time.Now().Add(-s.retention)

	removed, err := s.prune(ctx, cutoff)
	if err != nil {
		slog.Error("cleanup sweep failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return 0, err
	}

	slog.Info("cleanup sweep completed",
		"removed", removed,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds())

	return removed, nil
}

// GetStatus returns the current cleanup scheduler status. healthy is
// false if a sweep has run before but none has finished within the last
// two intervals; before the first sweep it is true.
func (s *CleanupScheduler) GetStatus() (lastRun time.Time, running bool, healthy bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	healthy = true
	if !s.lastRun.IsZero() && time.Since(s.lastRun) > s.interval*2 {
		healthy = false
	}

	return s.lastRun, s.running, healthy
}

// Stop gracefully shuts down the scheduler, waiting for any in-progress
// sweep to complete.
func (s *CleanupScheduler) Stop() {
	slog.Info("stopping cleanup scheduler...")

	close(s.stopChan)
	s.wg.Wait()

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	slog.Info("cleanup scheduler stopped")
}
