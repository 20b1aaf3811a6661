package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupScheduler_RunsImmediatelyOnStart(t *testing.T) {
	var calls int32
	s := NewCleanupScheduler(func(ctx context.Context, cutoff time.Time) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 3, nil
	}, time.Hour, 60)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	defer func() {
		cancel()
		s.Stop()
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestCleanupScheduler_TriggerImmediateReturnsRemovedCount(t *testing.T) {
	s := NewCleanupScheduler(func(ctx context.Context, cutoff time.Time) (int, error) {
		return 7, nil
	}, time.Hour, 60)

	removed, err := s.TriggerImmediate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, removed)

	lastRun, running, healthy := s.GetStatus()
	assert.False(t, lastRun.IsZero())
	assert.False(t, running)
	assert.True(t, healthy)
}

func TestCleanupScheduler_TriggerDebouncedCollapsesBurst(t *testing.T) {
	var calls int32
	s := NewCleanupScheduler(func(ctx context.Context, cutoff time.Time) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, nil
	}, time.Hour, 60)
	s.debounceDuration = 20 * time.Millisecond

	for i := 0; i < 5; i++ {
		s.TriggerDebounced()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCleanupScheduler_SkipsConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	s := NewCleanupScheduler(func(ctx context.Context, cutoff time.Time) (int, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return 0, nil
	}, time.Hour, 60)

	go func() { _, _ = s.TriggerImmediate(context.Background()) }()
	<-started

	removed, err := s.TriggerImmediate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	close(release)
}
