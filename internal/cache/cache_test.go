package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ska-sa/obssched/internal/proposal"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := New("redis://" + mr.Addr())
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func testHorizon(t *testing.T) proposal.Horizon {
	t.Helper()
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return h
}

func TestNew_NilCacheWhenURLEmpty(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNilCache_MethodsAreNoOps(t *testing.T) {
	var c *Cache
	assert.Nil(t, c.Client())
	assert.NoError(t, c.Close())

	entry, err := c.GetRun(context.Background(), "anyhash")
	assert.NoError(t, err)
	assert.Nil(t, entry)

	assert.NoError(t, c.SetRun(context.Background(), "anyhash", RunEntry{}))
	assert.NoError(t, c.InvalidateRun(context.Background(), "anyhash"))
	assert.NoError(t, c.FlushAllRuns(context.Background()))
}

func TestGetRun_MissReturnsNil(t *testing.T) {
	c := newTestCache(t)
	defer c.Close()

	entry, err := c.GetRun(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSetRun_ThenGetRunRoundTrips(t *testing.T) {
	c := newTestCache(t)
	defer c.Close()

	entry := RunEntry{
		ScheduleJSON: []byte(`[{"proposal_id":1}]`),
		History:      []float64{0.1, 0.5, 0.92},
	}
	err := c.SetRun(context.Background(), "abc123", entry)
	require.NoError(t, err)

	got, err := c.GetRun(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.History, got.History)
	assert.JSONEq(t, string(entry.ScheduleJSON), string(got.ScheduleJSON))
	assert.False(t, got.CachedAt.IsZero())
}

func TestInvalidateRun_RemovesEntry(t *testing.T) {
	c := newTestCache(t)
	defer c.Close()

	require.NoError(t, c.SetRun(context.Background(), "hash", RunEntry{History: []float64{1}}))
	require.NoError(t, c.InvalidateRun(context.Background(), "hash"))

	got, err := c.GetRun(context.Background(), "hash")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFlushAllRuns_RemovesEveryEntry(t *testing.T) {
	c := newTestCache(t)
	defer c.Close()

	require.NoError(t, c.SetRun(context.Background(), "one", RunEntry{History: []float64{1}}))
	require.NoError(t, c.SetRun(context.Background(), "two", RunEntry{History: []float64{2}}))

	require.NoError(t, c.FlushAllRuns(context.Background()))

	one, err := c.GetRun(context.Background(), "one")
	require.NoError(t, err)
	assert.Nil(t, one)
	two, err := c.GetRun(context.Background(), "two")
	require.NoError(t, err)
	assert.Nil(t, two)
}

func TestHashRun_StableForIdenticalInput(t *testing.T) {
	h := testHorizon(t)
	props := []*proposal.Proposal{
		{ID: 1, Duration: time.Hour, LSTStart: 9.5, LSTStartEnd: 11, MinimumAntennas: 32},
	}

	a := HashRun(h, props)
	b := HashRun(h, props)
	assert.Equal(t, a, b)
}

func TestHashRun_DiffersWhenProposalSetDiffers(t *testing.T) {
	h := testHorizon(t)
	a := HashRun(h, []*proposal.Proposal{{ID: 1, Duration: time.Hour, MinimumAntennas: 32}})
	b := HashRun(h, []*proposal.Proposal{{ID: 2, Duration: time.Hour, MinimumAntennas: 32}})
	assert.NotEqual(t, a, b)
}
