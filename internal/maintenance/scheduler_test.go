package maintenance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/matching/memstore"
)

var epoch = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func TestRunOncePrunesAndReconciles(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	clock := &matching.FixedClock{T: epoch}
	engine := matching.NewEngine(store, matching.DefaultOptions(), matching.Deps{Clock: clock, Logger: logger.Discard()})

	require.NoError(t, store.ReplaceQueue(ctx, 1, []matching.QueueEntry{
		{UserID: 1, CandidateID: 2, Score: 0.5, LastShown: epoch.Add(-48 * time.Hour)},
		{UserID: 1, CandidateID: 3, Score: 0.5, LastShown: epoch},
	}))
	for _, sw := range []matching.Swipe{
		{ActorID: 4, TargetID: 5, Type: matching.SwipeLike, CreatedAt: epoch},
		{ActorID: 5, TargetID: 4, Type: matching.SwipeLike, CreatedAt: epoch},
	} {
		require.NoError(t, store.InsertSwipe(ctx, &sw))
	}

	s := NewScheduler(store, engine.Swipes, clock, Config{QueueTTL: 24 * time.Hour, ReconcileBatch: 10}, logger.Discard())
	res, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Pruned)
	assert.Equal(t, 1, res.Reconciled)

	m, err := store.MatchBetween(ctx, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, matching.MatchActive, m.Status)

	res, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Reconciled)
}

type brokenPruner struct{}

func (brokenPruner) PruneQueues(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

type countingReconciler struct{ calls atomic.Int32 }

func (c *countingReconciler) ReconcileMatches(context.Context, int) (int, error) {
	c.calls.Add(1)
	return 2, nil
}

func TestRunOnceKeepsGoingAfterFailure(t *testing.T) {
	rec := &countingReconciler{}
	s := NewScheduler(brokenPruner{}, rec, &matching.FixedClock{T: epoch}, Config{QueueTTL: time.Hour, ReconcileBatch: 5}, logger.Discard())

	res, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, 2, res.Reconciled)
}

func TestRunStopsOnCancel(t *testing.T) {
	rec := &countingReconciler{}
	s := NewScheduler(brokenPruner{}, rec, nil, Config{Interval: 5 * time.Millisecond, ReconcileBatch: 1}, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rec.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
