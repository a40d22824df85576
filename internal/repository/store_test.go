package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
)

var t0 = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

// setupTestDB opens a private in-memory database on a single connection so
// transactions and plain queries see the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

func saveProfile(t *testing.T, s *repository.Store, id uint64, age int, gender string, active time.Time, interests ...string) {
	t.Helper()
	lat, lon := 51.5, -0.12
	p := &matching.Profile{
		UserID:     id,
		Age:        age,
		Gender:     gender,
		Latitude:   &lat,
		Longitude:  &lon,
		LastActive: &active,
		Completion: 50,
	}
	for _, name := range interests {
		p.Interests = append(p.Interests, matching.Interest{Category: "hobby", Name: name})
	}
	require.NoError(t, s.SaveProfile(context.Background(), p))
}

func swipe(t *testing.T, s *repository.Store, actor, target uint64, typ matching.SwipeType, at time.Time) *matching.Swipe {
	t.Helper()
	sw := &matching.Swipe{ActorID: actor, TargetID: target, Type: typ, CreatedAt: at}
	require.NoError(t, s.InsertSwipe(context.Background(), sw))
	return sw
}

func TestProfileRoundTripReplacesInterests(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	saveProfile(t, s, 1, 30, "female", t0, "hiking", "jazz")
	saveProfile(t, s, 1, 31, "female", t0, "chess")

	p, err := s.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 31, p.Age)
	require.Len(t, p.Interests, 1)
	assert.Equal(t, "chess", p.Interests[0].Name)
	require.NotNil(t, p.LastActive)
	assert.True(t, p.LastActive.Equal(t0))

	_, err = s.Profile(ctx, 99)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}

func TestPreferenceMissing(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	_, err := s.Preference(ctx, 1)
	assert.ErrorIs(t, err, matching.ErrNoPreferences)

	require.NoError(t, s.SavePreference(ctx, &matching.Preference{UserID: 1, MinAge: 20, MaxAge: 30, Gender: "male"}))
	require.NoError(t, s.SavePreference(ctx, &matching.Preference{UserID: 1, MinAge: 25, MaxAge: 35, Gender: "any"}))

	pref, err := s.Preference(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 25, pref.MinAge)
	assert.Equal(t, "any", pref.Gender)
}

func TestFindCandidatesExclusions(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	saveProfile(t, s, 1, 30, "male", t0)
	saveProfile(t, s, 2, 28, "female", t0.Add(-1*time.Hour), "jazz")
	saveProfile(t, s, 3, 29, "female", t0.Add(-2*time.Hour))
	saveProfile(t, s, 4, 27, "female", t0.Add(-3*time.Hour))
	saveProfile(t, s, 5, 26, "female", t0.Add(-4*time.Hour))
	saveProfile(t, s, 6, 45, "female", t0)                   // too old
	saveProfile(t, s, 7, 28, "male", t0)                     // wrong gender
	saveProfile(t, s, 8, 28, "female", t0)                   // active match
	saveProfile(t, s, 9, 28, "female", t0.Add(-5*time.Hour)) // unmatched, stays visible

	swipe(t, s, 1, 3, matching.SwipePass, t0)
	undone := swipe(t, s, 1, 4, matching.SwipeLike, t0)
	require.NoError(t, s.MarkUndone(ctx, undone.ID, t0))
	swipe(t, s, 5, 1, matching.SwipeLike, t0) // incoming swipes do not exclude

	_, err := s.UpsertMatch(ctx, 1, 8, t0)
	require.NoError(t, err)
	m, err := s.UpsertMatch(ctx, 1, 9, t0)
	require.NoError(t, err)
	require.NoError(t, s.SetMatchStatus(ctx, m.ID, matching.MatchUnmatched, t0))

	got, err := s.FindCandidates(ctx, matching.CandidateQuery{UserID: 1, MinAge: 18, MaxAge: 40, Gender: "female", Limit: 10})
	require.NoError(t, err)

	var ids []uint64
	for _, p := range got {
		ids = append(ids, p.UserID)
	}
	assert.Equal(t, []uint64{2, 4, 5, 9}, ids)
	require.Len(t, got[0].Interests, 1)
	assert.Equal(t, "jazz", got[0].Interests[0].Name)

	got, err = s.FindCandidates(ctx, matching.CandidateQuery{UserID: 1, MinAge: 18, MaxAge: 40, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestInsertSwipeRejectsSecondLiveSwipe(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	first := swipe(t, s, 1, 2, matching.SwipeLike, t0)
	assert.NotZero(t, first.ID)

	err := s.InsertSwipe(ctx, &matching.Swipe{ActorID: 1, TargetID: 2, Type: matching.SwipePass, CreatedAt: t0})
	assert.ErrorIs(t, err, matching.ErrAlreadySwiped)

	require.NoError(t, s.MarkUndone(ctx, first.ID, t0))
	second := swipe(t, s, 1, 2, matching.SwipePass, t0.Add(time.Minute))

	live, err := s.LiveSwipe(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, second.ID, live.ID)
	assert.Equal(t, matching.SwipePass, live.Type)

	assert.ErrorIs(t, s.MarkUndone(ctx, first.ID, t0), matching.ErrNotFound)
}

func TestSwipeWindow(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	swipe(t, s, 1, 2, matching.SwipeLike, t0.Add(-90*time.Minute))
	swipe(t, s, 1, 3, matching.SwipeSuperLike, t0.Add(-40*time.Minute))
	swipe(t, s, 1, 4, matching.SwipePass, t0.Add(-10*time.Minute))
	undone := swipe(t, s, 1, 5, matching.SwipeSuperLike, t0.Add(-5*time.Minute))
	require.NoError(t, s.MarkUndone(ctx, undone.ID, t0))

	n, oldest, err := s.SwipeWindow(ctx, 1, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, oldest.Equal(t0.Add(-40*time.Minute)), "oldest=%s", oldest)

	n, _, err = s.SwipeWindow(ctx, 1, t0.Add(-2*time.Hour), matching.SwipeSuperLike)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, oldest, err = s.SwipeWindow(ctx, 2, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, oldest.IsZero())
}

func TestSuperLikers(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	swipe(t, s, 2, 1, matching.SwipeSuperLike, t0)
	swipe(t, s, 3, 1, matching.SwipeLike, t0)
	swipe(t, s, 4, 1, matching.SwipeSuperLike, t0)

	got, err := s.SuperLikers(ctx, 1, []uint64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{2: true}, got)
}

func TestActedOn(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	swipe(t, s, 5, 2, matching.SwipePass, t0)
	undone := swipe(t, s, 5, 3, matching.SwipeLike, t0)
	require.NoError(t, s.MarkUndone(ctx, undone.ID, t0.Add(time.Minute)))
	swipe(t, s, 4, 5, matching.SwipeLike, t0)

	_, err := s.UpsertMatch(ctx, 1, 5, t0)
	require.NoError(t, err)
	m, err := s.UpsertMatch(ctx, 5, 6, t0)
	require.NoError(t, err)
	require.NoError(t, s.SetMatchStatus(ctx, m.ID, matching.MatchUnmatched, t0))
	_, err = s.UpsertMatch(ctx, 5, 7, t0)
	require.NoError(t, err)

	got, err := s.ActedOn(ctx, 5, []uint64{1, 2, 3, 4, 6})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{1: true, 2: true}, got)

	none, err := s.ActedOn(ctx, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpsertMatch(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	m, err := s.UpsertMatch(ctx, 1, 2, t0)
	require.NoError(t, err)
	assert.Equal(t, matching.MatchActive, m.Status)

	again, err := s.UpsertMatch(ctx, 1, 2, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)
	assert.True(t, again.MatchedAt.Equal(t0))

	require.NoError(t, s.SetMatchStatus(ctx, m.ID, matching.MatchUnmatched, t0.Add(2*time.Hour)))
	gone, err := s.MatchBetween(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, matching.MatchUnmatched, gone.Status)
	require.NotNil(t, gone.UnmatchedAt)

	back, err := s.UpsertMatch(ctx, 1, 2, t0.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, m.ID, back.ID)
	assert.Equal(t, matching.MatchActive, back.Status)
	assert.Nil(t, back.UnmatchedAt)
	assert.True(t, back.MatchedAt.Equal(t0.Add(3*time.Hour)))

	_, err = s.UpsertMatch(ctx, 2, 3, t0)
	require.NoError(t, err)
	active, err := s.ActiveMatches(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestMutualLikesWithoutMatch(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	swipe(t, s, 1, 2, matching.SwipeLike, t0)
	swipe(t, s, 2, 1, matching.SwipeSuperLike, t0)
	swipe(t, s, 3, 4, matching.SwipeLike, t0)
	swipe(t, s, 4, 3, matching.SwipePass, t0)
	swipe(t, s, 5, 6, matching.SwipeLike, t0)
	swipe(t, s, 6, 5, matching.SwipeLike, t0)
	m, err := s.UpsertMatch(ctx, 5, 6, t0)
	require.NoError(t, err)
	require.NoError(t, s.SetMatchStatus(ctx, m.ID, matching.MatchUnmatched, t0))

	pairs, err := s.MutualLikesWithoutMatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, [][2]uint64{{1, 2}}, pairs)
}

func TestReplaceQueueOrderingAndPrune(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	require.NoError(t, s.ReplaceQueue(ctx, 1, []matching.QueueEntry{
		{CandidateID: 9, Score: 0.9, LastShown: t0.Add(-48 * time.Hour)},
	}))
	require.NoError(t, s.ReplaceQueue(ctx, 1, []matching.QueueEntry{
		{CandidateID: 2, Score: 0.4, LastShown: t0},
		{CandidateID: 3, Score: 0.8, LastShown: t0},
		{CandidateID: 4, Score: 0.1, Priority: 100, LastShown: t0},
		{CandidateID: 5, Score: 0.8, LastShown: t0},
	}))
	require.NoError(t, s.ReplaceQueue(ctx, 2, []matching.QueueEntry{
		{CandidateID: 1, Score: 0.5, LastShown: t0.Add(-48 * time.Hour)},
	}))

	q, err := s.Queue(ctx, 1)
	require.NoError(t, err)
	var ids []uint64
	for _, e := range q {
		ids = append(ids, e.CandidateID)
	}
	assert.Equal(t, []uint64{4, 3, 5, 2}, ids)

	require.NoError(t, s.RemoveQueueEntry(ctx, 1, 3))
	q, err = s.Queue(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, q, 3)

	n, err := s.PruneQueues(ctx, t0.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	q, err = s.Queue(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestAtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	s := repository.NewStore(setupTestDB(t))

	err := s.Atomic(ctx, func(tx matching.Store) error {
		require.NoError(t, tx.InsertSwipe(ctx, &matching.Swipe{ActorID: 1, TargetID: 2, Type: matching.SwipeLike, CreatedAt: t0}))
		return matching.ErrRateLimitExceeded
	})
	assert.ErrorIs(t, err, matching.ErrRateLimitExceeded)

	_, err = s.LiveSwipe(ctx, 1, 2)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}
