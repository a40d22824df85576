package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// Store implements matching.Store on top of GORM. Every method runs against
// the handle it was created with, so a Store built inside Atomic shares the
// transaction.
type Store struct {
	db *gorm.DB
}

var _ matching.Store = (*Store)(nil)

// NewStore binds a Store to the given DB connection.
func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

// Atomic runs fn inside a database transaction. Nested calls use savepoints.
func (s *Store) Atomic(ctx context.Context, fn func(matching.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// notFound maps GORM's missing-row error onto the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return matching.ErrNotFound
	}
	return err
}

// ts normalises timestamps before they reach the database. SQLite compares
// times as text, so every stored and queried value must share one zone.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func toProfile(p db.Profile, interests []db.Interest) *matching.Profile {
	out := &matching.Profile{
		UserID:      p.UserID,
		Age:         p.Age,
		Gender:      p.Gender,
		Orientation: p.Orientation,
		Location:    p.Location,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Bio:         p.Bio,
		Profession:  p.Profession,
		Education:   p.Education,
		LastActive:  p.LastActive,
		Completion:  p.ProfileCompletion,
	}
	for _, i := range interests {
		out.Interests = append(out.Interests, matching.Interest{Category: i.Category, Name: i.Name})
	}
	return out
}

func toSwipe(s db.Swipe) *matching.Swipe {
	return &matching.Swipe{
		ID:        s.ID,
		ActorID:   s.ActorID,
		TargetID:  s.TargetID,
		Type:      matching.SwipeType(s.Type),
		IP:        s.IP,
		Undone:    s.Undone,
		CreatedAt: s.CreatedAt,
		UndoneAt:  s.UndoneAt,
	}
}

func toMatch(m db.Match) matching.Match {
	return matching.Match{
		ID:          m.ID,
		User1ID:     m.User1ID,
		User2ID:     m.User2ID,
		Status:      matching.MatchStatus(m.Status),
		MatchedAt:   m.MatchedAt,
		UnmatchedAt: m.UnmatchedAt,
	}
}

func likeTypes() []string {
	return []string{string(matching.SwipeLike), string(matching.SwipeSuperLike)}
}
