package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// LockUser takes a row lock on the user directory entry for the rest of the
// transaction. The users row must exist for the lock to serialise anything.
// SQLite has no row locks; its driver drops the clause and relies on the
// single writer instead.
func (s *Store) LockUser(ctx context.Context, userID uint64) error {
	var rows []db.User
	return s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Find(&rows).Error
}

// InsertSwipe stores a live swipe and sets sw.ID.
// A second live swipe for the same ordered pair violates idx_swipes_live_pair
// and is reported as matching.ErrAlreadySwiped.
func (s *Store) InsertSwipe(ctx context.Context, sw *matching.Swipe) error {
	live := true
	row := db.Swipe{
		ActorID:   sw.ActorID,
		TargetID:  sw.TargetID,
		Type:      string(sw.Type),
		IP:        sw.IP,
		Live:      &live,
		CreatedAt: ts(sw.CreatedAt),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return matching.ErrAlreadySwiped
		}
		return err
	}
	sw.ID = row.ID
	return nil
}

func (s *Store) LiveSwipe(ctx context.Context, actorID, targetID uint64) (*matching.Swipe, error) {
	var row db.Swipe
	err := s.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ? AND undone = ?", actorID, targetID, false).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return toSwipe(row), nil
}

// MarkUndone retires a swipe. Clearing live frees the pair for a new swipe.
func (s *Store) MarkUndone(ctx context.Context, swipeID uint64, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("id = ? AND undone = ?", swipeID, false).
		Updates(map[string]any{
			"undone":    true,
			"live":      nil,
			"undone_at": ts(at),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return matching.ErrNotFound
	}
	return nil
}

// SwipeWindow counts live swipes in [since, now) and reports the oldest one.
// The oldest timestamp is read through the model rather than MIN() so both
// drivers scan it as a time column.
func (s *Store) SwipeWindow(ctx context.Context, actorID uint64, since time.Time, types ...matching.SwipeType) (int, time.Time, error) {
	base := s.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("actor_id = ? AND undone = ? AND created_at >= ?", actorID, false, ts(since))
	if len(types) > 0 {
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		base = base.Where("type IN ?", names)
	}
	base = base.Session(&gorm.Session{})

	var n int64
	if err := base.Count(&n).Error; err != nil {
		return 0, time.Time{}, err
	}
	if n == 0 {
		return 0, time.Time{}, nil
	}

	var oldest []db.Swipe
	if err := base.Order("created_at ASC, id ASC").Limit(1).Find(&oldest).Error; err != nil {
		return 0, time.Time{}, err
	}
	var at time.Time
	if len(oldest) > 0 {
		at = oldest[0].CreatedAt
	}
	return int(n), at, nil
}

func (s *Store) SuperLikers(ctx context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool)
	if len(candidateIDs) == 0 {
		return out, nil
	}
	var actors []uint64
	err := s.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("target_id = ? AND type = ? AND undone = ?", userID, string(matching.SwipeSuperLike), false).
		Where("actor_id IN ?", candidateIDs).
		Pluck("actor_id", &actors).Error
	if err != nil {
		return nil, err
	}
	for _, id := range actors {
		out[id] = true
	}
	return out, nil
}

// ActedOn reports candidates the user already swiped on (live) or is
// actively matched with.
func (s *Store) ActedOn(ctx context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool)
	if len(candidateIDs) == 0 {
		return out, nil
	}

	var swiped []uint64
	err := s.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("actor_id = ? AND undone = ? AND target_id IN ?", userID, false, candidateIDs).
		Pluck("target_id", &swiped).Error
	if err != nil {
		return nil, err
	}
	for _, id := range swiped {
		out[id] = true
	}

	var matches []db.Match
	err = s.db.WithContext(ctx).
		Select("user1_id", "user2_id").
		Where("status = ?", string(matching.MatchActive)).
		Where("((user1_id = ? AND user2_id IN ?) OR (user2_id = ? AND user1_id IN ?))", userID, candidateIDs, userID, candidateIDs).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.User1ID == userID {
			out[m.User2ID] = true
		} else {
			out[m.User1ID] = true
		}
	}
	return out, nil
}

// isUniqueViolation recognises duplicate-key errors whether or not the
// dialect translated them.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

type pairRow struct {
	A uint64
	B uint64
}

// MutualLikesWithoutMatch finds live reciprocal likes whose pair has never
// had a match row. Each pair is reported once, canonical order.
func (s *Store) MutualLikesWithoutMatch(ctx context.Context, limit int) ([][2]uint64, error) {
	var rows []pairRow
	query := s.db.WithContext(ctx).
		Table("swipes s1").
		Select("s1.actor_id AS a, s1.target_id AS b").
		Joins("JOIN swipes s2 ON s2.actor_id = s1.target_id AND s2.target_id = s1.actor_id").
		Where("s1.actor_id < s1.target_id").
		Where("s1.undone = ? AND s2.undone = ?", false, false).
		Where("s1.type IN ? AND s2.type IN ?", likeTypes(), likeTypes()).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM matches m
				WHERE m.user1_id = s1.actor_id
				  AND m.user2_id = s1.target_id
			)`).
		Order("s1.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([][2]uint64, 0, len(rows))
	for _, r := range rows {
		out = append(out, [2]uint64{r.A, r.B})
	}
	return out, nil
}
