package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// UpsertMatch creates the canonical pair's match or reactivates it.
//
// Behavior:
//   - Existing active row → returned unchanged (matched_at is kept).
//   - Existing unmatched row → status flips back to active, matched_at = at.
//   - No row → inserted; a concurrent insert of the same pair is absorbed by
//     the unique index and the winner's row is returned.
func (s *Store) UpsertMatch(ctx context.Context, user1ID, user2ID uint64, at time.Time) (*matching.Match, error) {
	existing, err := s.MatchBetween(ctx, user1ID, user2ID)
	switch {
	case err == nil:
		if existing.Status == matching.MatchActive {
			return existing, nil
		}
		err := s.db.WithContext(ctx).
			Model(&db.Match{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"status":       string(matching.MatchActive),
				"matched_at":   ts(at),
				"unmatched_at": nil,
			}).Error
		if err != nil {
			return nil, err
		}
		return s.MatchBetween(ctx, user1ID, user2ID)
	case !errors.Is(err, matching.ErrNotFound):
		return nil, err
	}

	row := db.Match{
		User1ID:   user1ID,
		User2ID:   user2ID,
		Status:    string(matching.MatchActive),
		MatchedAt: ts(at),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}
	return s.MatchBetween(ctx, user1ID, user2ID)
}

func (s *Store) MatchBetween(ctx context.Context, user1ID, user2ID uint64) (*matching.Match, error) {
	var row db.Match
	err := s.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	m := toMatch(row)
	return &m, nil
}

func (s *Store) SetMatchStatus(ctx context.Context, matchID uint64, status matching.MatchStatus, at time.Time) error {
	updates := map[string]any{"status": string(status)}
	if status == matching.MatchUnmatched {
		updates["unmatched_at"] = ts(at)
	} else {
		updates["matched_at"] = ts(at)
		updates["unmatched_at"] = nil
	}
	res := s.db.WithContext(ctx).Model(&db.Match{}).Where("id = ?", matchID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return matching.ErrNotFound
	}
	return nil
}

// ActiveMatches lists the user's active matches, newest first.
func (s *Store) ActiveMatches(ctx context.Context, userID uint64, limit int) ([]matching.Match, error) {
	query := s.db.WithContext(ctx).
		Where("status = ?", string(matching.MatchActive)).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("matched_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []db.Match
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]matching.Match, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMatch(r))
	}
	return out, nil
}
