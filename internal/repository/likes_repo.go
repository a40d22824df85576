package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/utils/pagination"
)

// Liker is one incoming like shown on a "liked you" page.
type Liker struct {
	SwipeID   uint64
	ActorID   uint64
	Type      matching.SwipeType
	CreatedAt time.Time
}

// LikersFilter narrows the liked-you listing.
type LikersFilter struct {
	// Unanswered hides likers the recipient has already swiped on in any way.
	Unanswered bool
}

// GetLikers returns live likes and super-likes received by recipientID.
//
// Behavior:
//   - Likers the recipient has passed (live) are always excluded.
//   - With Unanswered, likers the recipient swiped on at all are excluded too.
//   - Ordered by created_at DESC, id DESC.
//   - Cursor pagination: a non-empty next token means another page exists.
//
// Example:
//
//	repo.GetLikers(ctx, 42, "", 20, LikersFilter{}) // first 20 people who liked user 42
func (s *Store) GetLikers(
	ctx context.Context,
	recipientID uint64,
	token string,
	limit int,
	filter LikersFilter,
) ([]Liker, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}

	query := s.likersQuery(ctx, recipientID, filter).
		Order("s.created_at DESC, s.id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		at := ts(time.UnixMilli(cursor.CreatedUnix))
		query = query.Where(
			"(s.created_at < ? OR (s.created_at = ? AND s.id < ?))",
			at, at, cursor.ID,
		)
	}

	var rows []db.Swipe
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(rows) > limit {
		last := rows[limit-1]
		next, err = pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		if err != nil {
			return nil, "", err
		}
		rows = rows[:limit]
	}

	out := make([]Liker, 0, len(rows))
	for _, r := range rows {
		out = append(out, Liker{
			SwipeID:   r.ID,
			ActorID:   r.ActorID,
			Type:      matching.SwipeType(r.Type),
			CreatedAt: r.CreatedAt,
		})
	}
	return out, next, nil
}

// CountLikers counts what GetLikers would list across all pages.
func (s *Store) CountLikers(ctx context.Context, recipientID uint64, filter LikersFilter) (int64, error) {
	var n int64
	err := s.likersQuery(ctx, recipientID, filter).Count(&n).Error
	return n, err
}

func (s *Store) likersQuery(ctx context.Context, recipientID uint64, filter LikersFilter) *gorm.DB {
	query := s.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.undone = ?", recipientID, false).
		Where("s.type IN ?", likeTypes())

	if filter.Unanswered {
		return query.Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes r
				WHERE r.actor_id = ?
				  AND r.target_id = s.actor_id
				  AND r.undone = ?
			)`, recipientID, false)
	}
	return query.Where(`
		NOT EXISTS (
			SELECT 1 FROM swipes r
			WHERE r.actor_id = ?
			  AND r.target_id = s.actor_id
			  AND r.type = ?
			  AND r.undone = ?
		)`, recipientID, string(matching.SwipePass), false)
}
