package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// Profile loads a profile together with its interests.
func (s *Store) Profile(ctx context.Context, userID uint64) (*matching.Profile, error) {
	var p db.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	var interests []db.Interest
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&interests).Error; err != nil {
		return nil, err
	}
	return toProfile(p, interests), nil
}

// Preference returns matching.ErrNoPreferences when the user has none stored.
func (s *Store) Preference(ctx context.Context, userID uint64) (*matching.Preference, error) {
	var p db.Preference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if notFound(err) == matching.ErrNotFound {
			return nil, matching.ErrNoPreferences
		}
		return nil, err
	}
	return &matching.Preference{
		UserID:          p.UserID,
		MinAge:          p.MinAge,
		MaxAge:          p.MaxAge,
		MaxDistance:     p.MaxDistance,
		Gender:          p.PreferredGender,
		NotifyMatches:   p.NotifyMatches,
		NotifySuperLike: p.NotifySuperLike,
	}, nil
}

// FindCandidates applies the hard filters in SQL.
//
// Behavior:
//   - Excludes the user, anyone the user has a live swipe on, and anyone in an
//     active match with the user.
//   - Age is inclusive on both ends; Gender is skipped when empty.
//   - Ordered by last_active DESC (never-active last), then user_id ASC.
//   - Interests for the returned page are loaded in a single follow-up query.
func (s *Store) FindCandidates(ctx context.Context, q matching.CandidateQuery) ([]*matching.Profile, error) {
	query := s.db.WithContext(ctx).
		Table("profiles p").
		Select("p.*").
		Where("p.user_id <> ?", q.UserID).
		Where("p.age BETWEEN ? AND ?", q.MinAge, q.MaxAge).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.actor_id = ?
				  AND s.target_id = p.user_id
				  AND s.undone = ?
			)`, q.UserID, false).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM matches m
				WHERE m.status = ?
				  AND ((m.user1_id = ? AND m.user2_id = p.user_id)
				    OR (m.user1_id = p.user_id AND m.user2_id = ?))
			)`, string(matching.MatchActive), q.UserID, q.UserID).
		Order("p.last_active DESC, p.user_id ASC")

	if q.Gender != "" {
		query = query.Where("p.gender = ?", q.Gender)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []db.Profile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	var interests []db.Interest
	if err := s.db.WithContext(ctx).Where("user_id IN ?", ids).Order("id").Find(&interests).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uint64][]db.Interest, len(rows))
	for _, i := range interests {
		byUser[i.UserID] = append(byUser[i.UserID], i)
	}

	out := make([]*matching.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, toProfile(r, byUser[r.UserID]))
	}
	return out, nil
}

// SaveProfile upserts the profile and replaces its interests in one transaction.
func (s *Store) SaveProfile(ctx context.Context, p *matching.Profile) error {
	row := db.Profile{
		UserID:            p.UserID,
		Age:               p.Age,
		Gender:            p.Gender,
		Orientation:       p.Orientation,
		Location:          p.Location,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		Bio:               p.Bio,
		Profession:        p.Profession,
		Education:         p.Education,
		ProfileCompletion: p.Completion,
	}
	if p.LastActive != nil {
		t := ts(*p.LastActive)
		row.LastActive = &t
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"age", "gender", "orientation", "location", "latitude", "longitude",
				"bio", "profession", "education", "last_active", "profile_completion", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", p.UserID).Delete(&db.Interest{}).Error; err != nil {
			return err
		}
		if len(p.Interests) == 0 {
			return nil
		}
		rows := make([]db.Interest, 0, len(p.Interests))
		for _, i := range p.Interests {
			rows = append(rows, db.Interest{UserID: p.UserID, Category: i.Category, Name: i.Name})
		}
		return tx.Create(&rows).Error
	})
}

// SavePreference upserts the user's preference row.
func (s *Store) SavePreference(ctx context.Context, p *matching.Preference) error {
	row := db.Preference{
		UserID:          p.UserID,
		MinAge:          p.MinAge,
		MaxAge:          p.MaxAge,
		MaxDistance:     p.MaxDistance,
		PreferredGender: p.Gender,
		NotifyMatches:   p.NotifyMatches,
		NotifySuperLike: p.NotifySuperLike,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_age", "max_age", "max_distance", "preferred_gender",
			"notify_matches", "notify_super_like", "updated_at",
		}),
	}).Create(&row).Error
}

// TouchLastActive records activity for the user's profile, if one exists.
func (s *Store) TouchLastActive(ctx context.Context, userID uint64, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Update("last_active", ts(at)).Error
}
