package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

const queueInsertBatch = 100

func (s *Store) Queue(ctx context.Context, userID uint64) ([]matching.QueueEntry, error) {
	var rows []db.QueueEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("priority DESC, compatibility_score DESC, candidate_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]matching.QueueEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, matching.QueueEntry{
			UserID:      r.UserID,
			CandidateID: r.CandidateID,
			Score:       r.CompatibilityScore,
			Priority:    r.Priority,
			Distance:    r.Distance,
			LastShown:   r.LastShown,
		})
	}
	return out, nil
}

// ReplaceQueue deletes the old generation and inserts the new one inside a
// single transaction, so readers see either the old queue or the new one.
func (s *Store) ReplaceQueue(ctx context.Context, userID uint64, entries []matching.QueueEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.QueueEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]db.QueueEntry, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, db.QueueEntry{
				UserID:             userID,
				CandidateID:        e.CandidateID,
				CompatibilityScore: e.Score,
				Priority:           e.Priority,
				Distance:           e.Distance,
				LastShown:          ts(e.LastShown),
			})
		}
		return tx.CreateInBatches(&rows, queueInsertBatch).Error
	})
}

func (s *Store) RemoveQueueEntry(ctx context.Context, userID, candidateID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND candidate_id = ?", userID, candidateID).
		Delete(&db.QueueEntry{}).Error
}

// PruneQueues drops entries last shown before the cutoff.
func (s *Store) PruneQueues(ctx context.Context, shownBefore time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("last_shown < ?", ts(shownBefore)).
		Delete(&db.QueueEntry{})
	return res.RowsAffected, res.Error
}
