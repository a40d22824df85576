package matching

import (
	"context"
	"errors"
	"log/slog"
	"sort"
)

// QueueBuilder produces and persists each user's ranked recommendations.
type QueueBuilder struct {
	store    Store
	filter   *CandidateFilter
	scorer   *Scorer
	adjuster QueueAdjuster
	clock    Clock
	opts     Options
	log      *slog.Logger
}

func NewQueueBuilder(store Store, filter *CandidateFilter, scorer *Scorer, adjuster QueueAdjuster, clock Clock, opts Options, log *slog.Logger) *QueueBuilder {
	if adjuster == nil {
		adjuster = noopAdjuster{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &QueueBuilder{
		store:    store,
		filter:   filter,
		scorer:   scorer,
		adjuster: adjuster,
		clock:    clock,
		opts:     opts,
		log:      log,
	}
}

// Peek returns the stored queue without rebuilding it.
func (b *QueueBuilder) Peek(ctx context.Context, userID uint64) ([]QueueEntry, error) {
	entries, err := b.store.Queue(ctx, userID)
	if err != nil {
		return nil, persistence("load queue", err)
	}
	return entries, nil
}

// Build returns userID's queue. A stored queue of at least MinQueueSize is
// reused unless forceRefresh is set. Missing preferences produce an empty
// queue rather than an error.
func (b *QueueBuilder) Build(ctx context.Context, userID uint64, forceRefresh bool) ([]QueueEntry, error) {
	if userID == 0 {
		return nil, invalid("user id is required")
	}

	if !forceRefresh {
		existing, err := b.Peek(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(existing) >= b.opts.MinQueueSize {
			return existing, nil
		}
	}

	if b.opts.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.BuildTimeout)
		defer cancel()
	}

	entries, err := b.rank(ctx, userID)
	if errors.Is(err, ErrNoPreferences) {
		b.log.Debug("queue build skipped", "user_id", userID, "reason", "no preferences")
		if forceRefresh {
			if err := b.store.ReplaceQueue(ctx, userID, nil); err != nil {
				return nil, persistence("clear queue", err)
			}
		}
		return []QueueEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	return b.commit(ctx, userID, entries)
}

// commit persists a ranked queue. Ranking ran without locks, so a swipe or
// match may have landed since; under the owner's lock, candidates acted on
// in the meantime are dropped before the swap.
func (b *QueueBuilder) commit(ctx context.Context, userID uint64, entries []QueueEntry) ([]QueueEntry, error) {
	var kept []QueueEntry
	err := b.store.Atomic(ctx, func(tx Store) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return persistence("lock user", err)
		}
		ids := make([]uint64, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.CandidateID)
		}
		acted, err := tx.ActedOn(ctx, userID, ids)
		if err != nil {
			return persistence("recheck candidates", err)
		}

		kept = make([]QueueEntry, 0, len(entries))
		for _, e := range entries {
			if acted[e.CandidateID] {
				continue
			}
			kept = append(kept, e)
		}
		return persistence("replace queue", tx.ReplaceQueue(ctx, userID, kept))
	})
	if err != nil {
		return nil, err
	}
	if dropped := len(entries) - len(kept); dropped > 0 {
		b.log.Debug("queue candidates acted on during build", "user_id", userID, "dropped", dropped)
	}
	return kept, nil
}

func (b *QueueBuilder) rank(ctx context.Context, userID uint64) ([]QueueEntry, error) {
	candidates, err := b.filter.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	self, err := b.store.Profile(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, persistence("load profile", err)
	}

	ids := make([]uint64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Profile.UserID)
	}
	superLikers, err := b.store.SuperLikers(ctx, userID, ids)
	if err != nil {
		return nil, persistence("load super-likers", err)
	}

	now := b.clock.Now()
	entries := make([]QueueEntry, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := QueueEntry{
			UserID:      userID,
			CandidateID: c.Profile.UserID,
			Distance:    c.Distance,
			LastShown:   now,
		}
		if self != nil {
			e.Score = b.scorer.Score(ctx, self, c.Profile)
		} else {
			e.Score = b.opts.NeutralScore
		}
		if superLikers[e.CandidateID] {
			e.Priority = b.opts.SuperLikePriority
		}
		entries = append(entries, e)
	}

	entries = b.finish(entries)
	entries = b.adjuster.AdjustQueue(ctx, userID, entries)
	return b.finish(entries), nil
}

func (b *QueueBuilder) finish(entries []QueueEntry) []QueueEntry {
	SortQueue(entries)
	if b.opts.MaxQueueSize > 0 && len(entries) > b.opts.MaxQueueSize {
		entries = entries[:b.opts.MaxQueueSize]
	}
	return entries
}

// SortQueue orders entries by priority desc, score desc, candidate id asc.
func SortQueue(entries []QueueEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.CandidateID < b.CandidateID
	})
}
