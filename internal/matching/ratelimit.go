package matching

import (
	"context"
	"time"
)

// RateLimiter derives quotas from stored swipes; it keeps no counters.
type RateLimiter struct {
	hourly int
	daily  int
	clock  Clock
}

func NewRateLimiter(opts Options, clock Clock) *RateLimiter {
	return &RateLimiter{
		hourly: opts.HourlySwipeLimit,
		daily:  opts.DailySuperLikeLimit,
		clock:  clock,
	}
}

// Allow returns a *LimitError when actorID may not perform a swipe of type t.
// Run it inside the same transaction that inserts the swipe.
func (l *RateLimiter) Allow(ctx context.Context, store SwipeStore, actorID uint64, t SwipeType) error {
	now := l.clock.Now()

	if l.hourly > 0 {
		used, oldest, err := store.SwipeWindow(ctx, actorID, now.Add(-time.Hour))
		if err != nil {
			return persistence("count swipes", err)
		}
		if used >= l.hourly {
			return &LimitError{
				Kind:       ErrRateLimitExceeded,
				Limit:      l.hourly,
				Used:       used,
				RetryAfter: positive(oldest.Add(time.Hour).Sub(now)),
			}
		}
	}

	if t == SwipeSuperLike && l.daily > 0 {
		midnight := startOfDay(now)
		used, _, err := store.SwipeWindow(ctx, actorID, midnight, SwipeSuperLike)
		if err != nil {
			return persistence("count super-likes", err)
		}
		if used >= l.daily {
			return &LimitError{
				Kind:       ErrSuperLikeLimitExceeded,
				Limit:      l.daily,
				Used:       used,
				RetryAfter: positive(midnight.AddDate(0, 0, 1).Sub(now)),
			}
		}
	}
	return nil
}

// Quota reports how much of each budget actorID has used.
func (l *RateLimiter) Quota(ctx context.Context, store SwipeStore, actorID uint64) (Quota, error) {
	now := l.clock.Now()
	q := Quota{SwipesLimit: l.hourly, SuperLikesLimit: l.daily}

	used, oldest, err := store.SwipeWindow(ctx, actorID, now.Add(-time.Hour))
	if err != nil {
		return Quota{}, persistence("count swipes", err)
	}
	q.SwipesUsed = used
	if used > 0 {
		q.SwipesResetIn = positive(oldest.Add(time.Hour).Sub(now))
	}

	midnight := startOfDay(now)
	used, _, err = store.SwipeWindow(ctx, actorID, midnight, SwipeSuperLike)
	if err != nil {
		return Quota{}, persistence("count super-likes", err)
	}
	q.SuperLikesUsed = used
	q.SuperLikesResetIn = positive(midnight.AddDate(0, 0, 1).Sub(now))
	return q, nil
}

func positive(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
