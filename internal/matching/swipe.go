package matching

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// SwipeProcessor records decisions and turns reciprocal likes into matches.
type SwipeProcessor struct {
	store   Store
	limiter *RateLimiter
	events  EventSink
	clock   Clock
	log     *slog.Logger
}

func NewSwipeProcessor(store Store, limiter *RateLimiter, events EventSink, clock Clock, log *slog.Logger) *SwipeProcessor {
	if events == nil {
		events = nopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &SwipeProcessor{
		store:   store,
		limiter: limiter,
		events:  events,
		clock:   clock,
		log:     log,
	}
}

// lockPair locks both users, smaller id first. Without the second lock two
// reciprocal likes could each miss the other's uncommitted swipe.
func lockPair(ctx context.Context, tx Store, a, b uint64) error {
	u1, u2 := CanonicalPair(a, b)
	if err := tx.LockUser(ctx, u1); err != nil {
		return persistence("lock user", err)
	}
	return persistence("lock user", tx.LockUser(ctx, u2))
}

// Process records in.ActorID's decision about in.TargetID.
//
// The rate-limit check, duplicate check, swipe insert, queue cleanup and
// match upsert share one transaction, so a failure at any step leaves no
// partial state behind. Events are published only after commit.
func (p *SwipeProcessor) Process(ctx context.Context, in SwipeInput) (*SwipeResult, error) {
	if in.ActorID == 0 || in.TargetID == 0 {
		return nil, invalid("actor and target ids are required")
	}
	if in.ActorID == in.TargetID {
		return nil, invalid("cannot swipe on yourself")
	}
	if !in.Type.Valid() {
		return nil, invalid("unknown swipe type %q", in.Type)
	}

	now := p.clock.Now()
	result := &SwipeResult{Type: in.Type}

	err := p.store.Atomic(ctx, func(tx Store) error {
		if err := lockPair(ctx, tx, in.ActorID, in.TargetID); err != nil {
			return err
		}
		if err := p.limiter.Allow(ctx, tx, in.ActorID, in.Type); err != nil {
			return err
		}

		_, err := tx.LiveSwipe(ctx, in.ActorID, in.TargetID)
		switch {
		case err == nil:
			return ErrAlreadySwiped
		case !errors.Is(err, ErrNotFound):
			return persistence("check swipe", err)
		}

		sw := &Swipe{
			ActorID:   in.ActorID,
			TargetID:  in.TargetID,
			Type:      in.Type,
			IP:        in.IP,
			CreatedAt: now,
		}
		if err := tx.InsertSwipe(ctx, sw); err != nil {
			return persistence("insert swipe", err)
		}
		result.SwipeID = sw.ID

		if err := tx.RemoveQueueEntry(ctx, in.ActorID, in.TargetID); err != nil {
			return persistence("remove queue entry", err)
		}

		if !in.Type.IsLike() {
			return nil
		}

		back, err := tx.LiveSwipe(ctx, in.TargetID, in.ActorID)
		if errors.Is(err, ErrNotFound) || (err == nil && !back.Type.IsLike()) {
			result.SuperLikeSent = in.Type == SwipeSuperLike
			return nil
		}
		if err != nil {
			return persistence("check reciprocal swipe", err)
		}

		u1, u2 := CanonicalPair(in.ActorID, in.TargetID)
		m, err := tx.UpsertMatch(ctx, u1, u2, now)
		if err != nil {
			return persistence("upsert match", err)
		}
		result.IsMatch = true
		result.MatchID = m.ID

		if err := tx.RemoveQueueEntry(ctx, in.TargetID, in.ActorID); err != nil {
			return persistence("remove queue entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.emitSwipe(ctx, in, result, now)
	return result, nil
}

func (p *SwipeProcessor) emitSwipe(ctx context.Context, in SwipeInput, r *SwipeResult, now time.Time) {
	e := newEvent(EventSwipeProcessed, in.ActorID, in.TargetID, now)
	e.SwipeType = in.Type
	e.MatchID = r.MatchID
	p.publish(ctx, e)

	switch {
	case r.IsMatch:
		m := newEvent(EventMatchFormed, in.ActorID, in.TargetID, now)
		m.SwipeType = in.Type
		m.MatchID = r.MatchID
		p.publish(ctx, m)
	case r.SuperLikeSent:
		s := newEvent(EventSuperLikeReceived, in.ActorID, in.TargetID, now)
		s.SwipeType = SwipeSuperLike
		p.publish(ctx, s)
	}
}

func (p *SwipeProcessor) publish(ctx context.Context, e Event) {
	if err := p.events.Publish(ctx, e); err != nil {
		p.log.Warn("event publish failed", "kind", e.Kind, "actor_id", e.ActorID, "target_id", e.TargetID, "err", err)
	}
}

// Undo reverts actorID's live swipe on targetID. An active match between the
// two becomes unmatched.
func (p *SwipeProcessor) Undo(ctx context.Context, actorID, targetID uint64) error {
	if actorID == 0 || targetID == 0 || actorID == targetID {
		return invalid("distinct actor and target ids are required")
	}
	now := p.clock.Now()

	return p.store.Atomic(ctx, func(tx Store) error {
		if err := lockPair(ctx, tx, actorID, targetID); err != nil {
			return err
		}
		sw, err := tx.LiveSwipe(ctx, actorID, targetID)
		if err != nil {
			return persistence("load swipe", err)
		}
		if err := tx.MarkUndone(ctx, sw.ID, now); err != nil {
			return persistence("undo swipe", err)
		}

		u1, u2 := CanonicalPair(actorID, targetID)
		m, err := tx.MatchBetween(ctx, u1, u2)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return persistence("load match", err)
		}
		if m.Status != MatchActive {
			return nil
		}
		return persistence("unmatch", tx.SetMatchStatus(ctx, m.ID, MatchUnmatched, now))
	})
}

// Unmatch ends the active match between userID and otherID.
func (p *SwipeProcessor) Unmatch(ctx context.Context, userID, otherID uint64) error {
	if userID == 0 || otherID == 0 || userID == otherID {
		return invalid("distinct user ids are required")
	}
	u1, u2 := CanonicalPair(userID, otherID)

	return p.store.Atomic(ctx, func(tx Store) error {
		m, err := tx.MatchBetween(ctx, u1, u2)
		if err != nil {
			return persistence("load match", err)
		}
		if m.Status != MatchActive {
			return ErrNotFound
		}
		return persistence("unmatch", tx.SetMatchStatus(ctx, m.ID, MatchUnmatched, p.clock.Now()))
	})
}

// State reports where the ordered pair sits in none → swiped → matched|unmatched.
func (p *SwipeProcessor) State(ctx context.Context, actorID, targetID uint64) (PairState, error) {
	if actorID == 0 || targetID == 0 || actorID == targetID {
		return "", invalid("distinct actor and target ids are required")
	}

	u1, u2 := CanonicalPair(actorID, targetID)
	m, err := p.store.MatchBetween(ctx, u1, u2)
	switch {
	case err == nil && m.Status == MatchActive:
		return PairMatched, nil
	case err == nil:
		return PairUnmatched, nil
	case !errors.Is(err, ErrNotFound):
		return "", persistence("load match", err)
	}

	if _, err := p.store.LiveSwipe(ctx, actorID, targetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return PairNone, nil
		}
		return "", persistence("load swipe", err)
	}
	return PairSwiped, nil
}

// Matches lists userID's active matches, newest first.
func (p *SwipeProcessor) Matches(ctx context.Context, userID uint64, limit int) ([]Match, error) {
	if userID == 0 {
		return nil, invalid("user id is required")
	}
	ms, err := p.store.ActiveMatches(ctx, userID, limit)
	if err != nil {
		return nil, persistence("list matches", err)
	}
	return ms, nil
}

// Quota reports actorID's remaining swipe and super-like budget.
func (p *SwipeProcessor) Quota(ctx context.Context, actorID uint64) (Quota, error) {
	if actorID == 0 {
		return Quota{}, invalid("user id is required")
	}
	return p.limiter.Quota(ctx, p.store, actorID)
}

// ReconcileMatches upserts a match for every reciprocal live like that has
// none, up to limit pairs. Each pair is re-checked under both users' locks,
// so an undo or a swipe that landed after the scan is respected. Returns the
// number of matches formed.
func (p *SwipeProcessor) ReconcileMatches(ctx context.Context, limit int) (int, error) {
	pairs, err := p.store.MutualLikesWithoutMatch(ctx, limit)
	if err != nil {
		return 0, persistence("find mutual likes", err)
	}

	formed := 0
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return formed, err
		}
		now := p.clock.Now()
		m, err := p.reconcilePair(ctx, pair[0], pair[1], now)
		if err != nil {
			return formed, err
		}
		if m == nil {
			continue
		}
		formed++

		e := newEvent(EventMatchFormed, pair[0], pair[1], now)
		e.MatchID = m.ID
		p.publish(ctx, e)
	}
	return formed, nil
}

// reconcilePair forms the match for u1 < u2 if both still like each other
// and the pair has no match row. A nil match means nothing was formed.
func (p *SwipeProcessor) reconcilePair(ctx context.Context, u1, u2 uint64, now time.Time) (*Match, error) {
	var formed *Match
	err := p.store.Atomic(ctx, func(tx Store) error {
		if err := lockPair(ctx, tx, u1, u2); err != nil {
			return err
		}
		for _, dir := range [][2]uint64{{u1, u2}, {u2, u1}} {
			sw, err := tx.LiveSwipe(ctx, dir[0], dir[1])
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return persistence("check swipe", err)
			}
			if !sw.Type.IsLike() {
				return nil
			}
		}

		_, err := tx.MatchBetween(ctx, u1, u2)
		switch {
		case err == nil:
			// formed by a swipe meanwhile, or deliberately unmatched
			return nil
		case !errors.Is(err, ErrNotFound):
			return persistence("load match", err)
		}

		m, err := tx.UpsertMatch(ctx, u1, u2, now)
		if err != nil {
			return persistence("upsert match", err)
		}
		for _, q := range [][2]uint64{{u1, u2}, {u2, u1}} {
			if err := tx.RemoveQueueEntry(ctx, q[0], q[1]); err != nil {
				return persistence("remove queue entry", err)
			}
		}
		formed = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return formed, nil
}
