package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScoreAdjuster may override a computed compatibility score.
type ScoreAdjuster interface {
	AdjustScore(ctx context.Context, a, b *Profile, score float64) float64
}

// QueueAdjuster may rewrite the ranked entries of a queue before they are
// persisted. The result is re-ranked and truncated afterwards.
type QueueAdjuster interface {
	AdjustQueue(ctx context.Context, userID uint64, entries []QueueEntry) []QueueEntry
}

type ScoreAdjusterFunc func(ctx context.Context, a, b *Profile, score float64) float64

func (f ScoreAdjusterFunc) AdjustScore(ctx context.Context, a, b *Profile, score float64) float64 {
	return f(ctx, a, b, score)
}

type QueueAdjusterFunc func(ctx context.Context, userID uint64, entries []QueueEntry) []QueueEntry

func (f QueueAdjusterFunc) AdjustQueue(ctx context.Context, userID uint64, entries []QueueEntry) []QueueEntry {
	return f(ctx, userID, entries)
}

type noopAdjuster struct{}

func (noopAdjuster) AdjustScore(_ context.Context, _, _ *Profile, score float64) float64 {
	return score
}

func (noopAdjuster) AdjustQueue(_ context.Context, _ uint64, entries []QueueEntry) []QueueEntry {
	return entries
}

type EventKind string

const (
	EventSwipeProcessed    EventKind = "swipe.processed"
	EventMatchFormed       EventKind = "match.formed"
	EventSuperLikeReceived EventKind = "superlike.received"
)

// Event is emitted after a swipe transaction commits.
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	ActorID    uint64    `json:"actor_id"`
	TargetID   uint64    `json:"target_id"`
	SwipeType  SwipeType `json:"swipe_type,omitempty"`
	MatchID    uint64    `json:"match_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(kind EventKind, actorID, targetID uint64, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		ActorID:    actorID,
		TargetID:   targetID,
		OccurredAt: at,
	}
}

// EventSink receives events. Delivery failures never fail the swipe.
type EventSink interface {
	Publish(ctx context.Context, e Event) error
}

type nopSink struct{}

func (nopSink) Publish(context.Context, Event) error { return nil }
