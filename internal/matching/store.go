package matching

import (
	"context"
	"time"
)

// CandidateQuery holds the hard constraints applied by the store.
type CandidateQuery struct {
	UserID uint64
	MinAge int
	MaxAge int
	// Gender filters candidates unless empty or GenderAny.
	Gender string
	Limit  int
}

// ProfileStore reads profiles and preferences.
type ProfileStore interface {
	// Profile returns ErrNotFound when the user has no profile.
	Profile(ctx context.Context, userID uint64) (*Profile, error)
	// Preference returns ErrNoPreferences when none is stored.
	Preference(ctx context.Context, userID uint64) (*Preference, error)
	// FindCandidates excludes the user, live swipes by the user and active
	// matches of the user, ordered by last activity descending then user id.
	FindCandidates(ctx context.Context, q CandidateQuery) ([]*Profile, error)
}

// SwipeStore persists swipes and answers the queries built on them.
type SwipeStore interface {
	// LockUser holds an exclusive lock on userID until Atomic returns.
	// Writes that involve two users lock both, smaller id first, so
	// reciprocal swipes run one after the other and lock order never
	// inverts. Queue rebuilds lock only the queue owner.
	LockUser(ctx context.Context, userID uint64) error
	// InsertSwipe sets s.ID. A duplicate live swipe yields ErrAlreadySwiped.
	InsertSwipe(ctx context.Context, s *Swipe) error
	// LiveSwipe returns ErrNotFound when the actor has no live swipe on target.
	LiveSwipe(ctx context.Context, actorID, targetID uint64) (*Swipe, error)
	MarkUndone(ctx context.Context, swipeID uint64, at time.Time) error
	// SwipeWindow counts live swipes by actor created at or after since,
	// restricted to types when given, and returns the oldest timestamp seen.
	SwipeWindow(ctx context.Context, actorID uint64, since time.Time, types ...SwipeType) (int, time.Time, error)
	// SuperLikers returns which of candidateIDs hold a live super-like on userID.
	SuperLikers(ctx context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error)
	// ActedOn returns which of candidateIDs userID has a live swipe on or an
	// active match with.
	ActedOn(ctx context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error)
	// MutualLikesWithoutMatch lists canonical pairs that like each other but
	// have no match row at all.
	MutualLikesWithoutMatch(ctx context.Context, limit int) ([][2]uint64, error)
}

// MatchStore persists matches keyed on the canonical pair.
type MatchStore interface {
	// UpsertMatch creates the pair's match or reactivates an existing row.
	UpsertMatch(ctx context.Context, user1ID, user2ID uint64, at time.Time) (*Match, error)
	// MatchBetween returns ErrNotFound when the pair never matched.
	MatchBetween(ctx context.Context, user1ID, user2ID uint64) (*Match, error)
	SetMatchStatus(ctx context.Context, matchID uint64, status MatchStatus, at time.Time) error
	ActiveMatches(ctx context.Context, userID uint64, limit int) ([]Match, error)
}

// QueueStore persists per-user queues.
type QueueStore interface {
	// Queue returns entries ordered by priority desc, score desc, candidate asc.
	Queue(ctx context.Context, userID uint64) ([]QueueEntry, error)
	// ReplaceQueue swaps the stored queue for entries in one step.
	ReplaceQueue(ctx context.Context, userID uint64, entries []QueueEntry) error
	RemoveQueueEntry(ctx context.Context, userID, candidateID uint64) error
	PruneQueues(ctx context.Context, shownBefore time.Time) (int64, error)
}

// Store is everything the matching core persists.
type Store interface {
	ProfileStore
	SwipeStore
	MatchStore
	QueueStore

	// Atomic runs fn against a transactional view of the store. An error
	// returned by fn rolls back every write made through that view.
	Atomic(ctx context.Context, fn func(Store) error) error
}
