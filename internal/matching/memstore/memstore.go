// Package memstore is an in-memory matching.Store for tests and local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

type state struct {
	profiles    map[uint64]*matching.Profile
	prefs       map[uint64]*matching.Preference
	swipes      []matching.Swipe
	matches     []matching.Match
	queues      map[uint64][]matching.QueueEntry
	nextSwipeID uint64
	nextMatchID uint64
}

func newState() *state {
	return &state{
		profiles: map[uint64]*matching.Profile{},
		prefs:    map[uint64]*matching.Preference{},
		queues:   map[uint64][]matching.QueueEntry{},
	}
}

func (s *state) clone() *state {
	c := &state{
		profiles:    make(map[uint64]*matching.Profile, len(s.profiles)),
		prefs:       make(map[uint64]*matching.Preference, len(s.prefs)),
		swipes:      append([]matching.Swipe(nil), s.swipes...),
		matches:     append([]matching.Match(nil), s.matches...),
		queues:      make(map[uint64][]matching.QueueEntry, len(s.queues)),
		nextSwipeID: s.nextSwipeID,
		nextMatchID: s.nextMatchID,
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.prefs {
		c.prefs[k] = v
	}
	for k, v := range s.queues {
		c.queues[k] = append([]matching.QueueEntry(nil), v...)
	}
	return c
}

// Store guards a state with a mutex. Atomic works on a copy that replaces
// the state only when fn succeeds.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ matching.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) view() *view { return &view{st: s.st} }

// PutProfile stores a copy of p.
func (s *Store) PutProfile(p matching.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Interests = append([]matching.Interest(nil), p.Interests...)
	s.st.profiles[p.UserID] = &p
}

// PutPreference stores a copy of p.
func (s *Store) PutPreference(p matching.Preference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.prefs[p.UserID] = &p
}

// Swipes returns every stored swipe, undone ones included.
func (s *Store) Swipes() []matching.Swipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]matching.Swipe(nil), s.st.swipes...)
}

// Matches returns every stored match.
func (s *Store) Matches() []matching.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]matching.Match(nil), s.st.matches...)
}

func (s *Store) Atomic(ctx context.Context, fn func(matching.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if err := fn(&view{st: next}); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Store) Profile(ctx context.Context, userID uint64) (*matching.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Profile(ctx, userID)
}

func (s *Store) Preference(ctx context.Context, userID uint64) (*matching.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Preference(ctx, userID)
}

func (s *Store) FindCandidates(ctx context.Context, q matching.CandidateQuery) ([]*matching.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().FindCandidates(ctx, q)
}

func (s *Store) LockUser(ctx context.Context, userID uint64) error { return nil }

func (s *Store) InsertSwipe(ctx context.Context, sw *matching.Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().InsertSwipe(ctx, sw)
}

func (s *Store) LiveSwipe(ctx context.Context, actorID, targetID uint64) (*matching.Swipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().LiveSwipe(ctx, actorID, targetID)
}

func (s *Store) MarkUndone(ctx context.Context, swipeID uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().MarkUndone(ctx, swipeID, at)
}

func (s *Store) SwipeWindow(ctx context.Context, actorID uint64, since time.Time, types ...matching.SwipeType) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SwipeWindow(ctx, actorID, since, types...)
}

func (s *Store) SuperLikers(ctx context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SuperLikers(ctx, userID, candidateIDs)
}

func (s *Store) ActedOn(ctx context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ActedOn(ctx, userID, candidateIDs)
}

func (s *Store) MutualLikesWithoutMatch(ctx context.Context, limit int) ([][2]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().MutualLikesWithoutMatch(ctx, limit)
}

func (s *Store) UpsertMatch(ctx context.Context, user1ID, user2ID uint64, at time.Time) (*matching.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpsertMatch(ctx, user1ID, user2ID, at)
}

func (s *Store) MatchBetween(ctx context.Context, user1ID, user2ID uint64) (*matching.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().MatchBetween(ctx, user1ID, user2ID)
}

func (s *Store) SetMatchStatus(ctx context.Context, matchID uint64, status matching.MatchStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SetMatchStatus(ctx, matchID, status, at)
}

func (s *Store) ActiveMatches(ctx context.Context, userID uint64, limit int) ([]matching.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ActiveMatches(ctx, userID, limit)
}

func (s *Store) Queue(ctx context.Context, userID uint64) ([]matching.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Queue(ctx, userID)
}

func (s *Store) ReplaceQueue(ctx context.Context, userID uint64, entries []matching.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ReplaceQueue(ctx, userID, entries)
}

func (s *Store) RemoveQueueEntry(ctx context.Context, userID, candidateID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().RemoveQueueEntry(ctx, userID, candidateID)
}

func (s *Store) PruneQueues(ctx context.Context, shownBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().PruneQueues(ctx, shownBefore)
}

// view implements matching.Store over a state without locking.
type view struct {
	st *state
}

func (v *view) Atomic(ctx context.Context, fn func(matching.Store) error) error {
	return fn(v)
}

func (v *view) Profile(_ context.Context, userID uint64) (*matching.Profile, error) {
	p, ok := v.st.profiles[userID]
	if !ok {
		return nil, matching.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (v *view) Preference(_ context.Context, userID uint64) (*matching.Preference, error) {
	p, ok := v.st.prefs[userID]
	if !ok {
		return nil, matching.ErrNoPreferences
	}
	cp := *p
	return &cp, nil
}

func (v *view) FindCandidates(_ context.Context, q matching.CandidateQuery) ([]*matching.Profile, error) {
	var out []*matching.Profile
	for id, p := range v.st.profiles {
		if id == q.UserID {
			continue
		}
		if p.Age < q.MinAge || p.Age > q.MaxAge {
			continue
		}
		if q.Gender != "" && p.Gender != q.Gender {
			continue
		}
		if v.live(q.UserID, id) != nil || v.activeMatch(q.UserID, id) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastActive, out[j].LastActive
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].UserID < out[j].UserID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (v *view) LockUser(context.Context, uint64) error { return nil }

func (v *view) live(actorID, targetID uint64) *matching.Swipe {
	for i := range v.st.swipes {
		s := &v.st.swipes[i]
		if s.ActorID == actorID && s.TargetID == targetID && !s.Undone {
			return s
		}
	}
	return nil
}

func (v *view) activeMatch(a, b uint64) bool {
	u1, u2 := matching.CanonicalPair(a, b)
	for _, m := range v.st.matches {
		if m.User1ID == u1 && m.User2ID == u2 && m.Status == matching.MatchActive {
			return true
		}
	}
	return false
}

func (v *view) InsertSwipe(_ context.Context, sw *matching.Swipe) error {
	if v.live(sw.ActorID, sw.TargetID) != nil {
		return matching.ErrAlreadySwiped
	}
	v.st.nextSwipeID++
	sw.ID = v.st.nextSwipeID
	v.st.swipes = append(v.st.swipes, *sw)
	return nil
}

func (v *view) LiveSwipe(_ context.Context, actorID, targetID uint64) (*matching.Swipe, error) {
	s := v.live(actorID, targetID)
	if s == nil {
		return nil, matching.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (v *view) MarkUndone(_ context.Context, swipeID uint64, at time.Time) error {
	for i := range v.st.swipes {
		if v.st.swipes[i].ID == swipeID {
			v.st.swipes[i].Undone = true
			v.st.swipes[i].UndoneAt = &at
			return nil
		}
	}
	return matching.ErrNotFound
}

func (v *view) SwipeWindow(_ context.Context, actorID uint64, since time.Time, types ...matching.SwipeType) (int, time.Time, error) {
	var (
		n      int
		oldest time.Time
	)
	for _, s := range v.st.swipes {
		if s.ActorID != actorID || s.Undone || s.CreatedAt.Before(since) {
			continue
		}
		if len(types) > 0 && !hasType(types, s.Type) {
			continue
		}
		n++
		if oldest.IsZero() || s.CreatedAt.Before(oldest) {
			oldest = s.CreatedAt
		}
	}
	return n, oldest, nil
}

func hasType(types []matching.SwipeType, t matching.SwipeType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func (v *view) SuperLikers(_ context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	out := map[uint64]bool{}
	for _, id := range candidateIDs {
		if s := v.live(id, userID); s != nil && s.Type == matching.SwipeSuperLike {
			out[id] = true
		}
	}
	return out, nil
}

func (v *view) ActedOn(_ context.Context, userID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	out := map[uint64]bool{}
	for _, id := range candidateIDs {
		if v.live(userID, id) != nil || v.activeMatch(userID, id) {
			out[id] = true
		}
	}
	return out, nil
}

func (v *view) MutualLikesWithoutMatch(_ context.Context, limit int) ([][2]uint64, error) {
	var out [][2]uint64
	for _, s := range v.st.swipes {
		if s.Undone || !s.Type.IsLike() || s.ActorID >= s.TargetID {
			continue
		}
		back := v.live(s.TargetID, s.ActorID)
		if back == nil || !back.Type.IsLike() {
			continue
		}
		if _, err := v.MatchBetween(context.Background(), s.ActorID, s.TargetID); err == nil {
			continue
		}
		out = append(out, [2]uint64{s.ActorID, s.TargetID})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (v *view) UpsertMatch(_ context.Context, user1ID, user2ID uint64, at time.Time) (*matching.Match, error) {
	for i := range v.st.matches {
		m := &v.st.matches[i]
		if m.User1ID == user1ID && m.User2ID == user2ID {
			if m.Status != matching.MatchActive {
				m.Status = matching.MatchActive
				m.MatchedAt = at
				m.UnmatchedAt = nil
			}
			cp := *m
			return &cp, nil
		}
	}
	v.st.nextMatchID++
	m := matching.Match{
		ID:        v.st.nextMatchID,
		User1ID:   user1ID,
		User2ID:   user2ID,
		Status:    matching.MatchActive,
		MatchedAt: at,
	}
	v.st.matches = append(v.st.matches, m)
	return &m, nil
}

func (v *view) MatchBetween(_ context.Context, user1ID, user2ID uint64) (*matching.Match, error) {
	for _, m := range v.st.matches {
		if m.User1ID == user1ID && m.User2ID == user2ID {
			cp := m
			return &cp, nil
		}
	}
	return nil, matching.ErrNotFound
}

func (v *view) SetMatchStatus(_ context.Context, matchID uint64, status matching.MatchStatus, at time.Time) error {
	for i := range v.st.matches {
		m := &v.st.matches[i]
		if m.ID != matchID {
			continue
		}
		m.Status = status
		if status == matching.MatchUnmatched {
			m.UnmatchedAt = &at
		}
		return nil
	}
	return matching.ErrNotFound
}

func (v *view) ActiveMatches(_ context.Context, userID uint64, limit int) ([]matching.Match, error) {
	var out []matching.Match
	for _, m := range v.st.matches {
		if m.Status == matching.MatchActive && (m.User1ID == userID || m.User2ID == userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchedAt.Equal(out[j].MatchedAt) {
			return out[i].MatchedAt.After(out[j].MatchedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *view) Queue(_ context.Context, userID uint64) ([]matching.QueueEntry, error) {
	out := append([]matching.QueueEntry{}, v.st.queues[userID]...)
	matching.SortQueue(out)
	return out, nil
}

func (v *view) ReplaceQueue(_ context.Context, userID uint64, entries []matching.QueueEntry) error {
	if len(entries) == 0 {
		delete(v.st.queues, userID)
		return nil
	}
	v.st.queues[userID] = append([]matching.QueueEntry(nil), entries...)
	return nil
}

func (v *view) RemoveQueueEntry(_ context.Context, userID, candidateID uint64) error {
	q := v.st.queues[userID]
	for i, e := range q {
		if e.CandidateID == candidateID {
			v.st.queues[userID] = append(q[:i:i], q[i+1:]...)
			return nil
		}
	}
	return nil
}

func (v *view) PruneQueues(_ context.Context, shownBefore time.Time) (int64, error) {
	var n int64
	for user, q := range v.st.queues {
		kept := q[:0:0]
		for _, e := range q {
			if e.LastShown.Before(shownBefore) {
				n++
				continue
			}
			kept = append(kept, e)
		}
		v.st.queues[user] = kept
	}
	return n, nil
}
