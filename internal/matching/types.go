package matching

import (
	"strings"
	"time"
)

// SwipeType is the decision an actor makes about a target.
type SwipeType string

const (
	SwipeLike      SwipeType = "like"
	SwipePass      SwipeType = "pass"
	SwipeSuperLike SwipeType = "super_like"
)

// ParseSwipeType accepts the canonical names plus "superlike".
func ParseSwipeType(s string) (SwipeType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like":
		return SwipeLike, true
	case "pass":
		return SwipePass, true
	case "super_like", "superlike":
		return SwipeSuperLike, true
	}
	return "", false
}

func (t SwipeType) Valid() bool {
	return t == SwipeLike || t == SwipePass || t == SwipeSuperLike
}

// IsLike reports whether the swipe counts toward a mutual match.
func (t SwipeType) IsLike() bool {
	return t == SwipeLike || t == SwipeSuperLike
}

type MatchStatus string

const (
	MatchActive    MatchStatus = "active"
	MatchUnmatched MatchStatus = "unmatched"
)

// PairState is the state of an ordered (actor, target) pair.
type PairState string

const (
	PairNone      PairState = "none"
	PairSwiped    PairState = "swiped"
	PairMatched   PairState = "matched"
	PairUnmatched PairState = "unmatched"
)

// GenderAny disables the gender filter.
const GenderAny = "any"

type Interest struct {
	Category string
	Name     string
}

type Profile struct {
	UserID      uint64
	Age         int
	Gender      string
	Orientation string
	Location    string
	Latitude    *float64
	Longitude   *float64
	Bio         string
	Profession  string
	Education   string
	LastActive  *time.Time
	Completion  int
	Interests   []Interest
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p *Profile) HasCoordinates() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

type Preference struct {
	UserID          uint64
	MinAge          int
	MaxAge          int
	MaxDistance     float64
	Gender          string
	NotifyMatches   bool
	NotifySuperLike bool
}

// Candidate is a profile that survived filtering. Distance is in the
// configured unit and is nil when no distance could be computed.
type Candidate struct {
	Profile  *Profile
	Distance *float64
}

type Swipe struct {
	ID        uint64
	ActorID   uint64
	TargetID  uint64
	Type      SwipeType
	IP        string
	Undone    bool
	CreatedAt time.Time
	UndoneAt  *time.Time
}

type Match struct {
	ID          uint64
	User1ID     uint64
	User2ID     uint64
	Status      MatchStatus
	MatchedAt   time.Time
	UnmatchedAt *time.Time
}

// Other returns the member of the match that is not userID.
func (m Match) Other(userID uint64) uint64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// CanonicalPair orders a pair so the smaller id comes first.
func CanonicalPair(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

type QueueEntry struct {
	UserID      uint64
	CandidateID uint64
	Score       float64
	Priority    int
	Distance    *float64
	LastShown   time.Time
}

type SwipeInput struct {
	ActorID  uint64
	TargetID uint64
	Type     SwipeType
	IP       string
}

type SwipeResult struct {
	SwipeID uint64
	Type    SwipeType
	IsMatch bool
	MatchID uint64
	// SuperLikeSent is set when a super-like did not produce a match and the
	// target was notified instead.
	SuperLikeSent bool
}

// Quota is a snapshot of a user's remaining action budget.
type Quota struct {
	SwipesUsed        int
	SwipesLimit       int
	SwipesResetIn     time.Duration
	SuperLikesUsed    int
	SuperLikesLimit   int
	SuperLikesResetIn time.Duration
}

func (q Quota) SwipesRemaining() int {
	return remaining(q.SwipesLimit, q.SwipesUsed)
}

func (q Quota) SuperLikesRemaining() int {
	return remaining(q.SuperLikesLimit, q.SuperLikesUsed)
}

func remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
