package db

import (
	"time"
)

// User is the directory row for an account. Username doubles as the display name.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	Gender       string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Profile holds the attributes used for filtering and scoring.
//
// Indexes:
//   - idx_profiles_filter(gender, age, last_active) narrows the candidate scan
//     before the NOT EXISTS exclusions run.
type Profile struct {
	UserID            uint64     `gorm:"primaryKey;autoIncrement:false"`
	Age               int        `gorm:"not null;index:idx_profiles_filter,priority:2"`
	Gender            string     `gorm:"size:16;not null;index:idx_profiles_filter,priority:1"`
	Orientation       string     `gorm:"size:32"`
	Location          string     `gorm:"size:255"`
	Latitude          *float64   `gorm:"type:decimal(10,7)"`
	Longitude         *float64   `gorm:"type:decimal(10,7)"`
	Bio               string     `gorm:"type:text"`
	Profession        string     `gorm:"size:128"`
	Education         string     `gorm:"size:128"`
	LastActive        *time.Time `gorm:"index:idx_profiles_filter,priority:3"`
	ProfileCompletion int        `gorm:"not null"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

// Preference is one-to-one with Profile.
type Preference struct {
	UserID          uint64  `gorm:"primaryKey;autoIncrement:false"`
	MinAge          int     `gorm:"not null"`
	MaxAge          int     `gorm:"not null"`
	MaxDistance     float64 `gorm:"not null"`
	PreferredGender string  `gorm:"size:16;not null"`
	NotifyMatches   bool    `gorm:"not null"`
	NotifySuperLike bool    `gorm:"not null"`
	UpdatedAt       time.Time
}

// Interest rows are replaced wholesale whenever a profile is saved.
type Interest struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserID   uint64 `gorm:"not null;index"`
	Category string `gorm:"size:64;not null"`
	Name     string `gorm:"size:64;not null"`
}

// Swipe is an append-only decision of an actor about a target.
//
// Live is true while the swipe counts and NULL once undone. The unique index
// over (actor_id, target_id, live) therefore allows one live swipe per
// ordered pair and any number of undone ones (NULLs never collide).
//
// Indexes:
//   - idx_swipes_live_pair: duplicate guard and reciprocal lookups.
//   - idx_swipes_actor_created(actor_id, created_at): rate-limit windows.
//   - idx_swipes_target_type(target_id, type): super-liker and liked-you scans.
type Swipe struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	ActorID   uint64     `gorm:"not null;uniqueIndex:idx_swipes_live_pair,priority:1;index:idx_swipes_actor_created,priority:1"`
	TargetID  uint64     `gorm:"not null;uniqueIndex:idx_swipes_live_pair,priority:2;index:idx_swipes_target_type,priority:1"`
	Type      string     `gorm:"size:16;not null;index:idx_swipes_target_type,priority:2"`
	IP        string     `gorm:"size:45"`
	Undone    bool       `gorm:"not null"`
	Live      *bool      `gorm:"uniqueIndex:idx_swipes_live_pair,priority:3"`
	CreatedAt time.Time  `gorm:"not null;index:idx_swipes_actor_created,priority:2"`
	UndoneAt  *time.Time
}

// Match is keyed by the canonical pair, User1ID < User2ID.
type Match struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	User1ID     uint64     `gorm:"not null;uniqueIndex:idx_matches_pair,priority:1"`
	User2ID     uint64     `gorm:"not null;uniqueIndex:idx_matches_pair,priority:2;index"`
	Status      string     `gorm:"size:16;not null"`
	MatchedAt   time.Time  `gorm:"not null"`
	UnmatchedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// QueueEntry is one ranked recommendation in a user's queue.
// Composite PK: (UserID, CandidateID).
type QueueEntry struct {
	UserID             uint64    `gorm:"primaryKey;autoIncrement:false"`
	CandidateID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	CompatibilityScore float64   `gorm:"not null"`
	Priority           int       `gorm:"not null"`
	Distance           *float64
	LastShown          time.Time `gorm:"not null;index"`
}

// Models lists every table for migrations.
func Models() []any {
	return []any{&User{}, &Profile{}, &Preference{}, &Interest{}, &Swipe{}, &Match{}, &QueueEntry{}}
}
