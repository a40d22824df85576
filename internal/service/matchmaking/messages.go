package matchmaking

// Request and response messages of matchmaking.v1.Matchmaking. They travel
// as JSON over gRPC; validate tags are checked before any handler logic.

type Empty struct{}

type BuildQueueRequest struct {
	UserID       uint64 `json:"user_id" validate:"required"`
	ForceRefresh bool   `json:"force_refresh"`
}

type PeekQueueRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

type QueueItem struct {
	CandidateID uint64   `json:"candidate_id"`
	DisplayName string   `json:"display_name,omitempty"`
	Score       float64  `json:"score"`
	Priority    int      `json:"priority"`
	Distance    *float64 `json:"distance,omitempty"`
}

type QueueResponse struct {
	Entries []QueueItem `json:"entries"`
}

type ProcessSwipeRequest struct {
	ActorUserID     uint64 `json:"actor_user_id" validate:"required"`
	RecipientUserID uint64 `json:"recipient_user_id" validate:"required,nefield=ActorUserID"`
	Type            string `json:"type" validate:"required,swipetype"`
	IP              string `json:"ip,omitempty" validate:"omitempty,ip"`
}

type ProcessSwipeResponse struct {
	SwipeID       uint64 `json:"swipe_id"`
	Type          string `json:"type"`
	IsMatch       bool   `json:"is_match"`
	MatchID       uint64 `json:"match_id,omitempty"`
	SuperLikeSent bool   `json:"super_like_sent,omitempty"`
}

type PairRequest struct {
	ActorUserID     uint64 `json:"actor_user_id" validate:"required"`
	RecipientUserID uint64 `json:"recipient_user_id" validate:"required,nefield=ActorUserID"`
}

type PairStateResponse struct {
	State string `json:"state"`
}

type ScoreRequest struct {
	UserID      uint64 `json:"user_id" validate:"required"`
	CandidateID uint64 `json:"candidate_id" validate:"required,nefield=UserID"`
}

type ScoreResponse struct {
	Score   float64            `json:"score"`
	Factors map[string]float64 `json:"factors"`
}

type QuotaRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

type QuotaResponse struct {
	SwipesUsed               int   `json:"swipes_used"`
	SwipesRemaining          int   `json:"swipes_remaining"`
	SwipesResetInSeconds     int64 `json:"swipes_reset_in_seconds"`
	SuperLikesUsed           int   `json:"super_likes_used"`
	SuperLikesRemaining      int   `json:"super_likes_remaining"`
	SuperLikesResetInSeconds int64 `json:"super_likes_reset_in_seconds"`
}

type InterestInput struct {
	Category string `json:"category" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=64"`
}

type SaveProfileRequest struct {
	UserID      uint64          `json:"user_id" validate:"required"`
	Age         int             `json:"age" validate:"gte=18,lte=120"`
	Gender      string          `json:"gender" validate:"required,max=16"`
	Orientation string          `json:"orientation,omitempty" validate:"max=32"`
	Location    string          `json:"location,omitempty" validate:"max=255"`
	Latitude    *float64        `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64        `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Bio         string          `json:"bio,omitempty"`
	Profession  string          `json:"profession,omitempty" validate:"max=128"`
	Education   string          `json:"education,omitempty" validate:"max=128"`
	Interests   []InterestInput `json:"interests,omitempty" validate:"max=50,dive"`
}

type SaveProfileResponse struct {
	Completion int `json:"completion"`
}

type SavePreferenceRequest struct {
	UserID          uint64  `json:"user_id" validate:"required"`
	MinAge          int     `json:"min_age" validate:"omitempty,gte=18,lte=120"`
	MaxAge          int     `json:"max_age" validate:"omitempty,gte=18,lte=120"`
	MaxDistance     float64 `json:"max_distance" validate:"gte=0"`
	Gender          string  `json:"gender" validate:"max=16"`
	NotifyMatches   bool    `json:"notify_matches"`
	NotifySuperLike bool    `json:"notify_super_likes"`
}

type ListLikedYouRequest struct {
	RecipientUserID uint64 `json:"recipient_user_id" validate:"required"`
	PaginationToken string `json:"pagination_token,omitempty"`
	Limit           int    `json:"limit,omitempty" validate:"gte=0,lte=100"`
	// OnlyNew hides likers the recipient already swiped on.
	OnlyNew bool `json:"only_new,omitempty"`
}

type Liker struct {
	ActorID       uint64 `json:"actor_id"`
	DisplayName   string `json:"display_name,omitempty"`
	Type          string `json:"type"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

type ListLikedYouResponse struct {
	Likers              []Liker `json:"likers"`
	NextPaginationToken string  `json:"next_pagination_token,omitempty"`
}

type CountLikedYouRequest struct {
	RecipientUserID uint64 `json:"recipient_user_id" validate:"required"`
	OnlyNew         bool   `json:"only_new,omitempty"`
}

type CountLikedYouResponse struct {
	Count uint64 `json:"count"`
}

type ListMatchesRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0,lte=200"`
}

type MatchItem struct {
	MatchID       uint64 `json:"match_id"`
	UserID        uint64 `json:"user_id"`
	DisplayName   string `json:"display_name,omitempty"`
	MatchedAtUnix int64  `json:"matched_at_unix"`
}

type ListMatchesResponse struct {
	Matches []MatchItem `json:"matches"`
}
