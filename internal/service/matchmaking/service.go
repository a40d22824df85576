package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
	"github.com/oggyb/muzz-matchmaking/internal/validation"
)

const (
	defaultLikedYouPage = 20
	defaultMatchesPage  = 50
)

// Service implements the Matchmaking gRPC API on top of the matching engine,
// the GORM store and the Redis cache.
type Service struct {
	appCtx *app.AppContext
	store  *repository.Store
	users  *repository.UserRepository
	engine *matching.Engine
}

// NewService creates the service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	store := repository.NewStore(appCtx.DB)
	return &Service{
		appCtx: appCtx,
		store:  store,
		users:  repository.NewUserRepository(appCtx.DB),
		engine: appCtx.NewEngine(store),
	}
}

// Engine exposes the underlying engine for background jobs.
func (s *Service) Engine() *matching.Engine { return s.engine }

// BuildQueue returns the user's ranked queue, rebuilding it when it is short
// or when force_refresh is set.
func (s *Service) BuildQueue(ctx context.Context, req *BuildQueueRequest) (*QueueResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	log := logger.FromContext(ctx)
	log.Debug("BuildQueue called", "user_id", req.UserID, "force", req.ForceRefresh)

	start := time.Now()
	entries, err := s.engine.Queues.Build(ctx, req.UserID, req.ForceRefresh)
	if s.appCtx.Metrics != nil {
		s.appCtx.Metrics.ObserveQueueBuild(start, err)
	}
	if err != nil {
		log.Error("queue build failed", "user_id", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}
	return s.queueResponse(ctx, entries)
}

// PeekQueue returns the stored queue without rebuilding it.
func (s *Service) PeekQueue(ctx context.Context, req *PeekQueueRequest) (*QueueResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	entries, err := s.engine.Queues.Peek(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.queueResponse(ctx, entries)
}

func (s *Service) queueResponse(ctx context.Context, entries []matching.QueueEntry) (*QueueResponse, error) {
	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CandidateID)
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &QueueResponse{Entries: make([]QueueItem, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, QueueItem{
			CandidateID: e.CandidateID,
			DisplayName: names[e.CandidateID],
			Score:       e.Score,
			Priority:    e.Priority,
			Distance:    e.Distance,
		})
	}
	return resp, nil
}

// ProcessSwipe records a like, pass or super-like and reports a match.
//
// Behavior:
//   - Rate limits and duplicate checks run inside the swipe transaction.
//   - Liked-you counters of both users are invalidated on success.
//   - The actor's last_active is bumped; a failure there is only logged.
func (s *Service) ProcessSwipe(ctx context.Context, req *ProcessSwipeRequest) (*ProcessSwipeResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	log := logger.FromContext(ctx)
	log.Debug("ProcessSwipe called", "actor", req.ActorUserID, "recipient", req.RecipientUserID, "type", req.Type)

	typ, ok := matching.ParseSwipeType(req.Type)
	if !ok {
		return nil, svcErr.InvalidArgument(fmt.Sprintf("unknown swipe type %q", req.Type))
	}
	res, err := s.engine.Swipes.Process(ctx, matching.SwipeInput{
		ActorID:  req.ActorUserID,
		TargetID: req.RecipientUserID,
		Type:     typ,
		IP:       req.IP,
	})
	if err != nil {
		s.countRejection(err)
		return nil, svcErr.Map(err)
	}

	s.invalidateLikeCounts(ctx, req.ActorUserID, req.RecipientUserID)
	if err := s.store.TouchLastActive(ctx, req.ActorUserID, s.appCtx.Clock.Now()); err != nil {
		log.Warn("touch last_active failed", "user_id", req.ActorUserID, "err", err)
	}

	return &ProcessSwipeResponse{
		SwipeID:       res.SwipeID,
		Type:          string(res.Type),
		IsMatch:       res.IsMatch,
		MatchID:       res.MatchID,
		SuperLikeSent: res.SuperLikeSent,
	}, nil
}

func (s *Service) countRejection(err error) {
	if s.appCtx.Metrics == nil {
		return
	}
	switch {
	case errors.Is(err, matching.ErrRateLimitExceeded):
		s.appCtx.Metrics.RejectSwipe("rate_limited")
	case errors.Is(err, matching.ErrSuperLikeLimitExceeded):
		s.appCtx.Metrics.RejectSwipe("super_like_limited")
	case errors.Is(err, matching.ErrAlreadySwiped):
		s.appCtx.Metrics.RejectSwipe("duplicate")
	case errors.Is(err, matching.ErrInvalidParameters):
		s.appCtx.Metrics.RejectSwipe("invalid")
	}
}

// UndoSwipe reverts the actor's live swipe on the recipient.
func (s *Service) UndoSwipe(ctx context.Context, req *PairRequest) (*Empty, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.engine.Swipes.Undo(ctx, req.ActorUserID, req.RecipientUserID); err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateLikeCounts(ctx, req.ActorUserID, req.RecipientUserID)
	return &Empty{}, nil
}

// Unmatch ends an active match. actor_user_id is the user asking.
func (s *Service) Unmatch(ctx context.Context, req *PairRequest) (*Empty, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.engine.Swipes.Unmatch(ctx, req.ActorUserID, req.RecipientUserID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

func (s *Service) PairState(ctx context.Context, req *PairRequest) (*PairStateResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	st, err := s.engine.Swipes.State(ctx, req.ActorUserID, req.RecipientUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &PairStateResponse{State: string(st)}, nil
}

// Score returns the compatibility of two profiles with its factor breakdown.
// Factors that do not apply are omitted.
func (s *Service) Score(ctx context.Context, req *ScoreRequest) (*ScoreResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	a, err := s.store.Profile(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	b, err := s.store.Profile(ctx, req.CandidateID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	f := s.engine.Scorer.Breakdown(a, b)
	factors := map[string]float64{}
	for name, v := range map[string]*float64{
		"age":          f.Age,
		"distance":     f.Distance,
		"interests":    f.Interests,
		"activity":     f.Activity,
		"completeness": f.Completeness,
	} {
		if v != nil {
			factors[name] = *v
		}
	}
	return &ScoreResponse{Score: s.engine.Scorer.Score(ctx, a, b), Factors: factors}, nil
}

func (s *Service) GetQuota(ctx context.Context, req *QuotaRequest) (*QuotaResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	q, err := s.engine.Swipes.Quota(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &QuotaResponse{
		SwipesUsed:               q.SwipesUsed,
		SwipesRemaining:          q.SwipesRemaining(),
		SwipesResetInSeconds:     int64(q.SwipesResetIn / time.Second),
		SuperLikesUsed:           q.SuperLikesUsed,
		SuperLikesRemaining:      q.SuperLikesRemaining(),
		SuperLikesResetInSeconds: int64(q.SuperLikesResetIn / time.Second),
	}, nil
}

// SaveProfile upserts the profile, replaces its interests and recomputes
// profile completion.
func (s *Service) SaveProfile(ctx context.Context, req *SaveProfileRequest) (*SaveProfileResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, svcErr.InvalidArgument("latitude and longitude must be set together")
	}

	now := s.appCtx.Clock.Now()
	p := &matching.Profile{
		UserID:      req.UserID,
		Age:         req.Age,
		Gender:      strings.ToLower(strings.TrimSpace(req.Gender)),
		Orientation: req.Orientation,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Bio:         req.Bio,
		Profession:  req.Profession,
		Education:   req.Education,
		LastActive:  &now,
	}
	for _, i := range req.Interests {
		p.Interests = append(p.Interests, matching.Interest{Category: i.Category, Name: strings.TrimSpace(i.Name)})
	}
	p.Completion = matching.Completion(p, len(p.Interests))

	if err := s.store.SaveProfile(ctx, p); err != nil {
		logger.FromContext(ctx).Error("save profile failed", "user_id", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &SaveProfileResponse{Completion: p.Completion}, nil
}

// SavePreference upserts match preferences. Empty gender means any.
func (s *Service) SavePreference(ctx context.Context, req *SavePreferenceRequest) (*Empty, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	if req.MinAge > 0 && req.MaxAge > 0 && req.MinAge > req.MaxAge {
		return nil, svcErr.InvalidArgument(fmt.Sprintf("min_age %d exceeds max_age %d", req.MinAge, req.MaxAge))
	}
	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	if gender == "" {
		gender = matching.GenderAny
	}
	err := s.store.SavePreference(ctx, &matching.Preference{
		UserID:          req.UserID,
		MinAge:          req.MinAge,
		MaxAge:          req.MaxAge,
		MaxDistance:     req.MaxDistance,
		Gender:          gender,
		NotifyMatches:   req.NotifyMatches,
		NotifySuperLike: req.NotifySuperLike,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

// ListLikedYou returns users who liked or super-liked the recipient.
//
// Behavior:
//   - Excludes users that the recipient explicitly passed.
//   - only_new additionally hides anyone the recipient already swiped on.
//   - Supports cursor-based pagination with pagination_token.
func (s *Service) ListLikedYou(ctx context.Context, req *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	log := logger.FromContext(ctx)
	log.Debug("ListLikedYou called", "recipient", req.RecipientUserID, "token", req.PaginationToken)

	limit := req.Limit
	if limit == 0 {
		limit = defaultLikedYouPage
	}
	likers, next, err := s.store.GetLikers(ctx, req.RecipientUserID, req.PaginationToken, limit,
		repository.LikersFilter{Unanswered: req.OnlyNew})
	if err != nil {
		log.Error("GetLikers failed", "err", err)
		return nil, svcErr.Map(err)
	}

	ids := make([]uint64, 0, len(likers))
	for _, l := range likers {
		ids = append(ids, l.ActorID)
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &ListLikedYouResponse{Likers: make([]Liker, 0, len(likers)), NextPaginationToken: next}
	for _, l := range likers {
		resp.Likers = append(resp.Likers, Liker{
			ActorID:       l.ActorID,
			DisplayName:   names[l.ActorID],
			Type:          string(l.Type),
			UnixTimestamp: l.CreatedAt.UnixMilli(),
		})
	}
	log.Debug("ListLikedYou result", "liker_count", len(resp.Likers), "next_token", next)
	return resp, nil
}

// CountLikedYou returns how many users liked the recipient.
// Cache-first strategy:
//  1. Attempts to read from Redis.
//  2. On a miss or a Redis error, falls back to the DB.
//  3. On DB fetch, stores the count with the configured TTL.
func (s *Service) CountLikedYou(ctx context.Context, req *CountLikedYouRequest) (*CountLikedYouResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	log := logger.FromContext(ctx)
	rc := s.appCtx.RedisCache

	if rc != nil {
		n, ok, err := rc.GetLikeCount(ctx, req.RecipientUserID, req.OnlyNew)
		if err != nil {
			log.Warn("like count cache read failed", "err", err)
		} else if ok {
			return &CountLikedYouResponse{Count: uint64(n)}, nil
		}
	}

	count, err := s.store.CountLikers(ctx, req.RecipientUserID, repository.LikersFilter{Unanswered: req.OnlyNew})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if rc != nil {
		if err := rc.SetLikeCount(ctx, req.RecipientUserID, req.OnlyNew, count); err != nil {
			log.Warn("like count cache write failed", "err", err)
		}
	}
	return &CountLikedYouResponse{Count: uint64(count)}, nil
}

// ListMatches returns the user's active matches, newest first.
func (s *Service) ListMatches(ctx context.Context, req *ListMatchesRequest) (*ListMatchesResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultMatchesPage
	}
	matches, err := s.engine.Swipes.Matches(ctx, req.UserID, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	ids := make([]uint64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Other(req.UserID))
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &ListMatchesResponse{Matches: make([]MatchItem, 0, len(matches))}
	for _, m := range matches {
		other := m.Other(req.UserID)
		resp.Matches = append(resp.Matches, MatchItem{
			MatchID:       m.ID,
			UserID:        other,
			DisplayName:   names[other],
			MatchedAtUnix: m.MatchedAt.Unix(),
		})
	}
	return resp, nil
}

// invalidateLikeCounts drops cached liked-you counters touched by a swipe
// between the two users. Cache failures are logged and ignored.
func (s *Service) invalidateLikeCounts(ctx context.Context, userIDs ...uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateLikeCounts(ctx, userIDs...); err != nil {
		logger.FromContext(ctx).Warn("like count invalidation failed", "users", userIDs, "err", err)
	}
}
