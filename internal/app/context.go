package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/events"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/metrics"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Clock      matching.Clock
	Events     matching.EventSink
}

// New creates a new AppContext. Events fan out to Redis pub/sub, the debug
// log and Prometheus.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	m := metrics.New()
	sinks := events.Fanout{
		events.NewLogSink(logger.With("component", "events")),
		m,
	}
	// rdb is nil for offline tools such as the seeder.
	if rdb != nil {
		sinks = append(sinks, events.NewRedisSink(rdb.Client, cfg.Redis.EventsChannel))
	}
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Metrics:    m,
		Clock:      matching.SystemClock{Location: cfg.Location()},
		Events:     sinks,
	}
}

// MatchingOptions translates config into engine options.
func MatchingOptions(cfg *config.Config) matching.Options {
	opts := matching.DefaultOptions()
	if cfg == nil {
		return opts
	}
	m := cfg.Matching
	opts.Weights = matching.Weights{
		Age:          m.WeightAge,
		Distance:     m.WeightDistance,
		Interests:    m.WeightInterests,
		Activity:     m.WeightActivity,
		Completeness: m.WeightCompleteness,
	}
	opts.CandidateLimit = m.CandidateLimit
	opts.MinQueueSize = m.MinQueueSize
	opts.MaxQueueSize = m.MaxQueueSize
	opts.SuperLikePriority = m.SuperLikePriority
	opts.BuildTimeout = m.BuildTimeout
	if m.DistanceUnit == "km" {
		opts.DistanceUnit = matching.Kilometers
	}
	opts.HourlySwipeLimit = cfg.Limits.HourlySwipes
	opts.DailySuperLikeLimit = cfg.Limits.DailySuperLikes
	return opts
}

// NewEngine builds the matching engine over store with this context's
// clock, event sink and metrics.
func (a *AppContext) NewEngine(store matching.Store) *matching.Engine {
	deps := matching.Deps{
		Clock:  a.Clock,
		Events: a.Events,
		Logger: a.Logger.With("component", "matching"),
	}
	if a.Metrics != nil {
		deps.QueueAdjuster = a.Metrics
	}
	return matching.NewEngine(store, MatchingOptions(a.Config), deps)
}
