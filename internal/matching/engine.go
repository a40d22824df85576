package matching

import "log/slog"

// Deps are the optional collaborators of an Engine.
type Deps struct {
	Clock         Clock
	Events        EventSink
	ScoreAdjuster ScoreAdjuster
	QueueAdjuster QueueAdjuster
	Logger        *slog.Logger
}

// Engine wires the filter, scorer, queue builder and swipe processor over
// one store.
type Engine struct {
	Filter  *CandidateFilter
	Scorer  *Scorer
	Queues  *QueueBuilder
	Swipes  *SwipeProcessor
	Limiter *RateLimiter
}

func NewEngine(store Store, opts Options, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	filter := NewCandidateFilter(store, opts)
	scorer := NewScorer(opts, deps.Clock, deps.ScoreAdjuster)
	limiter := NewRateLimiter(opts, deps.Clock)

	return &Engine{
		Filter:  filter,
		Scorer:  scorer,
		Queues:  NewQueueBuilder(store, filter, scorer, deps.QueueAdjuster, deps.Clock, opts, deps.Logger),
		Swipes:  NewSwipeProcessor(store, limiter, deps.Events, deps.Clock, deps.Logger),
		Limiter: limiter,
	}
}
