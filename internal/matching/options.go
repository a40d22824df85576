package matching

import "time"

// Weights are the relative contributions of each compatibility factor.
type Weights struct {
	Age          float64
	Distance     float64
	Interests    float64
	Activity     float64
	Completeness float64
}

func DefaultWeights() Weights {
	return Weights{
		Age:          0.20,
		Distance:     0.25,
		Interests:    0.30,
		Activity:     0.10,
		Completeness: 0.15,
	}
}

// Options configures the filter, scorer, queue builder and rate limiter.
type Options struct {
	Weights Weights

	// NeutralScore is returned when no factor applies.
	NeutralScore float64

	CandidateLimit    int
	MinQueueSize      int
	MaxQueueSize      int
	SuperLikePriority int
	DistanceUnit      DistanceUnit
	DefaultMinAge     int
	DefaultMaxAge     int

	// BuildTimeout bounds a single queue build. Zero disables it.
	BuildTimeout time.Duration

	HourlySwipeLimit    int
	DailySuperLikeLimit int
}

func DefaultOptions() Options {
	return Options{
		Weights:             DefaultWeights(),
		NeutralScore:        0.5,
		CandidateLimit:      200,
		MinQueueSize:        10,
		MaxQueueSize:        50,
		SuperLikePriority:   100,
		DistanceUnit:        Miles,
		DefaultMinAge:       18,
		DefaultMaxAge:       99,
		HourlySwipeLimit:    100,
		DailySuperLikeLimit: 5,
	}
}
