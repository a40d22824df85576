package matching

import (
	"context"
	"math"
	"strings"
	"time"
)

// Factors is the per-factor breakdown of a score. A nil factor did not apply.
type Factors struct {
	Age          *float64
	Distance     *float64
	Interests    *float64
	Activity     *float64
	Completeness *float64
}

// Scorer computes compatibility between two profiles.
type Scorer struct {
	weights  Weights
	neutral  float64
	clock    Clock
	adjuster ScoreAdjuster
}

func NewScorer(opts Options, clock Clock, adjuster ScoreAdjuster) *Scorer {
	if adjuster == nil {
		adjuster = noopAdjuster{}
	}
	return &Scorer{
		weights:  opts.Weights,
		neutral:  opts.NeutralScore,
		clock:    clock,
		adjuster: adjuster,
	}
}

// Score returns a value in [0,1]: the weighted average of the factors both
// profiles have data for, passed through the adjuster.
func (s *Scorer) Score(ctx context.Context, a, b *Profile) float64 {
	score := s.raw(s.Breakdown(a, b))
	return clamp01(s.adjuster.AdjustScore(ctx, a, b, score))
}

// Breakdown computes each factor independently.
func (s *Scorer) Breakdown(a, b *Profile) Factors {
	var f Factors
	if a == nil || b == nil {
		return f
	}

	if a.Age > 0 && b.Age > 0 {
		f.Age = ptr(AgeSimilarity(a.Age, b.Age))
	}

	if d := distanceBetween(a, b, Miles); d != nil {
		f.Distance = ptr(math.Max(0, 1-*d/100))
	}

	if len(a.Interests) > 0 && len(b.Interests) > 0 {
		shared := SharedInterests(a.Interests, b.Interests)
		f.Interests = ptr(math.Min(1, float64(shared)/5))
	}

	if a.LastActive != nil && b.LastActive != nil {
		now := s.clock.Now()
		d1 := daysSince(now, *a.LastActive)
		d2 := daysSince(now, *b.LastActive)
		f.Activity = ptr(math.Max(0, 1-math.Abs(d1-d2)/30))
	}

	if a.Completion > 0 && b.Completion > 0 {
		f.Completeness = ptr(clamp01(float64(a.Completion+b.Completion) / 200))
	}

	return f
}

func (s *Scorer) raw(f Factors) float64 {
	var sum, weights float64
	add := func(v *float64, w float64) {
		if v == nil || w <= 0 {
			return
		}
		sum += *v * w
		weights += w
	}
	add(f.Age, s.weights.Age)
	add(f.Distance, s.weights.Distance)
	add(f.Interests, s.weights.Interests)
	add(f.Activity, s.weights.Activity)
	add(f.Completeness, s.weights.Completeness)

	if weights == 0 {
		return s.neutral
	}
	return sum / weights
}

// AgeSimilarity is 1 for equal ages and falls linearly to 0 at 20 years apart.
func AgeSimilarity(age1, age2 int) float64 {
	diff := math.Abs(float64(age1 - age2))
	return math.Max(0, 1-diff/20)
}

// SharedInterests counts interest names present in both sets, ignoring case.
func SharedInterests(a, b []Interest) int {
	seen := make(map[string]struct{}, len(a))
	for _, i := range a {
		seen[interestKey(i)] = struct{}{}
	}
	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, i := range b {
		k := interestKey(i)
		if _, dup := counted[k]; dup {
			continue
		}
		counted[k] = struct{}{}
		if _, ok := seen[k]; ok {
			shared++
		}
	}
	return shared
}

func interestKey(i Interest) string {
	return strings.ToLower(strings.TrimSpace(i.Name))
}

func daysSince(now, t time.Time) float64 {
	d := now.Sub(t).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func ptr[T any](v T) *T { return &v }
