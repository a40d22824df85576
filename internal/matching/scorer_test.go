package matching_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

func TestAgeSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, matching.AgeSimilarity(30, 30))
	assert.InDelta(t, 0.5, matching.AgeSimilarity(30, 40), 1e-9)
	assert.Equal(t, 0.0, matching.AgeSimilarity(20, 40))
	assert.Equal(t, 0.0, matching.AgeSimilarity(20, 70))

	// monotonically non-increasing in the age gap and always within [0,1]
	prev := 1.0
	for gap := 0; gap <= 40; gap++ {
		v := matching.AgeSimilarity(25, 25+gap)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, prev)
		prev = v
	}
}

func TestSharedInterestsIgnoresCaseAndDuplicates(t *testing.T) {
	a := []matching.Interest{{Name: "Hiking"}, {Name: "jazz"}, {Name: "chess"}}
	b := []matching.Interest{{Name: "hiking"}, {Name: "Jazz"}, {Name: "JAZZ"}, {Name: "poker"}}

	assert.Equal(t, 2, matching.SharedInterests(a, b))
	assert.Equal(t, 2, matching.SharedInterests(b, a))
}

func TestScoreNeutralWhenNoFactorApplies(t *testing.T) {
	clock := &matching.FixedClock{T: epoch}
	s := matching.NewScorer(matching.DefaultOptions(), clock, nil)

	score := s.Score(context.Background(), &matching.Profile{UserID: 1}, &matching.Profile{UserID: 2})
	assert.Equal(t, 0.5, score)
}

func TestScoreOnlyCountsAppliedFactors(t *testing.T) {
	clock := &matching.FixedClock{T: epoch}
	s := matching.NewScorer(matching.DefaultOptions(), clock, nil)

	// only age applies: 1 - 10/20
	a := &matching.Profile{UserID: 1, Age: 30}
	b := &matching.Profile{UserID: 2, Age: 40}
	assert.InDelta(t, 0.5, s.Score(context.Background(), a, b), 1e-9)

	// age (0.5 * 0.2) and interests (2/5 * 0.3) → 0.22 / 0.5
	a.Interests = []matching.Interest{{Name: "x"}, {Name: "y"}}
	b.Interests = []matching.Interest{{Name: "x"}, {Name: "y"}, {Name: "z"}}
	assert.InDelta(t, 0.44, s.Score(context.Background(), a, b), 1e-9)
}

func TestScoreFullProfiles(t *testing.T) {
	clock := &matching.FixedClock{T: epoch}
	s := matching.NewScorer(matching.DefaultOptions(), clock, nil)

	lat, lon := 51.5074, -0.1278
	active := epoch.Add(-48 * time.Hour)
	a := &matching.Profile{
		UserID: 1, Age: 30, Latitude: &lat, Longitude: &lon, LastActive: &active, Completion: 100,
		Interests: []matching.Interest{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}},
	}
	b := &matching.Profile{
		UserID: 2, Age: 30, Latitude: &lat, Longitude: &lon, LastActive: &active, Completion: 100,
		Interests: []matching.Interest{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}},
	}
	assert.InDelta(t, 1.0, s.Score(context.Background(), a, b), 1e-9)

	f := s.Breakdown(a, b)
	for _, v := range []*float64{f.Age, f.Distance, f.Interests, f.Activity, f.Completeness} {
		if assert.NotNil(t, v) {
			assert.InDelta(t, 1.0, *v, 1e-9)
		}
	}
}

func TestScoreIsSymmetric(t *testing.T) {
	clock := &matching.FixedClock{T: epoch}
	s := matching.NewScorer(matching.DefaultOptions(), clock, nil)

	lat1, lon1, lat2, lon2 := 40.7128, -74.0060, 40.0583, -74.4057
	act1, act2 := epoch.Add(-2*time.Hour), epoch.Add(-200*time.Hour)
	a := &matching.Profile{UserID: 1, Age: 27, Latitude: &lat1, Longitude: &lon1, LastActive: &act1, Completion: 60,
		Interests: []matching.Interest{{Name: "film"}, {Name: "Running"}}}
	b := &matching.Profile{UserID: 2, Age: 35, Latitude: &lat2, Longitude: &lon2, LastActive: &act2, Completion: 90,
		Interests: []matching.Interest{{Name: "running"}, {Name: "cooking"}, {Name: "film"}}}

	ab := s.Score(context.Background(), a, b)
	ba := s.Score(context.Background(), b, a)
	assert.InDelta(t, ab, ba, 1e-12)
	assert.Greater(t, ab, 0.0)
	assert.Less(t, ab, 1.0)
}

func TestScoreAdjusterOverridesAndIsClamped(t *testing.T) {
	clock := &matching.FixedClock{T: epoch}
	boost := matching.ScoreAdjusterFunc(func(_ context.Context, _, _ *matching.Profile, score float64) float64 {
		return score + 10
	})
	s := matching.NewScorer(matching.DefaultOptions(), clock, boost)
	assert.Equal(t, 1.0, s.Score(context.Background(), &matching.Profile{UserID: 1}, &matching.Profile{UserID: 2}))

	fixed := matching.ScoreAdjusterFunc(func(context.Context, *matching.Profile, *matching.Profile, float64) float64 {
		return 0.123
	})
	s = matching.NewScorer(matching.DefaultOptions(), clock, fixed)
	assert.Equal(t, 0.123, s.Score(context.Background(), &matching.Profile{UserID: 1, Age: 30}, &matching.Profile{UserID: 2, Age: 30}))
}

func TestHaversine(t *testing.T) {
	// London → Paris, roughly 214 miles / 344 km
	mi := matching.Haversine(51.5074, -0.1278, 48.8566, 2.3522, matching.Miles)
	km := matching.Haversine(51.5074, -0.1278, 48.8566, 2.3522, matching.Kilometers)
	assert.InDelta(t, 213.5, mi, 2)
	assert.InDelta(t, 343.5, km, 3)
	assert.Equal(t, 0.0, matching.Haversine(10, 10, 10, 10, matching.Miles))
}

func TestCompletion(t *testing.T) {
	assert.Equal(t, 0, matching.Completion(nil, 0))
	assert.Equal(t, 0, matching.Completion(&matching.Profile{}, 0))

	lat, lon := 1.0, 2.0
	full := &matching.Profile{
		Age: 30, Gender: "female", Orientation: "straight", Location: "Leeds",
		Latitude: &lat, Longitude: &lon, Bio: "hi", Profession: "nurse", Education: "BSc",
	}
	assert.Equal(t, 100, matching.Completion(full, 3))
	assert.Equal(t, 88, matching.Completion(full, 0))
}
