package matching

import (
	"context"
	"errors"
	"sort"
)

// CandidateFilter selects profiles that satisfy a user's hard constraints.
type CandidateFilter struct {
	store ProfileStore
	opts  Options
}

func NewCandidateFilter(store ProfileStore, opts Options) *CandidateFilter {
	return &CandidateFilter{store: store, opts: opts}
}

// Find returns the filtered candidates for userID. It fails closed with
// ErrNoPreferences when the user has not stored any.
func (f *CandidateFilter) Find(ctx context.Context, userID uint64) ([]Candidate, error) {
	if userID == 0 {
		return nil, invalid("user id is required")
	}

	pref, err := f.store.Preference(ctx, userID)
	if err != nil {
		return nil, persistence("load preference", err)
	}

	self, err := f.store.Profile(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, persistence("load profile", err)
	}

	profiles, err := f.store.FindCandidates(ctx, f.query(userID, pref))
	if err != nil {
		return nil, persistence("find candidates", err)
	}

	candidates := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		candidates = append(candidates, Candidate{Profile: p})
	}

	if pref.MaxDistance > 0 && self.HasCoordinates() {
		candidates = f.withinDistance(self, candidates, pref.MaxDistance)
	}
	return candidates, nil
}

func (f *CandidateFilter) query(userID uint64, pref *Preference) CandidateQuery {
	q := CandidateQuery{
		UserID: userID,
		MinAge: pref.MinAge,
		MaxAge: pref.MaxAge,
		Gender: pref.Gender,
		Limit:  f.opts.CandidateLimit,
	}
	if q.MinAge <= 0 {
		q.MinAge = f.opts.DefaultMinAge
	}
	if q.MaxAge <= 0 {
		q.MaxAge = f.opts.DefaultMaxAge
	}
	if q.Gender == GenderAny {
		q.Gender = ""
	}
	return q
}

// withinDistance drops located candidates beyond max and orders the rest by
// distance. Candidates without coordinates keep their order after them.
func (f *CandidateFilter) withinDistance(self *Profile, in []Candidate, max float64) []Candidate {
	located := make([]Candidate, 0, len(in))
	var unlocated []Candidate
	for _, c := range in {
		d := distanceBetween(self, c.Profile, f.opts.DistanceUnit)
		if d == nil {
			unlocated = append(unlocated, c)
			continue
		}
		if *d > max {
			continue
		}
		c.Distance = d
		located = append(located, c)
	}
	sort.SliceStable(located, func(i, j int) bool {
		return *located[i].Distance < *located[j].Distance
	})
	return append(located, unlocated...)
}
