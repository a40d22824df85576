package matching_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/matching/memstore"
)

var epoch = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []matching.Event
}

func (r *recordingSink) Publish(_ context.Context, e matching.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) kinds() []matching.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []matching.EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	clock  *matching.FixedClock
	sink   *recordingSink
	engine *matching.Engine
}

func newFixture(t *testing.T, mutate ...func(*matching.Options, *matching.Deps)) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.New(),
		clock: &matching.FixedClock{T: epoch},
		sink:  &recordingSink{},
	}
	opts := matching.DefaultOptions()
	deps := matching.Deps{
		Clock:  f.clock,
		Events: f.sink,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, m := range mutate {
		m(&opts, &deps)
	}
	f.engine = matching.NewEngine(f.store, opts, deps)
	return f
}

func (f *fixture) person(id uint64, age int, gender string, lat, lon float64, interests ...string) {
	active := epoch.Add(-time.Duration(id) * time.Hour)
	p := matching.Profile{
		UserID:     id,
		Age:        age,
		Gender:     gender,
		Latitude:   &lat,
		Longitude:  &lon,
		LastActive: &active,
		Completion: 80,
	}
	for _, name := range interests {
		p.Interests = append(p.Interests, matching.Interest{Category: "general", Name: name})
	}
	f.store.PutProfile(p)
}

func (f *fixture) prefers(id uint64, gender string, maxDistance float64) {
	f.store.PutPreference(matching.Preference{
		UserID:      id,
		MinAge:      18,
		MaxAge:      60,
		MaxDistance: maxDistance,
		Gender:      gender,
	})
}

func (f *fixture) swipe(t *testing.T, actor, target uint64, st matching.SwipeType) *matching.SwipeResult {
	t.Helper()
	res, err := f.engine.Swipes.Process(context.Background(), matching.SwipeInput{
		ActorID: actor, TargetID: target, Type: st,
	})
	if err != nil {
		t.Fatalf("swipe %d -> %d: %v", actor, target, err)
	}
	return res
}

func candidateIDs(entries []matching.QueueEntry) []uint64 {
	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CandidateID)
	}
	return ids
}
