package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

func TestPublishCountsByKind(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, matching.Event{Kind: matching.EventSwipeProcessed, SwipeType: matching.SwipeLike}))
	require.NoError(t, m.Publish(ctx, matching.Event{Kind: matching.EventSwipeProcessed, SwipeType: matching.SwipeLike}))
	require.NoError(t, m.Publish(ctx, matching.Event{Kind: matching.EventMatchFormed}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("swipe.processed", "like")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("match.formed", "")))
}

func TestAdjustQueuePassesThrough(t *testing.T) {
	m := New()
	in := []matching.QueueEntry{{CandidateID: 1, Score: 0.4}, {CandidateID: 2, Score: 0.9}}

	out := m.AdjustQueue(context.Background(), 7, in)
	assert.Equal(t, in, out)
	assert.Equal(t, 1, testutil.CollectAndCount(m.compatibilityScores))
}

func TestUnaryInterceptorRecordsCode(t *testing.T) {
	m := New()
	icpt := m.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/matchmaking.v1.Matchmaking/ProcessSwipe"}

	_, err := icpt(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.ResourceExhausted, "slow down")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcTotal.WithLabelValues(info.FullMethod, "ResourceExhausted")))
}

func TestObserveQueueBuild(t *testing.T) {
	m := New()
	m.ObserveQueueBuild(time.Now(), nil)
	m.ObserveQueueBuild(time.Now(), errors.New("boom"))
	m.RejectSwipe("rate_limited")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueBuilds.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueBuilds.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swipeRejections.WithLabelValues("rate_limited")))
}

func TestRouter(t *testing.T) {
	m := New()
	require.NoError(t, m.Publish(context.Background(), matching.Event{Kind: matching.EventMatchFormed}))

	healthy := Router(m, Check{Name: "db", Probe: func(context.Context) error { return nil }})
	srv := httptest.NewServer(healthy)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "matchmaking_events_total")

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	failing := Router(m, Check{Name: "redis", Probe: func(context.Context) error { return errors.New("down") }})
	rec := httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}
