// Package metrics exposes Prometheus instrumentation for the matchmaking
// service and the HTTP endpoint that serves it.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

const namespace = "matchmaking"

type Metrics struct {
	Registry *prometheus.Registry

	eventsTotal         *prometheus.CounterVec
	swipeRejections     *prometheus.CounterVec
	queueBuilds         *prometheus.CounterVec
	queueBuildDuration  prometheus.Histogram
	queueSize           prometheus.Histogram
	compatibilityScores prometheus.Histogram
	rpcTotal            *prometheus.CounterVec
	rpcDuration         *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		eventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Matching events emitted, by kind and swipe type",
			},
			[]string{"kind", "swipe_type"},
		),
		swipeRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swipe_rejections_total",
				Help:      "Swipes refused before being stored, by reason",
			},
			[]string{"reason"},
		),
		queueBuilds: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_builds_total",
				Help:      "Queue build requests, by result",
			},
			[]string{"result"},
		),
		queueBuildDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "queue_build_duration_seconds",
				Help:      "Time spent building a recommendation queue",
				Buckets:   prometheus.DefBuckets,
			},
		),
		queueSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "queue_size",
				Help:      "Entries in a freshly ranked queue",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		compatibilityScores: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compatibility_scores",
				Help:      "Distribution of compatibility scores in ranked queues",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		rpcTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "gRPC requests handled, by method and status code",
			},
			[]string{"method", "code"},
		),
		rpcDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "gRPC handler latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// Publish makes Metrics a matching.EventSink.
func (m *Metrics) Publish(_ context.Context, e matching.Event) error {
	m.eventsTotal.WithLabelValues(string(e.Kind), string(e.SwipeType)).Inc()
	return nil
}

// AdjustQueue makes Metrics a pass-through matching.QueueAdjuster that
// records queue sizes and score distribution.
func (m *Metrics) AdjustQueue(_ context.Context, _ uint64, entries []matching.QueueEntry) []matching.QueueEntry {
	m.queueSize.Observe(float64(len(entries)))
	for _, e := range entries {
		m.compatibilityScores.Observe(e.Score)
	}
	return entries
}

// ObserveQueueBuild records one build attempt.
func (m *Metrics) ObserveQueueBuild(start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.queueBuilds.WithLabelValues(result).Inc()
	m.queueBuildDuration.Observe(time.Since(start).Seconds())
}

// RejectSwipe counts a refused swipe under a short reason label.
func (m *Metrics) RejectSwipe(reason string) {
	m.swipeRejections.WithLabelValues(reason).Inc()
}

// UnaryServerInterceptor counts and times every unary call.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.rpcTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.rpcDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}
