// Package maintenance runs periodic housekeeping for stored queues and
// matches.
package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// QueuePruner drops queue entries last shown before a cutoff.
type QueuePruner interface {
	PruneQueues(ctx context.Context, shownBefore time.Time) (int64, error)
}

// MatchReconciler forms matches for reciprocal likes that lack one.
type MatchReconciler interface {
	ReconcileMatches(ctx context.Context, limit int) (int, error)
}

type Config struct {
	Interval       time.Duration
	QueueTTL       time.Duration
	ReconcileBatch int
}

// Result summarises one pass.
type Result struct {
	Pruned     int64
	Reconciled int
}

type Scheduler struct {
	pruner     QueuePruner
	reconciler MatchReconciler
	clock      matching.Clock
	cfg        Config
	log        *slog.Logger
}

func NewScheduler(pruner QueuePruner, reconciler MatchReconciler, clock matching.Clock, cfg Config, log *slog.Logger) *Scheduler {
	if clock == nil {
		clock = matching.SystemClock{}
	}
	return &Scheduler{pruner: pruner, reconciler: reconciler, clock: clock, cfg: cfg, log: log}
}

// RunOnce prunes stale queue entries, then reconciles one batch of matches.
// Both steps run even if the first fails; errors are joined.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	var (
		res  Result
		errs []error
	)
	if s.cfg.QueueTTL > 0 {
		n, err := s.pruner.PruneQueues(ctx, s.clock.Now().Add(-s.cfg.QueueTTL))
		if err != nil {
			errs = append(errs, err)
		}
		res.Pruned = n
	}
	if s.cfg.ReconcileBatch > 0 {
		n, err := s.reconciler.ReconcileMatches(ctx, s.cfg.ReconcileBatch)
		if err != nil {
			errs = append(errs, err)
		}
		res.Reconciled = n
	}
	return res, errors.Join(errs...)
}

// Run ticks every Interval until ctx is cancelled. A zero Interval disables
// the loop.
func (s *Scheduler) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		s.log.Info("maintenance disabled")
		return
	}
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				s.log.Error("maintenance pass failed", "err", err, "pruned", res.Pruned, "reconciled", res.Reconciled)
				continue
			}
			if res.Pruned > 0 || res.Reconciled > 0 {
				s.log.Info("maintenance pass", "pruned", res.Pruned, "reconciled", res.Reconciled)
			}
		}
	}
}
