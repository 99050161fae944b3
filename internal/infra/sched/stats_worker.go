package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/infra/metrics"
)

// StatusCounter is the slice of the membership use case the worker reads.
type StatusCounter interface {
	CountByStatus(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error)
}

// PoolStats reports total, idle and in-use connections plus cumulative acquires.
type PoolStats func() (total, idle, inUse int32, acquires int64)

// StatsWorker refreshes the subscription and pool gauges. It never writes:
// expiry stays computed at read time.
type StatsWorker struct {
	interval time.Duration
	timeout  time.Duration
	counter  StatusCounter
	pool     PoolStats
	log      *zerolog.Logger
	now      func() time.Time
}

func NewStatsWorker(interval, timeout time.Duration, counter StatusCounter, pool PoolStats, logger *zerolog.Logger) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	l := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		timeout:  timeout,
		counter:  counter,
		pool:     pool,
		log:      &l,
		now:      time.Now,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce takes one snapshot. Errors are logged and the gauges keep their last values.
func (w *StatsWorker) RunOnce(ctx context.Context) {
	if w.pool != nil {
		metrics.SetDBPoolStats(w.pool())
	}

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	counts, err := w.counter.CountByStatus(runCtx, w.now())
	if err != nil {
		w.log.Error().Err(err).Msg("count subscriptions failed")
		return
	}
	metrics.SetSubscriptionsTotal(counts)
	w.log.Debug().Interface("counts", counts).Msg("subscription gauges refreshed")
}
