//go:build !integration

package sched_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/infra/sched"
)

type countFunc func(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error)

func (f countFunc) CountByStatus(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
	return f(ctx, now)
}

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func TestStatsWorker(t *testing.T) {
	t.Run("RunOnce reads counts and pool stats", func(t *testing.T) {
		var counted, pooled int32
		counter := countFunc(func(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
			atomic.AddInt32(&counted, 1)
			if _, ok := ctx.Deadline(); !ok {
				t.Error("count must run under a deadline")
			}
			return map[model.SubscriptionStatus]int{model.SubscriptionStatusActive: 2}, nil
		})
		pool := func() (int32, int32, int32, int64) {
			atomic.AddInt32(&pooled, 1)
			return 10, 7, 3, 42
		}
		w := sched.NewStatsWorker(time.Hour, time.Second, counter, pool, newLogger())

		w.RunOnce(context.Background())

		if counted != 1 || pooled != 1 {
			t.Fatalf("expected one read each, got counts=%d pool=%d", counted, pooled)
		}
	})

	t.Run("RunOnce survives a failing count", func(t *testing.T) {
		counter := countFunc(func(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
			return nil, errors.New("db down")
		})
		w := sched.NewStatsWorker(time.Hour, time.Second, counter, nil, newLogger())
		w.RunOnce(context.Background())
	})

	t.Run("Run ticks until cancelled", func(t *testing.T) {
		var n int32
		counter := countFunc(func(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
			atomic.AddInt32(&n, 1)
			return map[model.SubscriptionStatus]int{}, nil
		})
		w := sched.NewStatsWorker(5*time.Millisecond, time.Second, counter, nil, newLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		err := w.Run(ctx)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected the context error, got %v", err)
		}
		if atomic.LoadInt32(&n) < 2 {
			t.Errorf("expected several ticks, got %d", n)
		}
	})
}
