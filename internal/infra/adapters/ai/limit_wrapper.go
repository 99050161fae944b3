package ai

import (
	"context"

	"golang.org/x/time/rate"

	"gym-membership/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

// limitedAI bounds in-flight provider calls and paces them with a token bucket.
// Waiting for either respects ctx.
type limitedAI struct {
	inner   adapter.AIServiceAdapter
	sem     chan struct{}
	limiter *rate.Limiter
}

// NewLimitedAI wraps inner. maxConcurrent <= 0 disables the semaphore and
// perSecond <= 0 disables pacing; with both off inner is returned as is.
func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int, perSecond float64, burst int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 && perSecond <= 0 {
		return inner
	}
	l := &limitedAI{inner: inner}
	if maxConcurrent > 0 {
		l.sem = make(chan struct{}, maxConcurrent)
	}
	if perSecond > 0 {
		if burst <= 0 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return l
}

func (l *limitedAI) acquire(ctx context.Context) (func(), error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if l.sem == nil {
		return func() {}, nil
	}
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *limitedAI) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return l.inner.GetModelInfo(model)
}

func (l *limitedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *limitedAI) GenerateJSON(ctx context.Context, req adapter.StructuredRequest) (string, adapter.Usage, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return "", adapter.Usage{Model: req.Model}, err
	}
	defer release()
	return l.inner.GenerateJSON(ctx, req)
}
