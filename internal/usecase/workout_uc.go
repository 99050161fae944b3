package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/adapter"
	"gym-membership/internal/domain/ports/repository"
	"gym-membership/internal/infra/logging"
	"gym-membership/internal/infra/metrics"
)

// Compile-time check
var _ WorkoutPlanUseCase = (*workoutUC)(nil)

// WorkoutPlanUseCase turns a member's answers into a structured plan with one model call.
type WorkoutPlanUseCase interface {
	Generate(ctx context.Context, userID string, req model.WorkoutPlanRequest) (*model.WorkoutPlan, error)
}

type WorkoutOptions struct {
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
	// MaxPromptTokens is the model's input window; 0 disables the check.
	MaxPromptTokens int
	RateLimit       int
	RateWindow      time.Duration
	LockTTL         time.Duration
}

type workoutUC struct {
	ai      adapter.AIServiceAdapter
	limiter repository.RateLimiter
	locker  repository.Locker
	policy  *bluemonday.Policy
	opts    WorkoutOptions
	log     *zerolog.Logger
}

func NewWorkoutPlanUseCase(ai adapter.AIServiceAdapter, limiter repository.RateLimiter, locker repository.Locker, opts WorkoutOptions, logger *zerolog.Logger) *workoutUC {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Hour
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = opts.Timeout + 5*time.Second
	}
	return &workoutUC{
		ai:      ai,
		limiter: limiter,
		locker:  locker,
		policy:  bluemonday.StrictPolicy(),
		opts:    opts,
		log:     logger,
	}
}

func workoutKey(userID string) string     { return fmt.Sprintf("rate_limit:workout:%s", userID) }
func workoutLockKey(userID string) string { return fmt.Sprintf("lock:workout:%s", userID) }

// Generate validates before any external call, runs at most one generation per
// member at a time, and never returns a partial plan: any provider, decode or
// shape failure is domain.ErrGeneration.
func (u *workoutUC) Generate(ctx context.Context, userID string, req model.WorkoutPlanRequest) (*model.WorkoutPlan, error) {
	defer logging.TraceDuration(u.log, "WorkoutUC.Generate")()
	log := logging.With(ctx, u.log)

	req = u.sanitize(req)
	tier := string(req.SubscriptionLevel)
	if err := req.Validate(); err != nil {
		metrics.IncWorkoutPlan(tier, "invalid_input")
		return nil, err
	}

	if u.opts.RateLimit > 0 {
		ok, err := u.limiter.Allow(ctx, workoutKey(userID), u.opts.RateLimit, u.opts.RateWindow)
		if err != nil {
			return nil, err
		}
		metrics.IncRateLimit("workout", ok)
		if !ok {
			metrics.IncWorkoutPlan(tier, "rate_limited")
			return nil, domain.ErrRateLimited
		}
	}

	token, err := u.locker.TryLock(ctx, workoutLockKey(userID), u.opts.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			metrics.IncWorkoutPlan(tier, "busy")
		}
		return nil, err
	}
	defer func() {
		if err := u.locker.Unlock(context.WithoutCancel(ctx), workoutLockKey(userID), token); err != nil {
			log.Warn().Err(err).Msg("release workout lock failed")
		}
	}()

	prompt, err := renderWorkoutPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %v", domain.ErrGeneration, err)
	}

	cctx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()

	messages := []adapter.Message{{Role: "user", Content: prompt}}
	estimate := u.countPromptTokens(cctx, messages)
	if u.opts.MaxPromptTokens > 0 && estimate > u.opts.MaxPromptTokens {
		metrics.IncWorkoutPlan(tier, "prompt_too_long")
		log.Warn().Int("prompt_tokens", estimate).Int("limit", u.opts.MaxPromptTokens).Msg("workout prompt exceeds the model input window")
		return nil, fmt.Errorf("%w: prompt of %d tokens exceeds the model limit of %d", domain.ErrValidation, estimate, u.opts.MaxPromptTokens)
	}

	start := time.Now()
	raw, usage, err := u.ai.GenerateJSON(cctx, adapter.StructuredRequest{
		Model:           u.opts.Model,
		System:          workoutSystemPrompt,
		Messages:        messages,
		SchemaName:      "workout_plan",
		Schema:          workoutPlanSchema,
		MaxOutputTokens: u.opts.MaxOutputTokens,
	})
	if usage.PromptTokens == 0 && estimate > 0 {
		usage.PromptTokens = estimate
		usage.TotalTokens = estimate + usage.CompletionTokens
	}
	metrics.ObserveGeneration(usage.Provider, usage.Model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens,
		time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		metrics.IncWorkoutPlan(tier, "provider_error")
		log.Error().Err(err).Str("provider", usage.Provider).Str("model", usage.Model).Msg("workout plan generation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	plan, err := decodeWorkoutPlan(raw)
	if err != nil {
		metrics.IncWorkoutPlan(tier, "schema_error")
		log.Error().Err(err).Int("response_len", len(raw)).Msg("workout plan response rejected")
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	metrics.IncWorkoutPlan(tier, "ok")
	return plan, nil
}

// countPromptTokens estimates the prompt size, system prompt included. A failed
// estimate yields 0 and skips the window check.
func (u *workoutUC) countPromptTokens(ctx context.Context, messages []adapter.Message) int {
	all := append([]adapter.Message{{Role: "system", Content: workoutSystemPrompt}}, messages...)
	n, err := u.ai.CountTokens(ctx, u.opts.Model, all)
	if err != nil {
		logging.With(ctx, u.log).Debug().Err(err).Msg("prompt token estimate unavailable")
		return 0
	}
	return n
}

func (u *workoutUC) sanitize(req model.WorkoutPlanRequest) model.WorkoutPlanRequest {
	// strict policy escapes entities; keep plain text like "Chest & Triceps" readable
	clean := func(s string) string { return strings.TrimSpace(html.UnescapeString(u.policy.Sanitize(s))) }
	req.FitnessGoals = clean(req.FitnessGoals)
	req.EquipmentAvailable = clean(req.EquipmentAvailable)
	req.TimeCommitment = clean(req.TimeCommitment)
	return req
}

// decodeWorkoutPlan accepts exactly one JSON object with known fields only.
func decodeWorkoutPlan(raw string) (*model.WorkoutPlan, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var plan model.WorkoutPlan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode plan: trailing data")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}
