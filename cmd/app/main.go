// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"gym-membership/internal/config"
	"gym-membership/internal/domain/ports/adapter"
	aiAdapters "gym-membership/internal/infra/adapters/ai"
	pg "gym-membership/internal/infra/db/postgres"
	"gym-membership/internal/infra/i18n"
	"gym-membership/internal/infra/logging"
	"gym-membership/internal/infra/metrics"
	red "gym-membership/internal/infra/redis"
	"gym-membership/internal/infra/report"
	"gym-membership/internal/infra/sched"
	"gym-membership/internal/infra/security"
	"gym-membership/internal/infra/web"
	"gym-membership/internal/usecase"
)

// Set via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted PII, noop AI fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	// ---- Postgres ----
	if cfg.Database.MigrateOnStart {
		if err := pg.Migrate(ctx, cfg.Database.URL, "up", logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)
	sessions := red.NewSessionRepo(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepoCacheDecorator(pg.NewUserRepo(pool), redisClient, cfg.Redis.TTL, logger)
	roleRepo := pg.NewRoleRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	attendanceRepo := pg.NewAttendanceRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- AI ----
	ai, err := buildAI(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// ---- Use cases ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Server.CookieSecure, "")
	accountUC := usecase.NewAccountUseCase(userRepo, sessions, rateLimiter, security.NewPasswordHasher(0), auth,
		usecase.AccountOptions{
			SessionTTL:  cfg.Auth.SessionTTL,
			LoginLimit:  cfg.Auth.LoginLimit,
			LoginWindow: cfg.Auth.LoginWindow,
			Dev:         cfg.Runtime.Dev,
		}, logger)
	membershipUC := usecase.NewMembershipUseCase(subRepo, userRepo, txManager, logger)
	xlsx := report.NewAttendanceXLSX()
	attendanceUC := usecase.NewAttendanceUseCase(attendanceRepo, userRepo, xlsx, cfg.Location(), cfg.Gym.ReportWorkers, logger)
	workoutUC := usecase.NewWorkoutPlanUseCase(ai, rateLimiter, locker, usecase.WorkoutOptions{
		Model:           cfg.AI.DefaultModel,
		Timeout:         cfg.AI.Timeout,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
		MaxPromptTokens: describeAI(ctx, ai, cfg.AI.DefaultModel, logger),
		RateLimit:       cfg.Workout.RateLimit,
		RateWindow:      cfg.Workout.RateWindow,
		LockTTL:         cfg.Workout.LockTTL,
	}, logger)
	gate := usecase.NewAdminGate(roleRepo, logger)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Server.Language)
	if err != nil {
		return err
	}

	// ---- Stats worker ----
	worker := sched.NewStatsWorker(cfg.Scheduler.StatsInterval, cfg.Server.StoreTimeout, membershipUC, poolStats(pool), logger)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("stats worker stopped")
		}
	}()

	// ---- HTTP ----
	srv := web.NewServer(accountUC, membershipUC, attendanceUC, workoutUC, gate, xlsx, auth, tr, web.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		StoreTimeout:   cfg.Server.StoreTimeout,
		Dev:            cfg.Runtime.Dev,
	}, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// ---- Graceful shutdown ----
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildAI registers every provider with a key, routes by model name and wraps
// the result in the concurrency and rate limits.
func buildAI(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	maxOut := cfg.AI.MaxOutputTokens
	providers := map[string]adapter.AIServiceAdapter{}

	if cfg.AI.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, maxOut)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		providers[aiAdapters.ProviderGemini] = g
	}
	if cfg.AI.OpenAIKey != "" {
		o, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, maxOut)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		providers[aiAdapters.ProviderOpenAI] = o
	}
	if cfg.AI.MetisKey != "" {
		m, err := aiAdapters.NewMetisAdapter(cfg.AI.MetisKey, cfg.AI.MetisBaseURL, cfg.AI.DefaultModel, maxOut)
		if err != nil {
			return nil, fmt.Errorf("metis adapter: %w", err)
		}
		providers[aiAdapters.ProviderMetis] = m
	}

	defaultProvider := cfg.AI.DefaultProvider
	if len(providers) == 0 {
		if !cfg.Runtime.Dev {
			return nil, errors.New("no AI provider configured: set ai.gemini_key, ai.openai_key or ai.metis_key")
		}
		logger.Warn().Msg("no AI provider configured; using noop workout generator")
		providers[aiAdapters.ProviderNoop] = aiAdapters.NewNoopAIAdapter(logger)
		defaultProvider = aiAdapters.ProviderNoop
	}
	for name := range providers {
		logger.Info().Str("provider", name).Msg("AI provider enabled")
	}

	multi := aiAdapters.NewMultiAIAdapter(defaultProvider, providers, cfg.AI.ModelProviders)
	return aiAdapters.NewLimitedAI(multi, cfg.AI.ConcurrentLimit, cfg.AI.RatePerSecond, cfg.AI.Burst), nil
}

// describeAI logs what the configured providers serve and returns the input
// window of the workout model (0 when the provider does not report one).
func describeAI(ctx context.Context, ai adapter.AIServiceAdapter, model string, logger *zerolog.Logger) int {
	lctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if models, err := ai.ListModels(lctx); err != nil {
		logger.Warn().Err(err).Msg("list AI models failed")
	} else {
		logger.Info().Int("count", len(models)).Msg("AI models available")
	}

	info, err := ai.GetModelInfo(model)
	if err != nil {
		logger.Warn().Err(err).Str("model", model).Msg("AI model info unavailable")
		return 0
	}
	logger.Info().Str("model", info.Name).Int("max_input_tokens", info.MaxTokens).Msg("workout model")
	return info.MaxTokens
}

func poolStats(pool *pgxpool.Pool) sched.PoolStats {
	return func() (int32, int32, int32, int64) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns(), s.AcquireCount()
	}
}
