package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain/ports/adapter"
	"gym-membership/internal/infra/i18n"
	"gym-membership/internal/usecase"
)

type Options struct {
	RequestTimeout time.Duration
	StoreTimeout   time.Duration
	Dev            bool
}

type Server struct {
	accounts    usecase.AccountUseCase
	memberships usecase.MembershipUseCase
	attendance  usecase.AttendanceUseCase
	workouts    usecase.WorkoutPlanUseCase
	gate        usecase.AdminGate
	report      adapter.AttendanceReportWriter
	auth        *AuthManager
	tr          *i18n.Translator
	policy      *bluemonday.Policy
	opts        Options
	log         *zerolog.Logger
	now         func() time.Time
}

func NewServer(
	accounts usecase.AccountUseCase,
	memberships usecase.MembershipUseCase,
	attendance usecase.AttendanceUseCase,
	workouts usecase.WorkoutPlanUseCase,
	gate usecase.AdminGate,
	report adapter.AttendanceReportWriter,
	auth *AuthManager,
	tr *i18n.Translator,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 45 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	return &Server{
		accounts:    accounts,
		memberships: memberships,
		attendance:  attendance,
		workouts:    workouts,
		gate:        gate,
		report:      report,
		auth:        auth,
		tr:          tr,
		policy:      bluemonday.StrictPolicy(),
		opts:        opts,
		log:         logger,
		now:         time.Now,
	}
}

// Routes builds the chi router for the whole API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID, RequestLog(s.log), Recover(s.log), Timeout(s.opts.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/session", s.handleSession)
		r.Get("/plans", s.handlePlans)

		r.Route("/me", func(r chi.Router) {
			r.Use(s.requireMember)
			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Get("/subscriptions", s.handleListMySubscriptions)
			r.Post("/subscriptions", s.handleRequestSubscription)
			r.Get("/subscriptions/{id}/receipt", s.handleReceipt)
			r.Get("/attendance", s.handleMyAttendance)
			r.Put("/attendance/{date}", s.handleMarkAttendance)
			r.Delete("/attendance/{date}", s.handleUnmarkAttendance)
			r.Post("/workout-plans", s.handleGenerateWorkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/memberships", s.handleAdminMemberships)
			r.Post("/memberships/{id}/approve", s.handleApprove)
			r.Post("/memberships/{id}/cancel", s.handleAdminCancel)
			r.Get("/attendance", s.handleAttendanceSummary)
			r.Get("/attendance/export", s.handleAttendanceExport)
		})
	})
	return r
}

// storeCtx bounds a single store round trip.
func (s *Server) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}
