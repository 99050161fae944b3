package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/infra/logging"
	"gym-membership/internal/infra/metrics"
	"gym-membership/internal/usecase"
)

const traceHeader = "X-Request-ID"

// TraceID reuses a well-formed incoming request id or mints one.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get(traceHeader)
		if _, err := uuid.Parse(tid); err != nil {
			tid = uuid.NewString()
		}
		w.Header().Set(traceHeader, tid)
		ctx := logging.WithTraceID(r.Context(), tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLog logs every request and records it under its chi route pattern.
func RequestLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			d := time.Since(start)
			metrics.ObserveHTTP(route, r.Method, ww.status, d)

			l := logging.With(r.Context(), logger)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", ww.status).
				Dur("duration", d).
				Msg("http_request")
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func Recover(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l := logging.With(r.Context(), logger)
					l.Error().Interface("panic", rec).Msg("panic recovered")
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout bounds the whole request, including the AI call.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type ctxKey int

const sessionKey ctxKey = iota

func withSession(ctx context.Context, s *model.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	ctx = logging.WithUserID(ctx, s.UserID)
	return logging.WithSessID(ctx, s.ID)
}

// SessionFrom returns the session set by requireMember or requireAdmin.
func SessionFrom(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionKey).(*model.Session)
	return s
}

// authenticate resolves the caller's session, or nil for anonymous and stale tokens.
func (s *Server) authenticate(r *http.Request) *model.Session {
	tok, err := s.auth.TokenFromRequest(r)
	if err != nil {
		return nil
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()
	sess, err := s.accounts.Authenticate(ctx, tok)
	if err != nil {
		return nil
	}
	return sess
}

func (s *Server) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.authenticate(r)
		if sess == nil {
			s.writeMessage(w, r, http.StatusUnauthorized, "unauthenticated", "error.unauthenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

const (
	adminLoginUnauthenticated = "/admin/login?reason=unauthenticated"
	adminLoginNotAdmin        = "/admin/login?reason=not_admin"
	adminLoginUnavailable     = "/admin/login?reason=unavailable"
)

// requireAdmin consults the gate on every request. A signed-in non-admin is
// signed out before being redirected.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.authenticate(r)
		userID := ""
		if sess != nil {
			userID = sess.UserID
		}

		ctx, cancel := s.storeCtx(r.Context())
		decision := s.gate.Check(ctx, userID)
		cancel()

		switch decision {
		case usecase.DecisionAuthorized:
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		case usecase.DecisionUnauthorized:
			l := logging.With(withSession(r.Context(), sess), s.log)
			if err := s.accounts.SignOut(context.WithoutCancel(r.Context()), sess.ID); err != nil {
				l.Warn().Err(err).Msg("sign out of non-admin failed")
			}
			s.auth.Clear(w)
			l.Warn().Str("path", r.URL.Path).Msg("admin access denied")
			writeJSON(w, http.StatusForbidden, redirectBody{
				Redirect: adminLoginNotAdmin,
				Message:  s.tr.T("error.not_admin"),
			})
		case usecase.DecisionUnavailable:
			// The session stays valid; the role could not be checked.
			logging.With(withSession(r.Context(), sess), s.log).Warn().Str("path", r.URL.Path).Msg("admin access denied: role store unavailable")
			writeJSON(w, http.StatusServiceUnavailable, redirectBody{
				Redirect: adminLoginUnavailable,
				Message:  s.tr.T("error.unavailable"),
			})
		default:
			writeJSON(w, http.StatusUnauthorized, redirectBody{
				Redirect: adminLoginUnauthenticated,
				Message:  s.tr.T("error.unauthenticated"),
			})
		}
	})
}
