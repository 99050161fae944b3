package web

import (
	"context"
	"html"
	"net/http"
	"strings"
	"time"

	"gym-membership/internal/domain/model"
)

// clean strips markup from user text and restores plain entities such as "&".
func (s *Server) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

type signUpRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badBody(w, r)
		return
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	p, err := s.accounts.SignUp(ctx, model.SignUpInput{
		FullName: s.clean(req.FullName),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badBody(w, r)
		return
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	sess, token, err := s.accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.auth.SetCookie(w, token, sess.ExpiresAt)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt})
}

// handleLogout always clears the cookie, even for stale tokens.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.authenticate(r); sess != nil {
		if err := s.accounts.SignOut(context.WithoutCancel(r.Context()), sess.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	tok, err := s.auth.TokenFromRequest(r)
	if err != nil {
		s.writeMessage(w, r, http.StatusUnauthorized, "unauthenticated", "error.unauthenticated")
		return
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	view, err := s.accounts.Session(ctx, tok)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Items []model.MembershipPlan `json:"items"`
	}{Items: s.memberships.Plans()})
}
