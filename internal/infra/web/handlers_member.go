package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gym-membership/internal/domain/model"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	p, err := s.accounts.Profile(ctx, sess.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd model.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.badBody(w, r)
		return
	}
	upd.FirstName = s.clean(upd.FirstName)
	upd.LastName = s.clean(upd.LastName)
	upd.FitnessGoals = s.clean(upd.FitnessGoals)

	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	p, err := s.accounts.UpdateProfile(ctx, sess.UserID, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListMySubscriptions(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	subs, err := s.memberships.ListForUser(ctx, sess.UserID, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if subs == nil {
		subs = []*model.Subscription{}
	}
	writeJSON(w, http.StatusOK, struct {
		Items []*model.Subscription `json:"items"`
	}{Items: subs})
}

type subscribeRequest struct {
	PlanID string `json:"planId"`
}

func (s *Server) handleRequestSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badBody(w, r)
		return
	}
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	sub, err := s.memberships.RequestSubscription(ctx, sess.UserID, req.PlanID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	rcpt, err := s.memberships.Receipt(ctx, sess.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rcpt)
}

// monthParam reads ?month=yyyy-MM, defaulting to the current month in the gym's zone.
func (s *Server) monthParam(r *http.Request) (model.Month, error) {
	loc := s.attendance.Location()
	v := r.URL.Query().Get("month")
	if v == "" {
		return model.MonthOf(s.now(), loc), nil
	}
	return model.ParseMonth(v, loc)
}

func (s *Server) handleMyAttendance(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	recs, err := s.attendance.ListMonth(ctx, sess.UserID, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*model.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, struct {
		Month string                    `json:"month"`
		Items []*model.AttendanceRecord `json:"items"`
	}{Month: month.String(), Items: recs})
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDayKey(chi.URLParam(r, "date"), s.attendance.Location())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	rec, err := s.attendance.Mark(ctx, sess.UserID, day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUnmarkAttendance(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDayKey(chi.URLParam(r, "date"), s.attendance.Location())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := SessionFrom(r.Context())
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	removed, err := s.attendance.Unmark(ctx, sess.UserID, day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Removed bool `json:"removed"`
	}{Removed: removed})
}

// workoutRequest has no subscriptionLevel: the tier comes from the member's
// active subscriptions.
type workoutRequest struct {
	FitnessGoals        string             `json:"fitnessGoals"`
	CurrentFitnessLevel model.FitnessLevel `json:"currentFitnessLevel"`
	EquipmentAvailable  string             `json:"equipmentAvailable"`
	TimeCommitment      string             `json:"timeCommitment"`
}

func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badBody(w, r)
		return
	}
	sess := SessionFrom(r.Context())

	sctx, cancel := s.storeCtx(r.Context())
	tier, err := s.memberships.HighestActiveTier(sctx, sess.UserID, s.now())
	cancel()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan, err := s.workouts.Generate(r.Context(), sess.UserID, model.WorkoutPlanRequest{
		FitnessGoals:        req.FitnessGoals,
		SubscriptionLevel:   tier,
		CurrentFitnessLevel: req.CurrentFitnessLevel,
		EquipmentAvailable:  req.EquipmentAvailable,
		TimeCommitment:      req.TimeCommitment,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
