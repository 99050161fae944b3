package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/infra/logging"
)

func (s *Server) handleAdminMemberships(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	rows, err := s.memberships.ListForAdmin(ctx, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*model.FlatSubscription{}
	}
	writeJSON(w, http.StatusOK, struct {
		Items []*model.FlatSubscription `json:"items"`
	}{Items: rows})
}

type approveRequest struct {
	UserID string `json:"userId"`
	PlanID string `json:"planId"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badBody(w, r)
		return
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	sub, err := s.memberships.ApproveSubscription(ctx, chi.URLParam(r, "id"), req.UserID, req.PlanID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l := logging.With(r.Context(), s.log)
	l.Info().Str("subscription_id", sub.ID).Msg("approved by admin")
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleAdminCancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	if err := s.memberships.CancelSubscription(ctx, chi.URLParam(r, "id"), ""); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	rows, err := s.attendance.MonthlySummary(ctx, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.AttendanceSummary{}
	}
	writeJSON(w, http.StatusOK, struct {
		Month string                    `json:"month"`
		Days  int                       `json:"days"`
		Items []model.AttendanceSummary `json:"items"`
	}{Month: month.String(), Days: month.Days(), Items: rows})
}

// handleAttendanceExport renders into memory first so a failure still gets a JSON error.
func (s *Server) handleAttendanceExport(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.storeCtx(r.Context())
	defer cancel()

	var buf bytes.Buffer
	if err := s.attendance.ExportMonthlySummary(ctx, month, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.report.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.report.FileName(month)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
