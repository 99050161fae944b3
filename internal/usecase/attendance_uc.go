package usecase

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/adapter"
	"gym-membership/internal/domain/ports/repository"
	"gym-membership/internal/infra/logging"
)

// Compile-time check
var _ AttendanceUseCase = (*attendanceUC)(nil)

type AttendanceUseCase interface {
	Location() *time.Location
	Mark(ctx context.Context, userID string, day time.Time) (*model.AttendanceRecord, error)
	Unmark(ctx context.Context, userID string, day time.Time) (bool, error)
	ListMonth(ctx context.Context, userID string, month model.Month) ([]*model.AttendanceRecord, error)
	MonthlySummary(ctx context.Context, month model.Month) ([]model.AttendanceSummary, error)
	ExportMonthlySummary(ctx context.Context, month model.Month, w io.Writer) error
}

type attendanceUC struct {
	records repository.AttendanceRepository
	users   repository.UserRepository
	report  adapter.AttendanceReportWriter
	loc     *time.Location
	workers int
	log     *zerolog.Logger
}

// NewAttendanceUseCase keys days in loc. workers bounds the per-member queries
// issued by MonthlySummary.
func NewAttendanceUseCase(records repository.AttendanceRepository, users repository.UserRepository, report adapter.AttendanceReportWriter, loc *time.Location, workers int, logger *zerolog.Logger) *attendanceUC {
	if loc == nil {
		loc = time.UTC
	}
	if workers <= 0 {
		workers = 8
	}
	return &attendanceUC{records: records, users: users, report: report, loc: loc, workers: workers, log: logger}
}

func (u *attendanceUC) Location() *time.Location { return u.loc }

func (u *attendanceUC) Mark(ctx context.Context, userID string, day time.Time) (*model.AttendanceRecord, error) {
	defer logging.TraceDuration(u.log, "AttendanceUC.Mark")()

	rec, err := model.NewAttendanceRecord(userID, day, u.loc)
	if err != nil {
		return nil, err
	}
	if err := u.records.Mark(ctx, repository.NoTX, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *attendanceUC) Unmark(ctx context.Context, userID string, day time.Time) (bool, error) {
	defer logging.TraceDuration(u.log, "AttendanceUC.Unmark")()

	rec, err := model.NewAttendanceRecord(userID, day, u.loc)
	if err != nil {
		return false, err
	}
	return u.records.Unmark(ctx, repository.NoTX, userID, rec.ID)
}

func (u *attendanceUC) ListMonth(ctx context.Context, userID string, month model.Month) ([]*model.AttendanceRecord, error) {
	defer logging.TraceDuration(u.log, "AttendanceUC.ListMonth")()
	return u.records.ListBetween(ctx, repository.NoTX, userID, month.Start, month.End())
}

// MonthlySummary counts present days for every member. Any failed count fails
// the whole summary; partial reports are never returned.
func (u *attendanceUC) MonthlySummary(ctx context.Context, month model.Month) ([]model.AttendanceSummary, error) {
	defer logging.TraceDuration(u.log, "AttendanceUC.MonthlySummary")()

	users, err := u.users.List(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	out := make([]model.AttendanceSummary, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, usr := range users {
		g.Go(func() error {
			n, err := u.records.CountBetween(gctx, repository.NoTX, usr.ID, month.Start, month.End())
			if err != nil {
				return err
			}
			out[i] = model.NewAttendanceSummary(usr, n, month)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.log.Error().Err(err).Str("month", month.String()).Msg("attendance summary failed")
		return nil, err
	}
	return out, nil
}

func (u *attendanceUC) ExportMonthlySummary(ctx context.Context, month model.Month, w io.Writer) error {
	defer logging.TraceDuration(u.log, "AttendanceUC.ExportMonthlySummary")()

	rows, err := u.MonthlySummary(ctx, month)
	if err != nil {
		return err
	}
	return u.report.WriteAttendance(w, month, rows)
}
