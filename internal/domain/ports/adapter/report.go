package adapter

import (
	"io"

	"gym-membership/internal/domain/model"
)

// AttendanceReportWriter renders the monthly attendance summary as a downloadable document.
type AttendanceReportWriter interface {
	ContentType() string
	FileName(month model.Month) string
	WriteAttendance(w io.Writer, month model.Month, rows []model.AttendanceSummary) error
}
