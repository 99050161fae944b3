package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/adapter"
)

var _ adapter.AttendanceReportWriter = (*AttendanceXLSX)(nil)

const attendanceSheet = "Attendance"

// AttendanceXLSX writes one row per member with present days and attendance rate.
type AttendanceXLSX struct{}

func NewAttendanceXLSX() *AttendanceXLSX { return &AttendanceXLSX{} }

func (AttendanceXLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (AttendanceXLSX) FileName(month model.Month) string {
	return fmt.Sprintf("attendance_%s.xlsx", month.String())
}

func (AttendanceXLSX) WriteAttendance(w io.Writer, month model.Month, rows []model.AttendanceSummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), attendanceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"month", "user_id", "name", "email", "present_days", "days_in_month", "percentage"}
	if err := f.SetSheetRow(attendanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			month.String(),
			r.UserID,
			r.UserName,
			r.UserEmail,
			r.PresentDays,
			r.TotalDaysInMonth,
			r.Percentage,
		}
		if err := f.SetSheetRow(attendanceSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
