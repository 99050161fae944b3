package model

import (
	"time"

	"gym-membership/internal/domain"
)

// DayKeyLayout is the attendance record id format.
const DayKeyLayout = "2006-01-02"

// MonthLayout is the month selector format used by reports.
const MonthLayout = "2006-01"

// AttendanceRecord marks one attended day. Its ID is the day key.
type AttendanceRecord struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
}

// NewAttendanceRecord normalizes when to midnight in loc.
func NewAttendanceRecord(userID string, when time.Time, loc *time.Location) (*AttendanceRecord, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	day := StartOfDay(when, loc)
	return &AttendanceRecord{
		ID:     day.Format(DayKeyLayout),
		UserID: userID,
		Date:   day,
	}, nil
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDayKey parses a yyyy-MM-dd key in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, domain.Invalid("date", "must be formatted as yyyy-MM-dd")
	}
	return t, nil
}

// Month is a calendar month in the gym's time zone.
type Month struct {
	Start time.Time
}

func ParseMonth(s string, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return Month{}, domain.Invalid("month", "must be formatted as yyyy-MM")
	}
	return Month{Start: t}, nil
}

func MonthOf(t time.Time, loc *time.Location) Month {
	if loc == nil {
		loc = time.UTC
	}
	y, m, _ := t.In(loc).Date()
	return Month{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc)}
}

// End is the first instant of the following month.
func (m Month) End() time.Time { return m.Start.AddDate(0, 1, 0) }

func (m Month) Days() int { return daysIn(m.Start.Year(), m.Start.Month(), m.Start.Location()) }

func (m Month) String() string { return m.Start.Format(MonthLayout) }

// AttendanceSummary is one member's row in the monthly admin report.
type AttendanceSummary struct {
	UserID           string  `json:"userId"`
	UserName         string  `json:"userName"`
	UserEmail        string  `json:"userEmail"`
	PresentDays      int     `json:"presentDays"`
	TotalDaysInMonth int     `json:"totalDaysInMonth"`
	Percentage       float64 `json:"percentage"`
}

func NewAttendanceSummary(u *UserProfile, present int, m Month) AttendanceSummary {
	total := m.Days()
	pct := 0.0
	if total > 0 {
		pct = float64(present) / float64(total) * 100
	}
	return AttendanceSummary{
		UserID:           u.ID,
		UserName:         u.DisplayName(),
		UserEmail:        u.Email,
		PresentDays:      present,
		TotalDaysInMonth: total,
		Percentage:       pct,
	}
}
