package repository

import (
	"context"
	"time"

	"gym-membership/internal/domain/model"
)

type AttendanceRepository interface {
	// Mark inserts the record, doing nothing when the day is already marked.
	Mark(ctx context.Context, tx Tx, r *model.AttendanceRecord) error
	// Unmark deletes the record for that day. It reports whether a row was removed.
	Unmark(ctx context.Context, tx Tx, userID, dayKey string) (bool, error)
	ListBetween(ctx context.Context, tx Tx, userID string, from, to time.Time) ([]*model.AttendanceRecord, error)
	CountBetween(ctx context.Context, tx Tx, userID string, from, to time.Time) (int, error)
}
