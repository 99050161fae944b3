package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
)

var _ repository.AttendanceRepository = (*attendanceRepo)(nil)

type attendanceRepo struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepo(pool *pgxpool.Pool) *attendanceRepo {
	return &attendanceRepo{pool: pool}
}

func (r *attendanceRepo) Mark(ctx context.Context, tx repository.Tx, rec *model.AttendanceRecord) error {
	const q = `
INSERT INTO attendance (user_id, day_key, date) VALUES ($1,$2,$3)
ON CONFLICT (user_id, day_key) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, rec.UserID, rec.ID, rec.Date)
	return mapWriteErr("mark attendance", err)
}

func (r *attendanceRepo) Unmark(ctx context.Context, tx repository.Tx, userID, dayKey string) (bool, error) {
	const q = `DELETE FROM attendance WHERE user_id=$1 AND day_key=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, dayKey)
	if err != nil {
		return false, mapWriteErr("unmark attendance", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *attendanceRepo) ListBetween(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) ([]*model.AttendanceRecord, error) {
	const q = `
SELECT day_key, user_id, date FROM attendance
 WHERE user_id=$1 AND date >= $2 AND date < $3
 ORDER BY date ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, from, to)
	if err != nil {
		return nil, mapReadErr("list attendance", err)
	}
	defer rows.Close()

	var out []*model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date); err != nil {
			return nil, mapReadErr("scan attendance", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadErr("list attendance", err)
	}
	return out, nil
}

func (r *attendanceRepo) CountBetween(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM attendance WHERE user_id=$1 AND date >= $2 AND date < $3;`
	var n int
	if err := pickRow(ctx, r.pool, tx, q, userID, from, to).Scan(&n); err != nil {
		return 0, mapReadErr("count attendance", err)
	}
	return n, nil
}
