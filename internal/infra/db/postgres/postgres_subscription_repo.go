package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subColumns = `id, user_id, membership_plan_id, status, requested_date, approved_date, start_date, end_date`

func scanSub(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	var status string
	if err := row.Scan(&s.ID, &s.UserID, &s.MembershipPlanID, &status, &s.RequestedDate, &s.ApprovedDate, &s.StartDate, &s.EndDate); err != nil {
		return nil, err
	}
	s.Status = model.SubscriptionStatus(status)
	return &s, nil
}

func scanFlat(row pgx.Row) (*model.FlatSubscription, error) {
	var f model.FlatSubscription
	var status string
	if err := row.Scan(&f.ID, &f.UserID, &f.MembershipPlanID, &status, &f.RequestedDate, &f.ApprovedDate, &f.StartDate, &f.EndDate, &f.UserName, &f.UserEmail); err != nil {
		return nil, err
	}
	f.Status = model.SubscriptionStatus(status)
	return &f, nil
}

func (r *subscriptionRepo) SaveUserCopy(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO user_subscriptions (` + subColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  status=$4, approved_date=$6, start_date=$7, end_date=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.MembershipPlanID, string(s.Status), s.RequestedDate, s.ApprovedDate, s.StartDate, s.EndDate)
	return mapWriteErr("save user subscription", err)
}

func (r *subscriptionRepo) SaveFlatCopy(ctx context.Context, tx repository.Tx, f *model.FlatSubscription) error {
	const q = `
INSERT INTO subscriptions_flat (` + subColumns + `, user_name, user_email)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  status=$4, approved_date=$6, start_date=$7, end_date=$8, user_name=$9, user_email=$10;`
	_, err := execSQL(ctx, r.pool, tx, q, f.ID, f.UserID, f.MembershipPlanID, string(f.Status), f.RequestedDate, f.ApprovedDate, f.StartDate, f.EndDate, f.UserName, f.UserEmail)
	return mapWriteErr("save flat subscription", err)
}

func (r *subscriptionRepo) FindFlatForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.FlatSubscription, error) {
	if tx == nil {
		// a row lock outside a transaction is released immediately
		return nil, domain.ErrInvalidExecContext
	}
	const q = `SELECT ` + subColumns + `, user_name, user_email FROM subscriptions_flat WHERE id=$1 FOR UPDATE;`
	f, err := scanFlat(pickRow(ctx, r.pool, tx, q, id))
	if err != nil {
		return nil, mapReadErr("lock flat subscription", err)
	}
	return f, nil
}

func (r *subscriptionRepo) FindUserCopy(ctx context.Context, tx repository.Tx, userID, id string) (*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM user_subscriptions WHERE id=$1 AND user_id=$2;`
	s, err := scanSub(pickRow(ctx, r.pool, tx, q, id, userID))
	if err != nil {
		return nil, mapReadErr("find user subscription", err)
	}
	return s, nil
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM user_subscriptions WHERE user_id=$1 ORDER BY requested_date DESC NULLS LAST;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, mapReadErr("list user subscriptions", err)
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, mapReadErr("scan subscription", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) ListFlat(ctx context.Context, tx repository.Tx) ([]*model.FlatSubscription, error) {
	const q = `SELECT ` + subColumns + `, user_name, user_email FROM subscriptions_flat;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapReadErr("list flat subscriptions", err)
	}
	defer rows.Close()

	var out []*model.FlatSubscription
	for rows.Next() {
		f, err := scanFlat(rows)
		if err != nil {
			return nil, mapReadErr("scan flat subscription", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// Activate stamps approved_date with the database clock on both copies.
func (r *subscriptionRepo) Activate(ctx context.Context, tx repository.Tx, s *model.Subscription) (*model.Subscription, error) {
	const qFlat = `
UPDATE subscriptions_flat
   SET status=$2, start_date=$3, end_date=$4, approved_date=NOW()
 WHERE id=$1
RETURNING approved_date;`
	const qUser = `
UPDATE user_subscriptions
   SET status=$2, start_date=$3, end_date=$4, approved_date=$5
 WHERE id=$1 AND user_id=$6;`

	var approved time.Time
	if err := pickRow(ctx, r.pool, tx, qFlat, s.ID, string(s.Status), s.StartDate, s.EndDate).Scan(&approved); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapWriteErr("activate flat subscription", err)
	}
	tag, err := execSQL(ctx, r.pool, tx, qUser, s.ID, string(s.Status), s.StartDate, s.EndDate, approved, s.UserID)
	if err != nil {
		return nil, mapWriteErr("activate user subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	out := *s
	out.ApprovedDate = &approved
	return &out, nil
}

// UpdateStatus writes the status to both copies.
func (r *subscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const qFlat = `UPDATE subscriptions_flat SET status=$2 WHERE id=$1;`
	const qUser = `UPDATE user_subscriptions SET status=$2 WHERE id=$1 AND user_id=$3;`

	tag, err := execSQL(ctx, r.pool, tx, qFlat, s.ID, string(s.Status))
	if err != nil {
		return mapWriteErr("update flat status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	tag, err = execSQL(ctx, r.pool, tx, qUser, s.ID, string(s.Status), s.UserID)
	if err != nil {
		return mapWriteErr("update user status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
