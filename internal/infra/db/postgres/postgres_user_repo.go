package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

const userColumns = `id, first_name, last_name, email, fitness_goals, photo_url, created_at`

func scanUser(row pgx.Row) (*model.UserProfile, error) {
	var u model.UserProfile
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.FitnessGoals, &u.PhotoURL, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, tx repository.Tx, u *model.UserProfile, passwordHash string) error {
	const q = `
INSERT INTO users (id, first_name, last_name, email, fitness_goals, photo_url, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.FirstName, u.LastName, u.Email, u.FitnessGoals, u.PhotoURL, passwordHash, u.CreatedAt)
	return mapWriteErr("create user", err)
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1;`
	u, err := scanUser(pickRow(ctx, r.pool, tx, q, id))
	if err != nil {
		return nil, mapReadErr("find user", err)
	}
	return u, nil
}

func (r *userRepo) FindCredentialsByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Credentials, error) {
	const q = `SELECT id, email, password_hash FROM users WHERE email=$1;`
	var c model.Credentials
	if err := pickRow(ctx, r.pool, tx, q, model.NormalizeEmail(email)).Scan(&c.UserID, &c.Email, &c.PasswordHash); err != nil {
		return nil, mapReadErr("find credentials", err)
	}
	return &c, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, upd model.ProfileUpdate) error {
	const q = `UPDATE users SET first_name=$2, last_name=$3, fitness_goals=$4 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, upd.FirstName, upd.LastName, upd.FitnessGoals)
	if err != nil {
		return mapWriteErr("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, tx repository.Tx) ([]*model.UserProfile, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY first_name, last_name, id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapReadErr("list users", err)
	}
	defer rows.Close()

	var out []*model.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapReadErr("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadErr("list users", err)
	}
	return out, nil
}
