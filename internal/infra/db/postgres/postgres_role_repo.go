package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership/internal/domain/ports/repository"
)

var _ repository.RoleRepository = (*roleRepo)(nil)

// roleRepo stores the admin set as rows in admin_roles.
type roleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *roleRepo {
	return &roleRepo{pool: pool}
}

func (r *roleRepo) IsAdmin(ctx context.Context, tx repository.Tx, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM admin_roles WHERE user_id=$1);`
	var ok bool
	if err := pickRow(ctx, r.pool, tx, q, userID).Scan(&ok); err != nil {
		return false, mapReadErr("check admin role", err)
	}
	return ok, nil
}

func (r *roleRepo) GrantAdmin(ctx context.Context, tx repository.Tx, userID string) error {
	const q = `INSERT INTO admin_roles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, userID)
	return mapWriteErr("grant admin", err)
}

func (r *roleRepo) RevokeAdmin(ctx context.Context, tx repository.Tx, userID string) error {
	const q = `DELETE FROM admin_roles WHERE user_id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, userID)
	return mapWriteErr("revoke admin", err)
}
