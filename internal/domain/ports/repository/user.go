package repository

import (
	"context"

	"gym-membership/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Create stores a new profile and its credentials. A taken email yields ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, u *model.UserProfile, passwordHash string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserProfile, error)
	FindCredentialsByEmail(ctx context.Context, tx Tx, email string) (*model.Credentials, error)
	UpdateProfile(ctx context.Context, tx Tx, id string, upd model.ProfileUpdate) error
	List(ctx context.Context, tx Tx) ([]*model.UserProfile, error)
}

// -----------------------------
// Admin roles
// -----------------------------

type RoleRepository interface {
	IsAdmin(ctx context.Context, tx Tx, userID string) (bool, error)
	GrantAdmin(ctx context.Context, tx Tx, userID string) error
	RevokeAdmin(ctx context.Context, tx Tx, userID string) error
}
