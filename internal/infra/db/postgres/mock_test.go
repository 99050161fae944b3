//go:build !integration

package postgres

import (
	"context"
	"time"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
	red "gym-membership/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerUserRepo mocks the database repository that the profile decorator wraps.
type mockInnerUserRepo struct {
	CreateFunc                 func(ctx context.Context, tx repository.Tx, u *model.UserProfile, hash string) error
	FindByIDFunc               func(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error)
	FindCredentialsByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.Credentials, error)
	UpdateProfileFunc          func(ctx context.Context, tx repository.Tx, id string, upd model.ProfileUpdate) error
	ListFunc                   func(ctx context.Context, tx repository.Tx) ([]*model.UserProfile, error)
}

func (m *mockInnerUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.UserProfile, hash string) error {
	return m.CreateFunc(ctx, tx, u, hash)
}
func (m *mockInnerUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerUserRepo) FindCredentialsByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Credentials, error) {
	return m.FindCredentialsByEmailFunc(ctx, tx, email)
}
func (m *mockInnerUserRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, upd model.ProfileUpdate) error {
	return m.UpdateProfileFunc(ctx, tx, id, upd)
}
func (m *mockInnerUserRepo) List(ctx context.Context, tx repository.Tx) ([]*model.UserProfile, error) {
	return m.ListFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNXFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelFunc    func(ctx context.Context, keys ...string) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return m.SetNXFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	return false, nil
}
func (m *mockRedisClient) Close() error { return nil }
