package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
	"gym-membership/internal/infra/metrics"
	red "gym-membership/internal/infra/redis"
)

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

// userRepoCacheDecorator caches profiles by id. Credentials and lists are never cached.
type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &userRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func profileKey(id string) string { return fmt.Sprintf("profile:id:%s", id) }

func (d *userRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, u *model.UserProfile, passwordHash string) error {
	return d.inner.Create(ctx, tx, u, passwordHash)
}

func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error) {
	// reads inside a transaction must see the transaction's view
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}

	key := profileKey(id)
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var u model.UserProfile
		if json.Unmarshal([]byte(val), &u) == nil {
			metrics.IncCacheRequest("profile", "hit")
			return &u, nil
		}
	case !errors.Is(err, redis.Nil):
		metrics.IncCacheRequest("profile", "error")
		d.log.Warn().Err(err).Str("key", key).Msg("profile cache read failed")
	}

	metrics.IncCacheRequest("profile", "miss")
	u, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(u); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return u, nil
}

func (d *userRepoCacheDecorator) FindCredentialsByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Credentials, error) {
	return d.inner.FindCredentialsByEmail(ctx, tx, email)
}

// UpdateProfile invalidates on both sides of the write.
func (d *userRepoCacheDecorator) UpdateProfile(ctx context.Context, tx repository.Tx, id string, upd model.ProfileUpdate) error {
	_ = d.cache.Del(ctx, profileKey(id))
	if err := d.inner.UpdateProfile(ctx, tx, id, upd); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, profileKey(id))
	return nil
}

func (d *userRepoCacheDecorator) List(ctx context.Context, tx repository.Tx) ([]*model.UserProfile, error) {
	return d.inner.List(ctx, tx)
}
