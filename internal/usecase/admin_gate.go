package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"gym-membership/internal/domain/ports/repository"
	"gym-membership/internal/infra/logging"
	"gym-membership/internal/infra/metrics"
)

// Decision is the outcome of an admin gate check.
type Decision int

const (
	DecisionUnauthenticated Decision = iota
	DecisionAuthorized
	DecisionUnauthorized
	// DecisionUnavailable denies access because the role store could not be read.
	DecisionUnavailable
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionUnavailable:
		return "unavailable"
	default:
		return "unauthenticated"
	}
}

// Compile-time check
var _ AdminGate = (*adminGate)(nil)

// AdminGate decides admin access from the role store on every call. Nothing is cached.
type AdminGate interface {
	Check(ctx context.Context, userID string) Decision
}

type adminGate struct {
	roles repository.RoleRepository
	log   *zerolog.Logger
}

func NewAdminGate(roles repository.RoleRepository, logger *zerolog.Logger) *adminGate {
	return &adminGate{roles: roles, log: logger}
}

// Check denies on any lookup failure, reporting it as DecisionUnavailable.
func (g *adminGate) Check(ctx context.Context, userID string) Decision {
	defer logging.TraceDuration(g.log, "AdminGate.Check")()

	d := g.check(ctx, userID)
	metrics.IncAdminGate(d.String())
	return d
}

func (g *adminGate) check(ctx context.Context, userID string) Decision {
	if userID == "" {
		return DecisionUnauthenticated
	}
	ok, err := g.roles.IsAdmin(ctx, repository.NoTX, userID)
	if err != nil {
		g.log.Error().Err(err).Str("user_id", userID).Msg("admin role lookup failed")
		return DecisionUnavailable
	}
	if !ok {
		return DecisionUnauthorized
	}
	return DecisionAuthorized
}
