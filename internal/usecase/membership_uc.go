package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
	"gym-membership/internal/infra/logging"
	"gym-membership/internal/infra/metrics"
)

// Compile-time check
var _ MembershipUseCase = (*membershipUC)(nil)

// MembershipUseCase drives the subscription lifecycle: pending -> active -> expired,
// with cancelled reachable from any non-terminal state.
type MembershipUseCase interface {
	Plans() []model.MembershipPlan
	RequestSubscription(ctx context.Context, userID, planID string) (*model.Subscription, error)
	ApproveSubscription(ctx context.Context, subscriptionID, userID, planID string) (*model.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID, userID string) error
	ListForAdmin(ctx context.Context, now time.Time) ([]*model.FlatSubscription, error)
	ListForUser(ctx context.Context, userID string, now time.Time) ([]*model.Subscription, error)
	Receipt(ctx context.Context, userID, subscriptionID string) (*model.Receipt, error)
	HighestActiveTier(ctx context.Context, userID string, now time.Time) (model.Tier, error)
	CountByStatus(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error)
}

type membershipUC struct {
	subs  repository.SubscriptionRepository
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
	now   func() time.Time
}

func NewMembershipUseCase(subs repository.SubscriptionRepository, users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *membershipUC {
	return &membershipUC{
		subs:  subs,
		users: users,
		tm:    tm,
		log:   logger,
		now:   time.Now,
	}
}

func (u *membershipUC) Plans() []model.MembershipPlan {
	return model.Catalog()
}

// RequestSubscription stores the per-user copy, then the flat copy. The two
// writes are independent; a failure of either is returned as ErrWrite.
func (u *membershipUC) RequestSubscription(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.RequestSubscription")()

	sub, err := model.NewPendingSubscription(userID, planID, u.now())
	if err != nil {
		return nil, err
	}
	profile, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	if err := u.subs.SaveUserCopy(ctx, repository.NoTX, sub); err != nil {
		u.log.Error().Err(err).Str("subscription_id", sub.ID).Str("user_id", userID).Msg("save user subscription failed")
		return nil, wrapWrite(err)
	}
	flat := &model.FlatSubscription{Subscription: *sub, UserName: profile.DisplayName(), UserEmail: profile.Email}
	if err := u.subs.SaveFlatCopy(ctx, repository.NoTX, flat); err != nil {
		metrics.IncSubscriptionPartialWrite()
		u.log.Error().Err(err).
			Str("subscription_id", sub.ID).
			Str("user_id", userID).
			Msg("partial subscription write: user copy stored, flat copy missing")
		return nil, wrapWrite(err)
	}

	metrics.IncSubscriptionTransition(model.SubscriptionStatusPending, "ok")
	return sub, nil
}

// ApproveSubscription activates a pending subscription. Both copies change in a
// single transaction while the flat row is locked, so a concurrent second approval
// observes "active" and fails with ErrInvalidTransition.
func (u *membershipUC) ApproveSubscription(ctx context.Context, subscriptionID, userID, planID string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.ApproveSubscription")()

	plan, ok := model.PlanByID(planID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var out *model.Subscription
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		flat, err := u.subs.FindFlatForUpdate(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if flat.UserID != userID || flat.MembershipPlanID != string(plan.ID) {
			return domain.ErrInvalidArgument
		}
		sub := flat.Subscription
		if err := sub.Activate(u.now(), plan.Months()); err != nil {
			return err
		}
		out, err = u.subs.Activate(ctx, tx, &sub)
		return err
	})
	if err != nil {
		metrics.IncSubscriptionTransition(model.SubscriptionStatusActive, resultLabel(err))
		return nil, err
	}

	metrics.IncSubscriptionTransition(model.SubscriptionStatusActive, "ok")
	u.log.Info().Str("subscription_id", subscriptionID).Str("plan", string(plan.ID)).Msg("subscription approved")
	return out, nil
}

// CancelSubscription cancels both copies atomically. An empty userID skips the
// ownership check.
func (u *membershipUC) CancelSubscription(ctx context.Context, subscriptionID, userID string) error {
	defer logging.TraceDuration(u.log, "MembershipUC.CancelSubscription")()

	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		flat, err := u.subs.FindFlatForUpdate(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if userID != "" && flat.UserID != userID {
			return domain.ErrNotFound
		}
		sub := flat.Subscription
		if err := sub.Cancel(u.now()); err != nil {
			return err
		}
		return u.subs.UpdateStatus(ctx, tx, &sub)
	})
	metrics.IncSubscriptionTransition(model.SubscriptionStatusCancelled, resultLabel(err))
	return err
}

// ListForAdmin reports effective statuses, ordered for review.
func (u *membershipUC) ListForAdmin(ctx context.Context, now time.Time) ([]*model.FlatSubscription, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.ListForAdmin")()

	rows, err := u.subs.ListFlat(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.Status = r.EffectiveStatus(now)
	}
	model.SortForAdmin(rows, now)
	return rows, nil
}

func (u *membershipUC) ListForUser(ctx context.Context, userID string, now time.Time) ([]*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.ListForUser")()

	subs, err := u.subs.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		s.Status = s.EffectiveStatus(now)
	}
	return subs, nil
}

func (u *membershipUC) Receipt(ctx context.Context, userID, subscriptionID string) (*model.Receipt, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.Receipt")()

	sub, err := u.subs.FindUserCopy(ctx, repository.NoTX, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	profile, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	r := &model.Receipt{
		SubscriptionID: sub.ID,
		PlanID:         sub.MembershipPlanID,
		PlanName:       sub.MembershipPlanID,
		Status:         sub.EffectiveStatus(u.now()),
		PurchaseDate:   sub.PurchaseDate(),
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		UserName:       profile.DisplayName(),
		UserEmail:      profile.Email,
	}
	if plan, ok := model.PlanByID(sub.MembershipPlanID); ok {
		r.PlanName = plan.Name
		r.Price = plan.Price
	}
	return r, nil
}

func (u *membershipUC) HighestActiveTier(ctx context.Context, userID string, now time.Time) (model.Tier, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.HighestActiveTier")()

	subs, err := u.subs.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return model.TierBasic, err
	}
	return model.HighestActiveTier(subs, now), nil
}

// CountByStatus counts flat rows by effective status.
func (u *membershipUC) CountByStatus(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
	rows, err := u.subs.ListFlat(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	out := make(map[model.SubscriptionStatus]int, 4)
	for _, r := range rows {
		out[r.EffectiveStatus(now)]++
	}
	return out, nil
}

func wrapWrite(err error) error {
	if errors.Is(err, domain.ErrWrite) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrWrite, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}
