package repository

import (
	"context"

	"gym-membership/internal/domain/model"
)

// SubscriptionRepository covers both stored copies of a subscription:
// the per-user copy and the flat admin copy.
type SubscriptionRepository interface {
	SaveUserCopy(ctx context.Context, tx Tx, s *model.Subscription) error
	SaveFlatCopy(ctx context.Context, tx Tx, s *model.FlatSubscription) error

	// FindFlatForUpdate loads the flat copy and locks it for the lifetime of tx.
	FindFlatForUpdate(ctx context.Context, tx Tx, id string) (*model.FlatSubscription, error)
	FindUserCopy(ctx context.Context, tx Tx, userID, id string) (*model.Subscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	ListFlat(ctx context.Context, tx Tx) ([]*model.FlatSubscription, error)

	// Activate writes the approval to both copies. approvedDate is assigned by the
	// database clock and returned.
	Activate(ctx context.Context, tx Tx, s *model.Subscription) (*model.Subscription, error)
	UpdateStatus(ctx context.Context, tx Tx, s *model.Subscription) error
}
