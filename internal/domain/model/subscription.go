package model

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"gym-membership/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Rank orders statuses for the admin listing.
func (s SubscriptionStatus) Rank() int {
	switch s {
	case SubscriptionStatusPending:
		return 1
	case SubscriptionStatusActive:
		return 2
	case SubscriptionStatusExpired:
		return 3
	case SubscriptionStatusCancelled:
		return 4
	default:
		return 5
	}
}

func (s SubscriptionStatus) Terminal() bool {
	return s == SubscriptionStatusExpired || s == SubscriptionStatusCancelled
}

// Subscription is one member's relationship to a catalog plan. The same record
// is stored per user and, with the member's display fields, in a flat admin view.
type Subscription struct {
	ID               string             `json:"id"`
	UserID           string             `json:"userId"`
	MembershipPlanID string             `json:"membershipPlanId"`
	Status           SubscriptionStatus `json:"status"`
	RequestedDate    *time.Time         `json:"requestedDate,omitempty"`
	ApprovedDate     *time.Time         `json:"approvedDate,omitempty"`
	StartDate        *time.Time         `json:"startDate,omitempty"`
	EndDate          *time.Time         `json:"endDate,omitempty"`
}

// FlatSubscription is the admin-facing copy.
type FlatSubscription struct {
	Subscription
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// NewPendingSubscription creates a subscription request for a catalog plan.
func NewPendingSubscription(userID, planID string, now time.Time) (*Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, ok := PlanByID(planID); !ok {
		return nil, domain.ErrNotFound
	}
	requested := now
	return &Subscription{
		ID:               uuid.NewString(),
		UserID:           userID,
		MembershipPlanID: planID,
		Status:           SubscriptionStatusPending,
		RequestedDate:    &requested,
	}, nil
}

// IsActive reports whether the subscription grants access at now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && s.EndDate != nil && s.EndDate.After(now)
}

// EffectiveStatus is the stored status with lazy expiry applied. Storage keeps
// "active" past the end date; callers derive "expired" at read time.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionStatusActive && !s.IsActive(now) {
		return SubscriptionStatusExpired
	}
	return s.Status
}

// Activate moves a pending subscription to active for the given number of months.
func (s *Subscription) Activate(now time.Time, months int) error {
	if s.Status != SubscriptionStatusPending {
		return domain.ErrInvalidTransition
	}
	start := now
	end := AddMonths(now, months)
	s.Status = SubscriptionStatusActive
	s.StartDate = &start
	s.EndDate = &end
	return nil
}

// Cancel moves a non-terminal subscription to cancelled.
func (s *Subscription) Cancel(now time.Time) error {
	if s.EffectiveStatus(now).Terminal() {
		return domain.ErrInvalidTransition
	}
	s.Status = SubscriptionStatusCancelled
	return nil
}

// PurchaseDate is the approval date, falling back to the request date.
func (s *Subscription) PurchaseDate() *time.Time {
	if s.ApprovedDate != nil {
		return s.ApprovedDate
	}
	return s.RequestedDate
}

// AddMonths adds n calendar months, clamping to the last day of the target
// month: Jan 31 + 1 month is the last day of February.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// HighestActiveTier returns the best tier among active subscriptions, or basic.
func HighestActiveTier(subs []*Subscription, now time.Time) Tier {
	best := TierBasic
	for _, s := range subs {
		if !s.IsActive(now) {
			continue
		}
		t := Tier(s.MembershipPlanID)
		if t.Rank() > best.Rank() {
			best = t
		}
	}
	return best
}

// SortForAdmin orders by effective status rank, then newest request first.
// A missing request date sorts as the earliest.
func SortForAdmin(subs []*FlatSubscription, now time.Time) {
	sort.SliceStable(subs, func(i, j int) bool {
		ri := subs[i].EffectiveStatus(now).Rank()
		rj := subs[j].EffectiveStatus(now).Rank()
		if ri != rj {
			return ri < rj
		}
		return requestedAfter(subs[i].RequestedDate, subs[j].RequestedDate)
	})
}

// requestedAfter reports whether a is newer than b. A missing date is older
// than any present one.
func requestedAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
