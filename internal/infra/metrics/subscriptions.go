package metrics

import (
	"gym-membership/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsTotal,
		subscriptionTransitionsTotal,
		subscriptionPartialWritesTotal,
	)
}

var (
	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by effective status.",
		},
		[]string{"status"}, // 'pending', 'active', 'expired', 'cancelled'
	)

	subscriptionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "Subscription status transitions by target status and result.",
		},
		[]string{"to", "result"}, // result: ok|rejected|error
	)

	subscriptionPartialWritesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_partial_writes_total",
			Help: "Subscription requests where only one of the two stored copies was written.",
		},
	)
)

// SetSubscriptionsTotal sets the gauge for every status, zero when absent.
func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusPending,
		model.SubscriptionStatusActive,
		model.SubscriptionStatusExpired,
		model.SubscriptionStatusCancelled,
	}
	for _, status := range statuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func IncSubscriptionTransition(to model.SubscriptionStatus, result string) {
	subscriptionTransitionsTotal.WithLabelValues(norm(string(to)), norm(result)).Inc()
}

func IncSubscriptionPartialWrite() {
	subscriptionPartialWritesTotal.Inc()
}
