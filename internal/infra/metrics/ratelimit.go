package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(rateLimitTotal) }

var rateLimitTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_requests_total",
		Help: "Rate limiter decisions per scope.",
	},
	[]string{"scope", "result"}, // e.g., scope="login", result="allowed"
)

func IncRateLimit(scope string, allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	rateLimitTotal.WithLabelValues(norm(scope), result).Inc()
}
