package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminGateTotal) }

var adminGateTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_gate_decisions_total",
		Help: "Admin surface access decisions.",
	},
	[]string{"decision"}, // 'authorized', 'unauthorized', 'unauthenticated'
)

func IncAdminGate(decision string) {
	adminGateTotal.WithLabelValues(norm(decision)).Inc()
}
