package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, dbPoolAcquires) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_conns",
			Help: "Postgres pool connections by state.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	dbPoolAcquires = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_acquire_total",
			Help: "Cumulative successful acquires reported by the pool.",
		},
	)
)

// SetDBPoolStats mirrors a pgxpool.Stat snapshot.
func SetDBPoolStats(total, idle, inUse int32, acquires int64) {
	dbPoolConns.WithLabelValues("total").Set(float64(total))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(inUse))
	dbPoolAcquires.Set(float64(acquires))
}
