package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the auth core.
type Metrics struct {
	Logins            *prometheus.CounterVec
	FallbacksTaken    prometheus.Counter
	RefreshFailures   prometheus.Counter
	SessionsRestored  *prometheus.CounterVec
	StorageSelfHeals  prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "passage_logins_total",
			Help: "Login attempts by path and outcome",
		}, []string{"path", "outcome"}),
		FallbacksTaken: promauto.NewCounter(prometheus.CounterOpts{
			Name: "passage_legacy_fallbacks_total",
			Help: "Logins that fell back from the provider to the legacy path",
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "passage_refresh_failures_total",
			Help: "Token refresh attempts that failed",
		}),
		SessionsRestored: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "passage_sessions_restored_total",
			Help: "restoreSession outcomes",
		}, []string{"outcome"}),
		StorageSelfHeals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "passage_session_store_self_heals_total",
			Help: "Corrupt session slots cleared during restore",
		}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "passage_auth_operation_duration_seconds",
			Help:    "Latency of orchestrator operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
