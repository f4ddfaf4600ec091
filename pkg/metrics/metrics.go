package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	VerifyResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dayjob", Name: "verify_results_total", Help: "Publication verification outcomes by result."},
		[]string{"result"},
	)
	RegistryWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dayjob", Name: "registry_writes_total", Help: "Registry append attempts by kind and outcome."},
		[]string{"kind", "outcome"},
	)
	HydrationDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dayjob", Name: "hydration_dropped_total", Help: "Listings dropped because their IPFS content could not be fetched."},
		[]string{"kind"},
	)
	ScanRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dayjob", Name: "scan_records_total", Help: "Records recovered by direct chain scans by kind."},
		[]string{"kind"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dayjob", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dayjob", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(VerifyResults)
	reg.MustRegister(RegistryWrites)
	reg.MustRegister(HydrationDropped)
	reg.MustRegister(ScanRecords)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
