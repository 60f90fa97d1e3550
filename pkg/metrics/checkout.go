package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Calls made to the pharmacy backend, by operation and outcome
	BackendCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_calls_total",
		Help: "Total number of calls to the pharmacy backend",
	}, []string{"operation", "outcome"})

	BackendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_latency_seconds",
		Help:    "Latency of calls to the pharmacy backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Detail lookups during cart rendering, resolved or replaced by the fallback
	DetailLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_drug_detail_lookups_total",
		Help: "Drug detail lookups performed while rendering carts",
	}, []string{"result"})

	Checkouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Checkout attempts by outcome",
	}, []string{"outcome"})

	BranchFanout = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_checkout_branches",
		Help:    "Number of branch requests issued per checkout",
		Buckets: []float64{1, 2, 3, 5, 8, 13},
	})

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BackendCalls,
			BackendLatency,
			DetailLookups,
			Checkouts,
			BranchFanout,
		)
	})
}

func ObserveBackendCall(operation string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendCalls.WithLabelValues(operation, outcome).Inc()
	BackendLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}
