package navigation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	fallbackReloads    prometheus.Counter
	inFlight           prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		submissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigation",
			Name:      "submissions_total",
			Help:      "Total number of submit events by result.",
		}, []string{"result"}),
		submissionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navigation",
			Name:      "submission_duration_seconds",
			Help:      "Latency distribution for intercepted submissions.",
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"result"}),
		fallbackReloads: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "navigation",
			Name:      "fallback_reloads_total",
			Help:      "Total number of full reloads caused by a missing content region.",
		}),
		inFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigation",
			Name:      "in_flight",
			Help:      "Current number of intercepted submissions awaiting a response.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
