package fragment

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	loadsTotal  *prometheus.CounterVec
	loadLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		loadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fragment",
			Name:      "loads_total",
			Help:      "Total number of fragment loads.",
		}, []string{"result"}),
		loadLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fragment",
			Name:      "load_latency_seconds",
			Help:      "Latency distribution for fragment loads.",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}, []string{"result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
