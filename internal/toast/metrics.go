package toast

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	enqueuedTotal  *prometheus.CounterVec
	dismissedTotal prometheus.Counter
	visible        prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		enqueuedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toast",
			Name:      "enqueued_total",
			Help:      "Total number of toasts enqueued.",
		}, []string{"kind"}),
		dismissedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "toast",
			Name:      "dismissed_total",
			Help:      "Total number of toasts dismissed before their scheduled removal.",
		}),
		visible: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "toast",
			Name:      "in_document",
			Help:      "Current number of toasts attached to documents.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
