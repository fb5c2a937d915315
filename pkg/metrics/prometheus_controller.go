// Package metrics exposes the process's Prometheus registry over HTTP.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/labdesk/pkg/server"
)

const DefaultPath = "/debug/prometheus"

type Options struct {
	Path string
	// Gatherer and Registerer default to the global Prometheus registry, which
	// is where the navigation, toast and fragment vectors live.
	Gatherer   prometheus.Gatherer
	Registerer prometheus.Registerer
}

type PrometheusController struct {
	path    string
	handler http.Handler
}

func NewPrometheusController(opts Options) server.Controller {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	handler := promhttp.InstrumentMetricHandler(
		opts.Registerer,
		promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}),
	)
	return &PrometheusController{path: opts.Path, handler: handler}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, c.handler).Methods(http.MethodGet)
}
