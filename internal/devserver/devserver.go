// Package devserver is a small server-rendered lab-booking dashboard. It
// answers form posts with redirects carrying success/error messages and serves
// the calendar fragment, which is the contract the navigation runtime drives.
package devserver

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/labdesk/internal/panels"
	"github.com/iota-uz/labdesk/pkg/metrics"
	"github.com/iota-uz/labdesk/pkg/middleware"
	"github.com/iota-uz/labdesk/pkg/server"
)

type Options struct {
	Store   *Store
	Layouts panels.Layouts
	Logger  *logrus.Logger
	// RequestIDHeader defaults to X-Request-ID.
	RequestIDHeader string
	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	// RateLimit is applied to every route when set.
	RateLimit *middleware.RateLimitConfig
	Now       func() time.Time
}

func New(opts Options) (*server.HTTPServer, error) {
	if opts.Store == nil {
		opts.Store = NewSeededStore()
	}
	if opts.Layouts == nil {
		layouts, err := panels.LoadLayouts("")
		if err != nil {
			return nil, err
		}
		opts.Layouts = layouts
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	loggerOpts := middleware.DefaultLoggerOptions()
	if opts.RequestIDHeader != "" {
		loggerOpts.RequestIDHeader = opts.RequestIDHeader
	}

	controllers := []server.Controller{
		NewDashboardController(opts.Store, opts.Layouts, opts.Now),
		NewBookingsController(opts.Store),
		NewLeavesController(opts.Store),
		NewCalendarController(opts.Store, opts.Now),
		NewHealthController(),
		NewStaticFilesController(),
	}
	if opts.MetricsPath != "" {
		controllers = append(controllers, metrics.NewPrometheusController(metrics.Options{Path: opts.MetricsPath}))
	}

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(opts.Logger, loggerOpts),
		middleware.TracedMiddleware("devserver"),
	}
	if len(opts.AllowedOrigins) > 0 {
		middlewares = append(middlewares,
			middleware.TracedMiddleware("cors"),
			middleware.Cors(opts.AllowedOrigins...),
		)
	}
	if opts.RateLimit != nil {
		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(*opts.RateLimit),
		)
	}

	return server.NewHTTPServer(
		controllers,
		middlewares,
		http.NotFoundHandler(),
		nil,
	), nil
}
