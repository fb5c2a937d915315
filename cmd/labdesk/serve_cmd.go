package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/labdesk/internal/devserver"
	"github.com/iota-uz/labdesk/internal/panels"
	"github.com/iota-uz/labdesk/pkg/configuration"
	"github.com/iota-uz/labdesk/pkg/logging"
	"github.com/iota-uz/labdesk/pkg/middleware"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reference dashboard server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := root.config()
			if err != nil {
				return err
			}
			defer conf.Unload()
			logger := conf.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if conf.OpenTelemetry.Enabled {
				cleanup := logging.SetupTracing(context.WithoutCancel(ctx), conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
				defer cleanup()
				logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
			}

			layouts, err := panels.LoadLayouts(conf.LayoutsPath)
			if err != nil {
				return withCode(exitConfig, err)
			}
			opts := devserver.Options{
				Layouts:         layouts,
				Logger:          logger,
				RequestIDHeader: conf.RequestIDHeader,
				AllowedOrigins:  conf.AllowedOrigins,
			}
			if conf.RateLimit.Enabled {
				opts.RateLimit = &middleware.RateLimitConfig{
					RequestsPerPeriod: conf.RateLimit.GlobalRPS,
					Store:             rateLimitStore(conf, logger),
				}
			}
			if conf.Prometheus.Enabled {
				opts.MetricsPath = conf.Prometheus.Path
			}
			srv, err := devserver.New(opts)
			if err != nil {
				return err
			}

			logger.Infof("Listening on: http://%s", conf.SocketAddress)
			return srv.Start(ctx, conf.SocketAddress)
		},
	}
}

func rateLimitStore(conf *configuration.Configuration, logger *logrus.Logger) limiter.Store {
	if conf.RateLimit.Storage != "redis" {
		return middleware.NewMemoryStore()
	}
	store, err := middleware.NewRedisStore(conf.RateLimit.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
		return middleware.NewMemoryStore()
	}
	return store
}
