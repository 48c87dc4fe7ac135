// Package app wires the entity service and its ambient stack from the application config.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"domsync/internal/config"
	"domsync/internal/logging"
	"domsync/internal/metrics"
	"domsync/internal/repository"
	"domsync/internal/service"
	"domsync/internal/storage"
	"domsync/internal/tracing"
)

// App bundles the service with the logger, registry and tracer it reports to.
type App struct {
	Service  service.EntityService
	Logger   *logrus.Entry
	Registry *prometheus.Registry

	shutdown tracing.Shutdown
}

// New builds an App around repo. Content URIs are presigned through MinIO only
// when an endpoint is configured.
func New(ctx context.Context, cfg *config.AppConfig, repo repository.ObjectRepository) (*App, error) {
	log := logging.New(cfg.Log)

	tp, shutdown, err := tracing.New(ctx, cfg.Tracing, log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	var urls storage.URLResolver = storage.Passthrough{}
	if cfg.MinIO.Endpoint != "" {
		if urls, err = storage.NewMinIO(cfg.MinIO); err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
	}

	svc, err := service.NewEntityService(repo, cfg.Sync,
		service.WithLogger(log),
		service.WithMetrics(rec),
		service.WithTracerProvider(tp),
		service.WithURLResolver(urls),
	)
	if err != nil {
		return nil, err
	}

	return &App{Service: svc, Logger: log, Registry: reg, shutdown: shutdown}, nil
}

// Close flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	return a.shutdown(ctx)
}
