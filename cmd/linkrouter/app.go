package main

import (
	"context"
	"time"

	"github.com/vyrodovalexey/linkrouter/internal/config"
	"github.com/vyrodovalexey/linkrouter/internal/health"
	"github.com/vyrodovalexey/linkrouter/internal/observability"
	"github.com/vyrodovalexey/linkrouter/internal/router"
	"github.com/vyrodovalexey/linkrouter/internal/server"
)

// readinessCheckTimeout bounds the route table readiness check.
const readinessCheckTimeout = time.Second

// application holds the serve mode components.
type application struct {
	flags     cliFlags
	path      string
	config    *config.RouterConfig
	router    *router.Router
	loader    *config.Loader
	validator *config.Validator
	logger    observability.Logger
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	watcher   *config.Watcher
}

// serve runs the HTTP API and the route table watcher until ctx is done.
func (a *application) serve(ctx context.Context) error {
	a.logger.Info("starting linkrouter",
		observability.String("version", version),
		observability.String("config", a.path),
		observability.String("table", a.config.Metadata.Name),
		observability.Int("routes", a.router.Len()),
	)

	a.metrics = observability.NewMetrics(appName)
	a.metrics.SetBuildInfo(version, gitCommit)
	a.metrics.SetRoutesLoaded(a.router.Len())

	tracer, err := initTracer(a.config.Spec.Observability.Tracing)
	if err != nil {
		return err
	}
	a.tracer = tracer

	watcher, err := a.startWatcher(ctx)
	if err != nil {
		a.logger.Warn("route table hot reload disabled", observability.Error(err))
	}
	a.watcher = watcher

	srv := server.New(a.router,
		server.WithLogger(a.logger.Named("server")),
		server.WithMetrics(a.metrics),
		server.WithTracer(a.tracer),
		server.WithHealth(a.healthHandler()),
		server.WithServerConfig(a.serverConfig()),
		server.WithDefaultDomain(a.flags.domain),
	)
	if err := srv.Start(ctx); err != nil {
		a.release(watcher)
		return err
	}

	<-ctx.Done()
	a.logger.Info("received shutdown signal")

	return a.shutdown(srv, watcher)
}

func (a *application) serverConfig() config.ServerConfig {
	cfg := *a.config.Spec.Server
	if a.flags.listen != "" {
		cfg.Listen = a.flags.listen
	}
	return cfg
}

func (a *application) shutdownTimeout() time.Duration {
	if a.flags.shutdownTimeout > 0 {
		return a.flags.shutdownTimeout
	}
	return a.config.Spec.Server.ShutdownTimeout.Duration()
}

func (a *application) healthHandler() *health.Handler {
	h := health.NewHandlerWithConfig(a.logger.Named("health"), &health.HandlerConfig{
		ReadinessProbeTimeout: health.DefaultReadinessProbeTimeout,
		LivenessProbeTimeout:  health.DefaultLivenessProbeTimeout,
		Version:               version,
	})
	h.AddCheck(health.NewTimeoutHealthCheck(health.NewRouteTableCheck("routes", a.router), readinessCheckTimeout))
	return h
}

// startWatcher reloads the router whenever the route table file changes.
func (a *application) startWatcher(ctx context.Context) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(a.path, a.onReload,
		config.WithLogger(a.logger.Named("watcher")),
		config.WithLoader(a.loader),
		config.WithValidator(a.validator),
		config.WithErrorCallback(func(error) {
			a.metrics.RecordReload(false)
		}),
	)
	if err != nil {
		return nil, err
	}

	if err := watcher.Start(ctx); err != nil {
		_ = watcher.Stop()
		return nil, err
	}
	return watcher, nil
}

// onReload swaps in a new route table. A table that fails to compile
// leaves the current one active.
func (a *application) onReload(cfg *config.RouterConfig) {
	if err := a.router.LoadRoutes(&cfg.Spec); err != nil {
		a.logger.Error("failed to apply reloaded route table", observability.Error(err))
		a.metrics.RecordReload(false)
		return
	}
	a.metrics.RecordReload(true)
	a.metrics.SetRoutesLoaded(a.router.Len())
}

func (a *application) shutdown(srv *server.Server, watcher *config.Watcher) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	a.stopWatcher(watcher)
	err := srv.Shutdown(ctx)
	a.shutdownTracer(ctx)

	a.logger.Info("linkrouter stopped")
	return err
}

// release stops the components started before the server when the
// server itself fails to start.
func (a *application) release(watcher *config.Watcher) {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	a.stopWatcher(watcher)
	a.shutdownTracer(ctx)
}

func (a *application) stopWatcher(watcher *config.Watcher) {
	if watcher == nil {
		return
	}
	if err := watcher.Stop(); err != nil {
		a.logger.Warn("failed to stop route table watcher", observability.Error(err))
	}
}

func (a *application) shutdownTracer(ctx context.Context) {
	if a.tracer == nil {
		return
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Error("failed to shutdown tracer", observability.Error(err))
	}
}

// initTracer creates the tracer from the route table settings.
func initTracer(cfg *config.TracingConfig) (*observability.Tracer, error) {
	tracerCfg := observability.TracerConfig{
		ServiceName:    appName,
		ServiceVersion: version,
		SamplingRate:   config.DefaultSamplingRate,
	}
	if cfg != nil {
		tracerCfg.Enabled = cfg.Enabled
		tracerCfg.OTLPEndpoint = cfg.OTLPEndpoint
		tracerCfg.SamplingRate = cfg.SamplingRate
		if cfg.ServiceName != "" {
			tracerCfg.ServiceName = cfg.ServiceName
		}
	}
	return observability.NewTracer(tracerCfg)
}
