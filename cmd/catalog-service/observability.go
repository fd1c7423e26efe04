package main

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"

	"github.com/AntonStoeckl/library-catalog/catalog/oteladapters"
	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine"
	"github.com/AntonStoeckl/library-catalog/shared/shell"
	"github.com/AntonStoeckl/library-catalog/shared/shell/config"
	"github.com/AntonStoeckl/library-catalog/shared/shell/observable"
)

const instrumentationName = "github.com/AntonStoeckl/library-catalog"

// observability bundles the adapters handed to the store, the handlers and the router.
// Metrics and tracing stay nil unless OpenTelemetry is enabled.
type observability struct {
	logger           *slog.Logger
	contextualLogger shell.ContextualLogger
	clientLogger     shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	shutdown         func(ctx context.Context) error
}

func newObservability(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*observability, error) {
	obs := &observability{
		logger:           logger,
		contextualLogger: oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler()),
		shutdown:         func(context.Context) error { return nil },
	}
	obs.clientLogger = obs.contextualLogger

	if !cfg.OTel.Enabled {
		return obs, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg.OTel)
	if err != nil {
		return nil, err
	}

	obs.contextualLogger = oteladapters.NewSlogBridgeLogger(instrumentationName)
	obs.clientLogger = oteladapters.NewOTelLogger(global.Logger(instrumentationName))
	obs.metricsCollector = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
	obs.tracingCollector = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
	obs.shutdown = providers.Shutdown

	return obs, nil
}

func (o *observability) storeOptions() []postgresengine.Option {
	options := []postgresengine.Option{
		postgresengine.WithLogger(o.logger),
		postgresengine.WithContextualLogger(o.contextualLogger),
	}

	if o.metricsCollector != nil {
		options = append(options, postgresengine.WithMetrics(o.metricsCollector))
	}

	if o.tracingCollector != nil {
		options = append(options, postgresengine.WithTracing(o.tracingCollector))
	}

	return options
}

func (o *observability) retryOptions(cfg config.BorrowConfig, command shell.Command) []shell.RetryOption {
	options := []shell.RetryOption{
		shell.WithMaxAttempts(cfg.MaxAttempts),
		shell.WithBaseDelay(cfg.BaseDelay),
	}

	if o.metricsCollector != nil {
		options = append(options, shell.WithMetrics(o.metricsCollector, command.CommandType()))
	}

	return options
}

func observeCommand[C shell.Command, R any](
	handler shell.CommandHandler[C, R],
	o *observability,
) (shell.CommandHandler[C, R], error) {
	options := []observable.CommandOption[C, R]{
		observable.WithCommandContextualLogging[C, R](o.contextualLogger),
	}

	if o.metricsCollector != nil {
		options = append(options, observable.WithCommandMetrics[C, R](o.metricsCollector))
	}

	if o.tracingCollector != nil {
		options = append(options, observable.WithCommandTracing[C, R](o.tracingCollector))
	}

	wrapper, err := observable.NewCommandWrapper(handler, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

func observeQuery[Q shell.Query, R any](
	handler shell.QueryHandler[Q, R],
	o *observability,
) (shell.QueryHandler[Q, R], error) {
	options := []observable.QueryOption[Q, R]{
		observable.WithQueryContextualLogging[Q, R](o.contextualLogger),
	}

	if o.metricsCollector != nil {
		options = append(options, observable.WithQueryMetrics[Q, R](o.metricsCollector))
	}

	if o.tracingCollector != nil {
		options = append(options, observable.WithQueryTracing[Q, R](o.tracingCollector))
	}

	wrapper, err := observable.NewQueryWrapper(handler, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
